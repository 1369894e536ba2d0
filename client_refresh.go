package authkit

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alperenkbd/authkit/provider"
)

// Token returns a usable access token. The stored token is reused
// unless force is set or its expiry falls within the configured
// leeway, in which case the refresh token is exchanged for a fresh
// pair first. Tokens without a readable expiry claim are always
// refreshed.
func (c *Client) Token(ctx context.Context, force bool) (string, error) {
	if c.closed.Load() {
		return "", ErrClientClosed
	}

	tokens := c.creds.Tokens(ctx)
	if tokens.RefreshToken == "" {
		return "", ErrNotSignedIn
	}

	if !force && tokens.AccessToken != "" && !c.tokenExpiring(tokens.AccessToken) {
		return tokens.AccessToken, nil
	}

	creds, err := c.Refresh(ctx)
	if err != nil {
		return "", err
	}
	return creds.AccessToken, nil
}

// Refresh exchanges the stored refresh token for fresh credentials
// and persists the new pair. A rejected refresh token moves the state
// machine to Unauthenticated; the user must sign in again.
func (c *Client) Refresh(ctx context.Context) (*provider.Credentials, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	tokens := c.creds.Tokens(ctx)
	if tokens.RefreshToken == "" {
		return nil, ErrNotSignedIn
	}

	creds, err := c.provider.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		mapped := mapProviderError(err)
		c.metricInc(MetricRefreshFailure)
		c.emitAudit(ctx, auditEventRefreshFailure, "", false, mapped, nil)
		if errors.Is(mapped, ErrRefreshInvalid) {
			c.state.transition(StateUnauthenticated)
		}
		return nil, mapped
	}

	// Providers may rotate the refresh token or keep it; an empty
	// field in the response means the old one stays valid.
	refresh := creds.RefreshToken
	if refresh == "" {
		refresh = tokens.RefreshToken
		creds.RefreshToken = refresh
	}

	if err := c.creds.StoreTokens(ctx, creds.AccessToken, refresh); err != nil {
		c.metricInc(MetricStorageDegraded)
		c.logger.Printf("authkit: persist refreshed tokens: %v", err)
	}

	c.metricInc(MetricRefreshSuccess)
	c.emitAudit(ctx, auditEventRefreshSuccess, "", true, nil, nil)

	return creds, nil
}

// tokenExpiring peeks at the access token's exp claim without
// verifying the signature — verification is the provider's job; only
// the timestamp matters here. Unparseable tokens and tokens without
// exp report as expiring, which forces a refresh.
func (c *Client) tokenExpiring(accessToken string) bool {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return true
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return time.Until(exp.Time) <= c.config.Refresh.Leeway
}
