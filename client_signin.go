package authkit

import (
	"context"
	"strconv"
)

// SignIn authenticates an existing account. The local rate limiter is
// consulted before the provider is contacted; on a provider failure
// the attempt is recorded and the computed backoff delay elapses
// before SignIn returns, so the caller cannot retry faster than the
// schedule allows. On success the tokens and profile are persisted
// together and the attempt counter is cleared.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	if st := c.tracker.Check(ctx, rateKind(AttemptLogin)); st.Limited {
		c.metricInc(MetricSignInRateLimited)
		c.emitAudit(ctx, auditEventSignInRateLimited, "", false, ErrLoginRateLimited, map[string]string{
			"email":        email,
			"wait_minutes": strconv.Itoa(st.WaitMinutes),
		})
		return nil, ErrLoginRateLimited
	}

	c.state.transition(StateAuthenticating)

	sess, err := c.provider.SignIn(ctx, email, password)
	if err != nil {
		mapped := mapProviderError(err)
		attempts := c.tracker.RecordFailure(ctx, rateKind(AttemptLogin))
		c.state.transition(StateError)
		c.metricInc(MetricSignInFailure)
		c.emitAudit(ctx, auditEventSignInFailure, "", false, mapped, map[string]string{
			"email":    email,
			"attempts": strconv.Itoa(attempts),
		})
		return nil, mapped
	}

	c.tracker.RecordSuccess(ctx, rateKind(AttemptLogin))
	result := c.persistSession(ctx, sess)
	c.state.transition(StateAuthenticated)
	c.metricInc(MetricSignInSuccess)
	c.emitAudit(ctx, auditEventSignInSuccess, sess.User.SubjectID, true, nil, nil)

	return &result, nil
}

// SignOut disposes of the local session. Provider-side revocation is
// best-effort; failure to reach the provider never blocks local
// disposal. Attempt counters live in their own namespace and survive
// sign-out.
func (c *Client) SignOut(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}

	tokens := c.creds.Tokens(ctx)
	if tokens.RefreshToken != "" {
		if err := c.provider.SignOut(ctx, tokens.RefreshToken); err != nil {
			c.logger.Printf("authkit: provider sign-out: %v", err)
		}
	}

	if err := c.creds.ClearAll(ctx); err != nil {
		c.logger.Printf("authkit: clear credentials: %v", err)
		return ErrStorageUnavailable
	}

	c.state.transition(StateUnauthenticated)
	c.metricInc(MetricSignOut)
	c.emitAudit(ctx, auditEventSignOut, "", true, nil, nil)

	return nil
}
