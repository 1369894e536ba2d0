package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "https://identitytoolkit.googleapis.com/v1"
	defaultTokenURL = "https://securetoken.googleapis.com/v1"
)

// HTTPConfig configures the REST identity-provider client.
type HTTPConfig struct {
	// APIKey is appended to every request as the key query parameter.
	APIKey string

	// BaseURL overrides the accounts endpoint root. Used by tests and
	// self-hosted emulators.
	BaseURL string

	// TokenURL overrides the token-exchange endpoint root.
	TokenURL string

	// Client is the HTTP client to use. Defaults to a client with a
	// 30-second timeout.
	Client *http.Client
}

// HTTP implements Provider against a Firebase-style REST identity
// API: accounts:signUp, accounts:signInWithPassword,
// accounts:sendOobCode, accounts:lookup, and the securetoken
// refresh-token grant.
type HTTP struct {
	apiKey   string
	baseURL  string
	tokenURL string
	client   *http.Client
}

// NewHTTP validates cfg and builds the client.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("provider: api key required")
	}

	p := &HTTP{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		tokenURL: strings.TrimRight(cfg.TokenURL, "/"),
		client:   cfg.Client,
	}
	if p.baseURL == "" {
		p.baseURL = defaultBaseURL
	}
	if p.tokenURL == "" {
		p.tokenURL = defaultTokenURL
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: 30 * time.Second}
	}
	return p, nil
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		DisplayName   string `json:"displayName"`
		PhotoURL      string `json:"photoUrl"`
		EmailVerified bool   `json:"emailVerified"`
		CreatedAt     string `json:"createdAt"`   // unix millis, as string
		LastLoginAt   string `json:"lastLoginAt"` // unix millis, as string
	} `json:"users"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

func (p *HTTP) CreateAccount(ctx context.Context, email, password string) (*Session, error) {
	var out signInResponse
	err := p.post(ctx, p.accountsURL("signUp"), map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return p.sessionFrom(ctx, out)
}

func (p *HTTP) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var out signInResponse
	err := p.post(ctx, p.accountsURL("signInWithPassword"), map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return p.sessionFrom(ctx, out)
}

// SignOut is a no-op: this API has no client-callable revocation
// endpoint. Refresh tokens die server-side on password change or
// account disable; local disposal is handled by the caller.
func (p *HTTP) SignOut(ctx context.Context, refreshToken string) error {
	return nil
}

func (p *HTTP) SendPasswordReset(ctx context.Context, email string) error {
	return p.post(ctx, p.accountsURL("sendOobCode"), map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, &struct{}{})
}

func (p *HTTP) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.tokenURL+"/token?key="+url.QueryEscape(p.apiKey),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out tokenResponse
	if err := p.do(req, &out); err != nil {
		return nil, err
	}

	access := out.AccessToken
	if access == "" {
		access = out.IDToken
	}
	return &Credentials{
		AccessToken:  access,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    parseExpiresIn(out.ExpiresIn),
	}, nil
}

func (p *HTTP) Lookup(ctx context.Context, accessToken string) (*UserInfo, error) {
	var out lookupResponse
	err := p.post(ctx, p.accountsURL("lookup"), map[string]any{
		"idToken": accessToken,
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Users) == 0 {
		return nil, ErrUserNotFound
	}

	u := out.Users[0]
	return &UserInfo{
		SubjectID:     u.LocalID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		EmailVerified: u.EmailVerified,
		PhotoURL:      u.PhotoURL,
		CreatedAt:     parseMillis(u.CreatedAt),
		LastLoginAt:   parseMillis(u.LastLoginAt),
	}, nil
}

// sessionFrom completes a sign-in response with a profile lookup. A
// lookup failure is not fatal — the session is still valid — so the
// profile falls back to the fields the sign-in response carried.
func (p *HTTP) sessionFrom(ctx context.Context, in signInResponse) (*Session, error) {
	sess := &Session{
		Credentials: Credentials{
			AccessToken:  in.IDToken,
			RefreshToken: in.RefreshToken,
			ExpiresIn:    parseExpiresIn(in.ExpiresIn),
		},
		User: UserInfo{
			SubjectID:   in.LocalID,
			Email:       in.Email,
			DisplayName: in.DisplayName,
		},
	}

	if info, err := p.Lookup(ctx, in.IDToken); err == nil {
		sess.User = *info
	}
	return sess, nil
}

func (p *HTTP) accountsURL(op string) string {
	return p.baseURL + "/accounts:" + op + "?key=" + url.QueryEscape(p.apiKey)
}

func (p *HTTP) post(ctx context.Context, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return p.do(req, out)
}

func (p *HTTP) do(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error.Message == "" {
			return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		}
		return mapAPIError(apiErr.Error.Message, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

// mapAPIError translates the provider's error codes to sentinel
// errors. Codes sometimes arrive with a detail suffix after " : ";
// only the leading code is matched.
func mapAPIError(message string, status int) error {
	code := message
	if i := strings.Index(code, " :"); i >= 0 {
		code = code[:i]
	}
	code = strings.TrimSpace(code)

	switch code {
	case "EMAIL_EXISTS":
		return ErrEmailExists
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL":
		return ErrInvalidCredentials
	case "WEAK_PASSWORD", "MISSING_PASSWORD":
		return ErrWeakPassword
	case "USER_DISABLED":
		return ErrUserDisabled
	case "USER_NOT_FOUND":
		return ErrUserNotFound
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return ErrTooManyAttempts
	case "INVALID_REFRESH_TOKEN", "TOKEN_EXPIRED", "MISSING_REFRESH_TOKEN", "INVALID_GRANT_TYPE":
		return ErrInvalidRefreshToken
	}
	if status >= 500 {
		return fmt.Errorf("%w: %s", ErrUnavailable, code)
	}
	return fmt.Errorf("%w: %s", ErrUnavailable, message)
}

func parseExpiresIn(s string) time.Duration {
	secs, err := strconv.Atoi(s)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
