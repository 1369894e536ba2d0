// Package provider defines the identity-provider boundary: the fixed
// operation set authkit invokes and an HTTP implementation of it.
//
// The provider is an opaque external collaborator. authkit never
// inspects how accounts are stored or how tokens are minted; it only
// calls these operations and interprets the sentinel errors below.
package provider

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials covers wrong password and unknown email.
	ErrInvalidCredentials = errors.New("provider: invalid credentials")
	// ErrEmailExists is returned by CreateAccount for a taken address.
	ErrEmailExists = errors.New("provider: email already in use")
	// ErrWeakPassword is returned when the provider rejects the password.
	ErrWeakPassword = errors.New("provider: password too weak")
	// ErrUserDisabled indicates the account was disabled server-side.
	ErrUserDisabled = errors.New("provider: user disabled")
	// ErrUserNotFound indicates the subject no longer exists.
	ErrUserNotFound = errors.New("provider: user not found")
	// ErrTooManyAttempts is the provider's own server-side throttle.
	ErrTooManyAttempts = errors.New("provider: too many attempts")
	// ErrInvalidRefreshToken indicates the refresh token was revoked or expired.
	ErrInvalidRefreshToken = errors.New("provider: invalid refresh token")
	// ErrUnavailable covers transport failures and 5xx responses.
	ErrUnavailable = errors.New("provider: unavailable")
)

// Credentials is a token grant from the provider.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// UserInfo is the provider's view of an account.
type UserInfo struct {
	SubjectID     string
	Email         string
	DisplayName   string
	EmailVerified bool
	PhotoURL      string
	CreatedAt     time.Time
	LastLoginAt   time.Time
}

// Session is the result of a successful sign-in or account creation.
type Session struct {
	Credentials
	User UserInfo
}

// Provider is the fixed operation set authkit requires from an
// identity provider. Implementations must be safe for concurrent use.
type Provider interface {
	// CreateAccount registers a new email/password account and signs it in.
	CreateAccount(ctx context.Context, email, password string) (*Session, error)

	// SignIn exchanges email/password for a session.
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// SignOut invalidates the refresh token server-side where the
	// provider supports revocation. Implementations without a
	// revocation endpoint return nil; disposal of local credentials is
	// the caller's job either way.
	SignOut(ctx context.Context, refreshToken string) error

	// SendPasswordReset asks the provider to email a reset link.
	SendPasswordReset(ctx context.Context, email string) error

	// Refresh exchanges a refresh token for fresh credentials.
	Refresh(ctx context.Context, refreshToken string) (*Credentials, error)

	// Lookup fetches the account behind an access token.
	Lookup(ctx context.Context, accessToken string) (*UserInfo, error)
}
