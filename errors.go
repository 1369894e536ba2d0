package authkit

import (
	"errors"

	"github.com/alperenkbd/authkit/provider"
)

var (
	// ErrInvalidCredentials is returned by SignIn for a wrong password
	// or unknown email.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountExists is returned by SignUp for a taken email address.
	ErrAccountExists = errors.New("account already exists")
	// ErrWeakPassword is returned by SignUp when the provider rejects
	// the password.
	ErrWeakPassword = errors.New("password too weak")
	// ErrAccountDisabled indicates the account was disabled server-side.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrLoginRateLimited is returned by SignIn during an active local
	// cooldown window. CheckRateLimit carries the remaining wait.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRegistrationRateLimited is the SignUp counterpart.
	ErrRegistrationRateLimited = errors.New("registration rate limited")
	// ErrProviderRateLimited is the provider's own server-side
	// throttle, distinct from the local cooldown.
	ErrProviderRateLimited = errors.New("provider rate limited")
	// ErrProviderUnavailable covers transport failures and provider
	// outages.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrStorageUnavailable indicates local persistence failed.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrNotSignedIn is returned by token operations with no stored
	// session.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrRefreshInvalid indicates the stored refresh token was revoked
	// or expired; the user must sign in again.
	ErrRefreshInvalid = errors.New("refresh token invalid")
	// ErrClientClosed is returned after Close.
	ErrClientClosed = errors.New("client closed")
)

// mapProviderError translates provider sentinel errors into the
// package taxonomy. Unknown errors pass through unchanged.
func mapProviderError(err error) error {
	switch {
	case errors.Is(err, provider.ErrInvalidCredentials),
		errors.Is(err, provider.ErrUserNotFound):
		return ErrInvalidCredentials
	case errors.Is(err, provider.ErrEmailExists):
		return ErrAccountExists
	case errors.Is(err, provider.ErrWeakPassword):
		return ErrWeakPassword
	case errors.Is(err, provider.ErrUserDisabled):
		return ErrAccountDisabled
	case errors.Is(err, provider.ErrTooManyAttempts):
		return ErrProviderRateLimited
	case errors.Is(err, provider.ErrInvalidRefreshToken):
		return ErrRefreshInvalid
	case errors.Is(err, provider.ErrUnavailable):
		return ErrProviderUnavailable
	}
	return err
}

// UserMessage translates any error from this package into a short
// sentence fit for an end user. Diagnostic detail stays in the logs.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Incorrect email or password."
	case errors.Is(err, ErrAccountExists):
		return "An account with this email already exists."
	case errors.Is(err, ErrWeakPassword):
		return "That password is too weak. Use at least 6 characters."
	case errors.Is(err, ErrAccountDisabled):
		return "This account has been disabled."
	case errors.Is(err, ErrLoginRateLimited), errors.Is(err, ErrRegistrationRateLimited),
		errors.Is(err, ErrProviderRateLimited):
		return "Too many attempts. Please wait a moment and try again."
	case errors.Is(err, ErrNotSignedIn), errors.Is(err, ErrRefreshInvalid):
		return "Your session has expired. Please sign in again."
	default:
		return "Something went wrong. Please try again."
	}
}
