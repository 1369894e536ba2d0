package authkit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alperenkbd/authkit/provider"
)

func TestMapProviderError(t *testing.T) {
	cases := []struct {
		in   error
		want error
	}{
		{provider.ErrInvalidCredentials, ErrInvalidCredentials},
		{provider.ErrUserNotFound, ErrInvalidCredentials},
		{provider.ErrEmailExists, ErrAccountExists},
		{provider.ErrWeakPassword, ErrWeakPassword},
		{provider.ErrUserDisabled, ErrAccountDisabled},
		{provider.ErrTooManyAttempts, ErrProviderRateLimited},
		{provider.ErrInvalidRefreshToken, ErrRefreshInvalid},
		{provider.ErrUnavailable, ErrProviderUnavailable},
	}
	for _, tc := range cases {
		if got := mapProviderError(tc.in); !errors.Is(got, tc.want) {
			t.Errorf("mapProviderError(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}

	// Wrapped provider sentinels map the same way.
	wrapped := fmt.Errorf("sign in: %w", provider.ErrInvalidCredentials)
	if got := mapProviderError(wrapped); !errors.Is(got, ErrInvalidCredentials) {
		t.Errorf("wrapped error mapped to %v", got)
	}

	// Unknown errors pass through untouched.
	unknown := errors.New("socket torn down")
	if got := mapProviderError(unknown); got != unknown {
		t.Errorf("unknown error rewritten to %v", got)
	}
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrInvalidCredentials, "Incorrect email or password."},
		{ErrAccountExists, "An account with this email already exists."},
		{ErrWeakPassword, "That password is too weak. Use at least 6 characters."},
		{ErrAccountDisabled, "This account has been disabled."},
		{ErrLoginRateLimited, "Too many attempts. Please wait a moment and try again."},
		{ErrRegistrationRateLimited, "Too many attempts. Please wait a moment and try again."},
		{ErrProviderRateLimited, "Too many attempts. Please wait a moment and try again."},
		{ErrNotSignedIn, "Your session has expired. Please sign in again."},
		{ErrRefreshInvalid, "Your session has expired. Please sign in again."},
		{errors.New("disk on fire"), "Something went wrong. Please try again."},
	}
	for _, tc := range cases {
		if got := UserMessage(tc.err); got != tc.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
