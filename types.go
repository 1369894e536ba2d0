package authkit

import (
	"time"

	"github.com/alperenkbd/authkit/credentials"
)

// AttemptKind identifies an independently rate-limited auth operation.
type AttemptKind string

const (
	// AttemptLogin tracks sign-in attempts.
	AttemptLogin AttemptKind = "login"
	// AttemptRegister tracks account-creation attempts.
	AttemptRegister AttemptKind = "register"
)

// RateLimitStatus is the result of [Client.CheckRateLimit]. Message is
// a user-facing sentence naming the remaining wait.
type RateLimitStatus struct {
	Limited     bool
	Wait        time.Duration
	WaitMinutes int
	Message     string
}

// Session is the result of a successful sign-in or sign-up: the
// provider's profile plus the token pair now held in local storage.
type Session struct {
	Profile credentials.Profile
	Tokens  credentials.TokenPair
}

// Profile is the stored user record, re-exported for callers that
// only consume the public surface.
type Profile = credentials.Profile

// TokenPair holds the current access and refresh tokens, re-exported
// for callers that only consume the public surface.
type TokenPair = credentials.TokenPair
