// Package authkit orchestrates email/password authentication against
// an external identity provider, with local rate-limiting of auth
// attempts and secure on-device storage of the resulting tokens.
//
// The package is a thin coordination layer: accounts, passwords, and
// tokens are owned by the provider; authkit decides when the provider
// may be called (attempt tracking, cooldown windows, exponential
// backoff), persists what comes back (access/refresh tokens, profile),
// and exposes the auth state as an explicit state machine.
//
// # Architecture boundaries
//
// authkit is the public surface. It exposes [Client], [Builder],
// [Config], error variables, and value types. The attempt tracker and
// backoff calculator live under internal/ and are never exported.
// Pluggable boundaries are their own packages: kv for storage
// backends, provider for the identity provider, credentials for the
// persisted session.
//
// # Failure posture
//
// Storage trouble never takes down an auth flow. Reads degrade to
// absent (the rate limiter fails open, the credential store fails
// empty); write failures are reported to the immediate caller and
// logged, not escalated. No call panics across the package boundary.
package authkit
