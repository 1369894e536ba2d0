// Package credentials persists the tokens and profile produced by a
// successful authentication event.
//
// The store is a thin layer over a [kv.Store]. Reads never fail from
// the caller's point of view: backend errors and malformed stored data
// degrade to absent values with a logged diagnostic, forcing a fresh
// sign-in rather than crashing the flow. Writes report failure, since
// the caller must know persistence did not happen.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alperenkbd/authkit/kv"
)

// Storage keys, relative to the store's namespace prefix. The
// credential namespace is distinct from the rate-limit namespace;
// clearing one never touches the other.
const (
	keyAccessToken  = "auth:access_token"
	keyRefreshToken = "auth:refresh_token"
	keyLastLogin    = "auth:last_login"
	keyProfile      = "auth:user_profile"
)

// TokenPair holds the current access and refresh tokens. Either field
// may be empty when nothing is stored.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Profile is the stored user record. The store serializes it opaquely
// and does not interpret fields.
type Profile struct {
	SubjectID     string     `json:"subject_id"`
	Email         string     `json:"email"`
	DisplayName   string     `json:"display_name"`
	EmailVerified bool       `json:"email_verified"`
	PhotoURL      string     `json:"photo_url,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

// Store persists credentials in a namespaced region of a kv.Store.
type Store struct {
	kv     kv.Store
	prefix string
	logger *log.Logger

	now func() time.Time
}

// NewStore creates a credential store writing under prefix. A nil
// logger falls back to the process default.
func NewStore(store kv.Store, prefix string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		kv:     store,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Store) key(name string) string {
	return s.prefix + ":" + name
}

// StoreTokens writes both tokens plus a fresh last-login timestamp.
// The three writes are issued concurrently; any failure propagates as
// a single error. There is no rollback — a partial write leaves the
// completed keys in place.
func (s *Store) StoreTokens(ctx context.Context, access, refresh string) error {
	lastLogin := s.now().Format(time.RFC3339)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.kv.Set(gctx, s.key(keyAccessToken), access) })
	g.Go(func() error { return s.kv.Set(gctx, s.key(keyRefreshToken), refresh) })
	g.Go(func() error { return s.kv.Set(gctx, s.key(keyLastLogin), lastLogin) })

	if err := g.Wait(); err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}
	return nil
}

// Tokens returns the stored token pair. Read failures degrade to
// empty fields.
func (s *Store) Tokens(ctx context.Context) TokenPair {
	return TokenPair{
		AccessToken:  s.readSoft(ctx, keyAccessToken),
		RefreshToken: s.readSoft(ctx, keyRefreshToken),
	}
}

// StoreProfile serializes and writes the user profile.
func (s *Store) StoreProfile(ctx context.Context, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	if err := s.kv.Set(ctx, s.key(keyProfile), string(data)); err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	return nil
}

// Profile returns the stored user profile, or nil when absent. A
// profile that fails to parse is treated as absent.
func (s *Store) Profile(ctx context.Context) *Profile {
	raw := s.readSoft(ctx, keyProfile)
	if raw == "" {
		return nil
	}

	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.Printf("authkit: credentials: stored profile corrupt: %v", err)
		return nil
	}
	return &p
}

// LastLogin returns the recorded last-login time, if one is stored
// and parses.
func (s *Store) LastLogin(ctx context.Context) (time.Time, bool) {
	raw := s.readSoft(ctx, keyLastLogin)
	if raw == "" {
		return time.Time{}, false
	}

	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		s.logger.Printf("authkit: credentials: stored last-login corrupt: %v", err)
		return time.Time{}, false
	}
	return ts, true
}

// ClearAll removes tokens, profile, and last-login. Deletions are
// issued concurrently; any failure fails the call, but keys already
// removed stay removed.
func (s *Store) ClearAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range []string{keyAccessToken, keyRefreshToken, keyLastLogin, keyProfile} {
		key := s.key(name)
		g.Go(func() error { return s.kv.Delete(gctx, key) })
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// readSoft reads a key and maps every failure mode to the empty
// string, logging backend errors.
func (s *Store) readSoft(ctx context.Context, name string) string {
	v, ok, err := s.kv.Get(ctx, s.key(name))
	if err != nil {
		s.logger.Printf("authkit: credentials: read %s: %v", name, err)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}
