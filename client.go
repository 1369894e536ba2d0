package authkit

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/alperenkbd/authkit/credentials"
	"github.com/alperenkbd/authkit/internal/rate"
	"github.com/alperenkbd/authkit/kv"
	"github.com/alperenkbd/authkit/provider"
	"github.com/google/uuid"
)

// Client coordinates the auth flow: it gates provider calls behind the
// local rate limiter, persists sessions, and exposes the auth state.
// Construct it through [Builder.Build]; all methods are safe for
// concurrent use.
type Client struct {
	config   Config
	provider provider.Provider
	store    kv.Store
	creds    *credentials.Store
	tracker  *rate.Tracker
	state    *stateMachine
	audit    *auditDispatcher
	metrics  *Metrics
	logger   *log.Logger
	closed   atomic.Bool
}

// Close stops the audit dispatcher after draining buffered events.
// The client rejects operations afterwards.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.closed.Store(true)
	c.audit.Close()
}

// State returns the current auth state.
func (c *Client) State() State {
	return c.state.state()
}

// SubscribeAuthState registers fn to run on every auth-state change
// and returns an unsubscribe func. Callbacks run synchronously on the
// goroutine driving the transition; keep them short.
func (c *Client) SubscribeAuthState(fn func(State)) func() {
	return c.state.subscribe(fn)
}

// Bootstrap resolves the initial auth state from stored credentials.
// Call it once at startup, before the first auth operation.
func (c *Client) Bootstrap(ctx context.Context) State {
	if c.creds.Tokens(ctx).RefreshToken != "" {
		c.state.transition(StateAuthenticated)
	} else {
		c.state.transition(StateUnauthenticated)
	}
	return c.state.state()
}

// CheckRateLimit reports whether kind is inside an active cooldown
// window, without side effects beyond the lazy expiry reset.
func (c *Client) CheckRateLimit(ctx context.Context, kind AttemptKind) RateLimitStatus {
	st := c.tracker.Check(ctx, rateKind(kind))
	return RateLimitStatus{
		Limited:     st.Limited,
		Wait:        st.Wait,
		WaitMinutes: st.WaitMinutes,
		Message:     st.Message,
	}
}

// IsSignedIn reports whether a stored session exists.
func (c *Client) IsSignedIn(ctx context.Context) bool {
	return c.creds.Tokens(ctx).RefreshToken != ""
}

// CurrentProfile returns the stored user profile, or nil when signed
// out or when the stored record is unreadable.
func (c *Client) CurrentProfile(ctx context.Context) *Profile {
	return c.creds.Profile(ctx)
}

// CurrentTokens returns the stored token pair; fields are empty when
// signed out.
func (c *Client) CurrentTokens(ctx context.Context) TokenPair {
	return c.creds.Tokens(ctx)
}

// LastLogin returns the recorded time of the last successful auth
// event.
func (c *Client) LastLogin(ctx context.Context) (time.Time, bool) {
	return c.creds.LastLogin(ctx)
}

const installationIDKey = "installation_id"

// InstallationID returns a stable per-device identifier, minting and
// persisting one on first use. The ID never leaves the device through
// this package.
func (c *Client) InstallationID(ctx context.Context) (string, error) {
	key := c.config.Storage.Namespace + ":" + installationIDKey

	if id, ok, err := c.store.Get(ctx, key); err == nil && ok && id != "" {
		return id, nil
	} else if err != nil {
		c.logger.Printf("authkit: read installation id: %v", err)
	}

	id := uuid.NewString()
	if err := c.store.Set(ctx, key, id); err != nil {
		return "", ErrStorageUnavailable
	}
	return id, nil
}

// Dropped reports audit events discarded because the buffer was full.
func (c *Client) Dropped() uint64 {
	return c.audit.Dropped()
}

// MetricsSnapshot copies the current counter values.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

func (c *Client) metricInc(id MetricID) {
	c.metrics.Inc(id)
}

func (c *Client) emitAudit(ctx context.Context, eventType, subjectID string, success bool, opErr error, metadata map[string]string) {
	if c.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		SubjectID: subjectID,
		Success:   success,
		Metadata:  metadata,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}
	c.audit.Emit(ctx, event)
}

// persistSession writes the token pair and profile together. Both are
// written on every successful auth event; persistence failure is
// logged and counted but does not fail the auth operation itself.
func (c *Client) persistSession(ctx context.Context, sess *provider.Session) Session {
	result := Session{
		Tokens: TokenPair{
			AccessToken:  sess.AccessToken,
			RefreshToken: sess.RefreshToken,
		},
		Profile: profileFrom(sess.User),
	}

	if err := c.creds.StoreTokens(ctx, sess.AccessToken, sess.RefreshToken); err != nil {
		c.metricInc(MetricStorageDegraded)
		c.logger.Printf("authkit: persist tokens: %v", err)
	}
	if err := c.creds.StoreProfile(ctx, result.Profile); err != nil {
		c.metricInc(MetricStorageDegraded)
		c.logger.Printf("authkit: persist profile: %v", err)
	}

	return result
}

func profileFrom(u provider.UserInfo) Profile {
	p := Profile{
		SubjectID:     u.SubjectID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		EmailVerified: u.EmailVerified,
		PhotoURL:      u.PhotoURL,
	}
	if !u.CreatedAt.IsZero() {
		t := u.CreatedAt
		p.CreatedAt = &t
	}
	if !u.LastLoginAt.IsZero() {
		t := u.LastLoginAt
		p.LastLoginAt = &t
	}
	return p
}

func rateKind(kind AttemptKind) rate.Kind {
	if kind == AttemptRegister {
		return rate.KindRegister
	}
	return rate.KindLogin
}
