// Package rate tracks failed authentication attempts per operation
// kind and enforces cooldown windows with exponential backoff.
package rate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/alperenkbd/authkit/internal/backoff"
	"github.com/alperenkbd/authkit/kv"
)

// Kind identifies an independently tracked auth operation.
type Kind string

const (
	// KindLogin tracks sign-in attempts.
	KindLogin Kind = "login"
	// KindRegister tracks account-creation attempts.
	KindRegister Kind = "register"
)

func (k Kind) label() string {
	if k == KindRegister {
		return "registration"
	}
	return "login"
}

// Config holds tracker tuning parameters.
type Config struct {
	MaxLoginAttempts    int
	MaxRegisterAttempts int
	Cooldown            time.Duration
	BackoffBase         time.Duration
	BackoffMax          time.Duration
}

// Status is the result of a rate-limit check. Message is user-facing
// and names the remaining wait.
type Status struct {
	Limited     bool
	Wait        time.Duration
	WaitMinutes int
	Message     string
}

// record is the persisted per-kind attempt state. LastAttempt
// marshals as an RFC 3339 string.
type record struct {
	Count       int       `json:"count"`
	LastAttempt time.Time `json:"last_attempt"`
}

// Tracker persists attempt counts in a kv.Store and answers
// rate-limit checks. Storage read failures degrade to "no attempts"
// (fail-open) with a logged diagnostic; they never abort an auth flow.
type Tracker struct {
	store  kv.Store
	prefix string
	cfg    Config
	logger *log.Logger

	// Overridable in tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a Tracker storing records under prefix. A nil logger
// falls back to the process default.
func New(store kv.Store, prefix string, cfg Config, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{
		store:  store,
		prefix: prefix,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

func (t *Tracker) key(kind Kind) string {
	return t.prefix + ":attempts:" + string(kind)
}

func (t *Tracker) max(kind Kind) int {
	if kind == KindRegister {
		return t.cfg.MaxRegisterAttempts
	}
	return t.cfg.MaxLoginAttempts
}

// load reads the attempt record for kind. Any failure (backend error,
// malformed JSON) is logged and reported as an absent record.
func (t *Tracker) load(ctx context.Context, kind Kind) (record, bool) {
	raw, ok, err := t.store.Get(ctx, t.key(kind))
	if err != nil {
		t.logger.Printf("authkit: rate: read attempt record for %s: %v", kind, err)
		return record{}, false
	}
	if !ok {
		return record{}, false
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.logger.Printf("authkit: rate: attempt record for %s corrupt: %v", kind, err)
		return record{}, false
	}
	if rec.Count < 0 {
		rec.Count = 0
	}
	return rec, true
}

// Check reports whether kind is currently rate-limited. When the
// cooldown window has elapsed the stored record is deleted lazily and
// the caller proceeds unlimited. No side effects otherwise.
func (t *Tracker) Check(ctx context.Context, kind Kind) Status {
	rec, ok := t.load(ctx, kind)
	if !ok || rec.Count < t.max(kind) {
		return Status{}
	}

	cooldownEnd := rec.LastAttempt.Add(t.cfg.Cooldown)
	now := t.now()
	if !now.Before(cooldownEnd) {
		if err := t.store.Delete(ctx, t.key(kind)); err != nil {
			t.logger.Printf("authkit: rate: reset expired record for %s: %v", kind, err)
		}
		return Status{}
	}

	remaining := cooldownEnd.Sub(now)
	mins := int((remaining + time.Minute - 1) / time.Minute)
	return Status{
		Limited:     true,
		Wait:        remaining,
		WaitMinutes: mins,
		Message:     fmt.Sprintf("Too many %s attempts. Please try again in %d minutes.", kind.label(), mins),
	}
}

// RecordFailure increments and persists the attempt record for kind,
// then waits out the backoff delay before returning. The first
// failure carries no delay. The wait runs to completion once entered.
//
// The read-increment-write is not atomic; concurrent failures for the
// same kind race and the last write wins. Attempts from one device's
// UI are sequential, which is the assumed usage.
func (t *Tracker) RecordFailure(ctx context.Context, kind Kind) int {
	rec, _ := t.load(ctx, kind)
	rec.Count++
	rec.LastAttempt = t.now()

	data, err := json.Marshal(rec)
	if err != nil {
		t.logger.Printf("authkit: rate: encode attempt record for %s: %v", kind, err)
	} else if err := t.store.Set(ctx, t.key(kind), string(data)); err != nil {
		t.logger.Printf("authkit: rate: persist attempt record for %s: %v", kind, err)
	}

	if rec.Count > 1 {
		t.sleep(backoff.Delay(rec.Count, t.cfg.BackoffBase, t.cfg.BackoffMax))
	}
	return rec.Count
}

// RecordSuccess deletes the attempt record for kind. Idempotent.
func (t *Tracker) RecordSuccess(ctx context.Context, kind Kind) {
	if err := t.store.Delete(ctx, t.key(kind)); err != nil {
		t.logger.Printf("authkit: rate: clear attempt record for %s: %v", kind, err)
	}
}

// Attempts returns the current stored failure count for kind. Missing
// or unreadable records report zero.
func (t *Tracker) Attempts(ctx context.Context, kind Kind) int {
	rec, _ := t.load(ctx, kind)
	return rec.Count
}
