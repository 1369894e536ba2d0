package credentials

import (
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/alperenkbd/authkit/kv"
)

func newTestStore(t *testing.T) (*Store, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	return NewStore(mem, "test", log.New(testWriter{t}, "", 0)), mem
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", p)
	return len(p), nil
}

func TestStoreTokens_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.StoreTokens(ctx, "access-abc", "refresh-xyz"); err != nil {
		t.Fatalf("StoreTokens failed: %v", err)
	}

	got := store.Tokens(ctx)
	if got.AccessToken != "access-abc" || got.RefreshToken != "refresh-xyz" {
		t.Fatalf("Tokens = %+v, want exact round-trip", got)
	}
}

func TestStoreTokens_WritesLastLogin(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	if err := store.StoreTokens(ctx, "a", "r"); err != nil {
		t.Fatalf("StoreTokens failed: %v", err)
	}

	ts, ok := store.LastLogin(ctx)
	if !ok {
		t.Fatal("expected last-login to be stored")
	}
	if !ts.Equal(fixed) {
		t.Fatalf("LastLogin = %v, want %v", ts, fixed)
	}
}

func TestProfile_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)
	in := Profile{
		SubjectID:     "sub-1",
		Email:         "user@example.com",
		DisplayName:   "User One",
		EmailVerified: true,
		PhotoURL:      "https://example.com/p.png",
		CreatedAt:     &created,
	}

	if err := store.StoreProfile(ctx, in); err != nil {
		t.Fatalf("StoreProfile failed: %v", err)
	}

	out := store.Profile(ctx)
	if out == nil {
		t.Fatal("expected stored profile")
	}
	if out.SubjectID != in.SubjectID || out.Email != in.Email ||
		out.DisplayName != in.DisplayName || !out.EmailVerified ||
		out.PhotoURL != in.PhotoURL {
		t.Fatalf("Profile = %+v, want %+v", out, in)
	}
	if out.CreatedAt == nil || !out.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt = %v, want %v", out.CreatedAt, created)
	}
	if out.LastLoginAt != nil {
		t.Fatalf("LastLoginAt = %v, want nil", out.LastLoginAt)
	}
}

func TestClearAll_RemovesEverything(t *testing.T) {
	store, mem := newTestStore(t)
	ctx := context.Background()

	if err := store.StoreTokens(ctx, "a", "r"); err != nil {
		t.Fatal(err)
	}
	if err := store.StoreProfile(ctx, Profile{SubjectID: "sub-1"}); err != nil {
		t.Fatal(err)
	}

	if err := store.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	if got := store.Tokens(ctx); got.AccessToken != "" || got.RefreshToken != "" {
		t.Fatalf("Tokens after ClearAll = %+v, want empty", got)
	}
	if store.Profile(ctx) != nil {
		t.Fatal("expected profile absent after ClearAll")
	}
	if _, ok := store.LastLogin(ctx); ok {
		t.Fatal("expected last-login absent after ClearAll")
	}
	if mem.Len() != 0 {
		t.Fatalf("store still holds %d keys after ClearAll", mem.Len())
	}
}

func TestClearAll_DoesNotTouchOtherNamespaces(t *testing.T) {
	mem := kv.NewMemory()
	store := NewStore(mem, "test", log.New(testWriter{t}, "", 0))
	ctx := context.Background()

	// A rate-limit record lives outside the credential namespace.
	if err := mem.Set(ctx, "test:attempts:login", `{"count":3}`); err != nil {
		t.Fatal(err)
	}
	if err := store.StoreTokens(ctx, "a", "r"); err != nil {
		t.Fatal(err)
	}

	if err := store.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	if _, ok, _ := mem.Get(ctx, "test:attempts:login"); !ok {
		t.Fatal("ClearAll must not clear the rate-limit namespace")
	}
}

type brokenStore struct{}

func (brokenStore) Set(context.Context, string, string) error { return errors.New("disk gone") }
func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}
func (brokenStore) Delete(context.Context, string) error { return errors.New("disk gone") }

func TestBrokenBackend_ReadsFailEmpty(t *testing.T) {
	store := NewStore(brokenStore{}, "test", log.New(testWriter{t}, "", 0))
	ctx := context.Background()

	got := store.Tokens(ctx)
	if got.AccessToken != "" || got.RefreshToken != "" {
		t.Fatalf("Tokens on broken backend = %+v, want empty", got)
	}
	if store.Profile(ctx) != nil {
		t.Fatal("expected nil profile on broken backend")
	}
	if _, ok := store.LastLogin(ctx); ok {
		t.Fatal("expected absent last-login on broken backend")
	}
}

func TestBrokenBackend_WritesFail(t *testing.T) {
	store := NewStore(brokenStore{}, "test", log.New(testWriter{t}, "", 0))
	ctx := context.Background()

	if err := store.StoreTokens(ctx, "a", "r"); err == nil {
		t.Fatal("expected StoreTokens to fail on broken backend")
	}
	if err := store.StoreProfile(ctx, Profile{}); err == nil {
		t.Fatal("expected StoreProfile to fail on broken backend")
	}
	if err := store.ClearAll(ctx); err == nil {
		t.Fatal("expected ClearAll to fail on broken backend")
	}
}

func TestCorruptProfile_TreatedAsAbsent(t *testing.T) {
	store, mem := newTestStore(t)
	ctx := context.Background()

	if err := mem.Set(ctx, "test:auth:user_profile", "{definitely not json"); err != nil {
		t.Fatal(err)
	}

	if store.Profile(ctx) != nil {
		t.Fatal("expected corrupt profile to read as absent")
	}
}
