package authkit

import (
	"context"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alperenkbd/authkit/kv"
	"github.com/alperenkbd/authkit/provider"
)

// fakeProvider is an in-memory identity provider with one registered
// account. It counts calls so tests can assert the rate limiter kept
// the provider out of the loop.
type fakeProvider struct {
	mu sync.Mutex

	password    string // the one valid password for user@example.com
	accessToken string // token minted on successful auth
	rotate      bool   // rotate refresh tokens on Refresh
	failWith    error  // when set, every call fails with this

	signInCalls  int
	createCalls  int
	refreshCalls int
	signOutCalls int
	resetEmails  []string
}

func newFakeProvider(accessToken string) *fakeProvider {
	return &fakeProvider{
		password:    "correct-horse",
		accessToken: accessToken,
	}
}

func (f *fakeProvider) session(subjectID, email string) *provider.Session {
	return &provider.Session{
		Credentials: provider.Credentials{
			AccessToken:  f.accessToken,
			RefreshToken: "refresh-1",
			ExpiresIn:    time.Hour,
		},
		User: provider.UserInfo{
			SubjectID:     subjectID,
			Email:         email,
			DisplayName:   "User One",
			EmailVerified: true,
		},
	}
}

func (f *fakeProvider) SignIn(_ context.Context, email, password string) (*provider.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signInCalls++

	if f.failWith != nil {
		return nil, f.failWith
	}
	if email != "user@example.com" || password != f.password {
		return nil, provider.ErrInvalidCredentials
	}
	return f.session("sub-1", email), nil
}

func (f *fakeProvider) CreateAccount(_ context.Context, email, password string) (*provider.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++

	if f.failWith != nil {
		return nil, f.failWith
	}
	if email == "user@example.com" {
		return nil, provider.ErrEmailExists
	}
	if len(password) < 6 {
		return nil, provider.ErrWeakPassword
	}
	return f.session("sub-2", email), nil
}

func (f *fakeProvider) SignOut(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalls++
	return nil
}

func (f *fakeProvider) SendPasswordReset(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}
	if email == "nobody@example.com" {
		return provider.ErrInvalidCredentials
	}
	f.resetEmails = append(f.resetEmails, email)
	return nil
}

func (f *fakeProvider) Refresh(_ context.Context, refreshToken string) (*provider.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++

	if f.failWith != nil {
		return nil, f.failWith
	}
	if refreshToken != "refresh-1" && refreshToken != "refresh-2" {
		return nil, provider.ErrInvalidRefreshToken
	}

	creds := &provider.Credentials{
		AccessToken: f.accessToken,
		ExpiresIn:   time.Hour,
	}
	if f.rotate {
		creds.RefreshToken = "refresh-2"
	}
	return creds, nil
}

func (f *fakeProvider) Lookup(context.Context, string) (*provider.UserInfo, error) {
	return &provider.UserInfo{SubjectID: "sub-1", Email: "user@example.com"}, nil
}

// mintToken builds an unsigned-verification JWT with the given expiry.
func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "sub-1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return signed
}

// clientTestConfig keeps backoff waits at millisecond scale so tests
// exercising the real sleep stay fast.
func clientTestConfig() Config {
	cfg := defaultConfig()
	cfg.Security.BackoffBase = time.Millisecond
	cfg.Security.BackoffMax = 4 * time.Millisecond
	return cfg
}

func newTestClient(t *testing.T, p provider.Provider, store kv.Store, cfg Config) *Client {
	t.Helper()

	client, err := New().
		WithConfig(cfg).
		WithStore(store).
		WithProvider(p).
		WithLogger(log.New(clientTestWriter{t}, "", 0)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)

	return client
}

type clientTestWriter struct{ t *testing.T }

func (w clientTestWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", p)
	return len(p), nil
}
