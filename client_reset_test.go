package authkit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alperenkbd/authkit/kv"
)

func TestSendPasswordReset(t *testing.T) {
	fp := newFakeProvider(mintToken(t, time.Now().Add(time.Hour)))
	client := newTestClient(t, fp, kv.NewMemory(), clientTestConfig())

	if err := client.SendPasswordReset(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("SendPasswordReset failed: %v", err)
	}
	if len(fp.resetEmails) != 1 || fp.resetEmails[0] != "user@example.com" {
		t.Errorf("reset emails = %v, want [user@example.com]", fp.resetEmails)
	}

	snap := client.MetricsSnapshot()
	if snap.Counters[MetricPasswordResetRequest] != 1 {
		t.Errorf("password_reset_request = %d, want 1", snap.Counters[MetricPasswordResetRequest])
	}
}

func TestSendPasswordResetUnknownEmail(t *testing.T) {
	fp := newFakeProvider(mintToken(t, time.Now().Add(time.Hour)))
	client := newTestClient(t, fp, kv.NewMemory(), clientTestConfig())

	err := client.SendPasswordReset(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestSendPasswordResetNotLocallyLimited(t *testing.T) {
	fp := newFakeProvider(mintToken(t, time.Now().Add(time.Hour)))
	client := newTestClient(t, fp, kv.NewMemory(), clientTestConfig())

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		client.SignIn(ctx, "user@example.com", "wrong")
	}

	// Reset requests bypass the login counter; account recovery has to
	// stay reachable during a lockout.
	if err := client.SendPasswordReset(ctx, "user@example.com"); err != nil {
		t.Fatalf("SendPasswordReset blocked during login lockout: %v", err)
	}
}
