package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) *Redis {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedis(rdb, "ak")
}

func TestRedis_RoundTrip(t *testing.T) {
	roundTrip(t, newRedisStore(t))
}

func TestRedis_PrefixIsolation(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	a := NewRedis(rdb, "a")
	b := NewRedis(rdb, "b")
	ctx := context.Background()

	if err := a.Set(ctx, "k", "from-a"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := b.Get(ctx, "k"); ok {
		t.Fatal("prefix b must not see prefix a's keys")
	}
}

func TestRedis_DownServerReportsUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewRedis(rdb, "ak")

	mr.Close()

	ctx := context.Background()
	if _, _, err := store.Get(ctx, "k"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Get on down server = %v, want ErrUnavailable", err)
	}
	if err := store.Set(ctx, "k", "v"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Set on down server = %v, want ErrUnavailable", err)
	}
	if err := store.Delete(ctx, "k"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Delete on down server = %v, want ErrUnavailable", err)
	}
}
