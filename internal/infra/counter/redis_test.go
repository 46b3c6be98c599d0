package counter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisWithClient(client), mr
}

func TestRedisIncrementSequence(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := store.Increment(ctx, "seq", time.Minute)
		if err != nil {
			t.Fatalf("increment %d: %v", want, err)
		}
		if got != want {
			t.Fatalf("increment returned %d, want %d", got, want)
		}
	}
}

func TestRedisIncrementRestartsAfterExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	if _, err := store.Increment(ctx, "k", 30*time.Second); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if _, err := store.Increment(ctx, "k", 30*time.Second); err != nil {
		t.Fatalf("increment: %v", err)
	}

	mr.FastForward(31 * time.Second)

	if _, ok, err := store.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expired key still visible: ok=%v err=%v", ok, err)
	}
	got, err := store.Increment(ctx, "k", 30*time.Second)
	if err != nil {
		t.Fatalf("increment after expiry: %v", err)
	}
	if got != 1 {
		t.Fatalf("increment after expiry returned %d, want 1", got)
	}
}

func TestRedisIncrementKeepsWindowAnchor(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	if _, err := store.Increment(ctx, "k", 10*time.Second); err != nil {
		t.Fatalf("increment: %v", err)
	}
	mr.FastForward(6 * time.Second)
	// The second increment must not push the expiry out.
	if _, err := store.Increment(ctx, "k", 10*time.Second); err != nil {
		t.Fatalf("increment: %v", err)
	}
	mr.FastForward(5 * time.Second)

	got, err := store.Increment(ctx, "k", 10*time.Second)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if got != 1 {
		t.Fatalf("window did not reset at first-use anchor, count = %d", got)
	}
}

func TestRedisIncrementConcurrent(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	const callers = 32
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			if _, err := store.Increment(ctx, "hot", time.Minute); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	value, ok, err := store.Get(ctx, "hot")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if value != "32" {
		t.Fatalf("final count = %s, want 32", value)
	}
}

func TestRedisSetGetDelete(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "session", "payload", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := store.Get(ctx, "session")
	if err != nil || !ok || value != "payload" {
		t.Fatalf("get after set: %q ok=%v err=%v", value, ok, err)
	}

	mr.FastForward(61 * time.Second)
	if _, ok, _ := store.Get(ctx, "session"); ok {
		t.Fatal("key visible after ttl elapsed")
	}

	if err := store.Set(ctx, "session", "payload", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Delete(ctx, "session"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "session"); ok {
		t.Fatal("key visible after delete")
	}
}

func TestRedisErrorsPropagate(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	mr.Close()

	if _, err := store.Increment(ctx, "k", time.Minute); err == nil {
		t.Fatal("expected connection error to propagate")
	}
	if _, _, err := store.Get(ctx, "k"); err == nil {
		t.Fatal("expected connection error to propagate")
	}
}
