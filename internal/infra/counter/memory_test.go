package counter

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryIncrementSequence(t *testing.T) {
	store := NewMemory(MemoryConfig{})
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

func TestMemoryIncrementRestartsAfterExpiry(t *testing.T) {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	store := NewMemory(MemoryConfig{Now: func() time.Time { return now }})
	ctx := context.Background()

	if _, err := store.Increment(ctx, "k", 30*time.Second); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if _, err := store.Increment(ctx, "k", 30*time.Second); err != nil {
		t.Fatalf("increment: %v", err)
	}

	now = now.Add(31 * time.Second)

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

func TestMemoryIncrementConcurrent(t *testing.T) {
	store := NewMemory(MemoryConfig{})
	ctx := context.Background()

	const callers = 64
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
	if value != "64" {
		t.Fatalf("final count = %s, want 64", value)
	}
}

func TestMemorySetGetDelete(t *testing.T) {
	store := NewMemory(MemoryConfig{})
	ctx := context.Background()

	if err := store.Set(ctx, "session", "payload", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := store.Get(ctx, "session")
	if err != nil || !ok || value != "payload" {
		t.Fatalf("get after set: %q ok=%v err=%v", value, ok, err)
	}
	if err := store.Delete(ctx, "session"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "session"); ok {
		t.Fatal("key visible after delete")
	}
}

func TestMemoryCapacityEvictsExpiredFirst(t *testing.T) {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	store := NewMemory(MemoryConfig{Now: func() time.Time { return now }, MaxKeys: 2})
	ctx := context.Background()

	if err := store.Set(ctx, "a", "1", time.Second); err != nil {
		t.Fatalf("set a: %v", err)
	}
	if err := store.Set(ctx, "b", "1", time.Minute); err != nil {
		t.Fatalf("set b: %v", err)
	}
	if err := store.Set(ctx, "c", "1", time.Minute); err == nil {
		t.Fatal("expected capacity error while all entries are live")
	}

	now = now.Add(2 * time.Second)

	if err := store.Set(ctx, "c", "1", time.Minute); err != nil {
		t.Fatalf("set c after gc: %v", err)
	}
}

func TestMemoryIncrementRejectsNonInteger(t *testing.T) {
	store := NewMemory(MemoryConfig{})
	ctx := context.Background()

	if err := store.Set(ctx, "blob", "not-a-number", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := store.Increment(ctx, "blob", time.Minute); err == nil {
		t.Fatal("expected error incrementing a non-integer value")
	}
}
