package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type sample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func newTestCache(t *testing.T, opts ...MemoryOption) (*MemoryCache, *time.Time) {
	t.Helper()
	opts = append([]MemoryOption{WithMemoryCleanup(0)}, opts...)
	mc := NewMemoryCache(opts...)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }
	t.Cleanup(func() { _ = mc.Close() })
	return mc, &now
}

func TestMemoryCacheRoundTripsStructs(t *testing.T) {
	mc, _ := newTestCache(t)
	ctx := context.Background()

	if err := mc.Set(ctx, "k", sample{Name: "a", Value: 1.5}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got sample
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "a" || got.Value != 1.5 {
		t.Fatalf("unexpected value %+v", got)
	}
}

func TestMemoryCacheExpires(t *testing.T) {
	mc, now := newTestCache(t)
	ctx := context.Background()

	_ = mc.Set(ctx, "k", "v", time.Second)
	*now = now.Add(2 * time.Second)

	var s string
	if err := mc.Get(ctx, "k", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v (%q)", err, s)
	}
}

func TestMemoryCacheLock(t *testing.T) {
	mc, now := newTestCache(t)
	ctx := context.Background()

	ok, _ := mc.TryLock(ctx, "lock", 5*time.Second)
	if !ok {
		t.Fatalf("first lock must succeed")
	}
	if ok, _ := mc.TryLock(ctx, "lock", 5*time.Second); ok {
		t.Fatalf("second lock must fail")
	}
	*now = now.Add(6 * time.Second)
	if ok, _ := mc.TryLock(ctx, "lock", 5*time.Second); !ok {
		t.Fatalf("lock must be free after ttl")
	}
	_ = mc.Unlock(ctx, "lock")
	if ok, _ := mc.TryLock(ctx, "lock", 5*time.Second); !ok {
		t.Fatalf("lock must be free after unlock")
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc, now := newTestCache(t, WithMemoryMaxSize(2))
	ctx := context.Background()

	_ = mc.Set(ctx, "a", "1", 0)
	*now = now.Add(time.Second)
	_ = mc.Set(ctx, "b", "2", 0)
	*now = now.Add(time.Second)
	var s string
	_ = mc.Get(ctx, "a", &s)
	*now = now.Add(time.Second)
	_ = mc.Set(ctx, "c", "3", 0)

	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if ok, _ := mc.Exists(ctx, "a"); !ok {
		t.Fatalf("a should survive")
	}
}

func TestKey(t *testing.T) {
	if got := Key("signal", "EURUSD", 12); got != "signal:EURUSD:12" {
		t.Fatalf("unexpected key %q", got)
	}
}
