package cache

import (
	"context"
	"time"
)

// LayeredCache reads through a small local L1 in front of a shared L2.
// Locks always go to L2 because they must be visible to other replicas.
type LayeredCache struct {
	l1    *MemoryCache
	l2    Service
	l1TTL time.Duration
}

var _ Service = (*LayeredCache)(nil)

// NewLayeredCache wraps l2. l1TTL caps how long a value may live locally.
func NewLayeredCache(l2 Service, l1TTL time.Duration, opts ...MemoryOption) *LayeredCache {
	return &LayeredCache{l1: NewMemoryCache(opts...), l2: l2, l1TTL: l1TTL}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := lc.l2.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return lc.l1.Set(ctx, key, value, lc.localTTL(ttl))
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.l1.Get(ctx, key, dest); err == nil {
		return nil
	}
	if err := lc.l2.Get(ctx, key, dest); err != nil {
		return err
	}
	_ = lc.l1.Set(ctx, key, dest, lc.l1TTL)
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.l1.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, key string) (bool, error) {
	return lc.l2.Exists(ctx, key)
}

func (lc *LayeredCache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return lc.l2.TryLock(ctx, key, ttl)
}

func (lc *LayeredCache) Unlock(ctx context.Context, key string) error {
	return lc.l2.Unlock(ctx, key)
}

func (lc *LayeredCache) Close() error {
	_ = lc.l1.Close()
	return lc.l2.Close()
}

func (lc *LayeredCache) localTTL(ttl time.Duration) time.Duration {
	if lc.l1TTL > 0 && (ttl <= 0 || ttl > lc.l1TTL) {
		return lc.l1TTL
	}
	return ttl
}
