package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	data     []byte
	expireAt time.Time
	touched  time.Time
}

func (m *memoryItem) expired(now time.Time) bool {
	return !m.expireAt.IsZero() && now.After(m.expireAt)
}

// MemoryCache is a process-local Service with TTLs and least-recently-used
// eviction. Values are stored encoded so Get behaves like the Redis cache.
type MemoryCache struct {
	mu      sync.Mutex
	items   map[string]*memoryItem
	maxSize int
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

var _ Service = (*MemoryCache)(nil)

func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		items:   make(map[string]*memoryItem),
		maxSize: cfg.MaxSize,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go mc.janitor(cfg.CleanupInterval)
	}
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.put(key, data, ttl)
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	item, ok := mc.lookup(key)
	var data []byte
	if ok {
		item.touched = mc.now()
		data = item.data
	}
	mc.mu.Unlock()

	if !ok {
		return ErrCacheMiss
	}
	return decode(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		delete(mc.items, key)
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	_, ok := mc.lookup(key)
	return ok, nil
}

// TryLock sets key only if it is absent or expired.
func (mc *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if _, ok := mc.lookup(key); ok {
		return false, nil
	}
	mc.put(key, []byte("locked"), ttl)
	return true, nil
}

func (mc *MemoryCache) Unlock(ctx context.Context, key string) error {
	return mc.Delete(ctx, key)
}

// Close stops the background janitor.
func (mc *MemoryCache) Close() error {
	mc.once.Do(func() { close(mc.stop) })
	return nil
}

// lookup must be called with mu held.
func (mc *MemoryCache) lookup(key string) (*memoryItem, bool) {
	item, ok := mc.items[key]
	if !ok {
		return nil, false
	}
	if item.expired(mc.now()) {
		delete(mc.items, key)
		return nil, false
	}
	return item, true
}

// put must be called with mu held.
func (mc *MemoryCache) put(key string, data []byte, ttl time.Duration) {
	now := mc.now()
	if _, ok := mc.items[key]; !ok && len(mc.items) >= mc.maxSize {
		mc.evictOldest()
	}
	item := &memoryItem{data: data, touched: now}
	if ttl > 0 {
		item.expireAt = now.Add(ttl)
	}
	mc.items[key] = item
}

func (mc *MemoryCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, item := range mc.items {
		if oldestKey == "" || item.touched.Before(oldest) {
			oldestKey = key
			oldest = item.touched
		}
	}
	if oldestKey != "" {
		delete(mc.items, oldestKey)
	}
}

func (mc *MemoryCache) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-mc.stop:
			return
		case <-ticker.C:
			mc.mu.Lock()
			now := mc.now()
			for key, item := range mc.items {
				if item.expired(now) {
					delete(mc.items, key)
				}
			}
			mc.mu.Unlock()
		}
	}
}
