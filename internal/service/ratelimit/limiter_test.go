package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterBurstThenRefill(t *testing.T) {
	l := New(2, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("EURUSD") || !l.Allow("EURUSD") {
		t.Fatalf("burst of capacity must pass")
	}
	if l.Allow("EURUSD") {
		t.Fatalf("third call must be throttled")
	}
	if !l.Allow("GBPUSD") {
		t.Fatalf("keys must be independent")
	}

	now = now.Add(time.Second)
	if !l.Allow("EURUSD") {
		t.Fatalf("one token should refill after a second")
	}
	if l.Allow("EURUSD") {
		t.Fatalf("only one token should have refilled")
	}

	now = now.Add(time.Hour)
	if !l.Allow("EURUSD") || !l.Allow("EURUSD") || l.Allow("EURUSD") {
		t.Fatalf("refill must be capped at capacity")
	}
}
