package kafka

import (
	"testing"
	"time"
)

func TestBackoffWithJitterStaysInRange(t *testing.T) {
	min, max := 100*time.Millisecond, time.Second
	for attempt := 1; attempt <= 10; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		if d <= 0 || d > max {
			t.Fatalf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
	if d := backoffWithJitter(min, max, 1); d < min/2 || d > min {
		t.Fatalf("first attempt backoff %v not within [min/2, min]", d)
	}
}

func TestParseCompressionDefaultsToSnappy(t *testing.T) {
	if parseCompression("bogus") != parseCompression("snappy") {
		t.Fatalf("unknown codecs should fall back to snappy")
	}
}
