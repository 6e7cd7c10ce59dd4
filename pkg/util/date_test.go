package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnixSecondsAndMillis(t *testing.T) {
	want := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)

	got, ok := ParseTime(strconv.FormatInt(want.Unix(), 10))
	if !ok || !got.Equal(want) {
		t.Fatalf("seconds: got %v ok=%v", got, ok)
	}
	got, ok = ParseTime(strconv.FormatInt(want.UnixMilli(), 10))
	if !ok || !got.Equal(want) {
		t.Fatalf("millis: got %v ok=%v", got, ok)
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	if got := ParseTimeDefault("yesterday", def); !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestBucketStart(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 37, 12, 0, time.UTC)
	if got := BucketStart(ts, 15*time.Minute); !got.Equal(time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected bucket %v", got)
	}
	if got := BucketStart(ts, time.Hour); got.Minute() != 0 || got.Hour() != 10 {
		t.Fatalf("unexpected hour bucket %v", got)
	}
}
