package util

import (
	"strconv"
	"time"
)

// ParseTime accepts RFC3339 (with or without fraction), unix seconds and
// unix milliseconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return FromUnixAuto(ts), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns def if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// FromUnixAuto treats values above 1e12 as milliseconds.
func FromUnixAuto(ts int64) time.Time {
	if ts > 1e12 {
		return time.UnixMilli(ts).UTC()
	}
	return time.Unix(ts, 0).UTC()
}

// BucketStart returns the start of the d-wide bucket containing t, in UTC.
func BucketStart(t time.Time, d time.Duration) time.Time {
	if d <= 0 {
		return t.UTC()
	}
	return t.UTC().Truncate(d)
}
