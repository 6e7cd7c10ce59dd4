package clickhouse

import (
	"strings"
	"testing"
	"time"
)

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN(ClientConfig{
		Host:        "ch",
		Port:        9000,
		Database:    "fxpilot",
		User:        "default",
		Password:    "p@ss",
		DialTimeout: 5 * time.Second,
		UseHTTP:     true,
	})

	if !strings.HasPrefix(dsn, "clickhouse://default:p%40ss@ch:9000/fxpilot?") {
		t.Fatalf("unexpected dsn %q", dsn)
	}
	if !strings.Contains(dsn, "dial_timeout=5s") || !strings.Contains(dsn, "protocol=http") {
		t.Fatalf("missing query params in %q", dsn)
	}
	if strings.Contains(dsn, "read_timeout") {
		t.Fatalf("zero read timeout should be omitted: %q", dsn)
	}
}
