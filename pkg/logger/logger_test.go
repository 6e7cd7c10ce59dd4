package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf).With(String("component", "autopilot"))

	log.Info("cycle done",
		String("symbol", "EURUSD"),
		Float64("confidence", 0.75),
		Duration("took", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	if entry["component"] != "autopilot" || entry["symbol"] != "EURUSD" {
		t.Fatalf("missing fields: %v", entry)
	}
	if entry["confidence"] != 0.75 {
		t.Fatalf("unexpected confidence %v", entry["confidence"])
	}
	if entry["error"] != "boom" || entry["message"] != "cycle done" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNopDiscards(t *testing.T) {
	Nop().Error("ignored", String("k", "v"))
}
