package config

import (
	"strings"
	"testing"
	"time"

	"FxPilot/internal/domain/models"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Environment != "test" {
		t.Fatalf("yaml value lost: %q", c.Environment)
	}
	if c.Strategy != models.DefaultStrategy() {
		t.Fatalf("unexpected default strategy %+v", c.Strategy)
	}
	if c.Autopilot.Interval != 8*time.Second || c.Autopilot.ExecutionThreshold != 0.6 {
		t.Fatalf("unexpected autopilot defaults %+v", c.Autopilot)
	}
	if len(c.Autopilot.Symbols) != 1 || c.Autopilot.Symbols[0] != "EURUSD" {
		t.Fatalf("unexpected symbols %v", c.Autopilot.Symbols)
	}
	if c.Monitor.MetricsInterval != 10*time.Second || c.Monitor.TradesInterval != 12*time.Second || c.Monitor.StatusInterval != 15*time.Second {
		t.Fatalf("unexpected monitor intervals %+v", c.Monitor)
	}
	if c.Fallback.Bars != 120 || c.Market.Source != SourceNone {
		t.Fatalf("unexpected fallback/market defaults")
	}
}

func TestParseOverridesNested(t *testing.T) {
	raw := `
strategy:
  short_window: 10
  long_window: 60
  risk_reward: 3
  max_concurrent_positions: 2
  risk_per_trade_pct: 1
autopilot:
  symbols: [GBPUSD, XAUUSD]
  interval: 20s
`
	c, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Strategy.ShortWindow != 10 || c.Strategy.LongWindow != 60 {
		t.Fatalf("strategy not decoded: %+v", c.Strategy)
	}
	if strings.Join(c.Autopilot.Symbols, ",") != "GBPUSD,XAUUSD" || c.Autopilot.Interval != 20*time.Second {
		t.Fatalf("autopilot not decoded: %+v", c.Autopilot)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"unknown source":      "market:\n  source: carrier-pigeon\n",
		"unsupported symbol":  "autopilot:\n  symbols: [DOGEUSD]\n",
		"bridge without url":  "market:\n  source: bridge\n",
		"clickhouse disabled": "market:\n  source: clickhouse\n",
		"threshold over one":  "autopilot:\n  execution_threshold: 1.5\n",
		"fallback too short":  "fallback:\n  bars: 10\n",
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	env := map[string]string{
		"BRIDGE_URL":        "http://bridge:9000",
		"REDIS_ADDR":        "cache:6380",
		"AUTOPILOT_SYMBOLS": "EURUSD, USDJPY",
		"KAFKA_BROKERS":     "k1:9092,k2:9092",
	}
	if err := c.applyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if c.Bridge.BaseURL != "http://bridge:9000" || c.Redis.Host != "cache" || c.Redis.Port != 6380 {
		t.Fatalf("env not applied: %+v %+v", c.Bridge, c.Redis)
	}
	if strings.Join(c.Autopilot.Symbols, ",") != "EURUSD,USDJPY" || len(c.Kafka.Brokers) != 2 {
		t.Fatalf("list env not applied")
	}

	bad := func(k string) string {
		if k == "REDIS_ADDR" {
			return "cache:port"
		}
		return ""
	}
	if err := c.applyEnv(bad); err == nil {
		t.Fatalf("expected error for bad port")
	}
}
