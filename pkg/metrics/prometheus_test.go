package metrics

import (
	"testing"

	"FxPilot/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordCycle("EURUSD", models.OutcomeExecuted)
	r.RecordCycle("EURUSD", models.OutcomeExecuted)
	r.RecordCycle("EURUSD", models.OutcomeHold)
	r.RecordSignal(models.Signal{Symbol: "EURUSD", Action: models.ActionBuy, Source: models.SourceSynthetic, Confidence: 0.7, Price: 1.08})
	r.SetAutopilotEngaged(true)

	if got := testutil.ToFloat64(r.cycles.WithLabelValues("EURUSD", "executed")); got != 2 {
		t.Fatalf("expected 2 executed cycles, got %v", got)
	}
	if got := testutil.ToFloat64(r.signals.WithLabelValues("EURUSD", "BUY", "synthetic")); got != 1 {
		t.Fatalf("expected 1 signal, got %v", got)
	}
	if got := testutil.ToFloat64(r.engaged); got != 1 {
		t.Fatalf("expected engaged gauge 1, got %v", got)
	}
	if got := testutil.ToFloat64(r.lastPrice.WithLabelValues("EURUSD")); got != 1.08 {
		t.Fatalf("unexpected last price %v", got)
	}
}
