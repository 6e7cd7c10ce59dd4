package usecase

import (
	"context"
	"testing"

	"FxPilot/internal/domain/models"
	"FxPilot/internal/service/ratelimit"
	"FxPilot/pkg/logger"
)

func newTestExecution(exec *fakeExecutor, pub *fakePublisher, capacity, journal int) *ExecutionService {
	return NewExecutionService(exec, ratelimit.New(capacity, 0.001), pub, newCountingMetrics(), logger.Nop(), journal)
}

func request(symbol string, action models.Action) models.ExecutionRequest {
	sig := buySignal(0.9)
	sig.Symbol = symbol
	sig.Action = action
	return models.NewExecutionRequest(sig, models.DefaultStrategy())
}

func TestExecutionServiceRejectsHold(t *testing.T) {
	exec := &fakeExecutor{ticket: "T-1"}
	svc := newTestExecution(exec, &fakePublisher{}, 5, 10)

	res := svc.Submit(context.Background(), request("EURUSD", models.ActionHold), models.OriginManual)
	if res.Status != models.ExecutionFailed || res.Diagnostic != holdDiagnostic {
		t.Fatalf("unexpected result %+v", res)
	}
	if exec.count() != 0 {
		t.Fatalf("HOLD must not reach the adapter")
	}
}

func TestExecutionServiceFillsAndPublishes(t *testing.T) {
	exec := &fakeExecutor{ticket: "T-42"}
	pub := &fakePublisher{}
	svc := newTestExecution(exec, pub, 5, 10)

	res := svc.Submit(context.Background(), request("EURUSD", models.ActionBuy), models.OriginAutopilot)
	if !res.Filled() || res.Ticket != "T-42" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.ID == "" || res.Origin != models.OriginAutopilot || res.SubmittedAt.IsZero() {
		t.Fatalf("result not stamped: %+v", res)
	}
	if res.Request.RiskPerTradePct != models.DefaultStrategy().RiskPerTradePct {
		t.Fatalf("risk per trade not carried: %+v", res.Request)
	}
	if len(pub.results) != 1 || pub.results[0].ID != res.ID {
		t.Fatalf("execution event not published: %+v", pub.results)
	}
}

func TestExecutionServiceThrottlesPerSymbol(t *testing.T) {
	exec := &fakeExecutor{ticket: "T-1"}
	svc := newTestExecution(exec, &fakePublisher{}, 1, 10)

	if res := svc.Submit(context.Background(), request("EURUSD", models.ActionBuy), models.OriginManual); !res.Filled() {
		t.Fatalf("first order should fill: %+v", res)
	}
	res := svc.Submit(context.Background(), request("EURUSD", models.ActionSell), models.OriginManual)
	if res.Status != models.ExecutionFailed || res.Diagnostic != throttleDiagnostic {
		t.Fatalf("expected throttled result, got %+v", res)
	}
	if res := svc.Submit(context.Background(), request("GBPUSD", models.ActionBuy), models.OriginManual); !res.Filled() {
		t.Fatalf("other symbols have their own bucket: %+v", res)
	}
	if exec.count() != 2 {
		t.Fatalf("expected 2 adapter calls, got %d", exec.count())
	}
}

func TestExecutionServiceRecoversAdapterPanic(t *testing.T) {
	svc := newTestExecution(&fakeExecutor{panics: true}, &fakePublisher{}, 5, 10)

	res := svc.Submit(context.Background(), request("EURUSD", models.ActionBuy), models.OriginManual)
	if res.Status != models.ExecutionFailed || res.Diagnostic != models.BridgeDiagnostic || res.Cause == "" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestExecutionServiceJournalIsBoundedNewestFirst(t *testing.T) {
	svc := newTestExecution(&fakeExecutor{}, &fakePublisher{}, 100, 3)
	symbols := []string{"EURUSD", "GBPUSD", "USDJPY", "AUDUSD", "XAUUSD"}
	for _, s := range symbols {
		svc.Submit(context.Background(), request(s, models.ActionBuy), models.OriginManual)
	}

	all := svc.Journal(0)
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	want := []string{"XAUUSD", "AUDUSD", "USDJPY"}
	for i, w := range want {
		if all[i].Request.Symbol != w {
			t.Fatalf("entry %d: want %s, got %s", i, w, all[i].Request.Symbol)
		}
	}
	if got := svc.Journal(1); len(got) != 1 || got[0].Request.Symbol != "XAUUSD" {
		t.Fatalf("unexpected limited journal %+v", got)
	}
}
