package usecase

import (
	"errors"
	"sync"
	"testing"

	"FxPilot/internal/domain/models"
)

func TestStrategyStoreDefaults(t *testing.T) {
	s, err := NewStrategyStore(models.DefaultStrategy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.AutopilotEnabled() {
		t.Fatalf("autopilot must start disengaged")
	}
	if s.Strategy() != models.DefaultStrategy() {
		t.Fatalf("unexpected params %+v", s.Strategy())
	}
}

func TestStrategyStoreRejectsInvertedWindows(t *testing.T) {
	s, _ := NewStrategyStore(models.DefaultStrategy())
	before := s.Strategy()

	bad := before
	bad.ShortWindow = 48
	bad.LongWindow = 12
	_, err := s.UpdateStrategy(bad)
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var verr *models.ValidationError
	if !errors.As(err, &verr) || len(verr.Violations) == 0 {
		t.Fatalf("expected violations, got %v", err)
	}
	if verr.Violations[0].Field != "shortWindow" {
		t.Fatalf("unexpected violation %+v", verr.Violations[0])
	}
	if s.Strategy() != before {
		t.Fatalf("rejected update leaked: %+v", s.Strategy())
	}
}

func TestStrategyStoreRejectsOutOfRange(t *testing.T) {
	s, _ := NewStrategyStore(models.DefaultStrategy())
	before := s.Strategy()
	cases := []models.StrategyParameters{
		{ShortWindow: 3, LongWindow: 48, RiskReward: 2, MaxConcurrentPositions: 4, RiskPerTradePct: 1},
		{ShortWindow: 12, LongWindow: 241, RiskReward: 2, MaxConcurrentPositions: 4, RiskPerTradePct: 1},
		{ShortWindow: 12, LongWindow: 48, RiskReward: 0.5, MaxConcurrentPositions: 4, RiskPerTradePct: 1},
		{ShortWindow: 12, LongWindow: 48, RiskReward: 2, MaxConcurrentPositions: 21, RiskPerTradePct: 1},
		{ShortWindow: 12, LongWindow: 48, RiskReward: 2, MaxConcurrentPositions: 4, RiskPerTradePct: 0.05},
	}
	for i, c := range cases {
		if _, err := s.UpdateStrategy(c); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
	if s.Strategy() != before {
		t.Fatalf("rejected update leaked: %+v", s.Strategy())
	}
}

func TestStrategyStoreAcceptsValidUpdate(t *testing.T) {
	s, _ := NewStrategyStore(models.DefaultStrategy())
	next := models.StrategyParameters{ShortWindow: 4, LongWindow: 240, RiskReward: 5, MaxConcurrentPositions: 20, RiskPerTradePct: 0.1}
	got, err := s.UpdateStrategy(next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != next || s.Strategy() != next {
		t.Fatalf("update not committed: %+v", s.Strategy())
	}
}

func TestStrategyStoreSnapshotsAreWhole(t *testing.T) {
	s, _ := NewStrategyStore(models.DefaultStrategy())
	a := models.StrategyParameters{ShortWindow: 10, LongWindow: 100, RiskReward: 2, MaxConcurrentPositions: 2, RiskPerTradePct: 1}
	b := models.StrategyParameters{ShortWindow: 20, LongWindow: 200, RiskReward: 4, MaxConcurrentPositions: 8, RiskPerTradePct: 2}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				_, _ = s.UpdateStrategy(a)
			} else {
				_, _ = s.UpdateStrategy(b)
			}
		}
	}()
	for i := 0; i < 2000; i++ {
		got := s.Strategy()
		if got != a && got != b && got != models.DefaultStrategy() {
			close(stop)
			wg.Wait()
			t.Fatalf("observed torn value %+v", got)
		}
	}
	close(stop)
	wg.Wait()
}

func TestStrategyStoreSubscribeCoalesces(t *testing.T) {
	s, _ := NewStrategyStore(models.DefaultStrategy())
	ch := s.Subscribe()
	s.SetAutopilotState(true)
	s.SetAutopilotState(false)
	s.SetAutopilotState(true)
	if got := <-ch; !got {
		t.Fatalf("expected latest value true")
	}
	select {
	case v := <-ch:
		t.Fatalf("expected no stale values, got %v", v)
	default:
	}
	if !s.AutopilotEnabled() {
		t.Fatalf("flag not stored")
	}
}
