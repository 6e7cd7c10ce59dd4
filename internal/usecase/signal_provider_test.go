package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"FxPilot/internal/domain/models"
	domrepo "FxPilot/internal/domain/repository"
	"FxPilot/internal/services/synth"
	"FxPilot/pkg/cache"
	"FxPilot/pkg/logger"
)

func newTestProvider(market domrepo.MarketSignalSource, c cache.Service, m *countingMetrics) *SignalProvider {
	return NewSignalProvider(market, synth.New(synth.WithSeed(7)), c, time.Minute, m, logger.Nop())
}

func TestSignalProviderUsesMarket(t *testing.T) {
	market := &fakeMarket{sig: buySignal(0.9)}
	m := newCountingMetrics()
	p := newTestProvider(market, nil, m)

	sig, err := p.Obtain(context.Background(), "EURUSD", models.DefaultStrategy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Source != models.SourceMarket || sig.Symbol != "EURUSD" || sig.Action != models.ActionBuy {
		t.Fatalf("unexpected signal %+v", sig)
	}
	if fb, _ := m.snapshot(); fb != 0 {
		t.Fatalf("expected no fallback, got %d", fb)
	}
}

func TestSignalProviderFallsBackWhenMarketFails(t *testing.T) {
	for name, market := range map[string]domrepo.MarketSignalSource{
		"unconfigured": nil,
		"failing":      &fakeMarket{err: errBridgeDown},
	} {
		t.Run(name, func(t *testing.T) {
			m := newCountingMetrics()
			p := newTestProvider(market, nil, m)

			sig, err := p.Obtain(context.Background(), "XAUUSD", models.DefaultStrategy())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !sig.Synthetic() {
				t.Fatalf("expected synthetic provenance, got %q", sig.Source)
			}
			if sig.Symbol != "XAUUSD" || sig.Price < 2000 {
				t.Fatalf("synthetic signal does not look like gold: %+v", sig)
			}
			if fb, _ := m.snapshot(); fb != 1 {
				t.Fatalf("expected one fallback, got %d", fb)
			}
		})
	}
}

func TestSignalProviderFallbackCoversLongWindows(t *testing.T) {
	for _, long := range []int{121, 200, 240} {
		params := models.DefaultStrategy()
		params.LongWindow = long
		if err := ValidateStrategy(params); err != nil {
			t.Fatalf("long window %d should be valid: %v", long, err)
		}

		p := newTestProvider(&fakeMarket{err: errBridgeDown}, nil, newCountingMetrics())
		sig, err := p.Obtain(context.Background(), "EURUSD", params)
		if err != nil {
			t.Fatalf("long window %d: fallback failed: %v", long, err)
		}
		if !sig.Synthetic() {
			t.Fatalf("long window %d: expected synthetic provenance, got %q", long, sig.Source)
		}
	}
}

func TestSignalProviderCachesMarketSignals(t *testing.T) {
	market := &fakeMarket{sig: buySignal(0.9)}
	mc := cache.NewMemoryCache(cache.WithMemoryCleanup(0))
	defer mc.Close()
	p := newTestProvider(market, mc, newCountingMetrics())
	params := models.DefaultStrategy()

	for i := 0; i < 3; i++ {
		if _, err := p.Obtain(context.Background(), "EURUSD", params); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := market.calls.Load(); n != 1 {
		t.Fatalf("expected one market call, got %d", n)
	}

	params.RiskReward = 3
	if _, err := p.Obtain(context.Background(), "EURUSD", params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := market.calls.Load(); n != 2 {
		t.Fatalf("different params must miss the cache, got %d calls", n)
	}
}

func TestSignalProviderDoesNotCacheSynthetic(t *testing.T) {
	mc := cache.NewMemoryCache(cache.WithMemoryCleanup(0))
	defer mc.Close()
	p := newTestProvider(nil, mc, newCountingMetrics())

	if _, err := p.Obtain(context.Background(), "EURUSD", models.DefaultStrategy()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	params := models.DefaultStrategy()
	key := cache.Key("signal", "EURUSD", params.ShortWindow, params.LongWindow, params.RiskReward)
	if ok, _ := mc.Exists(context.Background(), key); ok {
		t.Fatalf("synthetic signal must not be cached")
	}
}

func TestBarSignalSourceReportsUnavailableOnShortHistory(t *testing.T) {
	agg := NewBarAggregator(domrepo.TF1m, 100)
	agg.Add(models.Tick{Symbol: "EURUSD", Time: time.Now(), Price: 1.08, Volume: 1})

	src := NewBarSignalSource(agg, domrepo.TF1m)
	_, err := src.FetchSignal(context.Background(), "EURUSD", models.DefaultStrategy())
	if !errors.Is(err, models.ErrCollaboratorUnavailable) {
		t.Fatalf("expected collaborator unavailable, got %v", err)
	}
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected the engine error to be kept, got %v", err)
	}
}

func TestBarSignalSourceComputesFromBars(t *testing.T) {
	agg := NewBarAggregator(domrepo.TF1m, 100)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	params := models.DefaultStrategy()
	for i := 0; i < params.LongWindow; i++ {
		agg.Add(models.Tick{Symbol: "EURUSD", Time: base.Add(time.Duration(i) * time.Minute), Price: 1.08 + float64(i)*0.0005, Volume: 1})
	}

	sig, err := NewBarSignalSource(agg, domrepo.TF1m).FetchSignal(context.Background(), "EURUSD", params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Source != models.SourceMarket || sig.Action != models.ActionBuy {
		t.Fatalf("unexpected signal %+v", sig)
	}
}
