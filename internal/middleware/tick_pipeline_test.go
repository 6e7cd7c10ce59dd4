package middleware

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"FxPilot/internal/domain/models"
	"FxPilot/pkg/metrics"
)

type sliceSink struct{ ticks []models.Tick }

func (s *sliceSink) Add(t models.Tick) { s.ticks = append(s.ticks, t) }

func TestTickPipelineRejectsInvalid(t *testing.T) {
	sink := &sliceSink{}
	p := NewTickPipeline(sink, metrics.Nop{})
	now := time.Now()

	bad := []models.Tick{
		{Symbol: "", Time: now, Price: 1},
		{Symbol: "EURUSD", Price: 1},
		{Symbol: "EURUSD", Time: now, Price: 0},
		{Symbol: "EURUSD", Time: now, Price: math.NaN()},
		{Symbol: "EURUSD", Time: now, Price: 1, Volume: -1},
	}
	for i, tk := range bad {
		if err := p.Process(context.Background(), tk); !errors.Is(err, models.ErrInvalidMarketData) {
			t.Fatalf("case %d: expected invalid market data, got %v", i, err)
		}
	}
	if len(sink.ticks) != 0 {
		t.Fatalf("invalid ticks reached the sink")
	}
}

func TestTickPipelineThrottlesAndTransforms(t *testing.T) {
	sink := &sliceSink{}
	p := NewTickPipeline(sink, metrics.Nop{},
		WithMaxRPS(2),
		WithTransform(func(t models.Tick) models.Tick {
			if t.Symbol == "OANDA:EUR_USD" {
				t.Symbol = "EURUSD"
			}
			return t
		}),
	)
	now := time.Now()
	for i := 0; i < 5; i++ {
		if err := p.Process(context.Background(), models.Tick{Symbol: "OANDA:EUR_USD", Time: now, Price: 1.1}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(sink.ticks) != 2 {
		t.Fatalf("expected 2 ticks after throttling, got %d", len(sink.ticks))
	}
	if sink.ticks[0].Symbol != "EURUSD" {
		t.Fatalf("transform not applied: %s", sink.ticks[0].Symbol)
	}
}
