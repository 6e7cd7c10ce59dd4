package middleware

import (
	"context"
	"fmt"
	"math"
	"time"

	"FxPilot/internal/domain/models"
	domrepo "FxPilot/internal/domain/repository"
	"FxPilot/internal/service/ratelimit"
)

// TickSink receives ticks that passed the pipeline.
type TickSink interface {
	Add(t models.Tick)
}

// TickPipeline sits between a tick feed and the bar aggregator. It drops
// malformed ticks and throttles each symbol to maxRPS.
type TickPipeline struct {
	sink      TickSink
	metrics   domrepo.Metrics
	limiter   *ratelimit.Limiter
	transform func(models.Tick) models.Tick
}

type PipelineOption func(*TickPipeline)

// WithMaxRPS sets the max ticks per second per symbol. Zero disables throttling.
func WithMaxRPS(n int) PipelineOption {
	return func(p *TickPipeline) {
		if n > 0 {
			p.limiter = ratelimit.New(n, float64(n))
		} else {
			p.limiter = nil
		}
	}
}

// WithTransform rewrites ticks before validation, e.g. to map provider symbols.
func WithTransform(fn func(models.Tick) models.Tick) PipelineOption {
	return func(p *TickPipeline) { p.transform = fn }
}

func NewTickPipeline(sink TickSink, metrics domrepo.Metrics, opts ...PipelineOption) *TickPipeline {
	p := &TickPipeline{
		sink:    sink,
		metrics: metrics,
		limiter: ratelimit.New(20, 20),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates, throttles and forwards t. Throttled ticks are dropped
// without error.
func (p *TickPipeline) Process(_ context.Context, t models.Tick) error {
	start := time.Now()
	if p.transform != nil {
		t = p.transform(t)
	}
	if err := validateTick(t); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.limiter != nil && !p.limiter.Allow(t.Symbol) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	p.sink.Add(t)
	p.metrics.RecordLastPrice(t.Symbol, t.Price)
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateTick(t models.Tick) error {
	if t.Symbol == "" {
		return fmt.Errorf("tick symbol empty: %w", models.ErrInvalidMarketData)
	}
	if t.Time.IsZero() {
		return fmt.Errorf("tick %s timestamp missing: %w", t.Symbol, models.ErrInvalidMarketData)
	}
	if t.Price <= 0 || math.IsNaN(t.Price) || math.IsInf(t.Price, 0) {
		return fmt.Errorf("tick %s price %v: %w", t.Symbol, t.Price, models.ErrInvalidMarketData)
	}
	if t.Volume < 0 {
		return fmt.Errorf("tick %s negative volume: %w", t.Symbol, models.ErrInvalidMarketData)
	}
	return nil
}
