package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FxPilot/internal/domain/models"
	domrepo "FxPilot/internal/domain/repository"
	domsvc "FxPilot/internal/domain/service"
	"FxPilot/internal/services/strategy"
	"FxPilot/pkg/cache"
	"FxPilot/pkg/logger"
)

// BarSignalSource computes market signals locally from a bar source such as
// ClickHouse or the live tick aggregator. Any failure to produce a signal
// from real bars is reported as the collaborator being unavailable.
type BarSignalSource struct {
	src domrepo.BarSource
	tf  domrepo.Timeframe
}

var _ domrepo.MarketSignalSource = (*BarSignalSource)(nil)

func NewBarSignalSource(src domrepo.BarSource, tf domrepo.Timeframe) *BarSignalSource {
	return &BarSignalSource{src: src, tf: tf}
}

func (b *BarSignalSource) FetchSignal(ctx context.Context, symbol string, params models.StrategyParameters) (models.Signal, error) {
	bars, err := b.src.LatestBars(ctx, symbol, params.LongWindow, b.tf)
	if err != nil {
		return models.Signal{}, fmt.Errorf("%w: %w", models.ErrCollaboratorUnavailable, err)
	}
	sig, err := strategy.ComputeSignal(symbol, bars, params)
	if err != nil {
		return models.Signal{}, fmt.Errorf("%w: %w", models.ErrCollaboratorUnavailable, err)
	}
	sig.Source = models.SourceMarket
	return sig, nil
}

// SignalProvider hands out signals with provenance. Market signals come from
// the configured collaborator; when it is missing or failing the signal is
// computed from synthesized bars and flagged synthetic.
type SignalProvider struct {
	market   domrepo.MarketSignalSource
	synth    domsvc.BarSynthesizer
	cache    cache.Service
	cacheTTL time.Duration
	metrics  domrepo.Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewSignalProvider builds a provider. market and c may be nil.
func NewSignalProvider(
	market domrepo.MarketSignalSource,
	synth domsvc.BarSynthesizer,
	c cache.Service,
	cacheTTL time.Duration,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *SignalProvider {
	return &SignalProvider{
		market:   market,
		synth:    synth,
		cache:    c,
		cacheTTL: cacheTTL,
		metrics:  metrics,
		log:      log.With(logger.String("component", "signal_provider")),
		now:      time.Now,
	}
}

// Obtain returns the current signal for symbol under params. Errors are only
// returned when even the synthetic computation fails.
func (p *SignalProvider) Obtain(ctx context.Context, symbol string, params models.StrategyParameters) (models.Signal, error) {
	start := p.now()
	defer func() { p.metrics.RecordLatency("signal_obtain", p.now().Sub(start).Seconds()) }()

	key := cache.Key("signal", symbol, params.ShortWindow, params.LongWindow, params.RiskReward)
	if p.cache != nil {
		var cached models.Signal
		if err := p.cache.Get(ctx, key, &cached); err == nil && cached.Source == models.SourceMarket {
			return cached, nil
		}
	}

	sig, err := p.fromMarket(ctx, symbol, params)
	if err == nil {
		if p.cache != nil && p.cacheTTL > 0 {
			if cerr := p.cache.Set(ctx, key, sig, p.cacheTTL); cerr != nil {
				p.log.Debug("cache signal", logger.String("symbol", symbol), logger.Error(cerr))
			}
		}
		p.metrics.RecordSignal(sig)
		return sig, nil
	}

	p.log.Warn("market signal unavailable, using synthetic bars",
		logger.String("symbol", symbol),
		logger.Error(err),
	)
	p.metrics.RecordFallback("market")

	sig, err = strategy.ComputeSignal(symbol, p.synth.Synthesize(symbol, p.now(), params.LongWindow+1), params)
	if err != nil {
		p.metrics.RecordError("signal")
		return models.Signal{}, fmt.Errorf("synthetic signal %s: %w", symbol, err)
	}
	sig.Source = models.SourceSynthetic
	p.metrics.RecordSignal(sig)
	return sig, nil
}

func (p *SignalProvider) fromMarket(ctx context.Context, symbol string, params models.StrategyParameters) (models.Signal, error) {
	if p.market == nil {
		return models.Signal{}, fmt.Errorf("no market source configured: %w", models.ErrCollaboratorUnavailable)
	}
	sig, err := p.market.FetchSignal(ctx, symbol, params)
	if err != nil {
		if !errors.Is(err, models.ErrCollaboratorUnavailable) {
			err = fmt.Errorf("%w: %w", models.ErrCollaboratorUnavailable, err)
		}
		return models.Signal{}, err
	}
	sig.Source = models.SourceMarket
	return sig, nil
}
