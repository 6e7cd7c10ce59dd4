package usecase

import (
	"context"
	"fmt"
	"sync"

	"FxPilot/internal/domain/models"
	domrepo "FxPilot/internal/domain/repository"
	"FxPilot/pkg/util"
)

// BarAggregator folds ticks into fixed-width OHLC bars and keeps a rolling
// window per symbol.
type BarAggregator struct {
	mu      sync.RWMutex
	tf      domrepo.Timeframe
	maxBars int
	bars    map[string][]models.PriceBar
}

var _ domrepo.BarSource = (*BarAggregator)(nil)

func NewBarAggregator(tf domrepo.Timeframe, maxBars int) *BarAggregator {
	if maxBars <= 0 {
		maxBars = 500
	}
	return &BarAggregator{
		tf:      domrepo.NormalizeTimeframe(string(tf)),
		maxBars: maxBars,
		bars:    make(map[string][]models.PriceBar),
	}
}

// Add folds t into the bar for its bucket. Ticks older than the newest bar's
// bucket are dropped.
func (a *BarAggregator) Add(t models.Tick) {
	bucket := util.BucketStart(t.Time, a.tf.Duration())

	a.mu.Lock()
	defer a.mu.Unlock()

	series := a.bars[t.Symbol]
	if n := len(series); n > 0 {
		last := &series[n-1]
		switch {
		case bucket.Equal(last.Time):
			if t.Price > last.High {
				last.High = t.Price
			}
			if t.Price < last.Low {
				last.Low = t.Price
			}
			last.Close = t.Price
			last.Volume += t.Volume
			return
		case bucket.Before(last.Time):
			return
		}
	}

	series = append(series, models.PriceBar{
		Time:   bucket,
		Open:   t.Price,
		High:   t.Price,
		Low:    t.Price,
		Close:  t.Price,
		Volume: t.Volume,
	})
	if len(series) > a.maxBars {
		series = append(series[:0:0], series[len(series)-a.maxBars:]...)
	}
	a.bars[t.Symbol] = series
}

// LatestBars returns a copy of up to n most recent bars, oldest first. The
// newest bar may still be forming.
func (a *BarAggregator) LatestBars(_ context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.PriceBar, error) {
	if tf != a.tf {
		return nil, fmt.Errorf("aggregator builds %s bars, asked for %s", a.tf, tf)
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	series := a.bars[symbol]
	if n > len(series) {
		n = len(series)
	}
	out := make([]models.PriceBar, n)
	copy(out, series[len(series)-n:])
	return out, nil
}

// Symbols lists every symbol with at least one bar.
func (a *BarAggregator) Symbols() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.bars))
	for s := range a.bars {
		out = append(out, s)
	}
	return out
}
