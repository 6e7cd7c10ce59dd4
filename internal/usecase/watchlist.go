package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FxPilot/internal/domain/models"
)

// Watchlist computes signals for many symbols concurrently.
type Watchlist struct {
	signals signalObtainer
	store   *StrategyStore
	timeout time.Duration
	now     func() time.Time
}

func NewWatchlist(signals *SignalProvider, store *StrategyStore) *Watchlist {
	return &Watchlist{signals: signals, store: store, timeout: 10 * time.Second, now: time.Now}
}

// Scan obtains one signal per symbol under the current parameters. It only
// fails on an empty symbol list; per-symbol failures are reported in Errors.
func (w *Watchlist) Scan(ctx context.Context, symbols []string) (*models.WatchlistSignals, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol required")
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	params := w.store.Strategy()
	res := &models.WatchlistSignals{
		Timestamp: w.now(),
		Signals:   make(map[string]models.Signal, len(symbols)),
		Errors:    map[string]string{},
	}

	type item struct {
		symbol string
		sig    models.Signal
		err    error
	}
	ch := make(chan item, len(symbols))
	var wg sync.WaitGroup

	for _, s := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sig, err := w.signals.Obtain(ctx, symbol, params)
			ch <- item{symbol, sig, err}
		}(s)
	}

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.symbol] = it.err.Error()
			continue
		}
		res.Signals[it.symbol] = it.sig
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}
