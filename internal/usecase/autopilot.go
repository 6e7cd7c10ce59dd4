package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FxPilot/internal/domain/models"
	domrepo "FxPilot/internal/domain/repository"
	"FxPilot/pkg/cache"
	"FxPilot/pkg/logger"

	"github.com/google/uuid"
)

type (
	signalObtainer interface {
		Obtain(ctx context.Context, symbol string, params models.StrategyParameters) (models.Signal, error)
	}
	executionSubmitter interface {
		Submit(ctx context.Context, req models.ExecutionRequest, origin models.ExecutionOrigin) models.ExecutionResult
	}
	tradeBookReader interface {
		OpenTrades(ctx context.Context) models.TradeBook
	}
)

// AutopilotConfig holds the loop settings.
type AutopilotConfig struct {
	Symbols            []string
	Interval           time.Duration
	ExecutionThreshold float64
	CycleTimeout       time.Duration
}

type session struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Autopilot repeats the signal/decide/execute cycle for every configured
// symbol while the store's autopilot flag is on.
type Autopilot struct {
	cfg       AutopilotConfig
	store     *StrategyStore
	signals   signalObtainer
	exec      executionSubmitter
	trades    tradeBookReader
	locks     cache.Service
	publisher domrepo.EventPublisher
	metrics   domrepo.Metrics
	log       *logger.Logger
	now       func() time.Time

	mu      sync.RWMutex
	reports map[string]models.CycleReport
}

// NewAutopilot wires the loop. locks may be nil, in which case no cross
// replica cycle lock is taken. The lock is held for the duration of a cycle
// and bounded by CycleTimeout.
func NewAutopilot(
	cfg AutopilotConfig,
	store *StrategyStore,
	signals *SignalProvider,
	exec *ExecutionService,
	account *AccountService,
	locks cache.Service,
	publisher domrepo.EventPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *Autopilot {
	return newAutopilot(cfg, store, signals, exec, account, locks, publisher, metrics, log)
}

func newAutopilot(
	cfg AutopilotConfig,
	store *StrategyStore,
	signals signalObtainer,
	exec executionSubmitter,
	trades tradeBookReader,
	locks cache.Service,
	publisher domrepo.EventPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *Autopilot {
	if cfg.Interval <= 0 {
		cfg.Interval = 8 * time.Second
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = 30 * time.Second
	}
	return &Autopilot{
		cfg:       cfg,
		store:     store,
		signals:   signals,
		exec:      exec,
		trades:    trades,
		locks:     locks,
		publisher: publisher,
		metrics:   metrics,
		log:       log.With(logger.String("component", "autopilot")),
		now:       time.Now,
		reports:   make(map[string]models.CycleReport),
	}
}

// Run supervises loop sessions until ctx is done. Each engage starts a new
// session once the previous one has fully stopped, so a symbol never has two
// loops at once.
func (a *Autopilot) Run(ctx context.Context) error {
	updates := a.store.Subscribe()

	var cur, prev *session
	if a.store.AutopilotEnabled() {
		cur = a.engage(ctx, nil)
	}
	a.metrics.SetAutopilotEngaged(cur != nil)

	for {
		select {
		case <-ctx.Done():
			for _, s := range []*session{cur, prev} {
				if s != nil {
					s.cancel()
					<-s.done
				}
			}
			return nil
		case on := <-updates:
			a.metrics.SetAutopilotEngaged(on)
			switch {
			case on && cur == nil:
				cur = a.engage(ctx, prev)
				a.log.Info("autopilot engaged", logger.Strings("symbols", a.cfg.Symbols))
			case !on && cur != nil:
				cur.cancel()
				prev, cur = cur, nil
				a.log.Info("autopilot disengaged")
			}
		}
	}
}

func (a *Autopilot) engage(app context.Context, prev *session) *session {
	sctx, cancel := context.WithCancel(app)
	s := &session{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(s.done)
		if prev != nil {
			<-prev.done
		}
		var wg sync.WaitGroup
		for _, sym := range a.cfg.Symbols {
			wg.Add(1)
			go func(symbol string) {
				defer wg.Done()
				a.loop(app, sctx, symbol)
			}(sym)
		}
		wg.Wait()
	}()
	return s
}

// loop runs one cycle now and then one per interval until the session ends.
// Cycles use the app context so an in-flight call is allowed to finish.
func (a *Autopilot) loop(app, sess context.Context, symbol string) {
	if sess.Err() != nil {
		return
	}
	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	for {
		a.RunCycle(app, sess, symbol)
		select {
		case <-sess.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunCycle performs a single iteration for symbol. sess is checked right
// before executing; a cancelled session discards the signal.
func (a *Autopilot) RunCycle(app, sess context.Context, symbol string) (report models.CycleReport) {
	report = models.CycleReport{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		StartedAt: a.now(),
	}
	log := a.log.With(logger.String("symbol", symbol), logger.String("cycle", report.ID))

	defer func() {
		if r := recover(); r != nil {
			a.metrics.RecordError("autopilot_panic")
			log.Error("cycle panicked", logger.Any("panic", r))
			report.Outcome = models.OutcomeDiscarded
			report.Error = fmt.Sprintf("panic: %v", r)
		}
		report.FinishedAt = a.now()
		a.metrics.RecordCycle(symbol, report.Outcome)
		a.metrics.RecordLatency("autopilot_cycle", report.FinishedAt.Sub(report.StartedAt).Seconds())
		a.mu.Lock()
		a.reports[symbol] = report
		a.mu.Unlock()
		log.Debug("cycle finished", logger.String("outcome", string(report.Outcome)))
	}()

	snap := a.store.Snapshot()
	if !snap.Autopilot {
		report.Outcome = models.OutcomeSkippedDisengaged
		return report
	}

	ctx, cancel := context.WithTimeout(app, a.cfg.CycleTimeout)
	defer cancel()

	if a.locks != nil {
		key := cache.Key("autopilot", "lock", symbol)
		ok, err := a.locks.TryLock(ctx, key, a.cfg.CycleTimeout)
		if err != nil || !ok {
			if err != nil {
				report.Error = err.Error()
				log.Warn("cycle lock failed", logger.Error(err))
			}
			report.Outcome = models.OutcomeDiscarded
			return report
		}
		defer a.unlock(app, key, a.now(), log)
	}

	sig, err := a.signals.Obtain(ctx, symbol, snap.Params)
	if err != nil {
		log.Warn("no signal this cycle", logger.Error(err))
		report.Outcome = models.OutcomeNoSignal
		report.Error = err.Error()
		return report
	}
	report.Signal = &sig
	if perr := a.publisher.PublishSignal(ctx, sig); perr != nil {
		a.metrics.RecordError("publish_signal")
		log.Warn("publish signal event", logger.Error(perr))
	}

	switch {
	case sig.Action == models.ActionHold:
		report.Outcome = models.OutcomeHold
		return report
	case sig.Confidence < a.cfg.ExecutionThreshold:
		report.Outcome = models.OutcomeBelowThreshold
		return report
	}

	if book := a.trades.OpenTrades(ctx); book.Live && len(book.Trades) >= snap.Params.MaxConcurrentPositions {
		log.Info("position cap reached",
			logger.Int("open", len(book.Trades)),
			logger.Int("max", snap.Params.MaxConcurrentPositions),
		)
		report.Outcome = models.OutcomePositionCap
		return report
	}

	if sess.Err() != nil || !a.store.AutopilotEnabled() {
		report.Outcome = models.OutcomeDiscarded
		return report
	}

	res := a.exec.Submit(ctx, models.NewExecutionRequest(sig, snap.Params), models.OriginAutopilot)
	report.Result = &res
	if res.Filled() {
		report.Outcome = models.OutcomeExecuted
	} else {
		report.Outcome = models.OutcomeExecutionFailed
	}
	return report
}

// unlock releases the cycle lock unless its TTL already ran out, in which case
// the key may belong to another replica by now.
func (a *Autopilot) unlock(app context.Context, key string, acquired time.Time, log *logger.Logger) {
	if a.now().Sub(acquired) >= a.cfg.CycleTimeout {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(app), time.Second)
	defer cancel()
	if err := a.locks.Unlock(ctx, key); err != nil {
		log.Warn("release cycle lock", logger.Error(err))
	}
}

// Reports returns the latest cycle report of each configured symbol that has
// run at least once, in configuration order.
func (a *Autopilot) Reports() []models.CycleReport {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.CycleReport, 0, len(a.cfg.Symbols))
	for _, s := range a.cfg.Symbols {
		if r, ok := a.reports[s]; ok {
			out = append(out, r)
		}
	}
	return out
}

// View is the externally visible state.
func (a *Autopilot) View() models.AutopilotView {
	return models.AutopilotView{
		Enabled:  a.store.AutopilotEnabled(),
		Symbols:  append([]string(nil), a.cfg.Symbols...),
		Interval: a.cfg.Interval.String(),
		Cycles:   a.Reports(),
	}
}
