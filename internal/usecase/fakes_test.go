package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"FxPilot/internal/domain/models"
	"FxPilot/pkg/metrics"
)

var errBridgeDown = errors.New("dial tcp: connection refused")

type fakeMarket struct {
	sig     models.Signal
	err     error
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (f *fakeMarket) FetchSignal(ctx context.Context, symbol string, params models.StrategyParameters) (models.Signal, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return models.Signal{}, f.err
	}
	s := f.sig
	s.Symbol = symbol
	return s, nil
}

type fakeObtainer struct {
	sig     models.Signal
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeObtainer) Obtain(ctx context.Context, symbol string, params models.StrategyParameters) (models.Signal, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return models.Signal{}, f.err
	}
	s := f.sig
	s.Symbol = symbol
	return s, nil
}

type fakeExecutor struct {
	mu     sync.Mutex
	reqs   []models.ExecutionRequest
	ticket string
	panics bool
}

func (f *fakeExecutor) Execute(ctx context.Context, req models.ExecutionRequest) models.ExecutionResult {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.panics {
		panic("bridge exploded")
	}
	if f.ticket == "" {
		return models.FailedResult(req, models.BridgeDiagnostic, errBridgeDown)
	}
	return models.FilledResult(req, f.ticket)
}

func (f *fakeExecutor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

type fakeBroker struct {
	status models.BrokerStatus
	acct   models.AccountMetrics
	trades []models.OpenTrade
	err    error
}

func (f *fakeBroker) Status(context.Context) (models.BrokerStatus, error) {
	return f.status, f.err
}

func (f *fakeBroker) AccountMetrics(context.Context) (models.AccountMetrics, error) {
	return f.acct, f.err
}

func (f *fakeBroker) OpenTrades(context.Context) ([]models.OpenTrade, error) {
	return f.trades, f.err
}

type fakeBook struct {
	book models.TradeBook
}

func (f fakeBook) OpenTrades(context.Context) models.TradeBook { return f.book }

type fakePublisher struct {
	mu      sync.Mutex
	signals []models.Signal
	results []models.ExecutionResult
}

func (p *fakePublisher) PublishSignal(_ context.Context, sig models.Signal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signals = append(p.signals, sig)
	return nil
}

func (p *fakePublisher) PublishExecution(_ context.Context, res models.ExecutionResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, res)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

// countingMetrics counts the observations tests care about.
type countingMetrics struct {
	metrics.Nop
	mu        sync.Mutex
	fallbacks int
	cycles    map[models.CycleOutcome]int
	engaged   bool
	connected []bool
	positions int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{cycles: map[models.CycleOutcome]int{}}
}

func (m *countingMetrics) RecordFallback(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks++
}

func (m *countingMetrics) RecordCycle(_ string, o models.CycleOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles[o]++
}

func (m *countingMetrics) SetAutopilotEngaged(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engaged = on
}

func (m *countingMetrics) RecordBrokerConnected(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = append(m.connected, on)
}

func (m *countingMetrics) RecordOpenPositions(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions = n
}

func (m *countingMetrics) snapshot() (fallbacks int, cycles map[models.CycleOutcome]int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[models.CycleOutcome]int, len(m.cycles))
	for k, v := range m.cycles {
		out[k] = v
	}
	return m.fallbacks, out
}

func buySignal(conf float64) models.Signal {
	return models.Signal{
		Action:     models.ActionBuy,
		Confidence: conf,
		Price:      1.085,
		StopLoss:   1.083,
		TakeProfit: 1.0894,
		Timestamp:  time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Source:     models.SourceMarket,
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(d time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
