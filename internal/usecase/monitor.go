package usecase

import (
	"context"
	"sync"
	"time"

	domrepo "FxPilot/internal/domain/repository"
	"FxPilot/pkg/logger"
)

type MonitorConfig struct {
	MetricsInterval time.Duration
	TradesInterval  time.Duration
	StatusInterval  time.Duration
}

// Monitor polls the broker in the background regardless of the autopilot
// state and feeds the account gauges.
type Monitor struct {
	cfg     MonitorConfig
	account *AccountService
	metrics domrepo.Metrics
	log     *logger.Logger

	mu        sync.Mutex
	connected *bool
}

func NewMonitor(cfg MonitorConfig, account *AccountService, metrics domrepo.Metrics, log *logger.Logger) *Monitor {
	if cfg.MetricsInterval <= 0 {
		cfg.MetricsInterval = 10 * time.Second
	}
	if cfg.TradesInterval <= 0 {
		cfg.TradesInterval = 12 * time.Second
	}
	if cfg.StatusInterval <= 0 {
		cfg.StatusInterval = 15 * time.Second
	}
	return &Monitor{
		cfg:     cfg,
		account: account,
		metrics: metrics,
		log:     log.With(logger.String("component", "monitor")),
	}
}

// Start polls until ctx is done. Each poll runs once immediately.
func (m *Monitor) Start(ctx context.Context) {
	var wg sync.WaitGroup
	poll := func(every time.Duration, fn func(context.Context)) {
		defer wg.Done()
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			fn(ctx)
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}

	wg.Add(3)
	go poll(m.cfg.MetricsInterval, m.pollMetrics)
	go poll(m.cfg.TradesInterval, m.pollTrades)
	go poll(m.cfg.StatusInterval, m.pollStatus)
	wg.Wait()
}

func (m *Monitor) pollMetrics(ctx context.Context) {
	m.metrics.RecordAccount(m.account.Metrics(ctx))
}

func (m *Monitor) pollTrades(ctx context.Context) {
	book := m.account.OpenTrades(ctx)
	if book.Live {
		m.metrics.RecordOpenPositions(len(book.Trades))
	}
}

func (m *Monitor) pollStatus(ctx context.Context) {
	st := m.account.Status(ctx)
	m.metrics.RecordBrokerConnected(st.Connected)

	m.mu.Lock()
	changed := m.connected == nil || *m.connected != st.Connected
	m.connected = &st.Connected
	m.mu.Unlock()

	if !changed {
		return
	}
	if st.Connected {
		fields := []logger.Field{}
		if st.Broker != nil {
			fields = append(fields, logger.String("broker", *st.Broker))
		}
		if st.AccountID != nil {
			fields = append(fields, logger.String("account", *st.AccountID))
		}
		m.log.Info("broker connected", fields...)
		return
	}
	m.log.Warn("broker disconnected")
}

// Connected reports the last polled bridge state. It is false before the
// first poll.
func (m *Monitor) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected != nil && *m.connected
}
