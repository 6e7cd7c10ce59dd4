package metrics

import (
	"FxPilot/internal/domain/models"
	"FxPilot/internal/domain/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements repository.Metrics using Prometheus.
type Recorder struct {
	cycles          *prometheus.CounterVec
	signals         *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	executions      *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	confidence      *prometheus.GaugeVec
	lastPrice       *prometheus.GaugeVec
	engaged         prometheus.Gauge
	balance         prometheus.Gauge
	equity          prometheus.Gauge
	brokerConnected prometheus.Gauge
	openPositions   prometheus.Gauge
}

var _ repository.Metrics = (*Recorder)(nil)

// New registers the fxpilot collectors on reg. Pass a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cycles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fxpilot_autopilot_cycles_total",
			Help: "Autopilot cycles by symbol and outcome",
		}, []string{"symbol", "outcome"}),
		signals: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fxpilot_signals_total",
			Help: "Signals produced by action and source",
		}, []string{"symbol", "action", "source"}),
		fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fxpilot_fallbacks_total",
			Help: "Times a collaborator was unavailable and a fallback was used",
		}, []string{"kind"}),
		executions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fxpilot_executions_total",
			Help: "Order submissions by symbol, status and origin",
		}, []string{"symbol", "status", "origin"}),
		errorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fxpilot_errors_total",
			Help: "Total number of errors encountered",
		}, []string{"type"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fxpilot_operation_duration_seconds",
			Help:    "Duration of operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		confidence: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fxpilot_signal_confidence",
			Help: "Confidence of the latest signal per symbol",
		}, []string{"symbol"}),
		lastPrice: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fxpilot_last_price",
			Help: "Last recorded price for a symbol",
		}, []string{"symbol"}),
		engaged: f.NewGauge(prometheus.GaugeOpts{
			Name: "fxpilot_autopilot_engaged",
			Help: "1 while the autopilot is engaged",
		}),
		balance: f.NewGauge(prometheus.GaugeOpts{
			Name: "fxpilot_account_balance",
			Help: "Last reported account balance",
		}),
		equity: f.NewGauge(prometheus.GaugeOpts{
			Name: "fxpilot_account_equity",
			Help: "Last reported account equity",
		}),
		brokerConnected: f.NewGauge(prometheus.GaugeOpts{
			Name: "fxpilot_broker_connected",
			Help: "1 while the broker bridge reports a connection",
		}),
		openPositions: f.NewGauge(prometheus.GaugeOpts{
			Name: "fxpilot_open_positions",
			Help: "Open positions reported by the broker",
		}),
	}
}

func (r *Recorder) RecordCycle(symbol string, outcome models.CycleOutcome) {
	r.cycles.WithLabelValues(symbol, string(outcome)).Inc()
}

func (r *Recorder) RecordSignal(sig models.Signal) {
	r.signals.WithLabelValues(sig.Symbol, string(sig.Action), string(sig.Source)).Inc()
	r.confidence.WithLabelValues(sig.Symbol).Set(sig.Confidence)
	r.lastPrice.WithLabelValues(sig.Symbol).Set(sig.Price)
}

func (r *Recorder) RecordFallback(kind string) {
	r.fallbacks.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordExecution(res models.ExecutionResult) {
	r.executions.WithLabelValues(res.Request.Symbol, string(res.Status), string(res.Origin)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) SetAutopilotEngaged(engaged bool) {
	r.engaged.Set(boolGauge(engaged))
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) RecordAccount(m models.AccountMetrics) {
	r.balance.Set(m.Balance)
	r.equity.Set(m.Equity)
}

func (r *Recorder) RecordBrokerConnected(connected bool) {
	r.brokerConnected.Set(boolGauge(connected))
}

func (r *Recorder) RecordOpenPositions(n int) {
	r.openPositions.Set(float64(n))
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
