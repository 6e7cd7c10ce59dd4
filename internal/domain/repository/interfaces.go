package repository

import (
	"context"

	"FxPilot/internal/domain/models"
)

// MarketSignalSource is the external market-data collaborator. Any error is
// treated as the collaborator being unavailable.
type MarketSignalSource interface {
	FetchSignal(ctx context.Context, symbol string, params models.StrategyParameters) (models.Signal, error)
}

// Executor submits orders to the broker. Implementations translate every
// failure into a failed ExecutionResult and never panic.
type Executor interface {
	Execute(ctx context.Context, req models.ExecutionRequest) models.ExecutionResult
}

// Broker exposes read-only account state from the broker bridge.
type Broker interface {
	Status(ctx context.Context) (models.BrokerStatus, error)
	AccountMetrics(ctx context.Context) (models.AccountMetrics, error)
	OpenTrades(ctx context.Context) ([]models.OpenTrade, error)
}

type TickStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// EventPublisher fans signals and execution results out to downstream consumers.
type EventPublisher interface {
	PublishSignal(ctx context.Context, sig models.Signal) error
	PublishExecution(ctx context.Context, res models.ExecutionResult) error
	Close() error
}

type Metrics interface {
	RecordCycle(symbol string, outcome models.CycleOutcome)
	RecordSignal(sig models.Signal)
	RecordFallback(kind string)
	RecordExecution(res models.ExecutionResult)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	SetAutopilotEngaged(engaged bool)
	RecordLastPrice(symbol string, price float64)
	RecordAccount(m models.AccountMetrics)
	RecordBrokerConnected(connected bool)
	RecordOpenPositions(n int)
}
