package metrics

import (
	"FxPilot/internal/domain/models"
	"FxPilot/internal/domain/repository"
)

// Nop discards every observation.
type Nop struct{}

var _ repository.Metrics = Nop{}

func (Nop) RecordCycle(string, models.CycleOutcome) {}
func (Nop) RecordSignal(models.Signal)              {}
func (Nop) RecordFallback(string)                   {}
func (Nop) RecordExecution(models.ExecutionResult)  {}
func (Nop) RecordError(string)                      {}
func (Nop) RecordLatency(string, float64)           {}
func (Nop) SetAutopilotEngaged(bool)                {}
func (Nop) RecordLastPrice(string, float64)         {}
func (Nop) RecordAccount(models.AccountMetrics)     {}
func (Nop) RecordBrokerConnected(bool)              {}
func (Nop) RecordOpenPositions(int)                 {}
