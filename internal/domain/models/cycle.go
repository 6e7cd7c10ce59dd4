package models

import "time"

// CycleOutcome is what a single autopilot iteration ended with.
type CycleOutcome string

const (
	OutcomeExecuted          CycleOutcome = "executed"
	OutcomeExecutionFailed   CycleOutcome = "execution_failed"
	OutcomeHold              CycleOutcome = "hold"
	OutcomeBelowThreshold    CycleOutcome = "below_threshold"
	OutcomePositionCap       CycleOutcome = "position_cap"
	OutcomeDiscarded         CycleOutcome = "discarded"
	OutcomeNoSignal          CycleOutcome = "no_signal"
	OutcomeSkippedDisengaged CycleOutcome = "skipped_disengaged"
)

// CycleReport records one autopilot iteration for a symbol.
type CycleReport struct {
	ID         string           `json:"id"`
	Symbol     string           `json:"symbol"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Outcome    CycleOutcome     `json:"outcome"`
	Signal     *Signal          `json:"signal,omitempty"`
	Result     *ExecutionResult `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// AutopilotView is the externally visible autopilot state.
type AutopilotView struct {
	Enabled  bool          `json:"enabled"`
	Symbols  []string      `json:"symbols"`
	Interval string        `json:"interval"`
	Cycles   []CycleReport `json:"cycles"`
}
