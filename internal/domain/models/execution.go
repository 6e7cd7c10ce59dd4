package models

import "time"

// BridgeDiagnostic is the operator hint attached to every failed broker
// submission.
const BridgeDiagnostic = "Execution fallback - check MetaTrader bridge credentials."

type ExecutionStatus string

const (
	ExecutionFilled ExecutionStatus = "filled"
	ExecutionFailed ExecutionStatus = "failed"
)

// ExecutionOrigin tells who asked for an execution.
type ExecutionOrigin string

const (
	OriginAutopilot ExecutionOrigin = "autopilot"
	OriginManual    ExecutionOrigin = "manual"
)

// ExecutionRequest is an order proposal derived from a Signal.
type ExecutionRequest struct {
	Symbol          string    `json:"symbol"`
	Action          Action    `json:"action"`
	StopLoss        float64   `json:"stopLoss"`
	TakeProfit      float64   `json:"takeProfit"`
	Confidence      float64   `json:"confidence"`
	Timestamp       time.Time `json:"timestamp"`
	RiskPerTradePct float64   `json:"riskPerTradePct,omitempty"`
}

// NewExecutionRequest builds a request from a signal and the parameter
// snapshot that produced it.
func NewExecutionRequest(sig Signal, params StrategyParameters) ExecutionRequest {
	return ExecutionRequest{
		Symbol:          sig.Symbol,
		Action:          sig.Action,
		StopLoss:        sig.StopLoss,
		TakeProfit:      sig.TakeProfit,
		Confidence:      sig.Confidence,
		Timestamp:       sig.Timestamp,
		RiskPerTradePct: params.RiskPerTradePct,
	}
}

// ExecutionResult is either a ticket (Status filled) or a failure with a
// human readable Diagnostic. Adapters never return anything else.
type ExecutionResult struct {
	ID          string           `json:"id"`
	Status      ExecutionStatus  `json:"status"`
	Ticket      string           `json:"ticket,omitempty"`
	Diagnostic  string           `json:"diagnostic,omitempty"`
	Cause       string           `json:"cause,omitempty"`
	Origin      ExecutionOrigin  `json:"origin"`
	Request     ExecutionRequest `json:"request"`
	SubmittedAt time.Time        `json:"submittedAt"`
}

// Filled reports whether the broker accepted the order.
func (r ExecutionResult) Filled() bool { return r.Status == ExecutionFilled && r.Ticket != "" }

// FilledResult builds a successful result.
func FilledResult(req ExecutionRequest, ticket string) ExecutionResult {
	return ExecutionResult{Status: ExecutionFilled, Ticket: ticket, Request: req}
}

// FailedResult builds a failed result. cause may be nil.
func FailedResult(req ExecutionRequest, diagnostic string, cause error) ExecutionResult {
	r := ExecutionResult{Status: ExecutionFailed, Diagnostic: diagnostic, Request: req}
	if cause != nil {
		r.Cause = cause.Error()
	}
	return r
}
