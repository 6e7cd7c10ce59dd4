package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FxPilot/internal/domain/models"
	"FxPilot/internal/domain/repository"
)

type orderPayload struct {
	Symbol          string        `json:"symbol"`
	Action          models.Action `json:"action"`
	StopLoss        json.Number   `json:"stopLoss"`
	TakeProfit      json.Number   `json:"takeProfit"`
	Confidence      float64       `json:"confidence"`
	RiskPerTradePct float64       `json:"riskPerTradePct,omitempty"`
	Timestamp       string        `json:"timestamp"`
}

type orderResponse struct {
	Ticket ticketID `json:"ticket"`
}

// ticketID accepts a broker ticket sent either as a JSON string or as a JSON
// number. MetaTrader bridges usually send the integer form.
type ticketID string

func (t *ticketID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = ticketID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("ticket %s: %w", b, err)
	}
	*t = ticketID(n.String())
	return nil
}

// Executor submits orders through POST /orders.
type Executor struct {
	c *Client
}

var _ repository.Executor = (*Executor)(nil)

func NewExecutor(c *Client) *Executor {
	return &Executor{c: c}
}

// Execute never returns an error and never panics. Every failure becomes a
// failed result carrying the bridge diagnostic.
func (e *Executor) Execute(ctx context.Context, req models.ExecutionRequest) (res models.ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			res = models.FailedResult(req, models.BridgeDiagnostic, fmt.Errorf("%w: panic: %v", models.ErrExecutionFailure, r))
		}
	}()

	if e.c == nil {
		return models.FailedResult(req, models.BridgeDiagnostic, models.ErrCollaboratorUnavailable)
	}

	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	payload := orderPayload{
		Symbol:          req.Symbol,
		Action:          req.Action,
		StopLoss:        json.Number(Quantize(req.Symbol, req.StopLoss).String()),
		TakeProfit:      json.Number(Quantize(req.Symbol, req.TakeProfit).String()),
		Confidence:      req.Confidence,
		RiskPerTradePct: req.RiskPerTradePct,
		Timestamp:       ts.UTC().Format(time.RFC3339),
	}

	var out orderResponse
	if err := e.c.PostJSON(ctx, "/orders", payload, &out); err != nil {
		return models.FailedResult(req, models.BridgeDiagnostic, fmt.Errorf("%w: %v", models.ErrExecutionFailure, err))
	}
	if out.Ticket == "" {
		return models.FailedResult(req, models.BridgeDiagnostic, fmt.Errorf("%w: bridge returned no ticket", models.ErrExecutionFailure))
	}
	return models.FilledResult(req, string(out.Ticket))
}
