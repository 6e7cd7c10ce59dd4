package models

import "time"

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Valid reports whether a is one of BUY, SELL or HOLD.
func (a Action) Valid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionHold:
		return true
	default:
		return false
	}
}

// SignalSource tells whether a signal was derived from real market data or
// from locally synthesized bars.
type SignalSource string

const (
	SourceMarket    SignalSource = "market"
	SourceSynthetic SignalSource = "synthetic"
)

// Signal is a trading recommendation. It is never mutated after creation.
type Signal struct {
	Symbol     string       `json:"symbol"`
	Action     Action       `json:"action"`
	Confidence float64      `json:"confidence"`
	StopLoss   float64      `json:"stopLoss"`
	TakeProfit float64      `json:"takeProfit"`
	Price      float64      `json:"price"`
	Timestamp  time.Time    `json:"timestamp"`
	Source     SignalSource `json:"source"`
}

// Synthetic reports whether the signal was computed from fallback bars.
func (s Signal) Synthetic() bool { return s.Source == SourceSynthetic }
