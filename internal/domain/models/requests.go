package models

// Requests for the HTTP endpoints. Tags drive binding, defaults and validation.

type SignalRequest struct {
	Symbol string `query:"symbol" json:"symbol" default:"EURUSD" validate:"required,uppercase,min=6,max=10"`
}

type WatchlistRequest struct {
	Symbols string `query:"symbols" json:"symbols" default:"EURUSD,GBPUSD,USDJPY,AUDUSD,XAUUSD" validate:"required"`
}

type AutopilotRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type ExecuteRequest struct {
	Symbol     string   `json:"symbol" validate:"required"`
	Action     string   `json:"action" validate:"required,oneof=BUY SELL HOLD"`
	TakeProfit *float64 `json:"takeProfit" validate:"required"`
	StopLoss   *float64 `json:"stopLoss" validate:"required"`
	Confidence *float64 `json:"confidence" validate:"required"`
	Timestamp  string   `json:"timestamp"`
}

type ExecutionsRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}
