package models

import "time"

// BrokerStatus describes the bridge link. Nil pointers mean unknown.
type BrokerStatus struct {
	Connected bool       `json:"connected"`
	AccountID *string    `json:"accountId"`
	Broker    *string    `json:"broker"`
	LastSync  *time.Time `json:"lastSync"`
}

// DisconnectedStatus is reported when the bridge cannot be reached.
func DisconnectedStatus() BrokerStatus { return BrokerStatus{} }

type AccountMetrics struct {
	Balance        float64 `json:"balance"`
	Equity         float64 `json:"equity"`
	DailyReturnPct float64 `json:"dailyReturnPct"`
	WinRate        float64 `json:"winRate"`
	MaxDrawdownPct float64 `json:"maxDrawdownPct"`
	Live           bool    `json:"live"`
}

// FallbackAccountMetrics is the demo account shown while the bridge is down.
func FallbackAccountMetrics() AccountMetrics {
	return AccountMetrics{
		Balance:        100000,
		Equity:         100420,
		DailyReturnPct: 1.8,
		WinRate:        68,
		MaxDrawdownPct: 4.2,
	}
}

type OpenTrade struct {
	Ticket       string    `json:"ticket"`
	Symbol       string    `json:"symbol"`
	Action       Action    `json:"action"`
	Volume       float64   `json:"volume"`
	OpenPrice    float64   `json:"openPrice"`
	CurrentPrice float64   `json:"currentPrice"`
	Profit       float64   `json:"profit"`
	OpenedAt     time.Time `json:"openedAt"`
}

// TradeBook is the list of open trades plus whether it came from the broker.
type TradeBook struct {
	Trades []OpenTrade `json:"trades"`
	Live   bool        `json:"live"`
}

// FallbackTrades returns the demo positions, timestamped relative to now.
func FallbackTrades(now time.Time) []OpenTrade {
	return []OpenTrade{
		{
			Ticket:       "N/A-1",
			Symbol:       "EURUSD",
			Action:       ActionBuy,
			Volume:       1.1,
			OpenPrice:    1.07321,
			CurrentPrice: 1.07832,
			Profit:       562.24,
			OpenedAt:     now.Add(-time.Hour),
		},
		{
			Ticket:       "N/A-2",
			Symbol:       "GBPUSD",
			Action:       ActionSell,
			Volume:       0.5,
			OpenPrice:    1.24845,
			CurrentPrice: 1.24410,
			Profit:       217.88,
			OpenedAt:     now.Add(-5 * time.Hour),
		},
	}
}
