package models

import "time"

// PriceBar is one OHLCV sample. Sequences are ordered by Time, oldest first.
type PriceBar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Tick is a single trade print from a live feed.
type Tick struct {
	Symbol string
	Time   time.Time
	Price  float64
	Volume float64
}
