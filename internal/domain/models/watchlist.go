package models

import "time"

// WatchlistSignals is the result of scanning several symbols at once.
// Symbols that failed appear in Errors instead of Signals.
type WatchlistSignals struct {
	Timestamp time.Time         `json:"timestamp"`
	Signals   map[string]Signal `json:"signals"`
	Errors    map[string]string `json:"errors,omitempty"`
}
