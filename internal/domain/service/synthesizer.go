package service

import (
	"time"

	"FxPilot/internal/domain/models"
)

// BarSynthesizer produces a plausible bar series when no market data is
// available. Output shape is deterministic, noise comes from its random source.
// The series is never shorter than minBars.
type BarSynthesizer interface {
	Synthesize(symbol string, end time.Time, minBars int) []models.PriceBar
}
