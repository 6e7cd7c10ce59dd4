package repository

import (
	"context"

	"FxPilot/internal/domain/models"
)

// BarSource provides read-only access to recent price bars.
type BarSource interface {
	// LatestBars returns up to n most recent bars, oldest first.
	LatestBars(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.PriceBar, error)
}
