package strategy

import (
	"math"

	"FxPilot/internal/domain/models"
)

// SMA returns the arithmetic mean of Close over the trailing window bars.
// It returns 0 when window is not positive or exceeds len(bars).
func SMA(bars []models.PriceBar, window int) float64 {
	if window <= 0 || len(bars) < window {
		return 0
	}
	sum := 0.0
	for i := len(bars) - window; i < len(bars); i++ {
		sum += bars[i].Close
	}
	return sum / float64(window)
}

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRange(bar models.PriceBar, prevClose float64) float64 {
	tr := bar.High - bar.Low
	if d := math.Abs(bar.High - prevClose); d > tr {
		tr = d
	}
	if d := math.Abs(bar.Low - prevClose); d > tr {
		tr = d
	}
	return tr
}

// ATR averages the true range over the trailing window bars. The bar right
// before the window supplies the first previous close, so len(bars) must be
// greater than window; otherwise the first bar's own range is used.
func ATR(bars []models.PriceBar, window int) float64 {
	if window <= 0 || len(bars) < window {
		return 0
	}
	start := len(bars) - window
	sum := 0.0
	for i := start; i < len(bars); i++ {
		if i == 0 {
			sum += bars[i].High - bars[i].Low
			continue
		}
		sum += TrueRange(bars[i], bars[i-1].Close)
	}
	return sum / float64(window)
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
