package strategy

import (
	"fmt"
	"math"

	"FxPilot/internal/domain/models"
)

// Version tags the constant set below. Bump it whenever a constant changes so
// recorded signals can be traced back to the rules that produced them.
const Version = "sma-crossover/v1"

const (
	// ActivationThreshold is the relative MA spread a crossover must exceed
	// before it becomes BUY or SELL.
	ActivationThreshold = 0.0002
	// ReferenceSpread is the relative spread at which confidence saturates at 1.
	ReferenceSpread = 0.002
)

// ComputeSignal turns bars into a recommendation using a short/long moving
// average crossover with ATR sized stops. It has no side effects and the
// result only depends on its arguments.
func ComputeSignal(symbol string, bars []models.PriceBar, params models.StrategyParameters) (models.Signal, error) {
	if params.ShortWindow < 1 || params.ShortWindow >= params.LongWindow {
		return models.Signal{}, &models.ValidationError{Violations: []models.FieldViolation{{
			Field:   "shortWindow",
			Rule:    "ltfield",
			Param:   "longWindow",
			Message: fmt.Sprintf("shortWindow (%d) must be positive and less than longWindow (%d)", params.ShortWindow, params.LongWindow),
		}}}
	}
	if len(bars) < params.LongWindow {
		return models.Signal{}, fmt.Errorf("%s: have %d bars, need %d: %w", symbol, len(bars), params.LongWindow, models.ErrInsufficientHistory)
	}

	for i := len(bars) - params.LongWindow; i < len(bars); i++ {
		b := bars[i]
		if !finite(b.Close) || !finite(b.High) || !finite(b.Low) {
			return models.Signal{}, fmt.Errorf("%s: non-finite price at %s: %w", symbol, b.Time, models.ErrInvalidMarketData)
		}
	}

	maShort := SMA(bars, params.ShortWindow)
	maLong := SMA(bars, params.LongWindow)
	if maLong == 0 {
		return models.Signal{}, fmt.Errorf("%s: long moving average is zero: %w", symbol, models.ErrInvalidMarketData)
	}

	spread := (maShort - maLong) / maLong

	action := models.ActionHold
	switch {
	case spread > ActivationThreshold:
		action = models.ActionBuy
	case spread < -ActivationThreshold:
		action = models.ActionSell
	}

	last := bars[len(bars)-1]
	price := last.Close
	atr := ATR(bars, params.ShortWindow)

	sig := models.Signal{
		Symbol:     symbol,
		Action:     action,
		Confidence: 0,
		StopLoss:   price,
		TakeProfit: price,
		Price:      price,
		Timestamp:  last.Time,
	}
	// HOLD carries no conviction. Summing windows of equal closes can leave a
	// rounding residue in spread, which must not leak into confidence.
	if action != models.ActionHold {
		sig.Confidence = math.Min(1, math.Abs(spread)/ReferenceSpread)
	}
	switch action {
	case models.ActionBuy:
		sig.StopLoss = price - atr
		sig.TakeProfit = price + atr*params.RiskReward
	case models.ActionSell:
		sig.StopLoss = price + atr
		sig.TakeProfit = price - atr*params.RiskReward
	}
	return sig, nil
}
