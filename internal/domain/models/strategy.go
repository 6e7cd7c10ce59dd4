package models

// StrategyParameters is the active strategy configuration. Range rules are
// expressed as validator tags and enforced by the strategy store.
type StrategyParameters struct {
	ShortWindow            int     `json:"shortWindow" yaml:"short_window" default:"12" validate:"gte=4,lte=48,ltfield=LongWindow"`
	LongWindow             int     `json:"longWindow" yaml:"long_window" default:"48" validate:"gte=12,lte=240"`
	RiskReward             float64 `json:"riskReward" yaml:"risk_reward" default:"2.2" validate:"gte=1,lte=5"`
	MaxConcurrentPositions int     `json:"maxConcurrentPositions" yaml:"max_concurrent_positions" default:"4" validate:"gte=1,lte=20"`
	RiskPerTradePct        float64 `json:"riskPerTradePct" yaml:"risk_per_trade_pct" default:"0.8" validate:"gte=0.1,lte=5"`
}

// DefaultStrategy returns the parameters the service starts with when none
// are configured.
func DefaultStrategy() StrategyParameters {
	return StrategyParameters{
		ShortWindow:            12,
		LongWindow:             48,
		RiskReward:             2.2,
		MaxConcurrentPositions: 4,
		RiskPerTradePct:        0.8,
	}
}

// DefaultSymbol is used when a request does not name one.
const DefaultSymbol = "EURUSD"

// SupportedSymbols lists the pairs the desk trades.
var SupportedSymbols = []string{"EURUSD", "GBPUSD", "USDJPY", "AUDUSD", "XAUUSD"}

// IsSupportedSymbol reports whether symbol is in SupportedSymbols.
func IsSupportedSymbol(symbol string) bool {
	for _, s := range SupportedSymbols {
		if s == symbol {
			return true
		}
	}
	return false
}
