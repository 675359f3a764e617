package model

import "fmt"

// VolatilityRegime buckets ATR-percent against its own trailing history.
type VolatilityRegime string

const (
	VolatilityLow    VolatilityRegime = "LOW"
	VolatilityMedium VolatilityRegime = "MEDIUM"
	VolatilityHigh   VolatilityRegime = "HIGH"
)

// TrendRegime buckets ADX trend strength and direction.
type TrendRegime string

const (
	TrendStrongUp   TrendRegime = "STRONG_UP"
	TrendWeakUp     TrendRegime = "WEAK_UP"
	TrendRanging    TrendRegime = "RANGING"
	TrendWeakDown   TrendRegime = "WEAK_DOWN"
	TrendStrongDown TrendRegime = "STRONG_DOWN"
)

// MarketState is the regime classifier's output, derived fresh each call.
type MarketState struct {
	Volatility             VolatilityRegime
	Trend                  TrendRegime
	ATR                    float64
	ATRPercent             float64
	ADX                    float64
	RSI                    float64
	RecommendedStrategy    string
	PositionSizeMultiplier float64
}

func (m MarketState) String() string {
	return fmt.Sprintf("volatility=%s (ATR %.2f%%) trend=%s (ADX %.1f) RSI=%.1f → %s x%.1f",
		m.Volatility, m.ATRPercent, m.Trend, m.ADX, m.RSI,
		m.RecommendedStrategy, m.PositionSizeMultiplier)
}
