package model

import "time"

// Direction labels the side of a structural pattern.
type Direction string

const (
	DirectionBullish Direction = "BULLISH"
	DirectionBearish Direction = "BEARISH"
	DirectionNone    Direction = "NONE"
)

// RSIResult holds a Wilder-smoothed RSI reading.
type RSIResult struct {
	Value        float64
	IsOversold   bool
	IsOverbought bool
}

// BollingerBandsResult holds a Bollinger Bands reading at the series end.
type BollingerBandsResult struct {
	Upper        float64
	Middle       float64
	Lower        float64
	CurrentPrice float64
	IsAboveUpper bool
	IsBelowLower bool
	PercentB     float64 // 0 = lower band, 1 = upper band
}

// MACDResult holds the MACD line, signal line and histogram.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// FVGResult describes the most recent unfilled fair value gap, if any.
// A not-found result carries zero values in every numeric field.
type FVGResult struct {
	Found          bool
	Direction      Direction
	GapTop         float64
	GapBottom      float64
	StopLoss       float64 // momentum candle low (bullish) / high (bearish)
	TakeProfit     float64 // momentum candle high (bullish) / low (bearish)
	MomentumCandle time.Time
	GapSize        float64
	GapPercent     float64
}

// OrderBlockResult describes the most recent qualifying order block.
type OrderBlockResult struct {
	Found      bool
	Direction  Direction
	Level      float64
	ZoneTop    float64
	ZoneBottom float64
	Strength   int // consecutive-candle run length
	CandleTime time.Time
}

// PoolType labels a liquidity pool's swing side.
type PoolType string

const (
	PoolSwingHigh PoolType = "SWING_HIGH"
	PoolSwingLow  PoolType = "SWING_LOW"
	PoolNone      PoolType = "NONE"
)

// LiquidityPoolResult describes the swing level nearest the current price.
type LiquidityPoolResult struct {
	Found      bool
	PoolType   PoolType
	Level      float64
	ZoneTop    float64
	ZoneBottom float64
	// TouchCount is a placeholder: historical re-touches of the level are
	// not accumulated, so any found pool reports 1.
	TouchCount int
}
