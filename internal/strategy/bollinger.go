package strategy

import (
	"fmt"
	"math"

	"CryptoSentry/internal/indicator"
	"CryptoSentry/internal/model"
)

const bollingerName = "BOLLINGER"

// BollingerConfig tunes the mean-reversion strategy.
type BollingerConfig struct {
	Period            int
	StdDev            float64
	TakeProfitPct     float64
	StopLossPct       float64
	PositionSizeRatio float64
}

func DefaultBollingerConfig() BollingerConfig {
	return BollingerConfig{
		Period:            20,
		StdDev:            2.0,
		TakeProfitPct:     0.8,
		StopLossPct:       0.4,
		PositionSizeRatio: 0.15,
	}
}

// BollingerStrategy buys below the lower band and sells above the upper one,
// with confidence scaled by how deep %B sits past the band.
type BollingerStrategy struct {
	cfg BollingerConfig
}

func NewBollingerStrategy(cfg BollingerConfig) *BollingerStrategy {
	return &BollingerStrategy{cfg: cfg}
}

func (s *BollingerStrategy) Name() string          { return bollingerName }
func (s *BollingerStrategy) PositionSize() float64 { return s.cfg.PositionSizeRatio }

func (s *BollingerStrategy) Analyze(ctx Context) model.Signal {
	if len(ctx.Series) == 0 || ctx.Price <= 0 {
		return model.HoldNoData(bollingerName, "no candle data")
	}

	bb, ok := indicator.BollingerBands(ctx.Series.Closes(), s.cfg.Period, s.cfg.StdDev)
	if !ok {
		return model.HoldNoData(bollingerName, fmt.Sprintf("need %d closes, have %d", s.cfg.Period, len(ctx.Series)))
	}

	if ctx.Position.InPosition {
		rate := profitRate(ctx.Position.EntryPrice, ctx.Price)
		switch {
		case rate >= s.cfg.TakeProfitPct:
			return model.Sell(bollingerName, fmt.Sprintf("take profit at %+.2f%%", rate))
		case rate <= -s.cfg.StopLossPct:
			return model.Sell(bollingerName, fmt.Sprintf("stop loss at %+.2f%%", rate))
		case bb.IsAboveUpper:
			sig := model.Sell(bollingerName, fmt.Sprintf("price %.2f above upper band %.2f", ctx.Price, bb.Upper))
			sig.Confidence = math.Min(1, math.Max(0.5, bb.PercentB))
			return sig
		}
		return model.Hold(bollingerName, fmt.Sprintf("holding at %+.2f%%", rate))
	}

	if bb.IsBelowLower {
		return model.Signal{
			Action:            model.ActionBuy,
			Strategy:          bollingerName,
			Confidence:        math.Min(1, math.Max(0.5, 1-bb.PercentB)),
			Reason:            fmt.Sprintf("price %.2f below lower band %.2f (%%B %.2f)", ctx.Price, bb.Lower, bb.PercentB),
			TakeProfit:        s.cfg.TakeProfitPct,
			StopLoss:          s.cfg.StopLossPct,
			PositionSizeRatio: s.cfg.PositionSizeRatio,
		}
	}
	return model.Hold(bollingerName, fmt.Sprintf("%%B %.2f inside bands", bb.PercentB))
}
