package strategy

import (
	"fmt"
	"math"

	"CryptoSentry/internal/indicator"
	"CryptoSentry/internal/model"
)

const fvgName = "FVG"

// FVGConfig tunes the retracement strategy.
type FVGConfig struct {
	MinGapPercent     float64
	Lookback          int
	TakeProfitPct     float64
	StopLossPct       float64
	PositionSizeRatio float64
}

func DefaultFVGConfig() FVGConfig {
	return FVGConfig{
		MinGapPercent:     0.1,
		Lookback:          50,
		TakeProfitPct:     1.5,
		StopLossPct:       0.75,
		PositionSizeRatio: 0.15,
	}
}

// FVGStrategy waits for price to retrace into the most recent unfilled
// bullish fair value gap and buys inside the band. The gap's momentum candle
// supplies the stop level; confidence scales with the realized risk/reward.
type FVGStrategy struct {
	cfg FVGConfig
}

func NewFVGStrategy(cfg FVGConfig) *FVGStrategy {
	return &FVGStrategy{cfg: cfg}
}

func (s *FVGStrategy) Name() string          { return fvgName }
func (s *FVGStrategy) PositionSize() float64 { return s.cfg.PositionSizeRatio }

func (s *FVGStrategy) Analyze(ctx Context) model.Signal {
	if len(ctx.Series) == 0 || ctx.Price <= 0 {
		return model.HoldNoData(fvgName, "no candle data")
	}

	if ctx.Position.InPosition {
		return s.checkExit(ctx)
	}

	fvg := indicator.DetectFVG(ctx.Series, s.cfg.MinGapPercent, s.cfg.Lookback)
	if !fvg.Found {
		return model.Hold(fvgName, "no unfilled gap")
	}
	if fvg.Direction == model.DirectionBearish {
		sig := model.Hold(fvgName, "bearish gap, long-only")
		sig.Confidence = 0.4
		return sig
	}

	switch {
	case ctx.Price < fvg.StopLoss:
		// Gap structure already broken down; nothing to buy into.
		sig := model.Hold(fvgName, fmt.Sprintf("price %.2f below gap stop %.2f", ctx.Price, fvg.StopLoss))
		sig.Confidence = 0.4
		return sig

	case ctx.Price >= fvg.GapBottom && ctx.Price <= fvg.GapTop:
		risk := ctx.Price - fvg.StopLoss
		if risk <= 0 {
			return model.Hold(fvgName, "degenerate gap geometry")
		}
		rr := (fvg.TakeProfit - ctx.Price) / risk
		return model.Signal{
			Action:            model.ActionBuy,
			Strategy:          fvgName,
			Confidence:        math.Min(0.9, 0.6+rr*0.1),
			Reason:            fmt.Sprintf("retraced into gap [%.2f, %.2f], rr %.2f", fvg.GapBottom, fvg.GapTop, rr),
			TakeProfit:        s.cfg.TakeProfitPct,
			StopLoss:          s.cfg.StopLossPct,
			PositionSizeRatio: s.cfg.PositionSizeRatio,
		}
	}

	sig := model.Hold(fvgName, fmt.Sprintf("waiting for retracement into [%.2f, %.2f]", fvg.GapBottom, fvg.GapTop))
	sig.Confidence = 0.5
	return sig
}

func (s *FVGStrategy) checkExit(ctx Context) model.Signal {
	rate := profitRate(ctx.Position.EntryPrice, ctx.Price)
	switch {
	case rate >= s.cfg.TakeProfitPct:
		return model.Sell(fvgName, fmt.Sprintf("take profit at %+.2f%%", rate))
	case rate <= -s.cfg.StopLossPct:
		sig := model.Sell(fvgName, fmt.Sprintf("stop loss at %+.2f%%", rate))
		sig.Confidence = 0.9
		return sig
	}

	// The momentum candle's low is the structural stop: a break below it
	// invalidates the gap thesis before the percent stop is reached.
	fvg := indicator.DetectFVG(ctx.Series, s.cfg.MinGapPercent, s.cfg.Lookback)
	if fvg.Found && fvg.Direction == model.DirectionBullish && ctx.Price < fvg.StopLoss {
		sig := model.Sell(fvgName, fmt.Sprintf("price %.2f broke momentum stop %.2f", ctx.Price, fvg.StopLoss))
		sig.Confidence = 0.9
		return sig
	}

	return model.Hold(fvgName, fmt.Sprintf("holding at %+.2f%%", rate))
}
