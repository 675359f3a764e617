package strategy

import (
	"fmt"
	"math"

	"CryptoSentry/internal/indicator"
	"CryptoSentry/internal/model"
)

const ictName = "ICT"

// ICTConfig tunes the confluence strategy. The profile table in profiles.go
// supplies the observed presets.
type ICTConfig struct {
	ConfluenceThreshold float64 // score cutoff, 0-100
	MinRRRatio          float64
	TakeProfitPct       float64
	StopLossPct         float64
	PositionSizeRatio   float64

	FVGMinGapPercent float64
	FVGLookback      int
	OBLookback       int
	OBMinConsecutive int
	OBMinBodyRatio   float64
	LPLookback       int
	LPSwingPeriod    int
	LPBufferPercent  float64
}

// DefaultICTConfig matches the BALANCED profile.
func DefaultICTConfig() ICTConfig {
	return ICTConfig{
		ConfluenceThreshold: 70,
		MinRRRatio:          2.0,
		TakeProfitPct:       1.5,
		StopLossPct:         0.75,
		PositionSizeRatio:   0.20,
		FVGMinGapPercent:    0.1,
		FVGLookback:         50,
		OBLookback:          50,
		OBMinConsecutive:    3,
		OBMinBodyRatio:      0.5,
		LPLookback:          50,
		LPSwingPeriod:       5,
		LPBufferPercent:     0.5,
	}
}

// ICTStrategy scores the confluence of order block, fair value gap and
// liquidity pool structure and buys when enough align bullishly. The system
// is long-only: bearish structure is reported in the reason but never traded.
type ICTStrategy struct {
	cfg ICTConfig
}

func NewICTStrategy(cfg ICTConfig) *ICTStrategy {
	return &ICTStrategy{cfg: cfg}
}

func (s *ICTStrategy) Name() string          { return ictName }
func (s *ICTStrategy) PositionSize() float64 { return s.cfg.PositionSizeRatio }

func (s *ICTStrategy) Analyze(ctx Context) model.Signal {
	if len(ctx.Series) == 0 || ctx.Price <= 0 {
		return model.HoldNoData(ictName, "no candle data")
	}

	if ctx.Position.InPosition {
		return s.checkExit(ctx)
	}

	ob := indicator.DetectOrderBlock(ctx.Series, s.cfg.OBLookback, s.cfg.OBMinConsecutive, s.cfg.OBMinBodyRatio)
	fvg := indicator.DetectFVG(ctx.Series, s.cfg.FVGMinGapPercent, s.cfg.FVGLookback)
	lp := indicator.DetectLiquidityPool(ctx.Series, s.cfg.LPLookback, s.cfg.LPSwingPeriod, s.cfg.LPBufferPercent)

	score := 0.0
	if ob.Found {
		score += 30
	}
	if fvg.Found {
		score += 30
	}
	if lp.Found {
		score += 20
	}
	if ob.Found && ctx.Price >= ob.ZoneBottom && ctx.Price <= ob.ZoneTop {
		score += 10
	}
	if fvg.Found && ctx.Price >= fvg.GapBottom && ctx.Price <= fvg.GapTop {
		score += 10
	}

	// Order block direction wins when both structures are present.
	direction := model.DirectionNone
	switch {
	case ob.Found:
		direction = ob.Direction
	case fvg.Found:
		direction = fvg.Direction
	}

	if score < s.cfg.ConfluenceThreshold {
		sig := model.Hold(ictName, fmt.Sprintf("confluence %.0f below threshold %.0f", score, s.cfg.ConfluenceThreshold))
		sig.Confidence = 0.5
		return sig
	}

	if direction == model.DirectionBearish {
		sig := model.Hold(ictName, fmt.Sprintf("bearish structure at confluence %.0f, long-only", score))
		sig.Confidence = 0.4
		return sig
	}
	if direction != model.DirectionBullish {
		return model.Hold(ictName, "no directional structure")
	}

	rr := s.cfg.TakeProfitPct / s.cfg.StopLossPct
	if rr < s.cfg.MinRRRatio {
		sig := model.Hold(ictName, fmt.Sprintf("risk/reward %.2f below minimum %.2f", rr, s.cfg.MinRRRatio))
		sig.Confidence = 0.6
		return sig
	}

	return model.Signal{
		Action:            model.ActionBuy,
		Strategy:          ictName,
		Confidence:        math.Min(0.95, 0.7+(score-80)*0.01),
		Reason:            fmt.Sprintf("bullish confluence %.0f/100 (OB %v, FVG %v, LP %v)", score, ob.Found, fvg.Found, lp.Found),
		TakeProfit:        s.cfg.TakeProfitPct,
		StopLoss:          s.cfg.StopLossPct,
		PositionSizeRatio: s.cfg.PositionSizeRatio,
	}
}

func (s *ICTStrategy) checkExit(ctx Context) model.Signal {
	rate := profitRate(ctx.Position.EntryPrice, ctx.Price)
	switch {
	case rate >= s.cfg.TakeProfitPct:
		return model.Sell(ictName, fmt.Sprintf("take profit at %+.2f%%", rate))
	case rate <= -s.cfg.StopLossPct:
		return model.Sell(ictName, fmt.Sprintf("stop loss at %+.2f%%", rate))
	}
	return model.Hold(ictName, fmt.Sprintf("holding at %+.2f%%", rate))
}
