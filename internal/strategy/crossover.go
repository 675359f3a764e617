package strategy

import (
	"fmt"
	"math"

	"CryptoSentry/internal/indicator"
	"CryptoSentry/internal/model"
)

const trendName = "TREND"

// CrossoverConfig tunes the RSI+EMA trend strategy.
type CrossoverConfig struct {
	RSIPeriod         int
	Oversold          float64
	Overbought        float64
	EMAFast           int
	EMASlow           int
	TakeProfitPct     float64
	StopLossPct       float64
	PositionSizeRatio float64
}

func DefaultCrossoverConfig() CrossoverConfig {
	return CrossoverConfig{
		RSIPeriod:         14,
		Oversold:          30,
		Overbought:        70,
		EMAFast:           9,
		EMASlow:           21,
		TakeProfitPct:     2.5,
		StopLossPct:       1.0,
		PositionSizeRatio: 0.15,
	}
}

// CrossoverStrategy buys oversold dips above the slow EMA and golden crosses
// below RSI 50. Crossover detection is a strict previous-vs-current test on
// the EMA pair, so a fast EMA merely sitting above the slow one does not
// re-trigger an entry.
type CrossoverStrategy struct {
	cfg CrossoverConfig
}

func NewCrossoverStrategy(cfg CrossoverConfig) *CrossoverStrategy {
	return &CrossoverStrategy{cfg: cfg}
}

func (s *CrossoverStrategy) Name() string          { return trendName }
func (s *CrossoverStrategy) PositionSize() float64 { return s.cfg.PositionSizeRatio }

func (s *CrossoverStrategy) minLength() int {
	n := s.cfg.RSIPeriod
	if s.cfg.EMASlow > n {
		n = s.cfg.EMASlow
	}
	return n + 5
}

func (s *CrossoverStrategy) Analyze(ctx Context) model.Signal {
	if len(ctx.Series) < s.minLength() || ctx.Price <= 0 {
		return model.HoldNoData(trendName, fmt.Sprintf("need %d candles, have %d", s.minLength(), len(ctx.Series)))
	}

	closes := ctx.Series.Closes()
	rsi, ok := indicator.RSI(closes, s.cfg.RSIPeriod, s.cfg.Oversold, s.cfg.Overbought)
	if !ok {
		return model.HoldNoData(trendName, "rsi unavailable")
	}
	fast := indicator.EMASeries(closes, s.cfg.EMAFast)
	slow := indicator.EMASeries(closes, s.cfg.EMASlow)
	last := len(closes) - 1
	curFast, curSlow := fast[last], slow[last]
	prevFast, prevSlow := fast[last-1], slow[last-1]
	goldenCross := prevFast <= prevSlow && curFast > curSlow
	deathCross := prevFast >= prevSlow && curFast < curSlow

	if ctx.Position.InPosition {
		return s.checkExit(ctx, rsi.Value, curSlow, deathCross)
	}

	switch {
	case rsi.IsOversold && ctx.Price > curSlow:
		return model.Signal{
			Action:            model.ActionBuy,
			Strategy:          trendName,
			Confidence:        math.Min(0.9, 0.6+(s.cfg.Oversold-rsi.Value)*0.01),
			Reason:            fmt.Sprintf("RSI %.1f oversold above slow EMA %.2f", rsi.Value, curSlow),
			TakeProfit:        s.cfg.TakeProfitPct,
			StopLoss:          s.cfg.StopLossPct,
			PositionSizeRatio: s.cfg.PositionSizeRatio,
		}
	case goldenCross && rsi.Value < 50:
		return model.Signal{
			Action:            model.ActionBuy,
			Strategy:          trendName,
			Confidence:        math.Min(0.9, 0.6+(50-rsi.Value)*0.01),
			Reason:            fmt.Sprintf("golden cross with RSI %.1f", rsi.Value),
			TakeProfit:        s.cfg.TakeProfitPct,
			StopLoss:          s.cfg.StopLossPct,
			PositionSizeRatio: s.cfg.PositionSizeRatio,
		}
	}
	return model.Hold(trendName, fmt.Sprintf("no entry: RSI %.1f, fast EMA %.2f, slow EMA %.2f", rsi.Value, curFast, curSlow))
}

func (s *CrossoverStrategy) checkExit(ctx Context, rsi, slowEMA float64, deathCross bool) model.Signal {
	rate := profitRate(ctx.Position.EntryPrice, ctx.Price)
	switch {
	case rate >= s.cfg.TakeProfitPct:
		return model.Sell(trendName, fmt.Sprintf("take profit at %+.2f%%", rate))
	case rate <= -s.cfg.StopLossPct:
		return model.Sell(trendName, fmt.Sprintf("stop loss at %+.2f%%", rate))
	case rsi > s.cfg.Overbought && ctx.Price < slowEMA:
		sig := model.Sell(trendName, fmt.Sprintf("RSI %.1f overbought below slow EMA", rsi))
		sig.Confidence = 0.8
		return sig
	case deathCross && rsi > 50:
		sig := model.Sell(trendName, fmt.Sprintf("death cross with RSI %.1f", rsi))
		sig.Confidence = 0.8
		return sig
	}
	return model.Hold(trendName, fmt.Sprintf("holding at %+.2f%%", rate))
}
