package strategy

import (
	"fmt"

	"github.com/rs/zerolog"

	"CryptoSentry/internal/model"
)

const hybridName = "HYBRID"

// Entry confidence gates. The structural strategy demands higher conviction
// because it trades the larger size.
const (
	ictEntryGate   = 0.7
	trendEntryGate = 0.6
)

// HybridStrategy composes a high-conviction structural strategy (checked
// first, larger size, slower timeframe) with a high-frequency trend strategy
// against a day-scoped profit target. Once the target is met the structural
// leg is skipped entirely and trend entries run at half size.
//
// The composer does not detect calendar rollover itself; the scheduler calls
// ResetDaily at midnight, the same authority that rolls the risk ledger.
type HybridStrategy struct {
	ict   Strategy
	trend Strategy

	dailyTargetPct float64
	realizedPct    float64
	logger         zerolog.Logger
}

func NewHybridStrategy(ict, trend Strategy, dailyTargetPct float64, logger zerolog.Logger) *HybridStrategy {
	return &HybridStrategy{
		ict:            ict,
		trend:          trend,
		dailyTargetPct: dailyTargetPct,
		logger:         logger.With().Str("component", "hybrid").Logger(),
	}
}

func (h *HybridStrategy) Name() string { return hybridName }

// Analyze runs one composed decision. ictCtx and trendCtx carry the two
// timeframes' series with the same position context.
func (h *HybridStrategy) Analyze(ictCtx, trendCtx Context) model.Signal {
	if ictCtx.Position.InPosition {
		return h.dispatchExit(ictCtx, trendCtx)
	}

	mult := h.PositionSizeMultiplier()

	if !h.targetMet() {
		sig := h.ict.Analyze(ictCtx)
		if sig.Action == model.ActionBuy && sig.Confidence >= ictEntryGate {
			sig.PositionSizeRatio *= mult
			h.logger.Info().Str("leg", h.ict.Name()).Float64("confidence", sig.Confidence).
				Float64("size_multiplier", mult).Msg("structural entry")
			return sig
		}
	}

	sig := h.trend.Analyze(trendCtx)
	if sig.Action == model.ActionBuy && sig.Confidence >= trendEntryGate {
		sig.PositionSizeRatio *= mult
		h.logger.Info().Str("leg", h.trend.Name()).Float64("confidence", sig.Confidence).
			Float64("size_multiplier", mult).Msg("trend entry")
		return sig
	}
	if sig.Action == model.ActionBuy {
		return model.Hold(hybridName, fmt.Sprintf("trend confidence %.2f below gate %.2f", sig.Confidence, trendEntryGate))
	}
	return sig
}

// dispatchExit routes the exit decision to whichever strategy opened the
// position; neither leg's thresholds are ever applied to the other's trade.
func (h *HybridStrategy) dispatchExit(ictCtx, trendCtx Context) model.Signal {
	if ictCtx.Position.StrategyType == h.ict.Name() {
		return h.ict.Analyze(ictCtx)
	}
	return h.trend.Analyze(trendCtx)
}

// UpdateProfit accumulates the realized percent outcome of a closed trade.
func (h *HybridStrategy) UpdateProfit(profitPct float64) {
	h.realizedPct += profitPct
	h.logger.Debug().Float64("realized_pct", h.realizedPct).
		Float64("target_pct", h.dailyTargetPct).Msg("daily profit updated")
}

// ResetDaily zeroes the day's realized profit.
func (h *HybridStrategy) ResetDaily() {
	h.realizedPct = 0
}

// RealizedPct reports the running sum of realized profit percent today.
func (h *HybridStrategy) RealizedPct() float64 { return h.realizedPct }

func (h *HybridStrategy) targetMet() bool {
	return h.dailyTargetPct > 0 && h.realizedPct >= h.dailyTargetPct
}

// PositionSizeMultiplier de-risks as the day's target approaches: full size
// below 70% of target, 0.75x from 70%, half size once met.
func (h *HybridStrategy) PositionSizeMultiplier() float64 {
	if h.dailyTargetPct <= 0 {
		return 1.0
	}
	switch {
	case h.realizedPct >= h.dailyTargetPct:
		return 0.5
	case h.realizedPct >= 0.7*h.dailyTargetPct:
		return 0.75
	}
	return 1.0
}
