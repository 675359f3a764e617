package indicator

import "CryptoSentry/internal/model"

// DetectFVG scans the most recent `lookback` candles, newest to oldest, for
// the latest unfilled fair value gap. A bullish gap exists in a 3-candle
// window when the first candle's high sits below the third candle's low; the
// middle (momentum) candle supplies the stop and target levels. A candidate
// is rejected if its size is under minGapPercent or if any later candle has
// traded back into the gap.
//
// Always returns a total value: a not-found result carries zero fields.
func DetectFVG(series model.Series, minGapPercent float64, lookback int) model.FVGResult {
	if len(series) < 3 {
		return model.FVGResult{Direction: model.DirectionNone}
	}

	bars := series.Tail(lookback)

	for i := len(bars) - 1; i >= 2; i-- {
		first := bars[i-2]
		momentum := bars[i-1]
		third := bars[i]

		// Bullish gap: air between first.High and third.Low.
		if first.High < third.Low {
			gapBottom := first.High
			gapTop := third.Low
			gapSize := gapTop - gapBottom
			gapPercent := gapSize / gapBottom * 100

			if gapPercent >= minGapPercent && !bullishGapFilled(bars, i, gapBottom) {
				return model.FVGResult{
					Found:          true,
					Direction:      model.DirectionBullish,
					GapTop:         gapTop,
					GapBottom:      gapBottom,
					StopLoss:       momentum.Low,
					TakeProfit:     momentum.High,
					MomentumCandle: momentum.Time,
					GapSize:        gapSize,
					GapPercent:     gapPercent,
				}
			}
		}

		// Bearish gap: first.Low above third.High.
		if first.Low > third.High {
			gapTop := first.Low
			gapBottom := third.High
			gapSize := gapTop - gapBottom
			gapPercent := gapSize / gapBottom * 100

			if gapPercent >= minGapPercent && !bearishGapFilled(bars, i, gapTop) {
				return model.FVGResult{
					Found:          true,
					Direction:      model.DirectionBearish,
					GapTop:         gapTop,
					GapBottom:      gapBottom,
					StopLoss:       momentum.High,
					TakeProfit:     momentum.Low,
					MomentumCandle: momentum.Time,
					GapSize:        gapSize,
					GapPercent:     gapPercent,
				}
			}
		}
	}

	return model.FVGResult{Direction: model.DirectionNone}
}

// bullishGapFilled reports whether any candle after index i traded down into
// the gap (low at or below the gap bottom).
func bullishGapFilled(bars model.Series, i int, gapBottom float64) bool {
	for j := i + 1; j < len(bars); j++ {
		if bars[j].Low <= gapBottom {
			return true
		}
	}
	return false
}

// bearishGapFilled reports whether any candle after index i traded up into
// the gap (high at or above the gap top).
func bearishGapFilled(bars model.Series, i int, gapTop float64) bool {
	for j := i + 1; j < len(bars); j++ {
		if bars[j].High >= gapTop {
			return true
		}
	}
	return false
}
