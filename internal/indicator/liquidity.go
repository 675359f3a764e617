package indicator

import "CryptoSentry/internal/model"

// DetectLiquidityPool finds swing highs and lows in the most recent
// `lookback` candles and returns the swing level nearest the current close:
// the closest swing high above price or the closest swing low below it,
// whichever is nearer. A candle is a swing high iff no other candle within
// swingPeriod on either side has an equal or higher high (symmetric for
// lows). The zone extends bufferPercent either side of the level.
func DetectLiquidityPool(series model.Series, lookback, swingPeriod int, bufferPercent float64) model.LiquidityPoolResult {
	notFound := model.LiquidityPoolResult{PoolType: model.PoolNone}
	if swingPeriod < 1 || len(series) < 2*swingPeriod+1 {
		return notFound
	}

	bars := series.Tail(lookback)
	currentPrice := bars.LastClose()

	var closestHigh, closestLow float64
	haveHigh, haveLow := false, false

	for i := swingPeriod; i < len(bars)-swingPeriod; i++ {
		if isSwingHigh(bars, i, swingPeriod) {
			level := bars[i].High
			if level > currentPrice && (!haveHigh || level < closestHigh) {
				closestHigh, haveHigh = level, true
			}
		}
		if isSwingLow(bars, i, swingPeriod) {
			level := bars[i].Low
			if level < currentPrice && (!haveLow || level > closestLow) {
				closestLow, haveLow = level, true
			}
		}
	}

	switch {
	case haveHigh && haveLow:
		if closestHigh-currentPrice < currentPrice-closestLow {
			return poolAt(closestHigh, model.PoolSwingHigh, bufferPercent)
		}
		return poolAt(closestLow, model.PoolSwingLow, bufferPercent)
	case haveHigh:
		return poolAt(closestHigh, model.PoolSwingHigh, bufferPercent)
	case haveLow:
		return poolAt(closestLow, model.PoolSwingLow, bufferPercent)
	}
	return notFound
}

func isSwingHigh(bars model.Series, i, period int) bool {
	for j := i - period; j <= i+period; j++ {
		if j != i && bars[j].High >= bars[i].High {
			return false
		}
	}
	return true
}

func isSwingLow(bars model.Series, i, period int) bool {
	for j := i - period; j <= i+period; j++ {
		if j != i && bars[j].Low <= bars[i].Low {
			return false
		}
	}
	return true
}

func poolAt(level float64, poolType model.PoolType, bufferPercent float64) model.LiquidityPoolResult {
	buffer := level * bufferPercent / 100
	return model.LiquidityPoolResult{
		Found:      true,
		PoolType:   poolType,
		Level:      level,
		ZoneTop:    level + buffer,
		ZoneBottom: level - buffer,
		TouchCount: 1,
	}
}
