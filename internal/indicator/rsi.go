// Package indicator holds the pure technical-analysis functions: classic
// oscillators and moving averages plus the ICT structural detectors (fair
// value gaps, order blocks, liquidity pools). Every function reads a candle
// or price series and returns a value object; none mutate their input, block,
// or panic on short data.
package indicator

import (
	"CryptoSentry/internal/model"
)

// RSI computes the Wilder-smoothed Relative Strength Index over the given
// period. The averages are seeded with the simple mean of the first `period`
// deltas and then smoothed recursively with alpha = 1/period.
//
// Requires at least period+1 prices; ok is false otherwise. A run with zero
// average loss yields RSI = 100 (maximally overbought), not the 0 a naive
// infinity remap would produce.
func RSI(prices []float64, period int, buyThreshold, sellThreshold float64) (model.RSIResult, bool) {
	if period <= 0 || len(prices) < period+1 {
		return model.RSIResult{}, false
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	var value float64
	if avgLoss == 0 {
		value = 100.0
	} else {
		rs := avgGain / avgLoss
		value = 100.0 - 100.0/(1.0+rs)
	}

	return model.RSIResult{
		Value:        value,
		IsOversold:   value < buyThreshold,
		IsOverbought: value > sellThreshold,
	}, true
}
