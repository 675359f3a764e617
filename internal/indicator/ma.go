package indicator

import "CryptoSentry/internal/model"

// SMA computes the simple moving average of the most recent `period` prices.
func SMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), true
}

// EMASeries computes the exponential moving average at every index, seeded
// from the first price with multiplier 2/(period+1). The full series is
// exposed because crossover strategies need the previous value as well as
// the current one.
func EMASeries(prices []float64, period int) []float64 {
	if len(prices) == 0 || period <= 0 {
		return nil
	}
	out := make([]float64, len(prices))
	mult := 2.0 / float64(period+1)
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = prices[i]*mult + out[i-1]*(1-mult)
	}
	return out
}

// EMA computes the exponential moving average at the series end.
// Requires at least `period` prices so the seed has decayed meaningfully.
func EMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}
	series := EMASeries(prices, period)
	return series[len(series)-1], true
}

// MACD computes the MACD line (fast EMA - slow EMA), its signal line and the
// histogram. Absent when the series is shorter than slow+signal periods.
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) (model.MACDResult, bool) {
	if len(prices) < slowPeriod+signalPeriod {
		return model.MACDResult{}, false
	}

	fast := EMASeries(prices, fastPeriod)
	slow := EMASeries(prices, slowPeriod)

	macdLine := make([]float64, len(prices))
	for i := range prices {
		macdLine[i] = fast[i] - slow[i]
	}
	signalLine := EMASeries(macdLine, signalPeriod)

	last := len(prices) - 1
	return model.MACDResult{
		MACD:      macdLine[last],
		Signal:    signalLine[last],
		Histogram: macdLine[last] - signalLine[last],
	}, true
}
