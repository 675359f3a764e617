package indicator

import (
	"math"

	"CryptoSentry/internal/model"
)

// BollingerBands computes the middle SMA and the bands at middle ± stdDev
// standard deviations over the trailing `period` prices. The standard
// deviation uses the sample (n-1) divisor. When the band width is zero (a
// flat price run), PercentB degrades to 0.5 rather than dividing by zero.
func BollingerBands(prices []float64, period int, stdDev float64) (model.BollingerBandsResult, bool) {
	if period < 2 || len(prices) < period {
		return model.BollingerBandsResult{}, false
	}

	window := prices[len(prices)-period:]
	mean := 0.0
	for _, p := range window {
		mean += p
	}
	mean /= float64(period)

	variance := 0.0
	for _, p := range window {
		d := p - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period-1))

	upper := mean + std*stdDev
	lower := mean - std*stdDev
	price := prices[len(prices)-1]

	percentB := 0.5
	if width := upper - lower; width > 0 {
		percentB = (price - lower) / width
	}

	return model.BollingerBandsResult{
		Upper:        upper,
		Middle:       mean,
		Lower:        lower,
		CurrentPrice: price,
		IsAboveUpper: price > upper,
		IsBelowLower: price < lower,
		PercentB:     percentB,
	}, true
}
