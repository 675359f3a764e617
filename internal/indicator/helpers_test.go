package indicator

import (
	"time"

	"CryptoSentry/internal/model"
)

var baseTime = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

// bar builds a candle i hours into the fixture timeline.
func bar(i int, open, high, low, close float64) model.Candle {
	return model.Candle{
		Time:   baseTime.Add(time.Duration(i) * time.Hour),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: 1000,
	}
}

// seriesFromCloses builds a series where each candle opens at the previous
// close with a small symmetric wick.
func seriesFromCloses(closes []float64) model.Series {
	s := make(model.Series, len(closes))
	prev := closes[0]
	for i, c := range closes {
		high, low := prev, c
		if c > prev {
			high, low = c, prev
		}
		s[i] = bar(i, prev, high*1.001, low*0.999, c)
		prev = c
	}
	return s
}
