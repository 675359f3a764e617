package strategy

import (
	"time"

	"CryptoSentry/internal/model"
)

var testBase = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func bar(i int, open, high, low, close float64) model.Candle {
	return model.Candle{
		Time:   testBase.Add(time.Duration(i) * time.Hour),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: 1000,
	}
}

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

func flatCloses(n int, v float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = v
	}
	return closes
}

// confluenceFixture carries a bullish order block (index 14 before the
// three-candle run), an unfilled bullish gap and a swing low at 90, scoring
// 80 on the confluence scale with the last close at 104.8.
func confluenceFixture() model.Series {
	return model.Series{
		bar(0, 95, 95.5, 94.2, 95.2),
		bar(1, 95.2, 95.6, 94.3, 94.5),
		bar(2, 94.5, 95.4, 94.0, 95.0),
		bar(3, 95.0, 95.8, 94.4, 95.5),
		bar(4, 95.5, 95.9, 94.1, 94.8),
		bar(5, 94.8, 95.0, 90.0, 94.0),
		bar(6, 94.0, 96.0, 93.5, 95.8),
		bar(7, 95.8, 97.0, 95.0, 96.5),
		bar(8, 96.5, 97.5, 96.0, 97.2),
		bar(9, 97.2, 98.2, 96.8, 98.0),
		bar(10, 98.0, 99.2, 97.5, 99.0),
		bar(11, 99.0, 103.5, 98.8, 103.0),
		bar(12, 103.0, 104.5, 101.5, 104.0),
		bar(13, 104.0, 104.6, 103.0, 103.5),
		bar(14, 103.5, 103.6, 101.6, 101.9),
		bar(15, 101.9, 102.7, 101.7, 102.5),
		bar(16, 102.5, 103.4, 102.3, 103.2),
		bar(17, 103.2, 104.0, 103.0, 103.8),
		bar(18, 103.8, 104.4, 103.6, 104.2),
		bar(19, 104.2, 105.0, 104.0, 104.8),
	}
}

// fullConfluenceFixture shares confluenceFixture's first 15 candles (order
// block at index 14, zone [101.6, 103.5], swing low at 90) but regroups the
// tail so the unfilled gap [102.8, 103.0] sits inside the block's zone. At
// price 102.9 every structure and both zone checks align: score 100.
func fullConfluenceFixture() model.Series {
	s := confluenceFixture()[:15]
	return append(s,
		bar(15, 101.9, 102.7, 101.7, 102.5),
		bar(16, 102.5, 102.65, 102.4, 102.6),
		bar(17, 102.6, 102.8, 102.55, 102.75),
		bar(18, 102.75, 103.5, 102.9, 103.4),
		bar(19, 103.4, 103.45, 103.0, 103.1),
	)
}

// stubStrategy returns a canned signal regardless of context.
type stubStrategy struct {
	name string
	sig  model.Signal
}

func (s *stubStrategy) Name() string                   { return s.name }
func (s *stubStrategy) PositionSize() float64          { return s.sig.PositionSizeRatio }
func (s *stubStrategy) Analyze(_ Context) model.Signal { return s.sig }
