package indicator

import "CryptoSentry/internal/model"

// DetectOrderBlock scans backward through the most recent `lookback` candles
// for a run of at least minConsecutive same-direction candles and identifies
// the candle immediately preceding the run as the order block. That candle
// must point the opposite way and have a body/range ratio of at least
// minBodyRatio, which filters doji-like candles whose level carries no
// conviction. The first qualifying block scanning backward (the most recent
// one) wins.
func DetectOrderBlock(series model.Series, lookback, minConsecutive int, minBodyRatio float64) model.OrderBlockResult {
	notFound := model.OrderBlockResult{Direction: model.DirectionNone}
	if minConsecutive < 1 || len(series) < minConsecutive+2 {
		return notFound
	}

	bars := series.Tail(lookback)

	// The earliest anchor that can still fit a full run plus the opposite
	// candle before it is index minConsecutive.
	for i := len(bars) - 1; i >= minConsecutive; i-- {
		up, down := runLengths(bars, i, minConsecutive)

		if up >= minConsecutive {
			obIdx := i - up
			if obIdx >= 0 {
				ob := bars[obIdx]
				if ob.Close < ob.Open && bodyRatio(ob) >= minBodyRatio {
					return model.OrderBlockResult{
						Found:      true,
						Direction:  model.DirectionBullish,
						Level:      ob.Low,
						ZoneTop:    ob.Open,
						ZoneBottom: ob.Low,
						Strength:   up,
						CandleTime: ob.Time,
					}
				}
			}
		}

		if down >= minConsecutive {
			obIdx := i - down
			if obIdx >= 0 {
				ob := bars[obIdx]
				if ob.Close > ob.Open && bodyRatio(ob) >= minBodyRatio {
					return model.OrderBlockResult{
						Found:      true,
						Direction:  model.DirectionBearish,
						Level:      ob.High,
						ZoneTop:    ob.High,
						ZoneBottom: ob.Close,
						Strength:   down,
						CandleTime: ob.Time,
					}
				}
			}
		}
	}

	return notFound
}

// runLengths counts consecutive up/down candles ending at index i, looking
// at most 5 candles back. A direction change resets the opposite counter;
// counting stops as soon as either run reaches minConsecutive.
func runLengths(bars model.Series, i, minConsecutive int) (up, down int) {
	stop := i - 5
	if stop < 0 {
		stop = 0
	}
	for j := i; j > stop; j-- {
		if bars[j].IsBullish() {
			up++
			down = 0
		} else {
			down++
			up = 0
		}
		if up >= minConsecutive || down >= minConsecutive {
			break
		}
	}
	return up, down
}

func bodyRatio(c model.Candle) float64 {
	r := c.Range()
	if r <= 0 {
		return 0
	}
	return c.Body() / r
}
