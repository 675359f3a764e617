// Package regime classifies market conditions from a candle series and
// recommends a strategy profile with a position-size multiplier. Volatility
// is self-relative: the current ATR-percent is bucketed against the 25th and
// 75th percentiles of its own trailing history, so "high volatility" adapts
// per asset instead of using absolute thresholds.
package regime

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"CryptoSentry/internal/model"
)

// Strategy profile names the decision table recommends.
const (
	ProfileConservativeTrend = "CONSERVATIVE_TREND"
	ProfileICTMeanReversion  = "ICT_MEAN_REVERSION"
	ProfileTrendFollowing    = "TREND_FOLLOWING"
	ProfileICTConfluence     = "ICT_CONFLUENCE"
	ProfileSkip              = "SKIP"
)

const (
	defaultPeriod  = 14
	historyCap     = 100
	minHistorySize = 10
)

// Analyzer computes ATR/ADX-based market state. It carries the trailing
// ATR-percent history between calls and is not safe for concurrent use; the
// engine calls it from its single cycle loop.
type Analyzer struct {
	atrPeriod  int
	adxPeriod  int
	atrHistory []float64
	logger     zerolog.Logger
}

func NewAnalyzer(atrPeriod, adxPeriod int, logger zerolog.Logger) *Analyzer {
	if atrPeriod <= 0 {
		atrPeriod = defaultPeriod
	}
	if adxPeriod <= 0 {
		adxPeriod = defaultPeriod
	}
	return &Analyzer{
		atrPeriod:  atrPeriod,
		adxPeriod:  adxPeriod,
		atrHistory: make([]float64, 0, historyCap),
		logger:     logger.With().Str("component", "regime").Logger(),
	}
}

// Analyze derives the current market state from the series and the caller's
// RSI reading. Insufficient history degrades to MEDIUM volatility and a
// RANGING trend; it never fails.
func (a *Analyzer) Analyze(series model.Series, rsi float64) model.MarketState {
	state := model.MarketState{
		Volatility: model.VolatilityMedium,
		Trend:      model.TrendRanging,
		RSI:        rsi,
	}

	atr, ok := a.atr(series)
	if ok {
		price := series.LastClose()
		state.ATR = atr
		if price > 0 {
			state.ATRPercent = atr / price * 100
			state.Volatility = a.volatilityRegime(state.ATRPercent)
		}
	}

	adx, plusDI, minusDI, ok := a.adx(series)
	if ok {
		state.ADX = adx
		state.Trend = trendRegime(adx, plusDI, minusDI)
	}

	state.RecommendedStrategy, state.PositionSizeMultiplier = recommend(state.Volatility, state.Trend, rsi)

	a.logger.Debug().
		Str("volatility", string(state.Volatility)).
		Str("trend", string(state.Trend)).
		Float64("atr_percent", state.ATRPercent).
		Float64("adx", state.ADX).
		Str("profile", state.RecommendedStrategy).
		Msg("market state")

	return state
}

// atr returns the rolling mean of True Range over atrPeriod.
func (a *Analyzer) atr(series model.Series) (float64, bool) {
	tr := trueRanges(series)
	if len(tr) < a.atrPeriod {
		return 0, false
	}
	sum := 0.0
	for _, v := range tr[len(tr)-a.atrPeriod:] {
		sum += v
	}
	return sum / float64(a.atrPeriod), true
}

// adx computes ADX and the directional indicators via rolling means of the
// directional movement series, matching the rolling-window smoothing of the
// ATR above.
func (a *Analyzer) adx(series model.Series) (adx, plusDI, minusDI float64, ok bool) {
	period := a.adxPeriod
	tr := trueRanges(series)
	if len(tr) < 2*period {
		return 0, 0, 0, false
	}

	plusDM := make([]float64, len(tr))
	minusDM := make([]float64, len(tr))
	for i := 1; i < len(series); i++ {
		up := series[i].High - series[i-1].High
		down := series[i-1].Low - series[i].Low
		if up > down && up > 0 {
			plusDM[i-1] = up
		}
		if down > up && down > 0 {
			minusDM[i-1] = down
		}
	}

	// DI series wherever a full TR window exists.
	n := len(tr) - period + 1
	dx := make([]float64, 0, n)
	var lastPlusDI, lastMinusDI float64
	for i := 0; i < n; i++ {
		trSum, pSum, mSum := 0.0, 0.0, 0.0
		for j := i; j < i+period; j++ {
			trSum += tr[j]
			pSum += plusDM[j]
			mSum += minusDM[j]
		}
		if trSum == 0 {
			dx = append(dx, 0)
			continue
		}
		pDI := 100 * pSum / trSum
		mDI := 100 * mSum / trSum
		lastPlusDI, lastMinusDI = pDI, mDI
		if pDI+mDI == 0 {
			dx = append(dx, 0)
			continue
		}
		dx = append(dx, 100*math.Abs(pDI-mDI)/(pDI+mDI))
	}

	if len(dx) < period {
		return 0, 0, 0, false
	}
	sum := 0.0
	for _, v := range dx[len(dx)-period:] {
		sum += v
	}
	return sum / float64(period), lastPlusDI, lastMinusDI, true
}

// volatilityRegime appends the sample to the trailing history and buckets it
// against the history's own quartiles. Under minHistorySize samples every
// reading is MEDIUM.
func (a *Analyzer) volatilityRegime(atrPercent float64) model.VolatilityRegime {
	a.atrHistory = append(a.atrHistory, atrPercent)
	if len(a.atrHistory) > historyCap {
		a.atrHistory = a.atrHistory[len(a.atrHistory)-historyCap:]
	}
	if len(a.atrHistory) < minHistorySize {
		return model.VolatilityMedium
	}

	p25 := percentile(a.atrHistory, 25)
	p75 := percentile(a.atrHistory, 75)
	switch {
	case atrPercent <= p25:
		return model.VolatilityLow
	case atrPercent >= p75:
		return model.VolatilityHigh
	}
	return model.VolatilityMedium
}

func trendRegime(adx, plusDI, minusDI float64) model.TrendRegime {
	if math.IsNaN(adx) || adx < 20 {
		return model.TrendRanging
	}
	up := plusDI >= minusDI
	if adx >= 25 {
		if up {
			return model.TrendStrongUp
		}
		return model.TrendStrongDown
	}
	if up {
		return model.TrendWeakUp
	}
	return model.TrendWeakDown
}

// recommend is the single source of "which strategy runs when". The rows are
// evaluated top to bottom; the last row is the MEDIUM-volatility default.
func recommend(vol model.VolatilityRegime, trend model.TrendRegime, rsi float64) (string, float64) {
	strongTrend := trend == model.TrendStrongUp || trend == model.TrendStrongDown
	downTrend := trend == model.TrendWeakDown || trend == model.TrendStrongDown

	switch vol {
	case model.VolatilityHigh:
		if strongTrend {
			return ProfileConservativeTrend, 0.5
		}
		return ProfileSkip, 0.0

	case model.VolatilityLow:
		switch {
		case trend == model.TrendRanging:
			return ProfileICTMeanReversion, 1.0
		case downTrend:
			return ProfileSkip, 0.0
		default: // STRONG_UP or WEAK_UP
			return ProfileTrendFollowing, 1.2
		}
	}

	// MEDIUM volatility.
	switch {
	case trend == model.TrendStrongUp && rsi < 60:
		return ProfileICTConfluence, 1.0
	case trend == model.TrendStrongUp:
		return ProfileConservativeTrend, 0.7
	case trend == model.TrendRanging:
		if rsi > 40 && rsi < 60 {
			return ProfileICTMeanReversion, 0.8
		}
		return ProfileSkip, 0.0
	case downTrend:
		return ProfileSkip, 0.0
	}
	return ProfileICTConfluence, 0.7
}

// trueRanges returns the TR series; element i covers candle i+1.
func trueRanges(series model.Series) []float64 {
	if len(series) < 2 {
		return nil
	}
	tr := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		hl := series[i].High - series[i].Low
		hc := math.Abs(series[i].High - series[i-1].Close)
		lc := math.Abs(series[i].Low - series[i-1].Close)
		tr[i-1] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// percentile computes the p-th percentile with linear interpolation.
func percentile(samples []float64, p float64) float64 {
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
