package backtest

import "math"

// annualization assumes daily bars.
const periodsPerYear = 252

// Metrics scores one replay. Ratios are zero, not NaN, when undefined.
type Metrics struct {
	TotalProfit    float64 `json:"total_profit"`
	TotalReturnPct float64 `json:"total_return_pct"`
	TradeCount     int     `json:"trade_count"`
	WinRate        float64 `json:"win_rate"`
	ProfitFactor   float64 `json:"profit_factor"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	Sharpe         float64 `json:"sharpe"`
	Sortino        float64 `json:"sortino"`
	Calmar         float64 `json:"calmar"`
}

func ComputeMetrics(initialCapital float64, equity []float64, trades []Trade) Metrics {
	m := Metrics{TradeCount: len(trades)}
	if len(equity) == 0 || initialCapital <= 0 {
		return m
	}

	final := equity[len(equity)-1]
	m.TotalProfit = final - initialCapital
	m.TotalReturnPct = m.TotalProfit / initialCapital * 100

	wins, grossWin, grossLoss := 0, 0.0, 0.0
	for _, t := range trades {
		if t.Profit > 0 {
			wins++
			grossWin += t.Profit
		} else {
			grossLoss += -t.Profit
		}
	}
	if len(trades) > 0 {
		m.WinRate = float64(wins) / float64(len(trades))
	}
	if grossLoss > 0 {
		m.ProfitFactor = grossWin / grossLoss
	}

	m.MaxDrawdownPct = maxDrawdown(equity) * 100

	returns := periodReturns(equity)
	mean, std := meanStd(returns)
	if std > 0 {
		m.Sharpe = mean / std * math.Sqrt(periodsPerYear)
	}
	if down := downsideStd(returns); down > 0 {
		m.Sortino = mean / down * math.Sqrt(periodsPerYear)
	}
	if m.MaxDrawdownPct > 0 {
		years := float64(len(equity)) / periodsPerYear
		if years > 0 {
			annualReturn := m.TotalReturnPct / years
			m.Calmar = annualReturn / m.MaxDrawdownPct
		}
	}
	return m
}

// maxDrawdown returns the largest peak-to-trough fraction.
func maxDrawdown(equity []float64) float64 {
	peak, worst := equity[0], 0.0
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

func periodReturns(equity []float64) []float64 {
	if len(equity) < 2 {
		return nil
	}
	out := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] != 0 {
			out = append(out, equity[i]/equity[i-1]-1)
		}
	}
	return out
}

func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		std += (x - mean) * (x - mean)
	}
	std = math.Sqrt(std / float64(len(xs)))
	return mean, std
}

// downsideStd is the root mean square of negative returns only.
func downsideStd(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		if x < 0 {
			sum += x * x
		}
	}
	return math.Sqrt(sum / float64(len(xs)))
}
