package backtest

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"CryptoSentry/internal/model"
	"CryptoSentry/internal/strategy"
)

// Grid is the parameter space the optimizer sweeps. Empty slices fall back
// to the single default value.
type Grid struct {
	ConfluenceThresholds []float64
	MinRiskRewards       []float64
	TakeProfits          []float64
	StopLosses           []float64
}

func DefaultGrid() Grid {
	return Grid{
		ConfluenceThresholds: []float64{50, 60, 70, 80, 90},
		MinRiskRewards:       []float64{1.0, 1.5, 2.0},
		TakeProfits:          []float64{1.5, 2.0, 2.5},
		StopLosses:           []float64{0.5, 0.75, 1.0},
	}
}

func (g Grid) size() int {
	return len(g.ConfluenceThresholds) * len(g.MinRiskRewards) * len(g.TakeProfits) * len(g.StopLosses)
}

// Optimize replays every grid point and returns results ranked best first.
func Optimize(runner *Runner, series model.Series, grid Grid, logger zerolog.Logger) []Result {
	log := logger.With().Str("component", "optimizer").Logger()
	log.Info().Int("combinations", grid.size()).Msg("grid search starting")

	results := make([]Result, 0, grid.size())
	for _, threshold := range grid.ConfluenceThresholds {
		for _, rr := range grid.MinRiskRewards {
			for _, tp := range grid.TakeProfits {
				for _, sl := range grid.StopLosses {
					cfg := strategy.DefaultICTConfig()
					cfg.ConfluenceThreshold = threshold
					cfg.MinRRRatio = rr
					cfg.TakeProfitPct = tp
					cfg.StopLossPct = sl
					label := fmt.Sprintf("threshold=%.0f rr=%.1f tp=%.1f sl=%.2f", threshold, rr, tp, sl)
					results = append(results, runner.Run(series, strategy.NewICTStrategy(cfg), label))
				}
			}
		}
	}

	Rank(results)
	if len(results) > 0 {
		best := results[0]
		log.Info().Str("best", best.Label).
			Float64("profit", best.Metrics.TotalProfit).
			Float64("win_rate", best.Metrics.WinRate).Msg("grid search done")
	}
	return results
}

// Rank sorts results in place: profit first, then win rate, then Sharpe.
func Rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Metrics, results[j].Metrics
		if a.TotalProfit != b.TotalProfit {
			return a.TotalProfit > b.TotalProfit
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		return a.Sharpe > b.Sharpe
	})
}
