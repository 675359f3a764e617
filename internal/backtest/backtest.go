// Package backtest replays a strategy over historical candles with fees and
// slippage applied on both sides, and scores the outcome.
package backtest

import (
	"time"

	"github.com/rs/zerolog"

	"CryptoSentry/internal/model"
	"CryptoSentry/internal/strategy"
)

// Config controls one replay.
type Config struct {
	InitialCapital  float64 // quote currency
	FeeRate         float64 // per side, fraction (0.0005 = 5 bps)
	Slippage        float64 // per side, fraction
	WarmupBars      int     // bars fed to the strategy before trading starts
	EntryConfidence float64 // minimum BUY confidence to enter
	PositionRatio   float64 // fallback when the signal carries no size
}

func DefaultConfig() Config {
	return Config{
		InitialCapital:  1000000,
		FeeRate:         0.0005,
		Slippage:        0.0005,
		WarmupBars:      50,
		EntryConfidence: 0.7,
		PositionRatio:   0.2,
	}
}

// Trade is one completed round trip.
type Trade struct {
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Volume     float64   `json:"volume"`
	Profit     float64   `json:"profit"`
	ProfitPct  float64   `json:"profit_pct"`
	Reason     string    `json:"reason"`
}

// Result is the full outcome of one replay.
type Result struct {
	Strategy     string    `json:"strategy"`
	Label        string    `json:"label"`
	FinalCapital float64   `json:"final_capital"`
	Trades       []Trade   `json:"trades"`
	EquityCurve  []float64 `json:"equity_curve"`
	Metrics      Metrics   `json:"metrics"`
}

// Runner replays candle series against strategies.
type Runner struct {
	cfg    Config
	logger zerolog.Logger
}

func NewRunner(cfg Config, logger zerolog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger.With().Str("component", "backtest").Logger()}
}

// Run replays the series bar by bar. Entries buy at close plus slippage,
// exits sell at close minus slippage, with the fee taken on both legs. An
// open position at the end of the series is closed at the last bar.
func (r *Runner) Run(series model.Series, strat strategy.Strategy, label string) Result {
	res := Result{Strategy: strat.Name(), Label: label}
	capital := r.cfg.InitialCapital

	var pos model.Position
	var entryTime time.Time
	var entryPrice, volume, spent float64

	closeAt := func(price float64, at time.Time, reason string) {
		exitPrice := price * (1 - r.cfg.Slippage)
		proceeds := volume * exitPrice * (1 - r.cfg.FeeRate)
		profit := proceeds - spent
		capital += proceeds
		res.Trades = append(res.Trades, Trade{
			EntryTime: entryTime, ExitTime: at,
			EntryPrice: entryPrice, ExitPrice: exitPrice,
			Volume: volume, Profit: profit,
			ProfitPct: profit / spent * 100,
			Reason:    reason,
		})
		pos = model.Position{}
		volume, spent = 0, 0
	}

	for i := r.cfg.WarmupBars; i < len(series); i++ {
		window := series[:i+1]
		bar := series[i]
		price := bar.Close

		sig := strat.Analyze(strategy.Context{Series: window, Price: price, Position: pos})

		switch {
		case !pos.InPosition && sig.Action == model.ActionBuy && sig.Confidence >= r.cfg.EntryConfidence:
			ratio := sig.PositionSizeRatio
			if ratio <= 0 {
				ratio = r.cfg.PositionRatio
			}
			spent = capital * ratio
			entryPrice = price * (1 + r.cfg.Slippage)
			volume = spent * (1 - r.cfg.FeeRate) / entryPrice
			capital -= spent
			entryTime = bar.Time
			pos = model.Position{InPosition: true, EntryPrice: entryPrice, StrategyType: sig.Strategy}

		case pos.InPosition && sig.Action == model.ActionSell:
			closeAt(price, bar.Time, sig.Reason)
		}

		res.EquityCurve = append(res.EquityCurve, capital+volume*price)
	}

	if pos.InPosition {
		last := series[len(series)-1]
		closeAt(last.Close, last.Time, "end of data")
		res.EquityCurve[len(res.EquityCurve)-1] = capital
	}

	res.FinalCapital = capital
	res.Metrics = ComputeMetrics(r.cfg.InitialCapital, res.EquityCurve, res.Trades)
	r.logger.Info().Str("strategy", res.Strategy).Str("label", label).
		Int("trades", len(res.Trades)).Float64("final", res.FinalCapital).Msg("replay complete")
	return res
}
