// Command backtest replays a strategy over Upbit history and prints the
// scored result. With -optimize it grid-searches ICT parameters instead.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"CryptoSentry/internal/backtest"
	"CryptoSentry/internal/exchange"
	"CryptoSentry/internal/strategy"
)

func main() {
	var (
		symbol   = flag.String("symbol", "KRW-BTC", "market, e.g. KRW-BTC")
		interval = flag.String("interval", "1h", "candle interval (1m 5m 15m 1h 4h 1d)")
		count    = flag.Int("count", 200, "candles to fetch (max 200)")
		profile  = flag.String("profile", "BALANCED", "strategy profile")
		capital  = flag.Float64("capital", 1000000, "initial capital")
		optimize = flag.Bool("optimize", false, "grid-search ICT parameters")
		topN     = flag.Int("top", 5, "ranked results to print when optimizing")
		out      = flag.String("out", "", "write results JSON to this path")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	fetcher := exchange.NewUpbitFetcher()
	series, err := fetcher.FetchCandles(*symbol, *interval, *count)
	if err != nil {
		logger.Fatal().Err(err).Msg("fetch candles")
	}
	logger.Info().Int("bars", len(series)).Str("symbol", *symbol).Str("interval", *interval).Msg("data loaded")

	cfg := backtest.DefaultConfig()
	cfg.InitialCapital = *capital
	runner := backtest.NewRunner(cfg, logger)

	var results []backtest.Result
	if *optimize {
		results = backtest.Optimize(runner, series, backtest.DefaultGrid(), logger)
		n := *topN
		if n > len(results) {
			n = len(results)
		}
		for i := 0; i < n; i++ {
			printResult(i+1, results[i])
		}
	} else {
		strat, err := strategy.ForProfile(*profile)
		if err != nil {
			logger.Fatal().Err(err).Msg("unknown profile")
		}
		res := runner.Run(series, strat, *profile)
		results = []backtest.Result{res}
		printResult(1, res)
	}

	if *out != "" {
		if err := backtest.Export(*out, results); err != nil {
			logger.Fatal().Err(err).Msg("export results")
		}
		logger.Info().Str("path", *out).Msg("results exported")
	}
}

func printResult(rank int, r backtest.Result) {
	m := r.Metrics
	fmt.Printf("#%d %s (%s)\n", rank, r.Strategy, r.Label)
	fmt.Printf("   profit %.0f (%.2f%%)  trades %d  win rate %.0f%%\n",
		m.TotalProfit, m.TotalReturnPct, m.TradeCount, m.WinRate*100)
	fmt.Printf("   sharpe %.2f  sortino %.2f  calmar %.2f  profit factor %.2f  max drawdown %.2f%%\n\n",
		m.Sharpe, m.Sortino, m.Calmar, m.ProfitFactor, m.MaxDrawdownPct)
}
