package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"CryptoSentry/internal/config"
	"CryptoSentry/internal/engine"
	"CryptoSentry/internal/exchange"
	"CryptoSentry/internal/health"
	"CryptoSentry/internal/notifier"
	"CryptoSentry/internal/recorder"
	"CryptoSentry/internal/risk"
	"CryptoSentry/internal/scheduler"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("config validation")
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info().Str("mode", cfg.Mode).Strs("symbols", cfg.Trading.Symbols).Msg("CryptoSentry starting")

	for _, dir := range []string{filepath.Dir(cfg.Risk.StateFile), filepath.Dir(cfg.Database.SQLitePath)} {
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				logger.Fatal().Err(err).Str("dir", dir).Msg("create data directory")
			}
		}
	}

	// Market data, cached so multi-symbol cycles stay inside rate limits.
	fetcher := exchange.NewCachedFetcher(exchange.NewUpbitFetcher(),
		time.Duration(cfg.Schedule.CacheTTLSecond)*time.Second)

	// Orders go to the exchange only in full mode.
	var broker exchange.Broker
	if cfg.Mode == "full" {
		broker = exchange.NewUpbitBroker(cfg.Upbit.AccessKey, cfg.Upbit.SecretKey)
	}

	ledger, err := risk.NewLedger(cfg.Risk.StateFile, risk.Limits{
		MaxTradeAmount: cfg.Risk.MaxTradeAmount,
		MaxDailyTrades: cfg.Risk.MaxDailyTrades,
		MaxDailyLoss:   cfg.Risk.MaxDailyLoss,
		StopLossPct:    cfg.Risk.StopLossPct,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init risk ledger")
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("sqlite recorder unavailable, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)

	eng, err := engine.New(cfg, fetcher, broker, ledger, rec, tn, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init engine")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, eng, tn, logger)
	if err := sched.RegisterAll(cfg.Schedule.AnalysisCron, cfg.Schedule.DailyReport, cfg.Schedule.MidnightReset); err != nil {
		logger.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	hs := health.NewServer(cfg.Schedule.HealthAddr, eng, logger)
	go hs.Start()

	go tn.StartPolling(ctx, sched.HandleCommand)

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info().Msg("RUN_ON_START enabled, executing analysis cycle now")
		go sched.RunCycleNow()
	}

	if err := tn.SendWithRetry(ctx, notifier.FormatStartup(cfg.Mode, cfg.Trading.Symbols), 3); err != nil {
		logger.Error().Err(err).Msg("startup notification")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	if err := tn.SendWithRetry(ctx, notifier.FormatShutdown(sig.String()), 3); err != nil {
		logger.Error().Err(err).Msg("shutdown notification")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	hs.Stop(shutdownCtx)

	logger.Info().Msg("CryptoSentry stopped")
}

// newLogger writes console output to stderr and JSON lines to logs/bot.log.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}
	if err := os.MkdirAll("logs", 0o755); err == nil {
		if f, err := os.OpenFile(filepath.Join("logs", "bot.log"),
			os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			writers = append(writers, f)
		}
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).With().Timestamp().Logger()
}
