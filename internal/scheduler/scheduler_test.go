package scheduler

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"CryptoSentry/internal/config"
	"CryptoSentry/internal/engine"
	"CryptoSentry/internal/exchange"
	"CryptoSentry/internal/notifier"
	"CryptoSentry/internal/recorder"
	"CryptoSentry/internal/risk"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	cfg := &config.Config{}
	cfg.Mode = "semi"
	cfg.Trading.Symbols = []string{"KRW-BTC"}
	cfg.Trading.ICTInterval = "1h"
	cfg.Trading.TrendInterval = "5m"
	cfg.Trading.CandleCount = 100
	cfg.Trading.TradeAmount = 100000
	cfg.Trading.Profile = "BALANCED"
	cfg.Risk.MaxTradeAmount = 200000
	cfg.Risk.MaxDailyTrades = 10
	cfg.Risk.MaxDailyLoss = 50000
	cfg.Risk.StopLossPct = 1.0

	ledger, err := risk.NewLedger(filepath.Join(t.TempDir(), "stats.json"), risk.Limits{
		MaxTradeAmount: cfg.Risk.MaxTradeAmount,
		MaxDailyTrades: cfg.Risk.MaxDailyTrades,
		MaxDailyLoss:   cfg.Risk.MaxDailyLoss,
		StopLossPct:    cfg.Risk.StopLossPct,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	eng, err := engine.New(cfg, &exchange.MockFetcher{Price: 50000000}, nil,
		ledger, recorder.NewNoopRecorder(), notifier.NoopNotifier{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return NewScheduler(context.Background(), eng, notifier.NoopNotifier{}, zerolog.Nop())
}

func TestRegisterAll(t *testing.T) {
	s := newTestScheduler(t)
	if err := s.RegisterAll("0 */5 * * * *", "0 0 22 * * *", "0 0 0 * * *"); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if got := len(s.Cron.Entries()); got != 3 {
		t.Errorf("registered entries = %d, want 3", got)
	}
}

func TestRegisterAllRejectsBadExpression(t *testing.T) {
	s := newTestScheduler(t)
	if err := s.RegisterAll("not a cron", "0 0 22 * * *", "0 0 0 * * *"); err == nil {
		t.Error("expected error for invalid analysis cron")
	}
}

func TestHandleCommandDelegation(t *testing.T) {
	s := newTestScheduler(t)

	if reply := s.HandleCommand("/status"); reply == "" {
		t.Error("empty /status reply")
	}
	if reply := s.HandleCommand("unknown"); !strings.Contains(reply, "/status") {
		t.Errorf("help reply = %q", reply)
	}
}
