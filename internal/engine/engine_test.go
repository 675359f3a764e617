package engine

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"CryptoSentry/internal/config"
	"CryptoSentry/internal/exchange"
	"CryptoSentry/internal/model"
	"CryptoSentry/internal/notifier"
	"CryptoSentry/internal/recorder"
	"CryptoSentry/internal/risk"
)

// captureRecorder keeps every event in memory for assertions.
type captureRecorder struct {
	trades    []recorder.TradeEvent
	signals   []recorder.SignalEvent
	regimes   []recorder.RegimeSnapshot
	summaries []recorder.DailySummary
}

func (c *captureRecorder) RecordTrade(evt *recorder.TradeEvent) error {
	c.trades = append(c.trades, *evt)
	return nil
}

func (c *captureRecorder) RecordSignal(evt *recorder.SignalEvent) error {
	c.signals = append(c.signals, *evt)
	return nil
}

func (c *captureRecorder) RecordRegime(snap *recorder.RegimeSnapshot) error {
	c.regimes = append(c.regimes, *snap)
	return nil
}

func (c *captureRecorder) RecordDailySummary(sum *recorder.DailySummary) error {
	c.summaries = append(c.summaries, *sum)
	return nil
}

func (c *captureRecorder) Close() error { return nil }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Mode = "semi"
	cfg.Trading.Symbols = []string{"KRW-BTC"}
	cfg.Trading.ICTInterval = "1h"
	cfg.Trading.TrendInterval = "5m"
	cfg.Trading.CandleCount = 100
	cfg.Trading.TradeAmount = 100000
	cfg.Trading.DailyTargetPct = 2.0
	cfg.Trading.Profile = "BALANCED"
	cfg.Risk.MaxTradeAmount = 200000
	cfg.Risk.MaxDailyTrades = 10
	cfg.Risk.MaxDailyLoss = 50000
	cfg.Risk.StopLossPct = 1.0
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config, fetcher exchange.Fetcher, broker exchange.Broker) (*Engine, *captureRecorder) {
	t.Helper()
	ledger, err := risk.NewLedger(filepath.Join(t.TempDir(), "stats.json"), risk.Limits{
		MaxTradeAmount: cfg.Risk.MaxTradeAmount,
		MaxDailyTrades: cfg.Risk.MaxDailyTrades,
		MaxDailyLoss:   cfg.Risk.MaxDailyLoss,
		StopLossPct:    cfg.Risk.StopLossPct,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	rec := &captureRecorder{}
	e, err := New(cfg, fetcher, broker, ledger, rec, notifier.NoopNotifier{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, rec
}

func TestRunCycleRecordsRegimeAndHealth(t *testing.T) {
	fetcher := &exchange.MockFetcher{Price: 50000000}
	e, rec := newTestEngine(t, testConfig(), fetcher, nil)

	e.RunCycle(context.Background())

	if len(rec.regimes) != 1 {
		t.Fatalf("regimes recorded = %d, want 1", len(rec.regimes))
	}
	if rec.regimes[0].Symbol != "KRW-BTC" {
		t.Errorf("regime symbol = %q", rec.regimes[0].Symbol)
	}
	last, err := e.Health()
	if last.IsZero() {
		t.Error("lastCycle not set after RunCycle")
	}
	if err != nil {
		t.Errorf("lastErr = %v, want nil", err)
	}
}

func TestRunCycleFetchErrorSurfacesInHealth(t *testing.T) {
	fetcher := &exchange.MockFetcher{Price: 50000000, Err: context.DeadlineExceeded}
	e, rec := newTestEngine(t, testConfig(), fetcher, nil)

	e.RunCycle(context.Background())

	if _, err := e.Health(); err == nil {
		t.Error("expected lastErr after fetch failure")
	}
	if len(rec.trades) != 0 {
		t.Errorf("trades recorded on failed cycle: %d", len(rec.trades))
	}
}

func TestExecuteBuyOpensPosition(t *testing.T) {
	e, rec := newTestEngine(t, testConfig(), &exchange.MockFetcher{Price: 100}, nil)

	sig := model.Signal{
		Action: model.ActionBuy, Strategy: "ICT", Confidence: 0.8,
		Reason: "test entry", PositionSizeRatio: 0.2,
	}
	state := model.MarketState{PositionSizeMultiplier: 1.0}

	if err := e.executeBuy(context.Background(), "KRW-BTC", 100, sig, state); err != nil {
		t.Fatalf("executeBuy: %v", err)
	}

	pos, ok := e.positions["KRW-BTC"]
	if !ok {
		t.Fatal("no position after buy")
	}
	if pos.EntryPrice != 100 {
		t.Errorf("EntryPrice = %v, want 100", pos.EntryPrice)
	}
	if pos.Amount != 20000 { // 100000 * 0.2 * 1.0
		t.Errorf("Amount = %v, want 20000", pos.Amount)
	}
	if pos.StrategyType != "ICT" {
		t.Errorf("StrategyType = %q", pos.StrategyType)
	}
	if len(rec.trades) != 1 || rec.trades[0].Side != "BUY" {
		t.Fatalf("trades = %+v", rec.trades)
	}
	if len(rec.signals) != 1 || !rec.signals[0].Executed {
		t.Fatalf("signals = %+v", rec.signals)
	}
}

func TestExecuteBuyBlockedByRegimeSkip(t *testing.T) {
	e, rec := newTestEngine(t, testConfig(), &exchange.MockFetcher{Price: 100}, nil)

	sig := model.Signal{Action: model.ActionBuy, Strategy: "ICT", PositionSizeRatio: 0.2}
	state := model.MarketState{PositionSizeMultiplier: 0}

	if err := e.executeBuy(context.Background(), "KRW-BTC", 100, sig, state); err != nil {
		t.Fatalf("executeBuy: %v", err)
	}
	if _, ok := e.positions["KRW-BTC"]; ok {
		t.Error("position opened despite regime skip")
	}
	if len(rec.trades) != 0 {
		t.Errorf("trade recorded despite skip: %+v", rec.trades)
	}
	if len(rec.signals) != 1 || rec.signals[0].Executed {
		t.Fatalf("signals = %+v", rec.signals)
	}
	if !strings.Contains(rec.signals[0].DenyReason, "skip") {
		t.Errorf("DenyReason = %q", rec.signals[0].DenyReason)
	}
}

func TestExecuteBuyBlockedByRiskGate(t *testing.T) {
	cfg := testConfig()
	cfg.Risk.MaxTradeAmount = 10000 // below the 20000 the signal asks for
	e, rec := newTestEngine(t, cfg, &exchange.MockFetcher{Price: 100}, nil)

	sig := model.Signal{Action: model.ActionBuy, Strategy: "ICT", PositionSizeRatio: 0.2}
	state := model.MarketState{PositionSizeMultiplier: 1.0}

	if err := e.executeBuy(context.Background(), "KRW-BTC", 100, sig, state); err != nil {
		t.Fatalf("executeBuy: %v", err)
	}
	if _, ok := e.positions["KRW-BTC"]; ok {
		t.Error("position opened despite risk denial")
	}
	if len(rec.signals) != 1 || rec.signals[0].DenyReason == "" {
		t.Fatalf("signals = %+v", rec.signals)
	}
}

func TestExecuteSellClosesPositionAndBooksProfit(t *testing.T) {
	e, rec := newTestEngine(t, testConfig(), &exchange.MockFetcher{Price: 102}, nil)
	e.positions["KRW-BTC"] = position{
		Position: model.Position{InPosition: true, EntryPrice: 100, StrategyType: "ICT"},
		Amount:   20000,
		Volume:   200,
	}

	sig := model.Signal{Action: model.ActionSell, Strategy: "ICT", Reason: "take profit"}
	if err := e.executeSell(context.Background(), "KRW-BTC", 102, sig, e.positions["KRW-BTC"]); err != nil {
		t.Fatalf("executeSell: %v", err)
	}

	if _, ok := e.positions["KRW-BTC"]; ok {
		t.Error("position still open after sell")
	}
	stats := e.ledger.Stats()
	if stats.TotalTrades != 1 {
		t.Errorf("TotalTrades = %d, want 1", stats.TotalTrades)
	}
	if stats.TotalProfit != 400 { // 20000 * 2%
		t.Errorf("TotalProfit = %v, want 400", stats.TotalProfit)
	}
	if stats.WinCount != 1 {
		t.Errorf("WinCount = %d, want 1", stats.WinCount)
	}
	if len(rec.trades) != 1 || rec.trades[0].Side != "SELL" || rec.trades[0].Profit != 400 {
		t.Fatalf("trades = %+v", rec.trades)
	}
	if got := e.hybrids["KRW-BTC"].RealizedPct(); got != 2.0 {
		t.Errorf("RealizedPct = %v, want 2.0", got)
	}
}

func TestExecuteSellFullModeHitsBroker(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = "full"
	broker := exchange.NewMockBroker("KRW", map[string]exchange.Balance{
		"KRW": {Currency: "KRW", Available: 1000000},
		"BTC": {Currency: "BTC", Available: 200, AvgBuyPrice: 100},
	}, 102)
	e, _ := newTestEngine(t, cfg, &exchange.MockFetcher{Price: 102}, broker)
	e.positions["KRW-BTC"] = position{
		Position: model.Position{InPosition: true, EntryPrice: 100, StrategyType: "ICT"},
		Amount:   20000,
		Volume:   200,
	}

	sig := model.Signal{Action: model.ActionSell, Strategy: "ICT", Reason: "stop loss"}
	if err := e.executeSell(context.Background(), "KRW-BTC", 102, sig, e.positions["KRW-BTC"]); err != nil {
		t.Fatalf("executeSell: %v", err)
	}

	balances, _ := broker.Balances()
	if got := balances["BTC"].Available; got != 0 {
		t.Errorf("BTC balance after sell = %v, want 0", got)
	}
}

func TestReconcileAdoptsAndDropsPositions(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = "full"
	broker := exchange.NewMockBroker("KRW", map[string]exchange.Balance{
		"KRW": {Currency: "KRW", Available: 1000000},
		"BTC": {Currency: "BTC", Available: 0.5, AvgBuyPrice: 50000000},
	}, 50000000)
	e, _ := newTestEngine(t, cfg, &exchange.MockFetcher{Price: 50000000}, broker)

	// Unknown exchange holding gets adopted at its average buy price.
	pos := e.reconcile("KRW-BTC", 50000000)
	if !pos.InPosition {
		t.Fatal("exchange holding not adopted")
	}
	if pos.EntryPrice != 50000000 {
		t.Errorf("EntryPrice = %v", pos.EntryPrice)
	}
	if pos.Volume != 0.5 {
		t.Errorf("Volume = %v", pos.Volume)
	}

	// Position the exchange no longer shows gets dropped.
	if _, err := broker.SellMarket("KRW-BTC", 0.5); err != nil {
		t.Fatalf("SellMarket: %v", err)
	}
	pos = e.reconcile("KRW-BTC", 50000000)
	if pos.InPosition {
		t.Error("stale position survived reconcile")
	}
	if _, ok := e.positions["KRW-BTC"]; ok {
		t.Error("stale position still tracked")
	}
}

func TestResetDailyClearsLedgerAndHybrids(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), &exchange.MockFetcher{Price: 100}, nil)
	e.ledger.RecordTrade(10000, 200, "ICT", nil)
	e.hybrids["KRW-BTC"].UpdateProfit(1.5)

	e.ResetDaily()

	if got := e.ledger.Stats().TotalTrades; got != 0 {
		t.Errorf("TotalTrades after reset = %d", got)
	}
	if got := e.hybrids["KRW-BTC"].RealizedPct(); got != 0 {
		t.Errorf("RealizedPct after reset = %v", got)
	}
}

func TestDailyReportRecordsSummary(t *testing.T) {
	e, rec := newTestEngine(t, testConfig(), &exchange.MockFetcher{Price: 100}, nil)
	e.ledger.RecordTrade(10000, 300, "ICT", nil)
	e.hybrids["KRW-BTC"].UpdateProfit(3.0)

	report := e.DailyReport()

	if len(rec.summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(rec.summaries))
	}
	if rec.summaries[0].RealizedPct != 3.0 {
		t.Errorf("RealizedPct = %v", rec.summaries[0].RealizedPct)
	}
	if !strings.Contains(report, "1") {
		t.Errorf("report missing trade count: %q", report)
	}
}

func TestHandleCommandStopEngagesEmergencyStop(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), &exchange.MockFetcher{Price: 100}, nil)

	reply := e.HandleCommand("/stop")
	if reply == "" {
		t.Fatal("empty /stop reply")
	}
	if ok, reason := e.ledger.CanTrade(1000); ok {
		t.Error("trading still allowed after /stop")
	} else if !strings.Contains(reason, "limit") {
		t.Errorf("deny reason = %q", reason)
	}
}

func candleSeries(n int, close func(i int) float64) model.Series {
	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	series := make(model.Series, n)
	for i := range series {
		c := close(i)
		series[i] = model.Candle{
			Time: base.Add(time.Duration(i) * time.Hour),
			Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 100,
		}
	}
	return series
}

func TestAnalyzeCommandResolvesRecommendation(t *testing.T) {
	// Steady rise: ADX saturates, RSI pins at 100, so the regime recommends
	// the conservative trend profile rather than pausing entries.
	rising := candleSeries(40, func(i int) float64 { return 100 + float64(i) })
	fetcher := &exchange.MockFetcher{
		Price:  140,
		Series: map[string]model.Series{"1h": rising},
	}
	e, _ := newTestEngine(t, testConfig(), fetcher, nil)

	out := e.HandleCommand("/analyze")
	if !strings.Contains(out, "KRW-BTC") {
		t.Fatalf("missing symbol in analyze output: %q", out)
	}
	if !strings.Contains(out, "next entry evaluated by ICT") {
		t.Errorf("recommendation not resolved to a strategy: %q", out)
	}
}

func TestAnalyzeCommandSkipRegimePausesEntries(t *testing.T) {
	flat := candleSeries(40, func(int) float64 { return 100 })
	fetcher := &exchange.MockFetcher{
		Price:  100,
		Series: map[string]model.Series{"1h": flat},
	}
	e, _ := newTestEngine(t, testConfig(), fetcher, nil)

	out := e.HandleCommand("/analyze")
	if !strings.Contains(out, "entries paused") {
		t.Errorf("skip regime must pause entries: %q", out)
	}
}

func TestHandleCommandStatus(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(), &exchange.MockFetcher{Price: 100}, nil)
	if reply := e.HandleCommand("/status"); reply == "" {
		t.Error("empty /status reply")
	}
	if reply := e.HandleCommand("/nonsense"); reply != "" {
		t.Errorf("unknown command reply = %q", reply)
	}
}
