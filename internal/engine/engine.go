// Package engine runs the per-symbol trading cycle: classify the regime,
// compose the hybrid signal, gate it through the risk ledger, then execute,
// record and notify. All blocking I/O happens here; the analysis packages
// below it are pure.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"CryptoSentry/internal/config"
	"CryptoSentry/internal/exchange"
	"CryptoSentry/internal/indicator"
	"CryptoSentry/internal/model"
	"CryptoSentry/internal/notifier"
	"CryptoSentry/internal/recorder"
	"CryptoSentry/internal/regime"
	"CryptoSentry/internal/risk"
	"CryptoSentry/internal/strategy"
)

// position carries the engine-owned state of one open position, richer than
// the context handed to strategies.
type position struct {
	model.Position
	Amount float64 // quote currency spent
	Volume float64 // base currency held
}

// Engine drives one cycle per symbol per tick. A mutex serializes cycles so
// an overrunning tick never races the next one; everything else relies on
// that single-writer guarantee.
type Engine struct {
	cfg      *config.Config
	fetcher  exchange.Fetcher
	broker   exchange.Broker
	ledger   *risk.Ledger
	recorder recorder.Recorder
	notifier notifier.Notifier
	logger   zerolog.Logger

	analyzers map[string]*regime.Analyzer
	hybrids   map[string]*strategy.HybridStrategy

	mu        sync.Mutex
	positions map[string]position
	lastCycle time.Time
	lastErr   error
}

func New(cfg *config.Config, fetcher exchange.Fetcher, broker exchange.Broker,
	ledger *risk.Ledger, rec recorder.Recorder, notif notifier.Notifier,
	logger zerolog.Logger) (*Engine, error) {

	ict, err := strategy.ForProfileWithOverrides(cfg.Trading.Profile, strategy.Overrides{
		ConfluenceThreshold: cfg.Trading.Overrides.ConfluenceThreshold,
		TakeProfitPct:       cfg.Trading.Overrides.TakeProfitPct,
		StopLossPct:         cfg.Trading.Overrides.StopLossPct,
		PositionSizeRatio:   cfg.Trading.Overrides.PositionSizeRatio,
	})
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		fetcher:   fetcher,
		broker:    broker,
		ledger:    ledger,
		recorder:  rec,
		notifier:  notif,
		logger:    logger.With().Str("component", "engine").Logger(),
		analyzers: make(map[string]*regime.Analyzer),
		hybrids:   make(map[string]*strategy.HybridStrategy),
		positions: make(map[string]position),
	}
	for _, symbol := range cfg.Trading.Symbols {
		e.analyzers[symbol] = regime.NewAnalyzer(14, 14, logger)
		trend := strategy.NewCrossoverStrategy(strategy.DefaultCrossoverConfig())
		e.hybrids[symbol] = strategy.NewHybridStrategy(ict, trend, cfg.Trading.DailyTargetPct, logger)
	}
	return e, nil
}

// RunCycle analyzes every configured symbol once.
func (e *Engine) RunCycle(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error
	for _, symbol := range e.cfg.Trading.Symbols {
		if ctx.Err() != nil {
			return
		}
		if err := e.cycleSymbol(ctx, symbol); err != nil {
			e.logger.Error().Err(err).Str("symbol", symbol).Msg("cycle failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	e.lastCycle = time.Now()
	e.lastErr = firstErr
}

func (e *Engine) cycleSymbol(ctx context.Context, symbol string) error {
	ictSeries, err := e.fetcher.FetchCandles(symbol, e.cfg.Trading.ICTInterval, e.cfg.Trading.CandleCount)
	if err != nil {
		return fmt.Errorf("fetch %s candles: %w", e.cfg.Trading.ICTInterval, err)
	}
	trendSeries, err := e.fetcher.FetchCandles(symbol, e.cfg.Trading.TrendInterval, e.cfg.Trading.CandleCount)
	if err != nil {
		return fmt.Errorf("fetch %s candles: %w", e.cfg.Trading.TrendInterval, err)
	}
	price, err := e.fetcher.FetchCurrentPrice(symbol)
	if err != nil {
		return fmt.Errorf("fetch price: %w", err)
	}

	rsiValue := 50.0
	if rsi, ok := indicator.RSI(ictSeries.Closes(), 14, 30, 70); ok {
		rsiValue = rsi.Value
	}
	state := e.analyzers[symbol].Analyze(ictSeries, rsiValue)
	if err := e.recorder.RecordRegime(&recorder.RegimeSnapshot{Symbol: symbol, State: state}); err != nil {
		e.logger.Error().Err(err).Msg("record regime")
	}

	pos := e.reconcile(symbol, price)

	hybrid := e.hybrids[symbol]
	sig := hybrid.Analyze(
		strategy.Context{Series: ictSeries, Price: price, Position: pos.Position},
		strategy.Context{Series: trendSeries, Price: price, Position: pos.Position},
	)
	e.logger.Debug().Str("symbol", symbol).Str("action", string(sig.Action)).
		Float64("confidence", sig.Confidence).Str("reason", sig.Reason).Msg("signal")

	switch sig.Action {
	case model.ActionBuy:
		return e.executeBuy(ctx, symbol, price, sig, state)
	case model.ActionSell:
		if pos.InPosition {
			return e.executeSell(ctx, symbol, price, sig, pos)
		}
	}
	return nil
}

// reconcile trusts the exchange over memory: a position the engine believes
// in but the balance no longer shows (manual sell, restart) is dropped, and
// a holding the engine never saw is adopted at its average buy price.
func (e *Engine) reconcile(symbol string, price float64) position {
	pos := e.positions[symbol]
	if e.broker == nil {
		return pos
	}

	balances, err := e.broker.Balances()
	if err != nil {
		e.logger.Warn().Err(err).Msg("balance reconcile skipped")
		return pos
	}
	base := balances[baseCurrency(symbol)]

	switch {
	case pos.InPosition && base.Available*price < minPositionValue:
		e.logger.Info().Str("symbol", symbol).Msg("position gone from exchange, dropping")
		pos = position{}
		delete(e.positions, symbol)
	case !pos.InPosition && base.Available*price >= minPositionValue && base.AvgBuyPrice > 0:
		e.logger.Info().Str("symbol", symbol).Float64("volume", base.Available).Msg("adopting exchange position")
		pos = position{
			Position: model.Position{InPosition: true, EntryPrice: base.AvgBuyPrice, StrategyType: "ICT"},
			Amount:   base.Available * base.AvgBuyPrice,
			Volume:   base.Available,
		}
		e.positions[symbol] = pos
	}
	return pos
}

// Dust below this quote value does not count as a position.
const minPositionValue = 5000

func (e *Engine) executeBuy(ctx context.Context, symbol string, price float64, sig model.Signal, state model.MarketState) error {
	amount := e.cfg.Trading.TradeAmount * sig.PositionSizeRatio * state.PositionSizeMultiplier

	denyReason := ""
	if state.PositionSizeMultiplier == 0 {
		denyReason = fmt.Sprintf("regime recommends skip (%s)", state.String())
	} else if ok, reason := e.ledger.CanTrade(amount); !ok {
		denyReason = reason
	}

	if err := e.recorder.RecordSignal(&recorder.SignalEvent{
		Symbol: symbol, Action: string(sig.Action), Strategy: sig.Strategy,
		Confidence: sig.Confidence, Price: price, Reason: sig.Reason,
		Executed: denyReason == "", DenyReason: denyReason,
	}); err != nil {
		e.logger.Error().Err(err).Msg("record signal")
	}
	if denyReason != "" {
		e.logger.Info().Str("symbol", symbol).Str("reason", denyReason).Msg("entry blocked")
		return nil
	}

	volume := amount / price
	if e.fullMode() {
		order, err := e.broker.BuyMarket(symbol, amount)
		if err != nil {
			return fmt.Errorf("market buy: %w", err)
		}
		if order.Volume > 0 {
			volume = order.Volume
		}
	}

	e.positions[symbol] = position{
		Position: model.Position{InPosition: true, EntryPrice: price, StrategyType: sig.Strategy},
		Amount:   amount,
		Volume:   volume,
	}

	if err := e.recorder.RecordTrade(&recorder.TradeEvent{
		Symbol: symbol, Side: "BUY", Strategy: sig.Strategy,
		Price: price, Amount: amount, Volume: volume, Mode: e.cfg.Mode, Reason: sig.Reason,
	}); err != nil {
		e.logger.Error().Err(err).Msg("record trade")
	}
	e.notify(ctx, notifier.FormatTradeAlert("BUY", symbol, sig.Strategy, price, amount, sig.Reason, !e.fullMode()))
	e.logger.Info().Str("symbol", symbol).Float64("amount", amount).Str("strategy", sig.Strategy).Msg("bought")
	return nil
}

func (e *Engine) executeSell(ctx context.Context, symbol string, price float64, sig model.Signal, pos position) error {
	if e.fullMode() {
		if _, err := e.broker.SellMarket(symbol, pos.Volume); err != nil {
			return fmt.Errorf("market sell: %w", err)
		}
	}

	profitPct := 0.0
	if pos.EntryPrice > 0 {
		profitPct = (price - pos.EntryPrice) / pos.EntryPrice * 100
	}
	profit := pos.Amount * profitPct / 100

	e.ledger.RecordTrade(pos.Amount, profit, pos.StrategyType, nil)
	e.hybrids[symbol].UpdateProfit(profitPct)
	delete(e.positions, symbol)

	if err := e.recorder.RecordTrade(&recorder.TradeEvent{
		Symbol: symbol, Side: "SELL", Strategy: pos.StrategyType,
		Price: price, Amount: pos.Amount, Volume: pos.Volume, Profit: profit,
		Mode: e.cfg.Mode, Reason: sig.Reason,
	}); err != nil {
		e.logger.Error().Err(err).Msg("record trade")
	}
	e.notify(ctx, notifier.FormatTradeAlert("SELL", symbol, pos.StrategyType, price, pos.Amount, sig.Reason, !e.fullMode()))
	e.logger.Info().Str("symbol", symbol).Float64("profit", profit).
		Float64("profit_pct", profitPct).Msg("sold")
	return nil
}

func (e *Engine) fullMode() bool { return e.cfg.Mode == "full" && e.broker != nil }

func (e *Engine) notify(ctx context.Context, text string) {
	if err := e.notifier.SendWithRetry(ctx, text, 3); err != nil {
		e.logger.Error().Err(err).Msg("notify failed")
	}
}

// ResetDaily is the midnight job: one clock edge rolls both the ledger and
// every hybrid accumulator, so they can never disagree about the date.
func (e *Engine) ResetDaily() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ledger.ForceRollover()
	for _, h := range e.hybrids {
		h.ResetDaily()
	}
	e.logger.Info().Msg("daily state reset")
}

// DailyReport snapshots the ledger and writes the summary row.
func (e *Engine) DailyReport() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := e.ledger.Stats()
	realized := 0.0
	for _, h := range e.hybrids {
		realized += h.RealizedPct()
	}
	if err := e.recorder.RecordDailySummary(&recorder.DailySummary{Stats: stats, RealizedPct: realized}); err != nil {
		e.logger.Error().Err(err).Msg("record daily summary")
	}
	return notifier.FormatDailyReport(stats, realized, e.cfg.Trading.DailyTargetPct)
}

// Health reports the last completed cycle for the health endpoint.
func (e *Engine) Health() (last time.Time, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastCycle, e.lastErr
}

// HandleCommand serves the Telegram command interface.
func (e *Engine) HandleCommand(cmd string) string {
	switch cmd {
	case "/status":
		stats := e.ledger.Stats()
		return notifier.FormatRiskStatus(stats, e.ledger.RemainingTrades(), e.cfg.Risk.MaxDailyLoss)
	case "/daily":
		return e.DailyReport()
	case "/analyze":
		return e.analyzeAll()
	case "/stop":
		e.ledger.EmergencyStop("telegram /stop")
		return "🛑 emergency stop engaged until midnight rollover"
	}
	return ""
}

func (e *Engine) analyzeAll() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := ""
	for _, symbol := range e.cfg.Trading.Symbols {
		series, err := e.fetcher.FetchCandles(symbol, e.cfg.Trading.ICTInterval, e.cfg.Trading.CandleCount)
		if err != nil {
			out += fmt.Sprintf("%s: fetch failed (%v)\n\n", symbol, err)
			continue
		}
		rsiValue := 50.0
		if rsi, ok := indicator.RSI(series.Closes(), 14, 30, 70); ok {
			rsiValue = rsi.Value
		}
		state := e.analyzers[symbol].Analyze(series, rsiValue)
		out += notifier.FormatMarketState(symbol, state)
		if s, ok := strategy.ForRecommendation(state.RecommendedStrategy); ok {
			out += fmt.Sprintf("\nnext entry evaluated by %s", s.Name())
		} else {
			out += "\nentries paused this regime"
		}
		out += "\n\n"
	}
	return out
}

// baseCurrency extracts "BTC" from "KRW-BTC".
func baseCurrency(symbol string) string {
	for i := 0; i < len(symbol); i++ {
		if symbol[i] == '-' {
			return symbol[i+1:]
		}
	}
	return symbol
}
