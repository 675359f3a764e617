package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs
// migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			side      TEXT NOT NULL,
			strategy  TEXT,
			price     REAL,
			amount    REAL,
			volume    REAL,
			profit    REAL,
			mode      TEXT,
			reason    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			action      TEXT NOT NULL,
			strategy    TEXT,
			confidence  REAL,
			price       REAL,
			reason      TEXT,
			executed    INTEGER,
			deny_reason TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(timestamp)`,

		`CREATE TABLE IF NOT EXISTS regime_snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			volatility  TEXT,
			trend       TEXT,
			atr         REAL,
			atr_percent REAL,
			adx         REAL,
			rsi         REAL,
			profile     TEXT,
			multiplier  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_regime_ts ON regime_snapshots(timestamp)`,

		`CREATE TABLE IF NOT EXISTS daily_summaries (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			date          TEXT NOT NULL,
			total_trades  INTEGER,
			total_wagered REAL,
			total_profit  REAL,
			win_count     INTEGER,
			loss_count    INTEGER,
			ict_trades    INTEGER,
			trend_trades  INTEGER,
			realized_pct  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_date ON daily_summaries(date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTrade(evt *TradeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO trades
		(timestamp, symbol, side, strategy, price, amount, volume, profit, mode, reason)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Symbol, evt.Side, evt.Strategy,
		evt.Price, evt.Amount, evt.Volume, evt.Profit, evt.Mode, evt.Reason,
	)
	return err
}

func (r *SQLiteRecorder) RecordSignal(evt *SignalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	executed := 0
	if evt.Executed {
		executed = 1
	}
	_, err := r.db.Exec(`INSERT INTO signals
		(timestamp, symbol, action, strategy, confidence, price, reason, executed, deny_reason)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Symbol, evt.Action, evt.Strategy,
		evt.Confidence, evt.Price, evt.Reason, executed, evt.DenyReason,
	)
	return err
}

func (r *SQLiteRecorder) RecordRegime(snap *RegimeSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := snap.State
	_, err := r.db.Exec(`INSERT INTO regime_snapshots
		(timestamp, symbol, volatility, trend, atr, atr_percent, adx, rsi, profile, multiplier)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), snap.Symbol, string(s.Volatility), string(s.Trend),
		s.ATR, s.ATRPercent, s.ADX, s.RSI, s.RecommendedStrategy, s.PositionSizeMultiplier,
	)
	return err
}

func (r *SQLiteRecorder) RecordDailySummary(sum *DailySummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := sum.Stats
	_, err := r.db.Exec(`INSERT INTO daily_summaries
		(timestamp, date, total_trades, total_wagered, total_profit,
		 win_count, loss_count, ict_trades, trend_trades, realized_pct)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), st.Date, st.TotalTrades, st.TotalWagered, st.TotalProfit,
		st.WinCount, st.LossCount, st.ICTTrades, st.TrendTrades, sum.RealizedPct,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
