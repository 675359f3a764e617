package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Mode     string `yaml:"mode"`      // "semi" (signals only) or "full" (real orders)
	LogLevel string `yaml:"log_level"` // zerolog level name

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`

	Upbit struct {
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"upbit"`

	Trading struct {
		Symbols        []string `yaml:"symbols"`
		ICTInterval    string   `yaml:"ict_interval"`
		TrendInterval  string   `yaml:"trend_interval"`
		CandleCount    int      `yaml:"candle_count"`
		TradeAmount    float64  `yaml:"trade_amount"` // quote currency per full-size entry
		DailyTargetPct float64  `yaml:"daily_target_pct"`
		Profile        string   `yaml:"profile"` // hybrid's structural leg profile

		// Optional per-field overrides applied on top of the profile.
		// Zero means the profile's value stands.
		Overrides struct {
			ConfluenceThreshold float64 `yaml:"confluence_threshold"`
			TakeProfitPct       float64 `yaml:"take_profit_pct"`
			StopLossPct         float64 `yaml:"stop_loss_pct"`
			PositionSizeRatio   float64 `yaml:"position_size_ratio"`
		} `yaml:"overrides"`
	} `yaml:"trading"`

	Risk struct {
		MaxTradeAmount float64 `yaml:"max_trade_amount"`
		MaxDailyTrades int     `yaml:"max_daily_trades"`
		MaxDailyLoss   float64 `yaml:"max_daily_loss"`
		StopLossPct    float64 `yaml:"stop_loss_pct"`
		StateFile      string  `yaml:"state_file"`
	} `yaml:"risk"`

	Schedule struct {
		AnalysisCron   string `yaml:"analysis_cron"`
		DailyReport    string `yaml:"daily_report_cron"`
		MidnightReset  string `yaml:"midnight_reset_cron"`
		HealthAddr     string `yaml:"health_addr"`
		CacheTTLSecond int    `yaml:"cache_ttl_seconds"`
	} `yaml:"schedule"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is fine: env plus defaults make a
// runnable semi-mode config.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("UPBIT_ACCESS_KEY"); v != "" {
		cfg.Upbit.AccessKey = v
	}
	if v := os.Getenv("UPBIT_SECRET_KEY"); v != "" {
		cfg.Upbit.SecretKey = v
	}
	if v := os.Getenv("TRADING_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TRADE_AMOUNT"); v != "" {
		if amount, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trading.TradeAmount = amount
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Mode == "" {
		cfg.Mode = "semi"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if len(cfg.Trading.Symbols) == 0 {
		cfg.Trading.Symbols = []string{"KRW-BTC"}
	}
	if cfg.Trading.ICTInterval == "" {
		cfg.Trading.ICTInterval = "1h"
	}
	if cfg.Trading.TrendInterval == "" {
		cfg.Trading.TrendInterval = "5m"
	}
	if cfg.Trading.CandleCount == 0 {
		cfg.Trading.CandleCount = 100
	}
	if cfg.Trading.TradeAmount == 0 {
		cfg.Trading.TradeAmount = 100000
	}
	if cfg.Trading.DailyTargetPct == 0 {
		cfg.Trading.DailyTargetPct = 2.0
	}
	if cfg.Trading.Profile == "" {
		cfg.Trading.Profile = "BALANCED"
	}
	if cfg.Risk.MaxTradeAmount == 0 {
		cfg.Risk.MaxTradeAmount = 200000
	}
	if cfg.Risk.MaxDailyTrades == 0 {
		cfg.Risk.MaxDailyTrades = 10
	}
	if cfg.Risk.MaxDailyLoss == 0 {
		cfg.Risk.MaxDailyLoss = 50000
	}
	if cfg.Risk.StopLossPct == 0 {
		cfg.Risk.StopLossPct = 1.0
	}
	if cfg.Risk.StateFile == "" {
		cfg.Risk.StateFile = "data/daily_stats.json"
	}
	if cfg.Schedule.AnalysisCron == "" {
		cfg.Schedule.AnalysisCron = "0 */5 * * * *"
	}
	if cfg.Schedule.DailyReport == "" {
		cfg.Schedule.DailyReport = "0 0 22 * * *"
	}
	if cfg.Schedule.MidnightReset == "" {
		cfg.Schedule.MidnightReset = "0 0 0 * * *"
	}
	if cfg.Schedule.HealthAddr == "" {
		cfg.Schedule.HealthAddr = ":8080"
	}
	if cfg.Schedule.CacheTTLSecond == 0 {
		cfg.Schedule.CacheTTLSecond = 60
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/cryptosentry.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set for the chosen mode.
func (c *Config) Validate() error {
	if c.Mode != "semi" && c.Mode != "full" {
		return fmt.Errorf("mode must be semi or full, got %q", c.Mode)
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.Mode == "full" {
		if c.Upbit.AccessKey == "" || c.Upbit.SecretKey == "" {
			return fmt.Errorf("upbit.access_key and upbit.secret_key are required in full mode")
		}
	}
	if c.Trading.TradeAmount <= 0 {
		return fmt.Errorf("trading.trade_amount must be positive")
	}
	if c.Risk.MaxDailyTrades <= 0 {
		return fmt.Errorf("risk.max_daily_trades must be positive")
	}
	if !knownProfiles[c.Trading.Profile] {
		return fmt.Errorf("unknown trading.profile %q", c.Trading.Profile)
	}
	return nil
}

// knownProfiles mirrors the strategy package's preset names without
// importing it, keeping config a leaf package.
var knownProfiles = map[string]bool{
	"CONSERVATIVE":           true,
	"BALANCED":               true,
	"ICT_OPTIMIZED":          true,
	"TREND_ONLY":             true,
	"RANGING_MEAN_REVERSION": true,
	"FVG_RETRACEMENT":        true,
}
