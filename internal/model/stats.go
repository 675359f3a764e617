package model

// DailyStatsVersion is the persisted schema version of DailyStats.
const DailyStatsVersion = 1

// DailyStats is the day-bucketed trading ledger record, keyed by calendar
// date. Owned exclusively by the risk ledger, which is its only writer.
type DailyStats struct {
	Version      int     `json:"version"`
	Date         string  `json:"date"` // YYYY-MM-DD
	TotalTrades  int     `json:"total_trades"`
	TotalWagered float64 `json:"total_wagered"`
	TotalProfit  float64 `json:"total_profit"`
	WinCount     int     `json:"win_count"`
	LossCount    int     `json:"loss_count"`
	ICTTrades    int     `json:"ict_trades"`
	TrendTrades  int     `json:"trend_trades"`
}

// NewDailyStats returns a zeroed record for the given date.
func NewDailyStats(date string) DailyStats {
	return DailyStats{Version: DailyStatsVersion, Date: date}
}

// WinRate returns wins over total trades, 0 when no trades yet.
func (d DailyStats) WinRate() float64 {
	if d.TotalTrades == 0 {
		return 0
	}
	return float64(d.WinCount) / float64(d.TotalTrades)
}
