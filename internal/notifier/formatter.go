package notifier

import (
	"fmt"
	"strings"
	"time"

	"CryptoSentry/internal/model"
)

// FormatStartup announces the bot coming online.
func FormatStartup(mode string, symbols []string) string {
	return fmt.Sprintf("🚀 <b>CryptoSentry started</b>\nmode: %s\nsymbols: %s",
		mode, strings.Join(symbols, ", "))
}

// FormatShutdown announces a graceful stop.
func FormatShutdown(reason string) string {
	return fmt.Sprintf("🛑 <b>CryptoSentry stopped</b>\n%s", reason)
}

// FormatTradeAlert formats a buy or sell notification.
func FormatTradeAlert(side, symbol, strategy string, price, amount float64, reason string, dryRun bool) string {
	var b strings.Builder
	icon := "🟢"
	if side == "SELL" {
		icon = "🔴"
	}
	b.WriteString(fmt.Sprintf("%s <b>%s %s</b>", icon, side, symbol))
	if dryRun {
		b.WriteString(" (signal only)")
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("strategy: %s\n", strategy))
	b.WriteString(fmt.Sprintf("price: %s\n", formatPrice(price)))
	if amount > 0 {
		b.WriteString(fmt.Sprintf("amount: %s\n", formatPrice(amount)))
	}
	b.WriteString(reason)
	return b.String()
}

// FormatDailyReport summarizes the day's ledger for the evening report.
func FormatDailyReport(stats model.DailyStats, realizedPct, targetPct float64) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Daily report</b> | %s\n\n", stats.Date))
	b.WriteString(fmt.Sprintf("trades: %d (ICT %d / trend %d)\n", stats.TotalTrades, stats.ICTTrades, stats.TrendTrades))
	b.WriteString(fmt.Sprintf("wagered: %s\n", formatPrice(stats.TotalWagered)))
	b.WriteString(fmt.Sprintf("profit: %+.0f\n", stats.TotalProfit))
	b.WriteString(fmt.Sprintf("win rate: %.0f%% (%dW / %dL)\n", stats.WinRate()*100, stats.WinCount, stats.LossCount))
	b.WriteString(fmt.Sprintf("daily target: %.2f%% / %.2f%%", realizedPct, targetPct))
	if realizedPct >= targetPct && targetPct > 0 {
		b.WriteString(" ✅")
	}
	return b.String()
}

// FormatMarketState renders the regime classifier's view for /analyze.
func FormatMarketState(symbol string, state model.MarketState) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔍 <b>%s</b> | %s\n\n", symbol, time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("volatility: %s (ATR %.2f%%)\n", state.Volatility, state.ATRPercent))
	b.WriteString(fmt.Sprintf("trend: %s (ADX %.1f)\n", state.Trend, state.ADX))
	b.WriteString(fmt.Sprintf("RSI: %.1f\n", state.RSI))
	b.WriteString(fmt.Sprintf("profile: %s ×%.1f", state.RecommendedStrategy, state.PositionSizeMultiplier))
	return b.String()
}

// FormatRiskStatus renders the ledger's remaining capacity for /status.
func FormatRiskStatus(stats model.DailyStats, remainingTrades int, maxDailyLoss float64) string {
	var b strings.Builder
	b.WriteString("🛡 <b>Risk status</b>\n\n")
	b.WriteString(fmt.Sprintf("date: %s\n", stats.Date))
	b.WriteString(fmt.Sprintf("trades remaining: %d\n", remainingTrades))
	b.WriteString(fmt.Sprintf("profit today: %+.0f\n", stats.TotalProfit))
	b.WriteString(fmt.Sprintf("loss headroom: %.0f", maxDailyLoss+stats.TotalProfit))
	return b.String()
}

func formatPrice(v float64) string {
	if v >= 1000 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
