package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"GoldSentinel/internal/model"
)

// FormatAlert renders an alert for Telegram.
func FormatAlert(a *model.AlertMessage) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🔥 <b>A+ Setup Found</b> (%s)\n\n", html.EscapeString(a.Symbol)))
	b.WriteString(fmt.Sprintf("Signal: %s\n", a.Signal))
	if a.Pattern != "" {
		b.WriteString(fmt.Sprintf("Pattern: %s\n", a.Pattern))
	}
	b.WriteString(fmt.Sprintf("Entry: %.2f\n", a.Entry))
	b.WriteString(fmt.Sprintf("SL: %.2f (%g pips)\n", a.StopLoss, a.StopLossPips))
	b.WriteString(fmt.Sprintf("TP: %.2f (%g pips)\n", a.TakeProfit, a.TakeProfitPips))
	b.WriteString(fmt.Sprintf("Lot Size: %g\n", a.LotSize))
	b.WriteString(fmt.Sprintf("Level: %s\n", formatLevels(a.Levels)))
	b.WriteString(fmt.Sprintf("Session: %s\n\n", html.EscapeString(a.Session)))
	b.WriteString("⚡ Rule: Trade only if clean candle close is confirmed!")

	return b.String()
}

// FormatStatus renders the bot state for the /status command.
func FormatStatus(symbol string, last model.LastAlert, session string, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>Status</b> | %s\n\n", html.EscapeString(symbol)))
	b.WriteString(fmt.Sprintf("Session: %s\n", html.EscapeString(session)))
	if last.Set {
		b.WriteString(fmt.Sprintf("Last alert: %s @ %g (%s)\n",
			last.Direction, last.Level, last.At.Format("2006-01-02 15:04")))
	} else {
		b.WriteString("Last alert: none\n")
	}
	b.WriteString(fmt.Sprintf("Time: %s\n", now.Format("2006-01-02 15:04")))
	return b.String()
}

// FormatLevels renders the configured levels for the /levels command.
func FormatLevels(levels []float64, tolerance float64) string {
	return fmt.Sprintf("📏 <b>Levels</b>: %s (±%g)", formatLevels(levels), tolerance)
}

func formatLevels(levels []float64) string {
	parts := make([]string, len(levels))
	for i, lv := range levels {
		parts[i] = fmt.Sprintf("%g", lv)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
