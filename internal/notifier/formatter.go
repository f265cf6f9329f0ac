package notifier

import (
	"fmt"
	"strings"
	"time"

	"TDSentinel/internal/journal"
	"TDSentinel/internal/model"
)

// FormatSignal formats one alert candidate into a Telegram HTML message.
func FormatSignal(sig model.SymbolSignal, timeframe string) string {
	var b strings.Builder

	b.WriteString("<b>📊 TD SIGNAL</b>\n\n")
	b.WriteString(fmt.Sprintf("<b>Stock:</b> %s\n", sig.Symbol))
	if sig.Company != "" {
		b.WriteString(fmt.Sprintf("<b>Company:</b> %s\n", sig.Company))
	}
	b.WriteString(fmt.Sprintf("<b>Signal:</b> %s\n", sig.Kind))
	b.WriteString(fmt.Sprintf("<b>Bias:</b> %s\n", sig.Direction))
	b.WriteString(fmt.Sprintf("<b>Setup:</b> %d\n", sig.Setup))
	b.WriteString(fmt.Sprintf("<b>Countdown:</b> %d\n", sig.Countdown))
	b.WriteString(fmt.Sprintf("<b>Close:</b> %.2f\n", sig.Close))
	b.WriteString(fmt.Sprintf("<b>Timeframe:</b> %s", strings.ToUpper(timeframe)))

	var extra []string
	if sig.Perfected {
		extra = append(extra, "✅ Setup Perfected")
	}
	if sig.Validated {
		extra = append(extra, "✅ Exhaustion Validated")
	}
	if sig.Oscillator.Valid {
		extra = append(extra, fmt.Sprintf("Oscillator: %.3f", sig.Oscillator.Value))
	}
	if sig.ContextRSI.Valid {
		extra = append(extra, fmt.Sprintf("RSI(14): %.1f", sig.ContextRSI.Value))
	}
	if sig.Status != model.StatusNone {
		age := "n/a"
		if sig.Age.Valid {
			age = fmt.Sprintf("%d", sig.Age.Value)
		}
		extra = append(extra, fmt.Sprintf("Recency: %s (age %s)", sig.Status, age))
	}
	if len(extra) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(extra, "\n"))
	}

	if sig.Aligned {
		b.WriteString("\n\n🔥 60min Alignment Confirmed")
	}

	return b.String()
}

// FormatScanSummary formats a completed scan into a short status line.
func FormatScanSummary(sum model.ScanSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>🔍 Scan Complete</b> | %s\n\n", sum.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Universe: %d\n", sum.UniverseSize))
	b.WriteString(fmt.Sprintf("Scanned: %d | Skipped: %d\n", sum.Scanned, sum.Skipped))
	b.WriteString(fmt.Sprintf("Signals: %d\n", sum.Signals))
	b.WriteString(fmt.Sprintf("Took: %s", sum.Duration.Round(time.Second)))
	return b.String()
}

// FormatStatus formats the persisted scan bookkeeping for the /status command.
func FormatStatus(state journal.State) string {
	var b strings.Builder
	b.WriteString("<b>📦 Scanner Status</b>\n\n")
	if state.LastScanAt.IsZero() {
		b.WriteString("Last scan: never\n")
	} else {
		b.WriteString(fmt.Sprintf("Last scan: %s\n", state.LastScanAt.Format("2006-01-02 15:04")))
	}
	b.WriteString(fmt.Sprintf("Total scans: %d\n", state.TotalScans))
	b.WriteString(fmt.Sprintf("Alerts sent: %d\n", state.TotalSignals))
	b.WriteString(fmt.Sprintf("Tracked keys: %d\n", len(state.LastAlerts)))
	if !state.UpdatedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Updated: %s", state.UpdatedAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}
