package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"WolfDesk/internal/model"
)

// num formats v with prec decimals, or "n/a" when undefined.
func num(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", prec, v)
}

// FormatTechnicalSummary renders the fixed plain-text summary of an analysis.
func FormatTechnicalSummary(a *model.Analysis) string {
	last := a.Last
	slope := "falling"
	if a.TrendRising {
		slope = "rising"
	}
	side := "BELOW"
	if a.AboveEMA20 {
		side = "ABOVE"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "- Price: %s (%+.2f%%)\n", num(last.Close, 2), a.ChangePct)
	fmt.Fprintf(&b, "- Candle: %s\n", a.Classification.Candle)
	fmt.Fprintf(&b, "- MA20 is %s. Price %s MA20.\n", slope, side)
	fmt.Fprintf(&b, "- Vol: %s (%sx the 20-day average)\n", a.Classification.Volume, num(last.VolumeRatio, 1))
	fmt.Fprintf(&b, "- Money flow: %s\n", a.Classification.MoneyFlow)
	fmt.Fprintf(&b, "- RSI: %s | MACD: %s | ATR: %s", num(last.RSI14, 1), num(last.MACD, 3), num(last.ATR14, 2))
	return b.String()
}

// FormatAnalysis formats an analysis into a Telegram message.
func FormatAnalysis(a *model.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🐺 <b>%s</b> | %s\n\n", html.EscapeString(a.Symbol), a.Last.Time.Format("2006-01-02"))
	b.WriteString(html.EscapeString(FormatTechnicalSummary(a)))
	b.WriteString("\n")

	if p := a.Position; p != nil {
		fmt.Fprintf(&b, "\n💼 <b>Holding</b> cost %.2f | P&amp;L %+.2f%%", p.BuyPrice, p.ProfitPct)
		if p.Note != "" {
			fmt.Fprintf(&b, "\n⚠️ %s", p.Note)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatScreenReport formats a screener run.
func FormatScreenReport(r *model.ScreenReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📡 <b>Screener</b> | %s\n", r.StartedAt.Format("2006-01-02 15:04"))
	c := r.Criteria
	fmt.Fprintf(&b, "RSI %.0f-%.0f", c.RSIMin, c.RSIMax)
	if c.RequireMA50 {
		b.WriteString(" | above MA50")
	}
	if c.RequireMACD {
		b.WriteString(" | MACD above signal")
	}
	b.WriteString("\n\n")

	if len(r.Hits) == 0 {
		b.WriteString("No ticker matched.\n")
	}
	for i, h := range r.Hits {
		tags := "Standard setup"
		if len(h.Tags) > 0 {
			tags = strings.Join(h.Tags, " + ")
		}
		fmt.Fprintf(&b, "%d. <b>%s</b> %.2f (%+.2f%%) RSI %s Vol %sx\n   %s\n",
			i+1, html.EscapeString(h.Symbol), h.Price, h.ChangePct, num(h.RSI, 1), num(h.VolumeRatio, 1),
			html.EscapeString(tags))
	}

	fmt.Fprintf(&b, "\nScanned %d | skipped %d | failed %d | %s",
		r.Scanned, r.Skipped, len(r.Failed), r.Duration.Round(time.Millisecond))
	return b.String()
}

// FormatPortfolio formats a portfolio check.
func FormatPortfolio(quotes []model.Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💼 <b>Portfolio</b> | %s\n\n", time.Now().Format("2006-01-02 15:04"))
	if len(quotes) == 0 {
		b.WriteString("No holdings.")
		return b.String()
	}
	for _, q := range quotes {
		ticker := html.EscapeString(q.Ticker)
		if q.Err != nil {
			fmt.Fprintf(&b, "<b>%s</b> cost %.2f | price unavailable\n", ticker, q.CostBasis)
			continue
		}
		fmt.Fprintf(&b, "<b>%s</b> %.2f (cost %.2f, %+.2f%%)\n   %s", ticker, q.Price, q.CostBasis, q.ProfitPct, q.Recommendation)
		if q.TargetHit {
			fmt.Fprintf(&b, " | 🎯 target %.2f reached", q.Target)
		}
		if q.StopHit {
			fmt.Fprintf(&b, " | 🛑 stop %.2f hit", q.StopLoss)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// HelpText lists the bot commands.
const HelpText = `🐺 <b>WolfDesk</b>
/analyze TICKER [buy_price] - technical analysis
/screen - scan the watchlist
/portfolio - check holdings
/help - this message`
