package notifier

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"time"

	"MiningPulse/internal/analysis"
	"MiningPulse/internal/model"

	"github.com/guregu/null/v5"
)

// FormatDailyReport condenses the day's quotes and per-instrument signals.
func FormatDailyReport(now time.Time, quotes []model.Quote, results []*analysis.InstrumentResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>MiningPulse daily report</b> | %s\n\n", now.Format("2006-01-02"))

	if len(quotes) > 0 {
		b.WriteString("<b>Market</b>\n")
		for _, q := range quotes {
			b.WriteString(quoteLine(q))
		}
		b.WriteString("\n")
	}

	if len(results) > 0 {
		b.WriteString("<b>Signals</b>\n")
		for _, r := range results {
			if r.Signal == nil {
				continue
			}
			fmt.Fprintf(&b, "  %s: %s (%+.2f) | RSI %s %s | %s\n",
				Escape(r.Symbol), Escape(r.Signal.Label), r.Signal.TotalScore,
				formatFloat(r.RSI.Last(), 0), r.Signal.Zone, r.Signal.Trend)
			if r.Signal.WarningMsg != "" {
				fmt.Fprintf(&b, "    ⚠️ %s\n", Escape(r.Signal.WarningMsg))
			}
		}
	}
	return b.String()
}

// FormatQuotes lists live quotes, one line per instrument.
func FormatQuotes(now time.Time, quotes []model.Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💹 <b>Live quotes</b> | %s\n\n", now.Format("2006-01-02 15:04"))
	if len(quotes) == 0 {
		b.WriteString("No instruments configured.\n")
		return b.String()
	}
	for _, q := range quotes {
		b.WriteString(quoteLine(q))
	}
	return b.String()
}

func quoteLine(q model.Quote) string {
	if !q.Available {
		return fmt.Sprintf("  %s: %s\n", Escape(q.Symbol), Escape(q.Message))
	}
	return fmt.Sprintf("  %s: %s (%s today, %s 1M) vol %s\n",
		Escape(q.Symbol), FormatRupiah(q.Price), formatPct(null.FloatFrom(q.ChangePct)), formatPct(null.FloatFrom(q.MonthChangePct)),
		groupThousands(q.Volume))
}

// FormatInstrument details one instrument's analysis.
func FormatInstrument(r *analysis.InstrumentResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔎 <b>%s</b> %s | %s\n", Escape(r.Symbol), Escape(r.Name), Escape(r.Window))
	if len(r.Bars) == 0 {
		b.WriteString("No trading days in this window.\n")
		writeWarnings(&b, r.Warnings)
		return b.String()
	}
	fmt.Fprintf(&b, "%s to %s, %d sessions\n\n", r.From.Format("2006-01-02"), r.To.Format("2006-01-02"), len(r.Bars))

	s := r.Summary
	fmt.Fprintf(&b, "Close: %s\n", formatRupiahNull(s.LastClose))
	fmt.Fprintf(&b, "High/Low: %s / %s\n", formatRupiahNull(s.Highest), formatRupiahNull(s.Lowest))
	if s.Position52w.Valid {
		fmt.Fprintf(&b, "52w position: %.0f%%\n", s.Position52w.Float64*100)
	}
	for _, ma := range r.MovingAverages {
		fmt.Fprintf(&b, "%s: %s\n", Escape(ma.Name), formatRupiahNull(ma.Last()))
	}
	fmt.Fprintf(&b, "RSI: %s\n\n", formatFloat(r.RSI.Last(), 1))

	b.WriteString("<b>Risk</b>\n")
	fmt.Fprintf(&b, "  Annual return: %s\n", formatPct(r.Risk.AnnualReturnPct))
	fmt.Fprintf(&b, "  Volatility: %s\n", formatPct(r.Risk.AnnualVolatilityPct))
	fmt.Fprintf(&b, "  Sharpe: %s\n", formatFloat(r.Risk.SharpeRatio, 2))
	fmt.Fprintf(&b, "  Max drawdown: %s\n", formatPct(r.Risk.MaxDrawdownPct))

	if sig := r.Signal; sig != nil {
		b.WriteString("\n<b>Signal factors</b>\n")
		for _, f := range sig.Factors {
			fmt.Fprintf(&b, "  %s (%s): %+.1f ×%.2f = %+.3f\n", Escape(f.Name), Escape(f.Commentary), f.RawScore, f.Weight, f.Weighted)
		}
		fmt.Fprintf(&b, "  Total: %+.3f, %s\n", sig.TotalScore, Escape(sig.Label))
	}

	if d := r.DividendSummary; d != nil {
		b.WriteString("\n<b>Dividends</b>\n")
		fmt.Fprintf(&b, "  %d-%d, mean Rp %s, mean yield %.2f%%, best %d\n",
			d.FirstYear, d.LastYear, d.MeanAmount.StringFixed(2), d.MeanYield, d.BestYieldYear)
	}
	writeWarnings(&b, r.Warnings)
	return b.String()
}

// FormatComparison summarizes a cross-instrument comparison.
func FormatComparison(c *analysis.ComparisonResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📐 <b>Comparison</b> | %s, %d shared sessions\n\n", Escape(c.Window), c.AlignedDays)
	for _, r := range c.Instruments {
		risk := c.Risk[r.Symbol]
		fmt.Fprintf(&b, "  %s: return %s, vol %s, drawdown %s\n",
			Escape(r.Symbol), formatPct(risk.AnnualReturnPct), formatPct(risk.AnnualVolatilityPct), formatPct(risk.MaxDrawdownPct))
	}
	labels := c.ReturnCorrelation.Labels
	if len(labels) > 1 {
		b.WriteString("\n<b>Return correlation</b>\n")
		for i, a := range labels {
			for _, z := range labels[i+1:] {
				fmt.Fprintf(&b, "  %s/%s: %s\n", Escape(a), Escape(z), formatFloat(c.ReturnCorrelation.At(a, z), 2))
			}
		}
	}
	writeWarnings(&b, c.Warnings)
	return b.String()
}

func writeWarnings(b *strings.Builder, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(b, "⚠️ %s\n", Escape(w))
	}
}

// FormatRupiah renders a price as "Rp 2,500" (two decimals below 1,000).
func FormatRupiah(v float64) string {
	if v < 1000 && v != math.Trunc(v) {
		return "Rp " + strconv.FormatFloat(v, 'f', 2, 64)
	}
	return "Rp " + groupThousands(int64(math.Round(v)))
}

func formatRupiahNull(v null.Float) string {
	if !v.Valid {
		return "n/a"
	}
	return FormatRupiah(v.Float64)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var out []byte
	for i := 0; i < len(s); i++ {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

func formatPct(v null.Float) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", v.Float64)
}

func formatFloat(v null.Float, prec int) string {
	if !v.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(v.Float64, 'f', prec, 64)
}

// Escape makes text safe inside a message sent with HTML parse mode.
func Escape(s string) string {
	return html.EscapeString(s)
}

var htmlTags = strings.NewReplacer("<b>", "", "</b>", "")

// PlainText strips the Telegram HTML markup and entities for terminal output.
func PlainText(s string) string {
	return html.UnescapeString(htmlTags.Replace(s))
}
