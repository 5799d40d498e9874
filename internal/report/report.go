// Package report renders analysis results for people: a pipe-separated table with
// summary lines for the terminal and a short message for Telegram.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Alias1177/Breakout/internal/analysis/breakout"
)

// TimeLayout matches how breakout times are printed.
const TimeLayout = "2006-01-02 15:04:05-07:00"

const sep = "   |   "

var header = []string{
	"Breakout Time",
	"Distance to Band (%)",
	"Breaking Candle Price",
	"Next Candle First Price",
	"Next Candle Second Price",
	"Distance to Min (%)",
	"Distance to Max (%)",
}

// Meta describes the run being reported.
type Meta struct {
	Symbol   string
	Interval string
	Days     int
	Source   string
	Location *time.Location
}

// FormatPercent renders a percentage with two decimals, a leading "+" when strictly
// positive and "n/a" when the value is undefined.
func FormatPercent(v float64, err error) string {
	if err != nil {
		return "n/a"
	}
	if v > 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// FormatPrice renders a price with two decimals.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatThreshold renders the take-profit threshold without trailing zeros.
func FormatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// Row converts one outcome into table cells.
func Row(o breakout.Outcome, loc *time.Location) []string {
	return []string{
		o.Event.OpenTime.In(location(loc)).Format(TimeLayout),
		FormatPercent(o.Event.BandDistancePct, o.Event.DistanceErr),
		FormatPrice(o.Event.ExtremePrice),
		FormatPrice(o.FirstPrice()),
		FormatPrice(o.SecondPrice()),
		FormatPercent(o.DistanceToMinPct, o.DistanceToMinErr),
		FormatPercent(o.DistanceToMaxPct, o.DistanceToMaxErr),
	}
}

// SummaryLines renders the aggregate statistics.
func SummaryLines(s breakout.Summary, takeProfitPct float64) []string {
	thr := FormatThreshold(takeProfitPct)
	return []string{
		fmt.Sprintf("Number of candles that broke the Bollinger Bands: %d", s.TotalBreakouts),
		fmt.Sprintf("Highest percentage distance from upper band: %.2f%%", s.MaxUpperDistancePct),
		fmt.Sprintf("Highest percentage distance from lower band: %.2f%%", s.MinLowerDistancePct),
		fmt.Sprintf("Signals with take profit above %s: %d", thr, s.AboveThreshold),
		fmt.Sprintf("Signals with take profit under %s: %d", thr, s.BelowThreshold),
	}
}

// Write prints the table of evaluated breakouts followed by the summary.
// The output depends only on rep and loc.
func Write(w io.Writer, rep *breakout.Report, loc *time.Location) error {
	var b strings.Builder
	b.WriteString(strings.Join(header, sep))
	b.WriteByte('\n')
	for _, o := range rep.Outcomes {
		b.WriteString(strings.Join(Row(o, loc), sep))
		b.WriteByte('\n')
	}
	for _, line := range SummaryLines(rep.Summary, rep.Params.TakeProfitPct) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// TelegramMessage renders a compact plain-text summary of a run.
func TelegramMessage(rep *breakout.Report, meta Meta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bollinger breakouts %s %s", meta.Symbol, meta.Interval)
	if meta.Days > 0 {
		fmt.Fprintf(&b, ", last %d days", meta.Days)
	}
	if meta.Source != "" {
		fmt.Fprintf(&b, " (%s)", meta.Source)
	}
	fmt.Fprintf(&b, "\nBB(%d, %g), %d candles\n\n", rep.Params.Window, rep.Params.Deviation, rep.Candles)

	for _, line := range SummaryLines(rep.Summary, rep.Params.TakeProfitPct) {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if n := len(rep.Events); n > 0 {
		last := rep.Events[n-1]
		fmt.Fprintf(&b, "\nLast breakout: %s %s, %s beyond band",
			last.Direction,
			last.OpenTime.In(location(meta.Location)).Format(TimeLayout),
			FormatPercent(last.BandDistancePct, last.DistanceErr))
		if !rep.HasOutcome(n - 1) {
			b.WriteString(" (awaiting next candle)")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// WriteMetrics prints the per-direction and monthly breakdown.
func WriteMetrics(w io.Writer, m *breakout.Metrics) error {
	var b strings.Builder
	b.WriteString("\nDirection   |   Breakouts   |   Evaluated   |   Hit Rate (%)   |   Mean Band Distance (%)   |   Mean Distance to Min (%)   |   Std Dev Distance to Min (%)\n")
	for _, d := range []struct {
		name string
		dm   breakout.DirectionMetrics
	}{{breakout.Bullish.String(), m.Bullish}, {breakout.Bearish.String(), m.Bearish}} {
		fmt.Fprintf(&b, "%s   |   %d   |   %d   |   %.2f   |   %s   |   %.2f   |   %.2f\n",
			d.name, d.dm.Events, d.dm.Evaluated, d.dm.HitRate,
			FormatPercent(d.dm.MeanBandDistancePct, nil), d.dm.MeanDistanceToMinPct, d.dm.StdDevDistanceToMinPct)
	}
	if len(m.Monthly) > 0 {
		b.WriteString("\nMonth   |   Breakouts   |   Take Profit Hit   |   Missed\n")
		for _, ms := range m.Monthly {
			fmt.Fprintf(&b, "%s   |   %d   |   %d   |   %d\n", ms.Month, ms.Breakouts, ms.Hits, ms.Misses)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
