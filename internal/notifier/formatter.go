package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"DCASimulator/internal/model"
	"DCASimulator/internal/recorder"
)

const dateLayout = "2006-01-02"

// style abstracts the two output dialects: Telegram HTML and terminal Markdown.
type style struct {
	bold     func(string) string
	escape   func(string) string
	markdown bool
}

var htmlStyle = style{
	bold:   func(s string) string { return "<b>" + s + "</b>" },
	escape: html.EscapeString,
}

var markdownStyle = style{
	bold:     func(s string) string { return "**" + s + "**" },
	escape:   func(s string) string { return s },
	markdown: true,
}

// FormatSimulation formats a single run as a Telegram message.
func FormatSimulation(p model.SimulationParams, res *model.SimulationResult, currency string) string {
	return simulationReport(htmlStyle, p, res, currency)
}

// MarkdownSimulation formats a single run for terminal rendering.
func MarkdownSimulation(p model.SimulationParams, res *model.SimulationResult, currency string) string {
	return simulationReport(markdownStyle, p, res, currency)
}

func simulationReport(st style, p model.SimulationParams, res *model.SimulationResult, currency string) string {
	var b strings.Builder
	heading(&b, st, "📊", "DCA simulation", p)
	writeTimeline(&b, st, p, res)

	line(&b, st, "Purchases: %d × %s (%s)", res.PurchaseCount(), FormatMoney(res.Contribution, currency), p.Frequency)
	line(&b, st, "Contributed: %s", FormatMoney(res.TotalContributed, currency))
	line(&b, st, "Average price: %s", price(res.EffectivePrice))
	line(&b, st, "Units: %s → %s (hold %+.2f%%) → %s (convert %+.2f%% × %.2fy)",
		units(res.UnitsPurchased), units(res.UnitsAfterHold), res.HoldingRate,
		units(res.UnitsFinal), res.ConversionRate, res.ConversionYears)
	line(&b, st, "Exit price: %s | current: %s", price(res.ExitPrice), price(res.CurrentPrice))
	b.WriteString("\n")
	line(&b, st, "%s %s (%s)", st.bold("Final value:"), FormatMoney(res.FinalValue, currency), FormatPercent(res.ProfitRatio))

	writeWarnings(&b, st, res.Warnings)
	return b.String()
}

// FormatScenarios formats the base/optimistic/pessimistic comparison as a
// Telegram message.
func FormatScenarios(p model.SimulationParams, set *model.ScenarioSet, currency string) string {
	return scenarioReport(htmlStyle, p, set, currency)
}

// MarkdownScenarios formats the scenario comparison as a Markdown table.
func MarkdownScenarios(p model.SimulationParams, set *model.ScenarioSet, currency string) string {
	return scenarioReport(markdownStyle, p, set, currency)
}

func scenarioReport(st style, p model.SimulationParams, set *model.ScenarioSet, currency string) string {
	var b strings.Builder
	heading(&b, st, "🎯", "Risk scenarios", p)
	writeTimeline(&b, st, p, set.Base)
	line(&b, st, "Contributed: %s over %d purchases, rates shifted by ±%.2f%%p",
		FormatMoney(set.Base.TotalContributed, currency), set.Base.PurchaseCount(), set.Delta)
	b.WriteString("\n")

	rows := []struct {
		name string
		res  *model.SimulationResult
	}{
		{"Optimistic", set.Optimistic},
		{"Base", set.Base},
		{"Pessimistic", set.Pessimistic},
	}
	if st.markdown {
		b.WriteString("| Scenario | Holding | Conversion | Final value | Profit |\n")
		b.WriteString("|---|---:|---:|---:|---:|\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "| %s | %+.2f%% | %+.2f%% | %s | %s |\n", r.name,
				r.res.HoldingRate, r.res.ConversionRate, FormatMoney(r.res.FinalValue, currency), FormatPercent(r.res.ProfitRatio))
		}
	} else {
		for _, r := range rows {
			fmt.Fprintf(&b, "%s (%+.2f%% / %+.2f%%): %s (%s)\n", st.bold(r.name),
				r.res.HoldingRate, r.res.ConversionRate, FormatMoney(r.res.FinalValue, currency), FormatPercent(r.res.ProfitRatio))
		}
	}

	writeWarnings(&b, st, set.Warnings)
	return b.String()
}

// FormatGoalSeek formats a goal inversion as a Telegram message.
func FormatGoalSeek(p model.SimulationParams, res *model.GoalSeekResult, currency string) string {
	return goalReport(htmlStyle, p, res, currency)
}

// MarkdownGoalSeek formats a goal inversion for terminal rendering.
func MarkdownGoalSeek(p model.SimulationParams, res *model.GoalSeekResult, currency string) string {
	return goalReport(markdownStyle, p, res, currency)
}

func goalReport(st style, p model.SimulationParams, res *model.GoalSeekResult, currency string) string {
	var b strings.Builder
	heading(&b, st, "🏁", "Goal", p)
	line(&b, st, "Target: %s at %s", FormatMoney(res.Target, currency), p.Maturity.Format(dateLayout))
	line(&b, st, "%s %s per %s purchase", st.bold("Required contribution:"),
		FormatMoney(res.RequiredContribution, currency), p.Frequency)
	line(&b, st, "Projected value: %s (off by %s)", FormatMoney(res.AchievedValue, currency),
		FormatMoney(res.Residual(), currency))
	if res.Converged {
		line(&b, st, "Converged after %d iterations", res.Iterations)
	} else {
		line(&b, st, "⚠️ Not converged after %d iterations, showing the closest contribution found", res.Iterations)
	}
	writeWarnings(&b, st, res.Warnings)
	return b.String()
}

// MarkdownPurchases lists every purchase with the sampled price and the
// running average price.
func MarkdownPurchases(res *model.SimulationResult) string {
	var b strings.Builder
	b.WriteString("| # | Date | Price | Average price |\n")
	b.WriteString("|---:|---|---:|---:|\n")
	for i, d := range res.PurchaseDates {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", i+1, d.Format(dateLayout),
			price(res.PurchasePrices[i]), price(res.EffectivePrices[i]))
	}
	return b.String()
}

// FormatHistory lists stored runs, newest first.
func FormatHistory(runs []recorder.RunSummary, currency string) string {
	if len(runs) == 0 {
		return "No simulations recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent simulations</b>\n\n")
	for _, r := range runs {
		fmt.Fprintf(&b, "%s %s %s: %s → %s (%s)\n", FormatTimestamp(r.Timestamp),
			html.EscapeString(r.Ticker), r.Scenario, FormatMoney(r.Contribution, currency),
			FormatMoney(r.FinalValue, currency), FormatPercent(r.ProfitRatio))
	}
	return b.String()
}

func heading(b *strings.Builder, st style, icon, title string, p model.SimulationParams) {
	instrument := p.Ticker
	if p.CrossCurrency {
		instrument += " × " + p.FXTicker
	}
	if st.markdown {
		fmt.Fprintf(b, "# %s %s | %s\n\n", icon, title, instrument)
		return
	}
	fmt.Fprintf(b, "%s %s | %s\n\n", icon, st.bold(title), st.escape(instrument))
}

func writeTimeline(b *strings.Builder, st style, p model.SimulationParams, res *model.SimulationResult) {
	tl := res.Timeline
	line(b, st, "Period: %s → %s (%.2fy)", tl.Start.Format(dateLayout), tl.End.Format(dateLayout), p.TotalYears)
	line(b, st, "Buy until %s, hold until %s, then convert", tl.PurchaseEnd.Format(dateLayout), tl.HoldingEnd.Format(dateLayout))
	if st.markdown {
		b.WriteString("\n")
	}
}

func writeWarnings(b *strings.Builder, st style, ws []model.Warning) {
	if len(ws) == 0 {
		return
	}
	b.WriteString("\n")
	for _, w := range ws {
		line(b, st, "⚠️ %s", st.escape(w.String()))
	}
}

// line writes one report line. Markdown needs a hard break to keep lines apart.
func line(b *strings.Builder, st style, format string, args ...any) {
	fmt.Fprintf(b, format, args...)
	if st.markdown {
		b.WriteString("  ")
	}
	b.WriteString("\n")
}

func price(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

func units(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

// FormatTimestamp renders t in the local zone for chat replies.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
