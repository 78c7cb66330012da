package recorder

import (
	"fmt"
	"strings"
	"time"

	"DCASimulator/internal/model"
)

// SimulationRun holds one simulation outcome and the parameters that produced it.
type SimulationRun struct {
	BatchID  string // shared by the runs of one scenario set, empty for single runs
	Scenario string // "single", "base", "optimistic" or "pessimistic"
	Params   model.SimulationParams
	Result   *model.SimulationResult
}

// GoalSeekEvent records one goal inversion.
type GoalSeekEvent struct {
	Params model.SimulationParams
	Result *model.GoalSeekResult
}

// RunSummary is a stored run as read back for reports.
type RunSummary struct {
	ID           string
	Timestamp    time.Time
	Scenario     string
	Ticker       string
	Contribution float64
	FinalValue   float64
	ProfitRatio  float64
}

// Recorder persists simulation history for later analysis.
type Recorder interface {
	RecordSimulation(run *SimulationRun) (string, error)
	RecordScenarios(p model.SimulationParams, set *model.ScenarioSet) (string, error)
	RecordGoalSeek(evt *GoalSeekEvent) (string, error)
	RecentRuns(limit int) ([]RunSummary, error)
	Close() error
}

const runColumns = `id, batch_id, timestamp, scenario, ticker, fx_ticker, cross_currency, frequency,
		 total_years, purchase_years, holding_years, maturity,
		 contribution, holding_rate, conversion_rate,
		 purchase_count, total_contributed, units_final, effective_price,
		 exit_price, current_price, final_value, profit_ratio, warnings`

const goalColumns = `id, timestamp, ticker, frequency, total_years, purchase_years, holding_years, maturity,
		 target, required_contribution, achieved_value, iterations, converged, warnings`

func runArgs(id string, now time.Time, run *SimulationRun) []any {
	p, res := run.Params, run.Result
	return []any{
		id, run.BatchID, now.Unix(), run.Scenario, p.Ticker, p.FXTicker, p.CrossCurrency, string(p.Frequency),
		p.TotalYears, p.PurchaseYears, p.HoldingYears, p.Maturity.Format("2006-01-02"),
		res.Contribution, res.HoldingRate, res.ConversionRate,
		res.PurchaseCount(), res.TotalContributed, res.UnitsFinal, res.EffectivePrice,
		res.ExitPrice, res.CurrentPrice, res.FinalValue, res.ProfitRatio, joinWarnings(res.Warnings),
	}
}

func goalArgs(id string, now time.Time, evt *GoalSeekEvent) []any {
	p, res := evt.Params, evt.Result
	return []any{
		id, now.Unix(), p.Ticker, string(p.Frequency), p.TotalYears, p.PurchaseYears, p.HoldingYears,
		p.Maturity.Format("2006-01-02"),
		res.Target, res.RequiredContribution, res.AchievedValue, res.Iterations, res.Converged,
		joinWarnings(res.Warnings),
	}
}

func scenarioRuns(batchID string, p model.SimulationParams, set *model.ScenarioSet) []*SimulationRun {
	return []*SimulationRun{
		{BatchID: batchID, Scenario: "base", Params: p, Result: set.Base},
		{BatchID: batchID, Scenario: "optimistic", Params: p, Result: set.Optimistic},
		{BatchID: batchID, Scenario: "pessimistic", Params: p, Result: set.Pessimistic},
	}
}

func joinWarnings(ws []model.Warning) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.String()
	}
	return strings.Join(parts, "\n")
}

// placeholders renders n bind parameters, "?" style or "$n" style.
func placeholders(n int, numbered bool) string {
	parts := make([]string, n)
	for i := range parts {
		if numbered {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ",")
}
