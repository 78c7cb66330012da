package model

import (
	"fmt"
	"time"
)

// Frequency is the sampling cadence of the purchase grid.
type Frequency string

const (
	Daily      Frequency = "daily"
	Weekly     Frequency = "weekly"
	MonthStart Frequency = "month-start"
	YearStart  Frequency = "year-start"
)

// ParseFrequency accepts the canonical names plus the short aliases D, W, MS and AS.
func ParseFrequency(s string) (Frequency, error) {
	switch s {
	case "daily", "D", "1d":
		return Daily, nil
	case "weekly", "W", "1w":
		return Weekly, nil
	case "month-start", "monthly", "MS", "1m":
		return MonthStart, nil
	case "year-start", "yearly", "AS", "YS", "1y":
		return YearStart, nil
	default:
		return "", fmt.Errorf("unknown frequency %q", s)
	}
}

// Valid reports whether f is one of the supported cadences.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, MonthStart, YearStart:
		return true
	}
	return false
}

// SimulationParams is the validated input of one simulation.
type SimulationParams struct {
	Ticker        string
	CrossCurrency bool
	FXTicker      string

	TotalYears    float64
	PurchaseYears float64
	HoldingYears  float64
	Frequency     Frequency
	Maturity      time.Time

	Contribution   float64 // currency spent per purchase
	HoldingRate    float64 // percent, applied once at the end of holding
	ConversionRate float64 // percent per year, compounded over conversion
	RiskDelta      float64 // percent, scenario engine only
}

// PeriodSlack absorbs float noise when purchase + holding equals the total period.
const PeriodSlack = 1e-9

// ConversionYears is the length of the conversion phase in fractional years.
// Lengths within PeriodSlack of zero are reported as exactly zero.
func (p SimulationParams) ConversionYears() float64 {
	y := p.TotalYears - (p.PurchaseYears + p.HoldingYears)
	if y > -PeriodSlack && y < PeriodSlack {
		return 0
	}
	return y
}

// Timeline holds the phase boundaries of one run.
type Timeline struct {
	RequestedStart time.Time
	Start          time.Time
	PurchaseEnd    time.Time
	HoldingEnd     time.Time
	End            time.Time
}

// WarningKind classifies a recoverable condition attached to a result.
type WarningKind string

const (
	DataRangeAdjusted    WarningKind = "DATA_RANGE_ADJUSTED"
	MissingExternalQuote WarningKind = "MISSING_EXTERNAL_QUOTE"
)

// Warning is a non-fatal condition the caller must be able to observe.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string { return string(w.Kind) + ": " + w.Message }

// SimulationResult is the outcome of one run. It is never mutated after creation.
type SimulationResult struct {
	Contribution   float64
	HoldingRate    float64
	ConversionRate float64

	PurchaseDates   []time.Time
	PurchasePrices  []float64
	EffectivePrices []float64 // cumulative harmonic mean after each purchase

	TotalContributed float64
	UnitsPurchased   float64
	EffectivePrice   float64
	UnitsAfterHold   float64
	UnitsFinal       float64
	ConversionYears  float64

	ExitPrice    float64
	CurrentPrice float64
	FinalValue   float64
	ProfitRatio  float64

	Timeline Timeline
	Warnings []Warning
}

// PurchaseCount returns the number of purchase events.
func (r *SimulationResult) PurchaseCount() int { return len(r.PurchasePrices) }

// ScenarioSet holds base, optimistic and pessimistic runs over the same data.
type ScenarioSet struct {
	Delta       float64
	Base        *SimulationResult
	Optimistic  *SimulationResult
	Pessimistic *SimulationResult
	Warnings    []Warning
}

// GoalSeekParams bounds the search for the required contribution.
type GoalSeekParams struct {
	Target        float64
	Low           float64
	High          float64
	Tolerance     float64
	MaxIterations int
}

// GoalSeekResult is the output of the goal inverter.
type GoalSeekResult struct {
	Target               float64
	RequiredContribution float64
	AchievedValue        float64
	Iterations           int
	Converged            bool
	Warnings             []Warning
}

// Residual is the signed distance between achieved and target value.
func (g *GoalSeekResult) Residual() float64 { return g.AchievedValue - g.Target }
