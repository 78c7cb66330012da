package simulator

import (
	"fmt"
	"math"

	"DCASimulator/internal/model"
)

// Validate checks the parameters of a run. It never touches price data.
func Validate(p model.SimulationParams) error {
	switch {
	case p.Ticker == "":
		return fmt.Errorf("%w: ticker is required", ErrConfiguration)
	case p.CrossCurrency && p.FXTicker == "":
		return fmt.Errorf("%w: cross-currency simulation needs an exchange-rate ticker", ErrConfiguration)
	case !(p.TotalYears > 0):
		return fmt.Errorf("%w: total period must be positive, got %v", ErrConfiguration, p.TotalYears)
	case !(p.PurchaseYears > 0):
		return fmt.Errorf("%w: purchase period must be positive, got %v", ErrConfiguration, p.PurchaseYears)
	case p.HoldingYears < 0 || math.IsNaN(p.HoldingYears):
		return fmt.Errorf("%w: holding period must not be negative, got %v", ErrConfiguration, p.HoldingYears)
	case p.PurchaseYears+p.HoldingYears > p.TotalYears+model.PeriodSlack:
		return fmt.Errorf("%w: purchase (%.2fy) + holding (%.2fy) exceeds total period (%.2fy)",
			ErrConfiguration, p.PurchaseYears, p.HoldingYears, p.TotalYears)
	case !p.Frequency.Valid():
		return fmt.Errorf("%w: unknown frequency %q", ErrConfiguration, p.Frequency)
	case !(p.Contribution > 0):
		return fmt.Errorf("%w: contribution must be positive, got %v", ErrConfiguration, p.Contribution)
	case p.Maturity.IsZero():
		return fmt.Errorf("%w: maturity date is required", ErrConfiguration)
	}
	return nil
}

// ValidateGoal checks the goal inverter's search parameters.
func ValidateGoal(g model.GoalSeekParams) error {
	switch {
	case !(g.Target > 0):
		return fmt.Errorf("%w: goal target must be positive, got %v", ErrConfiguration, g.Target)
	case !(g.Low > 0) || !(g.High > g.Low):
		return fmt.Errorf("%w: goal search interval [%v, %v] must satisfy 0 < low < high", ErrConfiguration, g.Low, g.High)
	case !(g.Tolerance > 0):
		return fmt.Errorf("%w: goal tolerance must be positive, got %v", ErrConfiguration, g.Tolerance)
	case g.MaxIterations <= 0:
		return fmt.Errorf("%w: goal iteration cap must be positive, got %d", ErrConfiguration, g.MaxIterations)
	}
	return nil
}
