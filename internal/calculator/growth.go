package calculator

import (
	"fmt"
	"math"
)

// Growth holds the unit count after each rate stage.
type Growth struct {
	UnitsAfterHold float64
	UnitsFinal     float64
}

// Grow applies the one-time holding rate and then compounds the conversion
// rate over conversionYears. Rates are in percent. The exponent is real-valued
// so partial years compound correctly.
func Grow(units, holdingRate, conversionRate, conversionYears float64) (Growth, error) {
	if conversionYears < 0 {
		return Growth{}, fmt.Errorf("conversion years %v: %w", conversionYears, ErrNegativeConversion)
	}
	g := Growth{UnitsAfterHold: units * (1 + holdingRate/100)}
	g.UnitsFinal = g.UnitsAfterHold
	if conversionYears > 0 {
		g.UnitsFinal = g.UnitsAfterHold * math.Pow(1+conversionRate/100, conversionYears)
	}
	if !finite(g.UnitsFinal) {
		return Growth{}, fmt.Errorf("units after conversion at %.2f%%: %w", conversionRate, ErrDivisionDegeneracy)
	}
	return g, nil
}

// Value converts the final units to currency and returns the profit ratio
// relative to what was contributed.
func Value(unitsFinal, exitPrice, contributed float64) (finalValue, profitRatio float64, err error) {
	if contributed <= 0 {
		return 0, 0, fmt.Errorf("contributed %v: %w", contributed, ErrDivisionDegeneracy)
	}
	finalValue = unitsFinal * exitPrice
	profitRatio = (finalValue - contributed) / contributed
	if !finite(finalValue) || !finite(profitRatio) {
		return 0, 0, fmt.Errorf("final value: %w", ErrDivisionDegeneracy)
	}
	return finalValue, profitRatio, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
