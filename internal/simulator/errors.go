package simulator

import (
	"errors"

	"DCASimulator/internal/calculator"
)

var (
	// ErrConfiguration rejects parameters before any price data is requested.
	ErrConfiguration = errors.New("configuration error")

	// ErrIncompatibleConfiguration is returned when the parameters are valid
	// but the cadence yields no samples or no purchases over the available data.
	ErrIncompatibleConfiguration = errors.New("incompatible configuration")

	// ErrDivisionDegeneracy fails a single run that would otherwise produce
	// NaN or Inf: no purchases, a missing sample or a non-positive price.
	ErrDivisionDegeneracy = calculator.ErrDivisionDegeneracy

	// ErrTargetOutOfBracket is returned by the goal inverter when the target
	// cannot be reached inside the search interval.
	ErrTargetOutOfBracket = errors.New("target outside search interval")
)
