package calculator

import "errors"

var (
	// ErrDivisionDegeneracy marks inputs that would divide by zero or yield a
	// non-finite value: no purchases, a missing sample or a non-positive price.
	ErrDivisionDegeneracy = errors.New("division degeneracy")

	// ErrNegativeConversion is returned when the conversion phase has negative length.
	ErrNegativeConversion = errors.New("conversion length must not be negative")
)
