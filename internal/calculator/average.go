package calculator

import "fmt"

// Accumulation is the outcome of the purchase phase.
type Accumulation struct {
	// EffectivePrices[i] is the harmonic mean of the first i+1 prices.
	EffectivePrices []float64
	Units           float64
	Contributed     float64
	EffectivePrice  float64
}

// Accumulate buys contribution worth of units at every price. The running
// effective price is i / Σ(1/price), the harmonic mean, since each purchase
// buys contribution/price units rather than a fixed unit count.
func Accumulate(prices []float64, contribution float64) (*Accumulation, error) {
	if len(prices) == 0 {
		return nil, fmt.Errorf("no purchases: %w", ErrDivisionDegeneracy)
	}
	acc := &Accumulation{EffectivePrices: make([]float64, len(prices))}
	var reciprocal float64
	for i, p := range prices {
		if p <= 0 {
			return nil, fmt.Errorf("price %v at purchase %d: %w", p, i+1, ErrDivisionDegeneracy)
		}
		reciprocal += 1 / p
		acc.EffectivePrices[i] = float64(i+1) / reciprocal
		acc.Units += contribution / p
	}
	acc.Contributed = contribution * float64(len(prices))
	if acc.Units <= 0 {
		return nil, fmt.Errorf("no units bought: %w", ErrDivisionDegeneracy)
	}
	acc.EffectivePrice = acc.Contributed / acc.Units
	return acc, nil
}
