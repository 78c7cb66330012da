package simulator

import (
	"fmt"

	"DCASimulator/internal/model"
)

// Scenarios runs the base configuration plus an optimistic and a pessimistic
// variant whose two rates are shifted by ±delta percentage points. All three
// runs share the plan's aligned data.
func (pl *Plan) Scenarios(delta float64) (*model.ScenarioSet, error) {
	p := pl.Params
	set := &model.ScenarioSet{Delta: delta}

	runs := []struct {
		name  string
		shift float64
		dst   **model.SimulationResult
	}{
		{"base", 0, &set.Base},
		{"optimistic", delta, &set.Optimistic},
		{"pessimistic", -delta, &set.Pessimistic},
	}
	for _, r := range runs {
		res, err := pl.Run(p.Contribution, p.HoldingRate+r.shift, p.ConversionRate+r.shift)
		if err != nil {
			return nil, fmt.Errorf("%s scenario: %w", r.name, err)
		}
		*r.dst = res
		set.Warnings = MergeWarnings(set.Warnings, res.Warnings)
	}
	return set, nil
}

// Scenarios prepares the data for p once and runs the three scenarios with
// p.RiskDelta.
func (e *Engine) Scenarios(p model.SimulationParams) (*model.ScenarioSet, error) {
	pl, err := e.Prepare(p)
	if err != nil {
		return nil, err
	}
	return pl.Scenarios(p.RiskDelta)
}

// MergeWarnings returns the union of a and b, preserving first-seen order.
func MergeWarnings(a, b []model.Warning) []model.Warning {
	seen := make(map[model.Warning]bool, len(a)+len(b))
	var out []model.Warning
	for _, list := range [][]model.Warning{a, b} {
		for _, w := range list {
			if !seen[w] {
				seen[w] = true
				out = append(out, w)
			}
		}
	}
	return out
}
