package simulator

import (
	"fmt"
	"math"

	"DCASimulator/internal/model"
)

// Defaults of the goal inverter's search.
const (
	DefaultGoalLow        = 1_000
	DefaultGoalHigh       = 10_000_000
	DefaultGoalTolerance  = 1_000
	DefaultGoalIterations = 30
)

// GoalSeek bisects the per-period contribution until the final value lies
// within g.Tolerance of g.Target. The final value grows linearly with the
// contribution, so the search is monotonic; the bracket is still checked
// up front and an unreachable target fails with ErrTargetOutOfBracket.
// Exhausting the iteration cap is not an error: the last midpoint is
// returned with Converged unset.
func (pl *Plan) GoalSeek(g model.GoalSeekParams) (*model.GoalSeekResult, error) {
	if err := ValidateGoal(g); err != nil {
		return nil, err
	}
	p := pl.Params
	eval := func(contribution float64) (float64, error) {
		res, err := pl.Run(contribution, p.HoldingRate, p.ConversionRate)
		if err != nil {
			return 0, err
		}
		return res.FinalValue, nil
	}

	lowValue, err := eval(g.Low)
	if err != nil {
		return nil, fmt.Errorf("goal seek at low bound: %w", err)
	}
	highValue, err := eval(g.High)
	if err != nil {
		return nil, fmt.Errorf("goal seek at high bound: %w", err)
	}
	if g.Target < lowValue-g.Tolerance || g.Target > highValue+g.Tolerance {
		return nil, fmt.Errorf("%w: target %.2f not within [%.2f, %.2f] reachable from contributions [%.2f, %.2f]",
			ErrTargetOutOfBracket, g.Target, lowValue, highValue, g.Low, g.High)
	}

	out := &model.GoalSeekResult{Target: g.Target, Warnings: append([]model.Warning(nil), pl.Warnings...)}
	lo, hi := g.Low, g.High
	for it := 1; it <= g.MaxIterations; it++ {
		mid := (lo + hi) / 2
		value, err := eval(mid)
		if err != nil {
			return nil, fmt.Errorf("goal seek iteration %d: %w", it, err)
		}
		out.RequiredContribution, out.AchievedValue, out.Iterations = mid, value, it
		if math.Abs(value-g.Target) < g.Tolerance {
			out.Converged = true
			return out, nil
		}
		if value < g.Target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return out, nil
}

// GoalSeek prepares the data for p once and inverts it for g.
func (e *Engine) GoalSeek(p model.SimulationParams, g model.GoalSeekParams) (*model.GoalSeekResult, error) {
	if err := ValidateGoal(g); err != nil {
		return nil, err
	}
	pl, err := e.Prepare(p)
	if err != nil {
		return nil, err
	}
	return pl.GoalSeek(g)
}
