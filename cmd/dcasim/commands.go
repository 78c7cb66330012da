package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"DCASimulator/internal/config"
	"DCASimulator/internal/model"
	"DCASimulator/internal/notifier"
	"DCASimulator/internal/recorder"
	"DCASimulator/internal/simulator"

	"github.com/google/subcommands"
)

type simulateCmd struct {
	overrides
	purchases bool
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "simulate a dollar-cost averaging plan" }
func (*simulateCmd) Usage() string {
	return `dcasim simulate [-ticker <t>] [-fx <t>] [-amount <n>] [-years <y>] [-buy <y>] [-hold <y>] [-purchases]

  Buys a fixed amount on every cadence date of the purchase phase, applies
  the holding and conversion rates and values the units at maturity.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	c.overrides.SetFlags(f)
	f.BoolVar(&c.purchases, "purchases", false, "list every purchase with its price")
}

func (c *simulateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.parse(f)
	cfg, err := loadConfig(&c.overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	p, err := cfg.SimulationParams()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	res, err := simulator.NewEngine(newCollector(cfg)).Simulate(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	md := notifier.MarkdownSimulation(p, res, cfg.Simulation.Currency)
	if c.purchases {
		md += "\n## Purchases\n\n" + notifier.MarkdownPurchases(res)
	}
	printMarkdown(md)

	if c.record {
		withRecorder(cfg, func(rec recorder.Recorder) error {
			_, err := rec.RecordSimulation(&recorder.SimulationRun{Scenario: "single", Params: p, Result: res})
			return err
		})
	}
	return subcommands.ExitSuccess
}

type scenarioCmd struct {
	overrides
	delta float64
}

func (*scenarioCmd) Name() string     { return "scenario" }
func (*scenarioCmd) Synopsis() string { return "compare optimistic, base and pessimistic rates" }
func (*scenarioCmd) Usage() string {
	return `dcasim scenario [-delta <pp>] [simulation flags]

  Runs the plan three times with both rates shifted by +delta and -delta
  percentage points.
`
}

func (c *scenarioCmd) SetFlags(f *flag.FlagSet) {
	c.overrides.SetFlags(f)
	f.Float64Var(&c.delta, "delta", 0, "signed rate shift in percentage points (defaults to simulation.risk_delta)")
}

func (c *scenarioCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.parse(f)
	cfg, err := loadConfig(&c.overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	c.applyDelta(cfg)
	p, err := cfg.SimulationParams()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	set, err := simulator.NewEngine(newCollector(cfg)).Scenarios(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(notifier.MarkdownScenarios(p, set, cfg.Simulation.Currency))

	if c.record {
		withRecorder(cfg, func(rec recorder.Recorder) error {
			_, err := rec.RecordScenarios(p, set)
			return err
		})
	}
	return subcommands.ExitSuccess
}

// applyDelta overrides the configured risk delta when -delta was given. Any
// sign is accepted; a negative delta swaps the optimistic and pessimistic runs.
func (c *scenarioCmd) applyDelta(cfg *config.Config) {
	if c.set["delta"] {
		cfg.Simulation.RiskDelta = c.delta
	}
}

type goalCmd struct {
	overrides
	target     float64
	low, high  float64
	tolerance  float64
	iterations int
}

func (*goalCmd) Name() string     { return "goal" }
func (*goalCmd) Synopsis() string { return "find the contribution that reaches a target value" }
func (*goalCmd) Usage() string {
	return `dcasim goal -target <amount> [-low <n>] [-high <n>] [-tol <n>] [-iter <n>] [simulation flags]

  Bisects the per-purchase contribution until the final value is within
  the tolerance of the target.
`
}

func (c *goalCmd) SetFlags(f *flag.FlagSet) {
	c.overrides.SetFlags(f)
	f.Float64Var(&c.target, "target", 0, "target final value (defaults to goal.target)")
	f.Float64Var(&c.low, "low", 0, "lower contribution bound")
	f.Float64Var(&c.high, "high", 0, "upper contribution bound")
	f.Float64Var(&c.tolerance, "tol", 0, "accepted distance from the target")
	f.IntVar(&c.iterations, "iter", 0, "maximum bisection steps")
}

func (c *goalCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.parse(f)
	cfg, err := loadConfig(&c.overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	p, err := cfg.SimulationParams()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	g := c.search(cfg)
	if err := simulator.ValidateGoal(g); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	res, err := simulator.NewEngine(newCollector(cfg)).GoalSeek(p, g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(notifier.MarkdownGoalSeek(p, res, cfg.Simulation.Currency))

	if c.record {
		withRecorder(cfg, func(rec recorder.Recorder) error {
			_, err := rec.RecordGoalSeek(&recorder.GoalSeekEvent{Params: p, Result: res})
			return err
		})
	}
	return subcommands.ExitSuccess
}

func (c *goalCmd) search(cfg *config.Config) model.GoalSeekParams {
	g := cfg.GoalParams(c.target)
	if c.low > 0 {
		g.Low = c.low
	}
	if c.high > 0 {
		g.High = c.high
	}
	if c.tolerance > 0 {
		g.Tolerance = c.tolerance
	}
	if c.iterations > 0 {
		g.MaxIterations = c.iterations
	}
	return g
}

func withRecorder(cfg *config.Config, fn func(recorder.Recorder) error) {
	rec := openRecorder(cfg)
	defer rec.Close()
	if err := fn(rec); err != nil {
		log.Printf("[ERROR] record result: %v", err)
	}
}
