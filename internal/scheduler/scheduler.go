package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"DCASimulator/internal/config"
	"DCASimulator/internal/notifier"
	"DCASimulator/internal/recorder"
	"DCASimulator/internal/simulator"

	"github.com/robfig/cron/v3"
)

// Sender delivers report messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Refresher drops cached market data.
type Refresher interface {
	Refresh() int
}

// Scheduler manages all cron tasks and chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   *simulator.Engine
	Cache    Refresher
	Config   *config.Config
	Notifier Sender
	Recorder recorder.Recorder
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, cfg *config.Config, engine *simulator.Engine, cache Refresher, sender Sender, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Engine:   engine,
		Cache:    cache,
		Config:   cfg,
		Notifier: sender,
		Recorder: rec,
		Ctx:      ctx,
	}
}

// RegisterAll registers the cache refresh and the scenario report.
func (s *Scheduler) RegisterAll(refreshCron, reportCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunReportNow executes the report task immediately (for RUN_ON_START).
func (s *Scheduler) RunReportNow() {
	s.reportTask()
}

func (s *Scheduler) refreshTask() {
	s.Cache.Refresh()
}

func (s *Scheduler) reportTask() {
	log.Println("[INFO] running scenario report")
	s.trySend(s.scenarioReply())
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Group chats address commands as /cmd@botname.
	name, _, _ := strings.Cut(fields[0], "@")

	switch name {
	case "/simulate":
		return s.simulateReply()
	case "/scenario":
		return s.scenarioReply()
	case "/goal":
		if len(fields) < 2 {
			return "Usage: /goal <target amount>, e.g. /goal 100000000"
		}
		target, err := parseAmount(fields[1])
		if err != nil {
			return fmt.Sprintf("❌ invalid target %q: %v", fields[1], err)
		}
		return s.goalReply(target)
	case "/refresh":
		n := s.Cache.Refresh()
		return fmt.Sprintf("🔄 Price cache cleared (%d entries)", n)
	case "/history":
		runs, err := s.Recorder.RecentRuns(10)
		if err != nil {
			log.Printf("[ERROR] load history: %v", err)
			return fmt.Sprintf("❌ history unavailable: %v", err)
		}
		return notifier.FormatHistory(runs, s.Config.Simulation.Currency)
	default:
		return helpText
	}
}

const helpText = "Available commands:\n" +
	"• /simulate - run the configured plan\n" +
	"• /scenario - compare optimistic, base and pessimistic rates\n" +
	"• /goal <target> - contribution needed to reach a target value\n" +
	"• /refresh - clear cached prices\n" +
	"• /history - recent simulations"

func (s *Scheduler) simulateReply() string {
	p, err := s.Config.SimulationParams()
	if err != nil {
		return failure("simulation", err)
	}
	res, err := s.Engine.Simulate(p)
	if err != nil {
		return failure("simulation", err)
	}
	if _, err := s.Recorder.RecordSimulation(&recorder.SimulationRun{Scenario: "single", Params: p, Result: res}); err != nil {
		log.Printf("[ERROR] record simulation: %v", err)
	}
	return notifier.FormatSimulation(p, res, s.Config.Simulation.Currency)
}

func (s *Scheduler) scenarioReply() string {
	p, err := s.Config.SimulationParams()
	if err != nil {
		return failure("scenario report", err)
	}
	set, err := s.Engine.Scenarios(p)
	if err != nil {
		return failure("scenario report", err)
	}
	if _, err := s.Recorder.RecordScenarios(p, set); err != nil {
		log.Printf("[ERROR] record scenarios: %v", err)
	}
	return notifier.FormatScenarios(p, set, s.Config.Simulation.Currency)
}

func (s *Scheduler) goalReply(target float64) string {
	p, err := s.Config.SimulationParams()
	if err != nil {
		return failure("goal seek", err)
	}
	res, err := s.Engine.GoalSeek(p, s.Config.GoalParams(target))
	if err != nil {
		return failure("goal seek", err)
	}
	if _, err := s.Recorder.RecordGoalSeek(&recorder.GoalSeekEvent{Params: p, Result: res}); err != nil {
		log.Printf("[ERROR] record goal seek: %v", err)
	}
	return notifier.FormatGoalSeek(p, res, s.Config.Simulation.Currency)
}

func failure(what string, err error) string {
	log.Printf("[ERROR] %s: %v", what, err)
	return fmt.Sprintf("❌ %s failed: %v", what, err)
}

// parseAmount accepts plain numbers with optional thousands separators and
// the suffixes k, m and b.
func parseAmount(s string) (float64, error) {
	s = strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(s, ",", ""), "_", ""))
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult, s = 1e3, strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult, s = 1e6, strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "b"):
		mult, s = 1e9, strings.TrimSuffix(s, "b")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if !(v > 0) {
		return 0, fmt.Errorf("must be positive")
	}
	return v * mult, nil
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
