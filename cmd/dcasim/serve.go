package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"DCASimulator/internal/notifier"
	"DCASimulator/internal/scheduler"
	"DCASimulator/internal/simulator"

	"github.com/google/subcommands"
)

type serveCmd struct {
	runOnStart bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the Telegram bot with scheduled reports" }
func (*serveCmd) Usage() string {
	return `dcasim serve [-now]

  Refreshes cached prices on schedule.refresh_cron, sends a scenario report
  on schedule.report_cron and answers /simulate, /scenario, /goal, /refresh
  and /history in the configured chat.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.runOnStart, "now", os.Getenv("RUN_ON_START") == "true", "send a scenario report right after start")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log.Println("[INFO] DCASimulator bot starting...")

	cfg, err := loadConfig(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := cfg.ValidateTelegram(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: config validation: %v\n", err)
		return subcommands.ExitUsageError
	}

	col := newCollector(cfg)
	engine := simulator.NewEngine(col)
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.DataSource.Proxy)
	rec := openRecorder(cfg)
	defer rec.Close()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.NewScheduler(ctx, cfg, engine, col, tn, rec)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.ReportCron); err != nil {
		log.Printf("[FATAL] register cron tasks: %v", err)
		return subcommands.ExitFailure
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if c.runOnStart {
		log.Println("[INFO] sending scenario report now")
		go sched.RunReportNow()
	}

	log.Println("[INFO] DCASimulator bot is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] DCASimulator bot stopped")
	return subcommands.ExitSuccess
}
