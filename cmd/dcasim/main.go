package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path"

	"github.com/google/subcommands"
)

var configPath = flag.String("config", "", "path to the YAML config (defaults to $CONFIG_PATH or configs/config.yaml)")

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&simulateCmd{}, "simulation")
	commander.Register(&scenarioCmd{}, "simulation")
	commander.Register(&goalCmd{}, "simulation")
	commander.Register(&serveCmd{}, "bot")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
