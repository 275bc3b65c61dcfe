package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"finboard/internal/app"
	"finboard/internal/cli"
)

// A CLI run is short lived, so global flags are fine.
var (
	envFile  = flag.String("env", ".env", "Path to an optional .env file")
	logLevel = flag.String("log-level", "", "Log level (debug, info, warn, error). Overrides LOG_LEVEL.")
)

// Command output goes to stdout, logs to stderr.
var stdout io.Writer = os.Stdout

// openApp loads configuration and wires a ready App with its rates loaded.
// On failure it reports the problem and returns the exit status to use.
func openApp(ctx context.Context) (*app.App, subcommands.ExitStatus) {
	cli.LoadEnvFile(*envFile)

	level := *logLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	logger := cli.SetupLogger(level, os.Stderr)

	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, subcommands.ExitFailure
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	a.Init(ctx)
	return a, subcommands.ExitSuccess
}

// withApp runs fn against a freshly opened App and closes it afterwards.
func withApp(ctx context.Context, fn func(*app.App) subcommands.ExitStatus) subcommands.ExitStatus {
	a, status := openApp(ctx)
	if a == nil {
		return status
	}
	status = fn(a)
	if err := a.Close(); err != nil {
		a.Logger.Error("Close failed", "error", err)
	}
	return status
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func usageError(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitUsageError
}

// group dispatches "finboard <name> <action>" to its own commander.
type group struct {
	name, synopsis string
	commands       []subcommands.Command
}

func (g *group) Name() string     { return g.name }
func (g *group) Synopsis() string { return g.synopsis }
func (g *group) Usage() string {
	u := fmt.Sprintf("finboard %s <action> [flags]\n\n  Actions:\n", g.name)
	for _, c := range g.commands {
		u += fmt.Sprintf("    %-4s %s\n", c.Name(), c.Synopsis())
	}
	return u
}

func (g *group) SetFlags(*flag.FlagSet) {}

func (g *group) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprint(os.Stderr, g.Usage())
		return subcommands.ExitUsageError
	}
	cdr := subcommands.NewCommander(f, "finboard "+g.name)
	for _, c := range g.commands {
		cdr.Register(c, "")
	}
	return cdr.Execute(ctx, args...)
}
