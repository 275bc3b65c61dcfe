// Command finboard keeps a personal finance ledger and shows it as a
// dashboard in the terminal or over HTTP.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func register(c *subcommands.Commander) {
	c.Register(txGroup(), "records")
	c.Register(budgetGroup(), "records")
	c.Register(goalGroup(), "records")
	c.Register(&incomeCmd{}, "records")

	c.Register(&currencyCmd{}, "currency")
	c.Register(&ratesCmd{}, "currency")

	c.Register(&dashboardCmd{}, "dashboard")
	c.Register(&serveCmd{}, "dashboard")
	c.Register(&watchCmd{}, "dashboard")
}
