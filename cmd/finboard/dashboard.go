package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"finboard/internal/app"
	"finboard/internal/dashboard"
)

type dashboardCmd struct {
	format string
	style  string
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "print the dashboard" }
func (*dashboardCmd) Usage() string {
	return `dashboard [-format terminal|markdown|html|json] [-style <glamour style>]

  Prints the whole dashboard in the display currency.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "terminal", "Output format: terminal, markdown, html or json.")
	f.StringVar(&c.style, "style", "auto", "Glamour style for terminal output (auto, dark, light, notty).")
}

func (c *dashboardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch c.format {
	case "terminal", "markdown", "html", "json":
	default:
		return usageError("Error: unknown format %q.", c.format)
	}
	return withApp(ctx, func(a *app.App) subcommands.ExitStatus {
		if err := printView(a.Presenter.Current(ctx), c.format, c.style); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	})
}

func printView(v dashboard.View, format, style string) error {
	switch format {
	case "markdown":
		return dashboard.RenderMarkdown(stdout, v)
	case "html":
		return dashboard.RenderHTML(stdout, v)
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		out, err := dashboard.RenderTerminal(v, style)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(stdout, out)
		return err
	}
}
