package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"finboard/internal/app"
	"finboard/internal/cli"
	"finboard/internal/dashboard"
	apphttp "finboard/internal/http"
)

const shutdownTimeout = 30 * time.Second

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the dashboard and JSON API over HTTP" }
func (*serveCmd) Usage() string {
	return `serve [-addr host:port]

  Serves the dashboard page and the JSON API until interrupted. Rates are
  re-checked every RATES_REFRESH_INTERVAL and, when AMQP_URL is set, changes
  made by other finboard processes are picked up as they are published.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address. Defaults to :$PORT.")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) subcommands.ExitStatus {
		addr := c.addr
		if addr == "" {
			addr = ":" + a.Config.Port
		}
		srv := apphttp.NewServer(addr, apphttp.Deps{
			Transactions: a.Transactions,
			Budgets:      a.Budgets,
			Goals:        a.Goals,
			Income:       a.Income,
			Currency:     a.Converter,
			Dashboard:    a.Presenter,
			Clock:        a.Clock,
		}, a.Logger, apphttp.Options{})

		a.Logger.Info("Starting finboard server", "addr", addr, "backend", a.Config.DataBackend)
		err := runUntilSignal(ctx, a, func(g *errgroup.Group, ctx context.Context) {
			g.Go(func() error { return srv.Run(ctx, shutdownTimeout) })
		})
		if err != nil {
			a.Logger.Error("Server stopped with error", "error", err)
			return subcommands.ExitFailure
		}
		a.Logger.Info("Server stopped gracefully")
		return subcommands.ExitSuccess
	})
}

type watchCmd struct {
	style string
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "redraw the dashboard whenever the data changes" }
func (*watchCmd) Usage() string {
	return `watch [-style <glamour style>]

  Prints the dashboard, then prints it again each time another finboard
  process publishes a change. Requires AMQP_URL.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.style, "style", "auto", "Glamour style (auto, dark, light, notty).")
}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) subcommands.ExitStatus {
		if a.AMQP == nil {
			fmt.Fprintln(os.Stderr, "Error: watch needs AMQP_URL and a reachable broker.")
			return subcommands.ExitFailure
		}
		a.Presenter.AddSink(func(ctx context.Context, v dashboard.View) {
			if err := printView(v, "terminal", c.style); err != nil {
				a.Logger.ErrorContext(ctx, "Dashboard render failed", "error", err)
			}
		})
		a.Presenter.Refresh(ctx)

		if err := runUntilSignal(ctx, a, nil); err != nil {
			a.Logger.Error("Watch stopped with error", "error", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	})
}

// runUntilSignal runs the rate worker, the AMQP consumer when connected and
// whatever extra adds, until SIGINT/SIGTERM or the first failure.
func runUntilSignal(parent context.Context, a *app.App, extra func(*errgroup.Group, context.Context)) error {
	parent, cancel := context.WithCancel(parent)
	defer cancel()
	ctx, done := cli.GracefulShutdown(parent, a.Logger, shutdownTimeout, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.RateWorker().Run(gctx) })
	if a.AMQP != nil {
		reload := a.ReloadWorker()
		g.Go(func() error {
			err := a.AMQP.ConsumeDataChanged(gctx, a.Origin, reload.HandleDataChanged)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	if extra != nil {
		extra(g, gctx)
	}

	err := g.Wait()
	cancel()
	<-done
	return err
}
