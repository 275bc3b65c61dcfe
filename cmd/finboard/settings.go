package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"finboard/internal/app"
	"finboard/internal/core"
)

type incomeCmd struct{}

func (*incomeCmd) Name() string     { return "income" }
func (*incomeCmd) Synopsis() string { return "show or set the expected monthly income" }
func (*incomeCmd) Usage() string {
	return `income [amount]

  Without an argument, prints the monthly income. With one, stores it.
`
}
func (*incomeCmd) SetFlags(*flag.FlagSet) {}

func (*incomeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		return usageError("Error: income takes at most one amount.")
	}
	var (
		amount float64
		err    error
	)
	if f.NArg() == 1 {
		if amount, err = core.ParseAmount(f.Arg(0)); err != nil {
			return usageError("Error parsing amount %q: %v", f.Arg(0), err)
		}
	}
	return withApp(ctx, func(a *app.App) subcommands.ExitStatus {
		if f.NArg() == 1 {
			if err := a.Income.Set(ctx, core.Amount(amount)); err != nil {
				return fail(err)
			}
		}
		fmt.Fprintf(stdout, "Monthly income: %s\n", a.Converter.Format(a.Income.Get()))
		return subcommands.ExitSuccess
	})
}

type currencyCmd struct{}

func (*currencyCmd) Name() string     { return "currency" }
func (*currencyCmd) Synopsis() string { return "show or select the display currency" }
func (*currencyCmd) Usage() string {
	return `currency [code]

  Without an argument, prints the display currency and the supported ones.
  With one, selects it. Amounts are always stored in USD.
`
}
func (*currencyCmd) SetFlags(*flag.FlagSet) {}

func (*currencyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		return usageError("Error: currency takes at most one code.")
	}
	var code core.CurrencyCode
	if f.NArg() == 1 {
		var err error
		if code, err = core.ParseCurrencyCode(f.Arg(0)); err != nil {
			return usageError("Error: %v, supported: %s", err, supportedList())
		}
	}
	return withApp(ctx, func(a *app.App) subcommands.ExitStatus {
		if code != "" {
			if err := a.Converter.SetCurrency(ctx, code); err != nil {
				return fail(err)
			}
		}
		fmt.Fprintf(stdout, "Display currency: %s\n", a.Converter.Current())
		if code == "" {
			fmt.Fprintf(stdout, "Supported: %s\n", supportedList())
		}
		return subcommands.ExitSuccess
	})
}

func supportedList() string {
	codes := core.SupportedCurrencies()
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

type ratesCmd struct {
	refresh bool
}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "show exchange rates against USD" }
func (*ratesCmd) Usage() string {
	return `rates [-refresh]

  Prints the rates in use and where they came from. Stored rates younger
  than RATES_CACHE_TTL are used as is unless -refresh is given.
`
}

func (c *ratesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.refresh, "refresh", false, "Fetch new rates even if the stored ones are fresh.")
}

func (c *ratesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) subcommands.ExitStatus {
		if c.refresh {
			a.Converter.Refresh(ctx)
		}
		widget := a.Presenter.Current(ctx).Rates
		fmt.Fprintf(stdout, "Source: %s", widget.Source)
		if widget.UpdatedAt != "" {
			fmt.Fprintf(stdout, " (updated %s)", widget.UpdatedAt)
		}
		fmt.Fprintln(stdout)
		if widget.Fallback {
			fmt.Fprintln(stdout, "Warning: live rates unavailable, showing built-in fallback rates.")
		}
		w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		for _, r := range widget.Rows {
			fmt.Fprintf(w, "1 USD\t=\t%s %s\n", r.Text, r.Currency)
		}
		w.Flush()
		return subcommands.ExitSuccess
	})
}
