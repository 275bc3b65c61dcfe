package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"

	"finboard/internal/app"
	"finboard/internal/core"
	"finboard/internal/dashboard"
)

func txGroup() subcommands.Command {
	return &group{name: "tx", synopsis: "add, remove or list transactions",
		commands: []subcommands.Command{
			&txAddCmd{},
			&removeCmd{what: "transactions", remove: func(ctx context.Context, a *app.App, id string) { a.Transactions.Remove(ctx, id) }},
			&txLsCmd{},
		}}
}

func budgetGroup() subcommands.Command {
	return &group{name: "budget", synopsis: "set, remove or list monthly budgets",
		commands: []subcommands.Command{
			&budgetSetCmd{},
			&removeCmd{what: "budgets", remove: func(ctx context.Context, a *app.App, id string) { a.Budgets.Remove(ctx, id) }},
			&budgetLsCmd{},
		}}
}

func goalGroup() subcommands.Command {
	return &group{name: "goal", synopsis: "add, remove or list savings goals",
		commands: []subcommands.Command{
			&goalAddCmd{},
			&removeCmd{what: "goals", remove: func(ctx context.Context, a *app.App, id string) { a.Goals.Remove(ctx, id) }},
			&goalLsCmd{},
		}}
}

// removeCmd deletes records by id. Unknown ids are ignored.
type removeCmd struct {
	what   string
	remove func(ctx context.Context, a *app.App, id string)
}

func (c *removeCmd) Name() string           { return "rm" }
func (c *removeCmd) Synopsis() string       { return "remove " + c.what + " by id" }
func (c *removeCmd) Usage() string          { return "rm <id>...\n" }
func (c *removeCmd) SetFlags(*flag.FlagSet) {}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usageError("Error: at least one id is required.")
	}
	return withApp(ctx, func(a *app.App) subcommands.ExitStatus {
		for _, id := range f.Args() {
			c.remove(ctx, a, id)
			fmt.Fprintf(stdout, "Removed %s\n", id)
		}
		return subcommands.ExitSuccess
	})
}

type txAddCmd struct {
	description string
	amount      string
	category    string
	date        string
}

func (*txAddCmd) Name() string     { return "add" }
func (*txAddCmd) Synopsis() string { return "record a transaction" }
func (*txAddCmd) Usage() string {
	return `add -desc <text> -amount <n> -category <c> [-date YYYY-MM-DD]

  Records a transaction. The amount is entered as a positive number: it is
  stored as income for the income category and as an expense otherwise.
`
}

func (c *txAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.description, "desc", "", "Description")
	f.StringVar(&c.amount, "amount", "", "Amount, dot or comma decimal separator")
	f.StringVar(&c.category, "category", "", "One of income, food, transport, shopping, entertainment, utilities, education, healthcare, other")
	f.StringVar(&c.date, "date", "", "Date of the transaction. Defaults to today.")
}

func (c *txAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		return usageError("Error parsing amount %q: %v", c.amount, err)
	}
	category, err := core.ParseCategory(c.category)
	if err != nil {
		return usageError("Error parsing category %q: %v", c.category, err)
	}

	return withApp(ctx, func(a *app.App) subcommands.ExitStatus {
		date := core.DateOf(a.Clock.Now())
		if c.date != "" {
			if date, err = core.ParseDate(c.date); err != nil {
				return usageError("Error parsing date %q: %v", c.date, err)
			}
		}
		tx, err := a.Transactions.Add(ctx, core.TransactionInput{
			Description: c.description,
			Amount:      amount,
			Category:    category,
			Date:        date,
		})
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(stdout, "Added %s: %s %s\n", tx.ID, tx.Description, a.Converter.Format(tx.Amount))
		return subcommands.ExitSuccess
	})
}

type txLsCmd struct {
	head int
}

func (*txLsCmd) Name() string     { return "ls" }
func (*txLsCmd) Synopsis() string { return "list transactions, newest first" }
func (*txLsCmd) Usage() string    { return "ls [-head <n>]\n" }

func (c *txLsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
}

func (c *txLsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) subcommands.ExitStatus {
		txs := a.Transactions.All()
		if c.head > 0 && len(txs) > c.head {
			txs = txs[:c.head]
		}
		w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tAMOUNT\tDESCRIPTION")
		for _, tx := range txs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				tx.ID, dashboard.FormatDate(tx.Date), tx.Category, a.Converter.Format(tx.Amount), tx.Description)
		}
		w.Flush()
		return subcommands.ExitSuccess
	})
}

type budgetSetCmd struct {
	category string
	limit    string
}

func (*budgetSetCmd) Name() string     { return "set" }
func (*budgetSetCmd) Synopsis() string { return "set the monthly limit of a category" }
func (*budgetSetCmd) Usage() string {
	return `set -category <c> -limit <n>

  Sets the monthly limit for an expense category, replacing any existing
  budget for it.
`
}

func (c *budgetSetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "category", "", "Expense category")
	f.StringVar(&c.limit, "limit", "", "Monthly limit")
}

func (c *budgetSetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	limit, err := core.ParseAmount(c.limit)
	if err != nil {
		return usageError("Error parsing limit %q: %v", c.limit, err)
	}
	category, err := core.ParseCategory(c.category)
	if err != nil {
		return usageError("Error parsing category %q: %v", c.category, err)
	}
	return withApp(ctx, func(a *app.App) subcommands.ExitStatus {
		b, err := a.Budgets.Add(ctx, core.BudgetInput{Category: category, Limit: limit})
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(stdout, "Budget %s: %s per month for %s\n", b.ID, a.Converter.Format(b.Limit), b.Category)
		return subcommands.ExitSuccess
	})
}

type budgetLsCmd struct{}

func (*budgetLsCmd) Name() string           { return "ls" }
func (*budgetLsCmd) Synopsis() string       { return "list budgets with this month's spending" }
func (*budgetLsCmd) Usage() string          { return "ls\n" }
func (*budgetLsCmd) SetFlags(*flag.FlagSet) {}

func (*budgetLsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) subcommands.ExitStatus {
		cards := a.Presenter.Current(ctx).Budgets
		w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCATEGORY\tSPENT\tLIMIT\tUSED")
		for _, b := range cards {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f%%\n", b.ID, b.Category, b.Spent.Text, b.Limit.Text, b.Percent)
		}
		w.Flush()
		return subcommands.ExitSuccess
	})
}

type goalAddCmd struct {
	name    string
	target  string
	current string
	date    string
}

func (*goalAddCmd) Name() string     { return "add" }
func (*goalAddCmd) Synopsis() string { return "add a savings goal" }
func (*goalAddCmd) Usage() string {
	return "add -name <text> -target <n> [-current <n>] [-date YYYY-MM-DD]\n"
}

func (c *goalAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Goal name")
	f.StringVar(&c.target, "target", "", "Target amount")
	f.StringVar(&c.current, "current", "0", "Amount saved so far")
	f.StringVar(&c.date, "date", "", "Optional target date")
}

func (c *goalAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	target, err := core.ParseAmount(c.target)
	if err != nil {
		return usageError("Error parsing target %q: %v", c.target, err)
	}
	current, err := core.ParseAmount(c.current)
	if err != nil {
		return usageError("Error parsing current %q: %v", c.current, err)
	}
	var date core.Date
	if c.date != "" {
		if date, err = core.ParseDate(c.date); err != nil {
			return usageError("Error parsing date %q: %v", c.date, err)
		}
	}
	return withApp(ctx, func(a *app.App) subcommands.ExitStatus {
		g, err := a.Goals.Add(ctx, core.GoalInput{Name: c.name, Target: target, Current: current, TargetDate: date})
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(stdout, "Added %s: %s, %s of %s\n", g.ID, g.Name, a.Converter.Format(g.Current), a.Converter.Format(g.Target))
		return subcommands.ExitSuccess
	})
}

type goalLsCmd struct{}

func (*goalLsCmd) Name() string           { return "ls" }
func (*goalLsCmd) Synopsis() string       { return "list goals with their progress" }
func (*goalLsCmd) Usage() string          { return "ls\n" }
func (*goalLsCmd) SetFlags(*flag.FlagSet) {}

func (*goalLsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) subcommands.ExitStatus {
		cards := a.Presenter.Current(ctx).Goals
		w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSAVED\tTARGET\tPROGRESS\tBY")
		for _, g := range cards {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f%%\t%s\n", g.ID, g.Name, g.Current.Text, g.Target.Text, g.Percent, g.TargetDate)
		}
		w.Flush()
		return subcommands.ExitSuccess
	})
}
