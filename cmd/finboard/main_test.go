package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"

	"finboard/internal/core"
	"finboard/internal/dashboard"
)

// setupEnv points finboard at a fresh sqlite file, with no rate API and no
// broker, and captures stdout.
func setupEnv(t *testing.T) *bytes.Buffer {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(dir, "finboard.db"))
	t.Setenv("RATES_API_KEY", "")
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PORT", "8080")

	*envFile = filepath.Join(dir, "missing.env")

	var out bytes.Buffer
	prev := stdout
	stdout = &out
	t.Cleanup(func() { stdout = prev })
	return &out
}

func run(t *testing.T, out *bytes.Buffer, args ...string) (subcommands.ExitStatus, string) {
	t.Helper()
	out.Reset()
	fs := flag.NewFlagSet("finboard", flag.ContinueOnError)
	cdr := subcommands.NewCommander(fs, "finboard")
	register(cdr)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	status := cdr.Execute(context.Background())
	return status, out.String()
}

func TestTransactionCommands(t *testing.T) {
	out := setupEnv(t)

	status, got := run(t, out, "tx", "add", "-desc", "Groceries", "-amount", "42,50", "-category", "food", "-date", "2024-06-03")
	if status != subcommands.ExitSuccess {
		t.Fatalf("tx add status = %v", status)
	}
	if !strings.Contains(got, "Groceries") || !strings.Contains(got, "42.50") {
		t.Errorf("tx add output = %q", got)
	}
	id := strings.TrimSuffix(strings.Fields(got)[1], ":")

	if status, _ := run(t, out, "tx", "add", "-desc", "Salary", "-amount", "2000", "-category", "income", "-date", "2024-06-01"); status != subcommands.ExitSuccess {
		t.Fatalf("second tx add status = %v", status)
	}

	status, got = run(t, out, "tx", "ls")
	if status != subcommands.ExitSuccess {
		t.Fatalf("tx ls status = %v", status)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 3 {
		t.Fatalf("tx ls lines = %d, want header + 2:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[1], "Groceries") || !strings.Contains(lines[1], "Jun 3, 2024") {
		t.Errorf("newest transaction should come first: %q", lines[1])
	}

	if status, _ := run(t, out, "tx", "rm", id); status != subcommands.ExitSuccess {
		t.Fatalf("tx rm status = %v", status)
	}
	_, got = run(t, out, "tx", "ls")
	if strings.Contains(got, "Groceries") {
		t.Errorf("removed transaction still listed:\n%s", got)
	}
}

func TestCommandValidation(t *testing.T) {
	out := setupEnv(t)

	tests := []struct {
		name string
		args []string
		want subcommands.ExitStatus
	}{
		{"bad amount", []string{"tx", "add", "-desc", "x", "-amount", "abc", "-category", "food"}, subcommands.ExitUsageError},
		{"bad category", []string{"tx", "add", "-desc", "x", "-amount", "1", "-category", "pets"}, subcommands.ExitUsageError},
		{"empty description", []string{"tx", "add", "-desc", " ", "-amount", "1", "-category", "food"}, subcommands.ExitFailure},
		{"income budget", []string{"budget", "set", "-category", "income", "-limit", "10"}, subcommands.ExitFailure},
		{"missing action", []string{"goal"}, subcommands.ExitUsageError},
		{"unknown currency", []string{"currency", "DOGE"}, subcommands.ExitUsageError},
		{"rm without id", []string{"budget", "rm"}, subcommands.ExitUsageError},
		{"unknown format", []string{"dashboard", "-format", "pdf"}, subcommands.ExitUsageError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, _ := run(t, out, tt.args...); status != tt.want {
				t.Errorf("status = %v, want %v", status, tt.want)
			}
		})
	}
}

func TestSettingsPersistAcrossRuns(t *testing.T) {
	out := setupEnv(t)

	if status, _ := run(t, out, "currency", "eur"); status != subcommands.ExitSuccess {
		t.Fatalf("currency status = %v", status)
	}
	status, got := run(t, out, "income", "1000")
	if status != subcommands.ExitSuccess {
		t.Fatalf("income status = %v", status)
	}
	// No API key, so the built-in table applies: 1 USD = 0.92 EUR.
	if !strings.Contains(got, "€") || !strings.Contains(got, "920.00") {
		t.Errorf("income output = %q", got)
	}

	_, got = run(t, out, "currency")
	if !strings.Contains(got, "Display currency: EUR") || !strings.Contains(got, "Supported:") {
		t.Errorf("currency output = %q", got)
	}

	_, got = run(t, out, "rates")
	if !strings.Contains(got, "EUR") || strings.Contains(got, "= 1.00 USD") {
		t.Errorf("rates output = %q", got)
	}
}

func TestBudgetsAndGoals(t *testing.T) {
	out := setupEnv(t)

	for _, args := range [][]string{
		{"tx", "add", "-desc", "Bus", "-amount", "30", "-category", "transport", "-date", "2024-06-03"},
		{"budget", "set", "-category", "transport", "-limit", "100"},
		{"goal", "add", "-name", "Holiday", "-target", "1000", "-current", "250", "-date", "2025-07-01"},
	} {
		if status, got := run(t, out, args...); status != subcommands.ExitSuccess {
			t.Fatalf("%v status = %v, output %q", args, status, got)
		}
	}

	_, got := run(t, out, "budget", "ls")
	if !strings.Contains(got, "transport") || !strings.Contains(got, "$100.00") {
		t.Errorf("budget ls = %q", got)
	}
	_, got = run(t, out, "goal", "ls")
	if !strings.Contains(got, "Holiday") || !strings.Contains(got, "25%") || !strings.Contains(got, "Jul 1, 2025") {
		t.Errorf("goal ls = %q", got)
	}
}

func TestDashboardFormats(t *testing.T) {
	out := setupEnv(t)
	run(t, out, "tx", "add", "-desc", "Salary", "-amount", "1500", "-category", "income")

	status, got := run(t, out, "dashboard", "-format", "json")
	if status != subcommands.ExitSuccess {
		t.Fatalf("dashboard status = %v", status)
	}
	var v dashboard.View
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	// The fallback table stored by the first run is served from the cache.
	if v.Balance.Value != 1500 || v.Rates.Source != core.ProvenanceCached {
		t.Errorf("view balance = %+v source = %s", v.Balance, v.Rates.Source)
	}

	_, got = run(t, out, "dashboard", "-format", "markdown")
	if !strings.Contains(got, "Salary") {
		t.Errorf("markdown dashboard missing transaction:\n%s", got)
	}
	_, got = run(t, out, "dashboard", "-format", "html")
	if !strings.Contains(got, "<h") {
		t.Errorf("html dashboard = %q", got)
	}
	_, got = run(t, out, "dashboard", "-style", "notty")
	if !strings.Contains(got, "Salary") {
		t.Errorf("terminal dashboard missing transaction:\n%s", got)
	}
}

func TestWatchNeedsBroker(t *testing.T) {
	out := setupEnv(t)
	if status, _ := run(t, out, "watch"); status != subcommands.ExitFailure {
		t.Errorf("watch without AMQP status = %v, want failure", status)
	}
}
