package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		debugSeen bool
		warning   bool
	}{
		{"default", "", false, false},
		{"debug", "debug", true, false},
		{"unknown", "verbose", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := SetupLogger(tt.level, &buf)
			logger.Debug("debug line")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.debugSeen {
				t.Errorf("debug visible = %v, want %v; output %q", got, tt.debugSeen, out)
			}
			if got := strings.Contains(out, "Unknown log level"); got != tt.warning {
				t.Errorf("warning = %v, want %v", got, tt.warning)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("FINBOARD_CLI_TEST=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FINBOARD_CLI_TEST", "")
	os.Unsetenv("FINBOARD_CLI_TEST")

	LoadEnvFile(path)
	if got := os.Getenv("FINBOARD_CLI_TEST"); got != "from-file" {
		t.Fatalf("FINBOARD_CLI_TEST = %q", got)
	}

	// Missing files are not an error.
	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadAndValidateConfig(t *testing.T) {
	logger := SetupLogger("error", &bytes.Buffer{})

	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("PORT", "9090")
	cfg, err := LoadAndValidateConfig(logger)
	if err != nil {
		t.Fatalf("LoadAndValidateConfig() error = %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}

	t.Setenv("DATA_BACKEND", "postgres")
	if _, err := LoadAndValidateConfig(logger); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestGracefulShutdownOnParentCancel(t *testing.T) {
	logger := SetupLogger("error", &bytes.Buffer{})
	parent, cancel := context.WithCancel(context.Background())

	cleaned := make(chan struct{})
	ctx, done := GracefulShutdown(parent, logger, time.Second, func() { close(cleaned) })
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	if ctx.Err() == nil {
		t.Error("context should be cancelled")
	}
	select {
	case <-cleaned:
	default:
		t.Error("cleanup did not run")
	}
	WaitForShutdown(ctx, done)
}
