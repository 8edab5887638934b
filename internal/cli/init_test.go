package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("FINTRACK_CLI_TEST=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FINTRACK_CLI_TEST", "")
	os.Unsetenv("FINTRACK_CLI_TEST")

	LoadEnvFile(path)
	if got := os.Getenv("FINTRACK_CLI_TEST"); got != "loaded" {
		t.Fatalf("expected value from .env, got %q", got)
	}
}

func TestLoadEnvFileMissingIsIgnored(t *testing.T) {
	LoadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("cli-test", "debug")
	if logger.Component() != "cli-test" {
		t.Fatalf("unexpected component %q", logger.Component())
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("debug level should be enabled")
	}
}
