package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"fintrack/internal/admin"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = "dev"

	commands struct {
		Version kong.VersionFlag `help:"Show version information."`
		admin.Commands
	}
)

func main() {
	cli.LoadEnvFile()

	ctx := kong.Parse(&commands,
		kong.Vars{"version": Version},
		kong.Name("finctl"),
		kong.Description("Administer fintrack users and ledgers."),
		kong.UsageOnError(),
	)

	logger := cli.SetupLogger(log.ComponentCLI, commands.LogLevel)
	cfg := config.Load()

	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backend.Config{
		Type:         backend.BackendType(commands.Backend),
		DataDir:      commands.DataDir,
		SQLiteDBPath: commands.SQLitePath,
		AMQPURL:      cfg.AMQPURL,
		AMQPExchange: cfg.AMQPExchange,
		AMQPQueue:    cfg.AMQPQueue,
	})
	ctx.FatalIfErrorf(err)

	deps := &admin.Deps{
		Store:             result.Store,
		Publisher:         result.Publisher,
		Logger:            logger,
		Out:               os.Stdout,
		In:                os.Stdin,
		ExportConcurrency: cfg.ExportConcurrency,
	}
	if cfg.SheetsEnabled() {
		deps.Sheets = func(ctx context.Context) (sheets.ReportWriter, error) {
			client, err := gsheet.New(ctx, gsheet.Config{
				SpreadsheetID:   cfg.GoogleSpreadsheetID,
				CredentialsJSON: cfg.GoogleServiceAccountJSON,
				CredentialsFile: cfg.GoogleServiceAccountFile,
			}, logger)
			if err != nil {
				return nil, err
			}
			return client, nil
		}
	}

	runErr := ctx.Run(deps)
	if err := result.Cleanup(); err != nil {
		logger.Warn("Backend cleanup failed", log.FieldError, err)
	}
	if runErr != nil {
		admin.PrintError(os.Stderr, fmt.Sprint(runErr))
		os.Exit(1)
	}
}
