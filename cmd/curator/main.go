package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/viant/curator"
	"github.com/viant/curator/internal/commands"
	"github.com/viant/curator/internal/logging"
	"github.com/viant/curator/progress"
)

func main() {
	ctx := context.Background()

	var logCloser func()
	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "curator",
		Usage:     "Keep a topic knowledge base current",
		UsageText: "curator [global options] command [command options]",
		Description: `Curator reviews knowledge base topics against a verification service,
one topic per tick, and queues the corrections it finds as pending changes
for a human to approve or reject.

Run 'curator serve' to drive runs and the weekly schedule in the background.`,
		Version: curator.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file (environment only when empty)",
				Sources:     cli.EnvVars("CURATOR_CONFIG"),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (trace, debug, info, warn, error)",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr)",
				Destination: &flags.LogFile,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := curator.LoadConfig(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.LogLevel != "" {
				cfg.Log.Level = flags.LogLevel
			}
			if flags.LogFile != "" {
				cfg.Log.File = flags.LogFile
			}
			logger, closer, err := logging.New(cfg.Log)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			srv, err := curator.NewFromConfig(ctx, cfg, logger, curator.WithProgress(func(report progress.Report) {
				logger.Info().Str("run", report.RunID).Int("processed", report.Processed).Int("total", report.Total).
					Float64("percent", report.Percent).Dur("eta", report.ETA).Msg("run progress")
			}))
			if err != nil {
				return ctx, fmt.Errorf("init curator: %w", err)
			}
			flags.Config = cfg
			flags.Service = srv
			flags.Logger = logger
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if flags.Service != nil {
				if err := flags.Service.Close(ctx); err != nil {
					log.Error().Err(err).Msg("failed to close curator")
					return err
				}
			}
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewServeCmd(flags).Register(app)
	app = commands.NewRunCmd(flags).Register(app)
	app = commands.NewChangesCmd(flags).Register(app)
	app = commands.NewScheduleCmd(flags).Register(app)
	app = commands.NewHistoryCmd(flags).Register(app)
	app = commands.NewReviewCmd(flags).Register(app)

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
