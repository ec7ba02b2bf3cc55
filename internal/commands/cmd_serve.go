package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

type ServeCmd struct {
	flags *Flags

	// flags
	shutdownTimeout time.Duration
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Drive review runs and the weekly schedule until interrupted",
		UsageText: "curator serve [--shutdown-timeout 30s]",
		Description: `Resumes an interrupted run, then ticks the active run and fires the
weekly schedule in the foreground. SIGINT or SIGTERM stops the process after
the tick in flight commits.`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "shutdown-timeout",
				Usage:       "how long to wait for the tick in flight on shutdown",
				Value:       30 * time.Second,
				Destination: &cmd.shutdownTimeout,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runtime := cmd.flags.Service.Runtime()
	if err := runtime.Start(ctx); err != nil {
		return fmt.Errorf("start runtime: %w", err)
	}
	cmd.flags.Logger.Info().Msg("curator serving, press Ctrl+C to stop")

	done := make(chan error, 1)
	go func() { done <- runtime.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cmd.shutdownTimeout)
	defer cancel()
	if err := runtime.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
