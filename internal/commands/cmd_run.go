package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/viant/curator/model"
)

type RunCmd struct {
	flags *Flags

	// start flags
	wait bool
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "run",
		Usage: "Start, advance, cancel and inspect review runs",
		Description: `A run snapshots the topics selected by a scope and reviews them one per
tick. Ticks are normally driven by 'curator serve'; use 'run start --wait' to
drive a run to completion from this process instead.`,
		Commands: []*cli.Command{
			{
				Name:      "start",
				Usage:     "Start a run over a scope",
				UsageText: "curator run start [--wait] [all|<category>|<pattern>]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "wait",
						Usage:       "tick the run in this process until it completes",
						Destination: &cmd.wait,
					},
				},
				Action: cmd.start,
			},
			{
				Name:   "tick",
				Usage:  "Review the next topic of the active run",
				Action: cmd.tick,
			},
			{
				Name:   "cancel",
				Usage:  "Stop the active run",
				Action: cmd.cancel,
			},
			{
				Name:   "status",
				Usage:  "Show the state of the current or last run",
				Action: cmd.status,
			},
			{
				Name:   "progress",
				Usage:  "Show completion and ETA of the current or last run",
				Action: cmd.progress,
			},
		},
	})
	return app
}

func (cmd *RunCmd) start(ctx context.Context, c *cli.Command) error {
	state, err := cmd.flags.Service.Start(ctx, c.Args().First())
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	if cmd.wait {
		if state, err = cmd.drain(ctx); err != nil {
			return err
		}
	}
	return writeJSON(c.Root().Writer, state)
}

func (cmd *RunCmd) drain(ctx context.Context) (*model.QueueState, error) {
	delay := time.Duration(0)
	if cmd.flags.Config != nil {
		delay = cmd.flags.Config.Runner.TickDelay
	}
	for {
		result, err := cmd.flags.Service.Tick(ctx)
		if err != nil {
			return nil, fmt.Errorf("tick: %w", err)
		}
		if result.Err != nil {
			cmd.flags.Logger.Warn().Err(result.Err).Str("topic", result.Ref.String()).Msg("review failed")
		}
		if result.Idle || result.Completed || result.Discarded {
			return cmd.flags.Service.Status(ctx)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (cmd *RunCmd) tick(ctx context.Context, c *cli.Command) error {
	result, err := cmd.flags.Service.Tick(ctx)
	if err != nil {
		return fmt.Errorf("tick: %w", err)
	}
	out := struct {
		RunID     string            `json:"runId,omitempty"`
		Topic     string            `json:"topic,omitempty"`
		Idle      bool              `json:"idle,omitempty"`
		Discarded bool              `json:"discarded,omitempty"`
		Completed bool              `json:"completed,omitempty"`
		Waiting   bool              `json:"waiting,omitempty"`
		ChangeID  string            `json:"changeId,omitempty"`
		Error     string            `json:"error,omitempty"`
		State     *model.QueueState `json:"state,omitempty"`
	}{RunID: result.RunID, Idle: result.Idle, Discarded: result.Discarded, Completed: result.Completed, Waiting: result.Waiting, ChangeID: result.ChangeID, State: result.State}
	if !result.Ref.IsZero() {
		out.Topic = result.Ref.String()
	}
	if result.Err != nil {
		out.Error = result.Err.Error()
	}
	return writeJSON(c.Root().Writer, out)
}

func (cmd *RunCmd) cancel(ctx context.Context, c *cli.Command) error {
	state, err := cmd.flags.Service.Cancel(ctx)
	if err != nil {
		return fmt.Errorf("cancel run: %w", err)
	}
	return writeJSON(c.Root().Writer, state)
}

func (cmd *RunCmd) status(ctx context.Context, c *cli.Command) error {
	state, err := cmd.flags.Service.Status(ctx)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	return writeJSON(c.Root().Writer, state)
}

func (cmd *RunCmd) progress(ctx context.Context, c *cli.Command) error {
	report, err := cmd.flags.Service.Progress(ctx)
	if err != nil {
		return fmt.Errorf("progress: %w", err)
	}
	return writeJSON(c.Root().Writer, report)
}
