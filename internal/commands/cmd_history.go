package commands

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"
)

type HistoryCmd struct {
	flags *Flags

	// flags
	last int
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags) *HistoryCmd {
	return &HistoryCmd{flags: flags}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "List completed runs, newest first",
		UsageText: "curator history [--last 5]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "last",
				Usage:       "limit to the newest n runs (0 = all)",
				Destination: &cmd.last,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	entries, err := cmd.flags.Service.History(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	slices.Reverse(entries)
	if cmd.last > 0 && len(entries) > cmd.last {
		entries = entries[:cmd.last]
	}
	return writeJSON(c.Root().Writer, entries)
}
