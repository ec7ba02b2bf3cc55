package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/viant/curator/model"
	"github.com/viant/curator/service/ledger"
)

type ChangesCmd struct {
	flags *Flags

	// list flags
	category      string
	minConfidence string
	updateTypes   []string
	runID         string

	// approve/reject flags
	all bool
}

// NewChangesCmd creates a new changes command
func NewChangesCmd(flags *Flags) *ChangesCmd {
	return &ChangesCmd{flags: flags}
}

// Register adds the changes command to the application
func (cmd *ChangesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "changes",
		Aliases: []string{"pending"},
		Usage:   "Review proposed topic changes",
		Description: `Every review that finds a topic out of date proposes a change. Nothing is
written to the catalog until a change is approved.`,
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List pending changes, oldest first",
				UsageText: "curator changes list [--category go] [--min-confidence medium] [--type major] [--run <id>]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Usage: "only changes of this category", Destination: &cmd.category},
					&cli.StringFlag{Name: "min-confidence", Usage: "low, medium or high", Destination: &cmd.minConfidence},
					&cli.StringSliceFlag{Name: "type", Usage: "update types to include", Destination: &cmd.updateTypes},
					&cli.StringFlag{Name: "run", Usage: "only changes proposed by this run", Destination: &cmd.runID},
				},
				Action: cmd.list,
			},
			{
				Name:      "show",
				Usage:     "Show one change with its diff preview",
				UsageText: "curator changes show <id>",
				Action:    cmd.show,
			},
			{
				Name:      "approve",
				Usage:     "Apply a change to the catalog",
				UsageText: "curator changes approve <id> | --all",
				Flags:     []cli.Flag{cmd.allFlag()},
				Action:    cmd.approve,
			},
			{
				Name:      "reject",
				Usage:     "Discard a change",
				UsageText: "curator changes reject <id> | --all",
				Flags:     []cli.Flag{cmd.allFlag()},
				Action:    cmd.reject,
			},
		},
	})
	return app
}

func (cmd *ChangesCmd) allFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:        "all",
		Usage:       "apply to every pending change",
		Destination: &cmd.all,
	}
}

func (cmd *ChangesCmd) filters() ([]ledger.Filter, error) {
	var ret []ledger.Filter
	if cmd.category != "" {
		ret = append(ret, ledger.WithCategory(cmd.category))
	}
	if cmd.minConfidence != "" {
		confidence, ok := model.ParseConfidence(cmd.minConfidence)
		if !ok {
			return nil, fmt.Errorf("invalid --min-confidence %q", cmd.minConfidence)
		}
		ret = append(ret, ledger.WithMinConfidence(confidence))
	}
	if len(cmd.updateTypes) > 0 {
		var updateTypes []model.UpdateType
		for _, text := range cmd.updateTypes {
			updateType, ok := model.ParseUpdateType(text)
			if !ok {
				return nil, fmt.Errorf("invalid --type %q", text)
			}
			updateTypes = append(updateTypes, updateType)
		}
		ret = append(ret, ledger.WithUpdateType(updateTypes...))
	}
	if cmd.runID != "" {
		ret = append(ret, ledger.WithRunID(cmd.runID))
	}
	return ret, nil
}

type changeSummary struct {
	ID         string           `json:"id"`
	Topic      string           `json:"topic"`
	UpdateType model.UpdateType `json:"updateType"`
	Confidence model.Confidence `json:"confidence"`
	Origin     model.Origin     `json:"origin,omitempty"`
	Stats      model.DiffStats  `json:"stats"`
	CreatedAt  string           `json:"createdAt"`
}

func (cmd *ChangesCmd) list(ctx context.Context, c *cli.Command) error {
	filters, err := cmd.filters()
	if err != nil {
		return err
	}
	changes, err := cmd.flags.Service.Pending(ctx, filters...)
	if err != nil {
		return fmt.Errorf("list changes: %w", err)
	}
	out := make([]changeSummary, 0, len(changes))
	for _, change := range changes {
		summary := changeSummary{
			ID:        change.ID,
			Topic:     change.Ref.String(),
			Origin:    change.Origin,
			Stats:     change.Stats,
			CreatedAt: change.CreatedAt.Format(time.RFC3339),
		}
		if change.Outcome != nil {
			summary.UpdateType = change.Outcome.UpdateType
			summary.Confidence = change.Outcome.Confidence
		}
		out = append(out, summary)
	}
	return writeJSON(c.Root().Writer, out)
}

func (cmd *ChangesCmd) show(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return errors.New("change id is required")
	}
	change, err := cmd.flags.Service.Change(ctx, id)
	if err != nil {
		return err
	}
	return writeJSON(c.Root().Writer, change)
}

func (cmd *ChangesCmd) approve(ctx context.Context, c *cli.Command) error {
	if cmd.all {
		result, err := cmd.flags.Service.ApproveAll(ctx)
		if err != nil {
			return fmt.Errorf("approve all: %w", err)
		}
		for _, failure := range result.Failures {
			cmd.flags.Logger.Warn().Err(failure).Msg("change not applied")
		}
		return writeJSON(c.Root().Writer, result)
	}
	id := c.Args().First()
	if id == "" {
		return errors.New("change id or --all is required")
	}
	applied, err := cmd.flags.Service.Approve(ctx, id)
	if err != nil {
		return err
	}
	return writeJSON(c.Root().Writer, applied)
}

func (cmd *ChangesCmd) reject(ctx context.Context, c *cli.Command) error {
	if cmd.all {
		count, err := cmd.flags.Service.RejectAll(ctx)
		if err != nil {
			return fmt.Errorf("reject all: %w", err)
		}
		return writeJSON(c.Root().Writer, map[string]int{"rejected": count})
	}
	id := c.Args().First()
	if id == "" {
		return errors.New("change id or --all is required")
	}
	if err := cmd.flags.Service.Reject(ctx, id); err != nil {
		return err
	}
	return writeJSON(c.Root().Writer, map[string]string{"rejected": id})
}
