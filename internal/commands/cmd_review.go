package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/viant/curator/model"
)

type ReviewCmd struct {
	flags *Flags
}

// NewReviewCmd creates a new review command
func NewReviewCmd(flags *Flags) *ReviewCmd {
	return &ReviewCmd{flags: flags}
}

// Register adds the review command to the application
func (cmd *ReviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "review",
		Usage:     "Review topics now, outside of any run",
		UsageText: "curator review <category/key> [<category/key>...]",
		Description: `Verifies the given topics synchronously. Topics found out of date get a
pending change exactly as in a run; the run queue is not touched.`,
		Action: cmd.run,
	})
	return app
}

type reviewOutput struct {
	Topic    string         `json:"topic"`
	Outcome  *model.Outcome `json:"outcome,omitempty"`
	ChangeID string         `json:"changeId,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func (cmd *ReviewCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return errors.New("at least one topic is required")
	}
	var refs []model.Ref
	for _, arg := range c.Args().Slice() {
		ref, err := model.ParseRef(arg)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}
	reviews, err := cmd.flags.Service.ReviewTopics(ctx, refs)
	if err != nil {
		return fmt.Errorf("review: %w", err)
	}
	out := make([]reviewOutput, 0, len(reviews))
	var failed []error
	for _, review := range reviews {
		item := reviewOutput{Topic: review.Ref.String(), Outcome: review.Outcome, ChangeID: review.ChangeID}
		if review.Err != nil {
			item.Error = review.Err.Error()
			failed = append(failed, review.Err)
		}
		out = append(out, item)
	}
	if err := writeJSON(c.Root().Writer, out); err != nil {
		return err
	}
	if len(failed) == len(reviews) {
		return fmt.Errorf("all %d reviews failed: %w", len(failed), errors.Join(failed...))
	}
	return nil
}
