package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

type ScheduleCmd struct {
	flags *Flags

	// set flags
	enabled       bool
	day           string
	at            string
	scope         string
	notifyAddress string
}

// NewScheduleCmd creates a new schedule command
func NewScheduleCmd(flags *Flags) *ScheduleCmd {
	return &ScheduleCmd{flags: flags}
}

// Register adds the schedule command to the application
func (cmd *ScheduleCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "schedule",
		Usage: "Show or change the weekly review schedule",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the schedule with its next run",
				Action: cmd.show,
			},
			{
				Name:      "set",
				Usage:     "Replace the schedule",
				UsageText: "curator schedule set --enabled --day wed --at 09:30 [--scope go] [--notify ops@example.com]",
				Description: `Times are local to the process. Flags left out keep their current value,
except --enabled, which must be given to keep the schedule on.`,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "enabled", Usage: "run reviews weekly", Destination: &cmd.enabled},
					&cli.StringFlag{Name: "day", Usage: "day of week, sun..sat or 0..6", Destination: &cmd.day},
					&cli.StringFlag{Name: "at", Usage: "time of day as HH:MM", Destination: &cmd.at},
					&cli.StringFlag{Name: "scope", Usage: "topics to review, all by default", Destination: &cmd.scope},
					&cli.StringFlag{Name: "notify", Usage: "address notified when a run ends, 'off' disables", Destination: &cmd.notifyAddress},
				},
				Action: cmd.set,
			},
		},
	})
	return app
}

func (cmd *ScheduleCmd) show(ctx context.Context, c *cli.Command) error {
	config, err := cmd.flags.Service.Schedule(ctx)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	return writeJSON(c.Root().Writer, config)
}

func (cmd *ScheduleCmd) set(ctx context.Context, c *cli.Command) error {
	current, err := cmd.flags.Service.Schedule(ctx)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	config := *current
	config.Enabled = cmd.enabled
	if cmd.day != "" {
		if config.DayOfWeek, err = parseWeekday(cmd.day); err != nil {
			return err
		}
	}
	if cmd.at != "" {
		if config.Hour, config.Minute, err = parseClock(cmd.at); err != nil {
			return err
		}
	}
	if c.IsSet("scope") {
		config.Scope = cmd.scope
	}
	switch {
	case strings.EqualFold(cmd.notifyAddress, "off"):
		config.NotifyEnabled = false
	case cmd.notifyAddress != "":
		config.NotifyEnabled = true
		config.NotifyAddress = cmd.notifyAddress
	}
	saved, err := cmd.flags.Service.SaveSchedule(ctx, config)
	if err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	return writeJSON(c.Root().Writer, saved)
}

func parseWeekday(text string) (time.Weekday, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if n, err := strconv.Atoi(text); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("invalid day %q", text)
		}
		return time.Weekday(n), nil
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		name := strings.ToLower(day.String())
		if len(text) >= 3 && strings.HasPrefix(name, text) {
			return day, nil
		}
	}
	return 0, fmt.Errorf("invalid day %q", text)
}

func parseClock(text string) (int, int, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(text))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", text)
	}
	return parsed.Hour(), parsed.Minute(), nil
}
