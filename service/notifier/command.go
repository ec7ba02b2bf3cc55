package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
)

// Environment variables exposed to the notification command.
const (
	EnvAddress = "CURATOR_ADDRESS"
	EnvSubject = "CURATOR_SUBJECT"
	EnvBody    = "CURATOR_BODY"
)

// DefaultCommand pipes the body to mail(1).
const DefaultCommand = `printf '%s\n' "$CURATOR_BODY" | mail -s "$CURATOR_SUBJECT" "$CURATOR_ADDRESS"`

// Command runs a local shell command per notification, with the message in
// the CURATOR_* environment variables.
type Command struct {
	command string
	timeout time.Duration
}

// NewCommand creates a command notifier, an empty command uses DefaultCommand.
func NewCommand(command string, timeout time.Duration) *Command {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Command{command: command, timeout: timeout}
}

func (c *Command) Send(ctx context.Context, address, subject, body string) error {
	env := map[string]string{
		EnvAddress: address,
		EnvSubject: subject,
		EnvBody:    body,
	}
	service, err := gosh.New(ctx, local.New(runner.WithEnvironment(env)))
	if err != nil {
		return fmt.Errorf("failed to start notification shell: %w", err)
	}
	defer service.Close()
	stdout, status, err := service.Run(ctx, c.command, runner.WithTimeout(int(c.timeout.Milliseconds())))
	if err != nil {
		return fmt.Errorf("notification command failed: %w", err)
	}
	if status != 0 {
		return fmt.Errorf("notification command exited with %d: %s", status, strings.TrimSpace(stdout))
	}
	return nil
}
