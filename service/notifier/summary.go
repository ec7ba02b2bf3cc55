package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/viant/curator/model"
)

// Summary renders the completion message of a finished run.
func Summary(state *model.QueueState) (subject, body string) {
	subject = fmt.Sprintf("Topic review %s: %d reviewed, %d changes, %d errors",
		status(state), state.Processed, state.ChangesFound, state.Errors)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Run:      %s\n", state.RunID)
	fmt.Fprintf(&sb, "Trigger:  %s\n", state.Trigger)
	fmt.Fprintf(&sb, "Scope:    %s\n", state.Scope)
	if state.StartedAt != nil && state.CompletedAt != nil {
		fmt.Fprintf(&sb, "Duration: %s\n", state.CompletedAt.Sub(*state.StartedAt).Round(time.Second))
	}
	fmt.Fprintf(&sb, "Reviewed: %d of %d\n", state.Processed, state.Total)
	fmt.Fprintf(&sb, "Changes:  %d pending approval\n", state.ChangesFound)
	fmt.Fprintf(&sb, "Errors:   %d\n", state.Errors)
	if len(state.ErrorLog) > 0 {
		sb.WriteString("\nRecent errors:\n")
		for _, entry := range state.ErrorLog {
			fmt.Fprintf(&sb, "  - %s: %s\n", entry.Ref, entry.Message)
		}
	}
	return subject, sb.String()
}

func status(state *model.QueueState) string {
	if state.Processed < state.Total {
		return "stopped"
	}
	return "completed"
}
