package verifier

import (
	"fmt"
	"strings"

	"github.com/viant/curator/model"
)

const responseSchema = `{
  "needsUpdate": true|false,
  "updateType": "none|minor|significant|rewrite",
  "confidence": "low|medium|high",
  "summary": "<one paragraph explaining what changed or why nothing did>",
  "suggestedContent": "<full replacement content, required when needsUpdate is true>",
  "insights": ["<supplemental facts worth adding>"],
  "sourcesChecked": ["<source consulted>"]
}`

// BuildPrompt renders the verification instructions for topic.
func BuildPrompt(topic *model.Topic) string {
	var sb strings.Builder
	sb.WriteString("You are a meticulous fact checker reviewing a reference article.\n")
	fmt.Fprintf(&sb, "Topic: %s (%s)\n\n", topic.Title, topic.Ref)
	sb.WriteString("Current content:\n<content>\n")
	sb.WriteString(topic.Content)
	sb.WriteString("\n</content>\n")
	if len(topic.References) > 0 {
		sb.WriteString("\nExisting references:\n")
		for _, ref := range topic.References {
			fmt.Fprintf(&sb, "- %s %s\n", ref.Title, ref.URL)
		}
	}
	hints := topic.Hints
	if len(hints.Focus) > 0 {
		fmt.Fprintf(&sb, "\nFocus on: %s\n", strings.Join(hints.Focus, ", "))
	}
	if len(hints.Sources) > 0 {
		fmt.Fprintf(&sb, "Preferred sources: %s\n", strings.Join(hints.Sources, ", "))
	}
	if hints.Notes != "" {
		fmt.Fprintf(&sb, "Reviewer notes: %s\n", hints.Notes)
	}
	sb.WriteString("\nCheck the content against current, authoritative knowledge. ")
	sb.WriteString("Set needsUpdate only for factual errors or outdated statements; list optional additions under insights.\n")
	sb.WriteString("Respond with ONLY a JSON object matching:\n")
	sb.WriteString(responseSchema)
	sb.WriteString("\n")
	return sb.String()
}
