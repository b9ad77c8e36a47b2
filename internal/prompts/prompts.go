package prompts

import (
	"fmt"
	"strings"
)

// ============================================================================
// Theme Labeling Prompts
// ============================================================================

// ThemeLabelSystemPrompt sets the role for cluster labeling.
const ThemeLabelSystemPrompt = "You are a semantic expert."

// themeLabelUserTemplate asks for a short label over the member comments.
const themeLabelUserTemplate = `Given the following comments, generate a 5-8 word label that captures key issues, including as many different keywords from the comments as possible. Output nothing but text, without quotes. Comments:
%s
Label:`

// BuildThemeLabelPrompt embeds the cluster's member comments into the user prompt.
// Comments are rendered as a JSON-style list so embedded quotes stay unambiguous.
func BuildThemeLabelPrompt(comments []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, c := range comments {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", c)
	}
	b.WriteByte(']')
	return fmt.Sprintf(themeLabelUserTemplate, b.String())
}

// CleanLabel trims whitespace and the wrapping quotes models sometimes add.
func CleanLabel(raw string) string {
	label := strings.TrimSpace(raw)
	label = strings.TrimPrefix(label, "Label:")
	label = strings.TrimSpace(label)
	for _, q := range []string{`"`, "'", "“", "”", "`"} {
		label = strings.TrimPrefix(label, q)
		label = strings.TrimSuffix(label, q)
	}
	return strings.TrimSpace(label)
}
