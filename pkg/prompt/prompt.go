// Package prompt holds the fixed system instruction sent ahead of every
// model call.
package prompt

import (
	"strings"
)

const base = `You are an expert coding agent with access to file-system and shell tools.
Help the user accomplish programming tasks by:

1. Reading existing code before making changes.
2. Writing clean, well-commented, idiomatic code.
3. Running commands to install dependencies and test your work.
4. Explaining your reasoning concisely.
5. Handling edge cases and errors gracefully.

Always think step by step. When asked to build something, plan first, then
implement incrementally, verifying each step with execute_bash when useful.`

// BuildSystemPrompt returns the system instruction, listing the tool names
// the model may call.
func BuildSystemPrompt(toolNames []string) string {
	var sb strings.Builder
	sb.WriteString(base)
	if names := sanitizeNames(toolNames); len(names) > 0 {
		sb.WriteString("\n\nTools available: ")
		sb.WriteString(strings.Join(names, ", "))
		sb.WriteString(".")
	}
	return strings.TrimSpace(sb.String())
}

// sanitizeNames keeps names single-line and drops blanks.
func sanitizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ReplaceAll(name, "\n", " ")
		name = strings.ReplaceAll(name, "\r", " ")
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
