// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"tasktracker/internal/task"
)

const (
	// EmptyHint is printed by list when the store has no tasks at all.
	EmptyHint = `No tasks yet. Add one with: tasktracker add "Task title"`

	// NoMatches is printed by list when a filter excludes every task.
	NoMatches = "no matching tasks"

	// descIndent lines a description up under the title column.
	descIndent = "       "
)

// Checkbox returns "[x]" for done tasks and "[ ]" otherwise.
func Checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// FormatTask writes one task line.
// Format: "{ID:>2} {[x]|[ ]} {TITLE}\n", followed by an indented description
// line when the task has one.
func FormatTask(w io.Writer, t task.Task) {
	fmt.Fprintf(w, "%2d %s %s\n", t.ID, Checkbox(t.Done), normalizeTitle(t.Title))
	if t.HasDescription() {
		fmt.Fprintf(w, "%s%s\n", descIndent, oneLine(t.DescriptionText()))
	}
}

// FormatTasks writes every task in order.
func FormatTasks(w io.Writer, tasks []task.Task) {
	for _, t := range tasks {
		FormatTask(w, t)
	}
}

// DoneState returns the wording used in toggle confirmations.
func DoneState(done bool) string {
	if done {
		return "done"
	}
	return "not done"
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = oneLine(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
