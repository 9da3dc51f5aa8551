package tasklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{
		i.Task.Date,
		i.Task.StartTime + "-" + i.Task.EndTime,
		string(i.Task.Category),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering task lines.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}

	task := ti.Task
	isSelected := index == m.Index()

	var prefix string
	if task.Completed {
		prefix = "✓"
	} else {
		prefix = "○"
	}

	timeRange := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(task.StartTime + "-" + task.EndTime)

	priBadge := theme.PriorityStyle(task.Priority).Render(priorityLabel(task.Priority))
	catBadge := theme.CategoryStyle(task.Category).Render(string(task.Category))

	subtaskStr := ""
	if n := len(task.Subtasks); n > 0 {
		done := 0
		for _, st := range task.Subtasks {
			if st.Completed {
				done++
			}
		}
		subtaskStr = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Render(fmt.Sprintf(" [%d/%d]", done, n))
	}

	recurStr := ""
	if task.Recurring != nil {
		recurStr = lipgloss.NewStyle().
			Foreground(theme.ColorMagenta).
			Render(" ↻" + string(task.Recurring.Frequency))
	}

	reminderStr := ""
	if task.Reminder {
		reminderStr = lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Render(" !")
	}

	line := fmt.Sprintf(
		"%s %s %s %s %s%s%s%s",
		prefix, timeRange, priBadge, task.Title, catBadge,
		subtaskStr, recurStr, reminderStr,
	)

	if task.Completed {
		line = theme.DimmedStyle.Render(line)
	}

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// priorityLabel returns a short label for the given priority.
func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityCritical:
		return "P1"
	case model.PriorityHigh:
		return "P2"
	case model.PriorityMedium:
		return "P3"
	case model.PriorityLow:
		return "P4"
	default:
		return "P?"
	}
}
