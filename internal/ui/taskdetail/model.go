package taskdetail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/nhle/lifeos/internal/keys"
	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
	"github.com/nhle/lifeos/internal/theme"
)

// BackMsg asks the parent to leave the detail view.
type BackMsg struct{}

// EditRequestMsg asks the parent to open the task form for this task.
type EditRequestMsg struct {
	Task model.Task
}

// TaskUpdatedMsg is sent after a subtask change has been persisted.
type TaskUpdatedMsg struct {
	Task model.Task
}

// Model shows one task with its schedule, description and subtasks.
// Subtasks can be added and toggled in place.
type Model struct {
	store    store.Store
	keys     *keys.KeyMap
	task     model.Task
	cursor   int // index into task.Subtasks
	viewport viewport.Model
	input    textinput.Model
	adding   bool

	width  int
	height int
}

// New creates an empty detail view.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	ti := textinput.New()
	ti.Placeholder = "subtask title..."
	ti.Prompt = "+ "

	return Model{
		store:    s,
		keys:     k,
		viewport: vp,
		input:    ti,
		width:    width,
		height:   height,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// SetTask loads a task into the view.
func (m *Model) SetTask(task model.Task) {
	m.task = task
	m.cursor = 0
	m.adding = false
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Editing reports whether the subtask input has keyboard focus.
func (m Model) Editing() bool {
	return m.adding
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TaskUpdatedMsg:
		m.task = msg.Task
		if m.cursor >= len(m.task.Subtasks) {
			m.cursor = len(m.task.Subtasks) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(msg, m.keys.Edit):
		task := m.task
		return m, func() tea.Msg { return EditRequestMsg{Task: task} }

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.task.Subtasks)-1 {
			m.cursor++
			m.viewport.SetContent(m.renderContent())
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.viewport.SetContent(m.renderContent())
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if len(m.task.Subtasks) == 0 {
			return m, nil
		}
		task := m.task
		task.Subtasks[m.cursor].Completed = !task.Subtasks[m.cursor].Completed
		return m, m.persist(task)

	case key.Matches(msg, m.keys.New):
		m.adding = true
		m.input.Reset()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Delete):
		if len(m.task.Subtasks) == 0 {
			return m, nil
		}
		task := m.task
		task.Subtasks = append(task.Subtasks[:m.cursor], task.Subtasks[m.cursor+1:]...)
		return m, m.persist(task)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Blur()
		if title == "" {
			return m, nil
		}
		task := m.task
		task.Subtasks = append(task.Subtasks, model.Subtask{
			ID:    uuid.NewString(),
			Title: title,
		})
		return m, m.persist(task)

	case "esc":
		m.adding = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// persist saves the modified task and echoes it back on success.
func (m Model) persist(task model.Task) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.UpdateTask(context.Background(), task); err != nil {
			return TaskUpdatedMsg{Task: m.task}
		}
		return TaskUpdatedMsg{Task: task}
	}
}

// View renders the detail view.
func (m Model) View() string {
	if m.adding {
		return m.viewport.View() + "\n" + m.input.View()
	}
	return m.viewport.View()
}

func (m Model) renderContent() string {
	t := m.task

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	labelStyle := theme.DimmedStyle

	var b strings.Builder
	b.WriteString(titleStyle.Render(t.Title))
	b.WriteString("\n\n")

	mark := "○ pending"
	if t.Completed {
		mark = "✓ done"
	}
	b.WriteString(labelStyle.Render("Status    ") + mark + "\n")
	b.WriteString(labelStyle.Render("When      ") + fmt.Sprintf("%s %s-%s", t.Date, t.StartTime, t.EndTime) + "\n")
	b.WriteString(labelStyle.Render("Category  ") + theme.CategoryStyle(t.Category).Render(string(t.Category)) + "\n")
	b.WriteString(labelStyle.Render("Priority  ") + theme.PriorityStyle(t.Priority).Render(string(t.Priority)) + "\n")
	if t.Recurring != nil {
		repeat := string(t.Recurring.Frequency)
		if t.Recurring.EndsOn != "" {
			repeat += " until " + t.Recurring.EndsOn
		}
		b.WriteString(labelStyle.Render("Repeats   ") + repeat + "\n")
	}
	if t.Reminder {
		b.WriteString(labelStyle.Render("Reminder  ") + "on\n")
	}

	if t.Description != "" {
		b.WriteString("\n" + labelStyle.Render("Notes") + "\n")
		b.WriteString(t.Description + "\n")
	}

	b.WriteString("\n" + labelStyle.Render(fmt.Sprintf("Subtasks (%d/%d)", countDone(t.Subtasks), len(t.Subtasks))) + "\n")
	if len(t.Subtasks) == 0 {
		b.WriteString(theme.DimmedStyle.Render("  none · press n to add one") + "\n")
	}
	for i, sub := range t.Subtasks {
		mark := "○"
		line := sub.Title
		if sub.Completed {
			mark = "✓"
			line = theme.DimmedStyle.Render(line)
		}
		row := fmt.Sprintf("  %s %s", mark, line)
		if i == m.cursor {
			row = theme.SelectedItemStyle.Render(row)
		}
		b.WriteString(row + "\n")
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

func countDone(subs []model.Subtask) int {
	n := 0
	for _, s := range subs {
		if s.Completed {
			n++
		}
	}
	return n
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}
