package tasklist

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/lifeos/internal/keys"
	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
	"github.com/nhle/lifeos/internal/theme"
)

// TasksLoadedMsg is sent when tasks have been loaded from the store.
type TasksLoadedMsg struct {
	Tasks []model.Task
	Date  string
}

// SelectedTaskMsg is sent when a user selects a task to edit.
type SelectedTaskMsg struct {
	Task model.Task
}

// NewTaskMsg is sent when the user asks to create a task on the
// currently shown date.
type NewTaskMsg struct {
	Date string
}

// TaskMutatedMsg is sent after a toggle or delete so the parent can
// refresh other views.
type TaskMutatedMsg struct{}

// Model is the day-view task list.
type Model struct {
	list        list.Model
	store       store.Store
	keys        *keys.KeyMap
	date        string // YYYY-MM-DD currently shown
	query       *string
	searchMode  bool
	searchInput textinput.Model
	showDone    bool
	width       int
	height      int
}

// New creates a task list model showing today.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search tasks..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		store:       s,
		keys:        k,
		date:        time.Now().Format(model.DateLayout),
		searchInput: si,
		showDone:    true,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial set of tasks.
func (m Model) Init() tea.Cmd {
	return m.LoadTasks()
}

// Date returns the currently shown date.
func (m Model) Date() string {
	return m.date
}

// Searching reports whether the search input currently has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// SetDate switches the view to the given date and reloads.
func (m *Model) SetDate(date string) tea.Cmd {
	m.date = date
	return m.LoadTasks()
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		if msg.Date != m.date {
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.Tasks))
		for _, task := range msg.Tasks {
			if !m.showDone && task.Completed {
				continue
			}
			items = append(items, TaskItem{Task: task})
		}
		m.list.Title = "Tasks · " + m.date
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		query := m.searchInput.Value()
		if query != "" {
			m.query = &query
		} else {
			m.query = nil
		}
		return m, m.LoadTasks()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = nil
		return m, m.LoadTasks()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(TaskItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedTaskMsg{Task: item.Task}
		}

	case key.Matches(msg, m.keys.New):
		date := m.date
		return m, func() tea.Msg {
			return NewTaskMsg{Date: date}
		}

	case key.Matches(msg, m.keys.Toggle):
		item, ok := m.list.SelectedItem().(TaskItem)
		if !ok {
			return m, nil
		}
		return m, m.toggleTask(item.Task.ID)

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.list.SelectedItem().(TaskItem)
		if !ok {
			return m, nil
		}
		return m, m.deleteTask(item.Task.ID)

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.Left):
		return m, m.shiftDate(-1)

	case key.Matches(msg, m.keys.Right):
		return m, m.shiftDate(1)

	case key.Matches(msg, m.keys.Today):
		m.date = time.Now().Format(model.DateLayout)
		return m, m.LoadTasks()

	case msg.String() == "H":
		m.showDone = !m.showDone
		return m, m.LoadTasks()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) shiftDate(days int) tea.Cmd {
	t, err := time.Parse(model.DateLayout, m.date)
	if err != nil {
		t = time.Now()
	}
	m.date = t.AddDate(0, 0, days).Format(model.DateLayout)
	return m.LoadTasks()
}

// View renders the task list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no tasks exist for the day.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.query != nil {
		return style.Render("No matching tasks.\nPress / to change the search, esc to clear.")
	}
	return style.Render(
		"No tasks on " + m.date + ".\n\n" +
			"Press n to schedule one, or h/l to change the day.",
	)
}

// LoadTasks returns a tea.Cmd that queries the store for the current
// date and search query.
func (m Model) LoadTasks() tea.Cmd {
	date := m.date
	query := m.query
	s := m.store
	return func() tea.Msg {
		filter := store.TaskFilter{Query: query}
		if query == nil {
			filter.Date = &date
		}
		tasks, err := s.GetTasks(context.Background(), filter)
		if err != nil {
			return TasksLoadedMsg{Date: date}
		}
		return TasksLoadedMsg{Tasks: tasks, Date: date}
	}
}

func (m Model) toggleTask(id string) tea.Cmd {
	s := m.store
	load := m.LoadTasks()
	return func() tea.Msg {
		if err := s.ToggleTask(context.Background(), id); err != nil {
			return load()
		}
		return load()
	}
}

func (m Model) deleteTask(id string) tea.Cmd {
	s := m.store
	load := m.LoadTasks()
	return func() tea.Msg {
		_ = s.DeleteTask(context.Background(), id)
		return load()
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
