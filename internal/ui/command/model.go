package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/lifeos/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// commands the palette completes against, with a short description.
var commands = []struct {
	name string
	desc string
}{
	{"tasks", "open the task list"},
	{"calendar", "open the month calendar"},
	{"checklist", "open the life score checklist"},
	{"check in", "open the daily check-in"},
	{"reports", "open reports"},
	{"settings", "open settings"},
	{"today", "jump the task list to today"},
	{"export", "save a backup to the data directory"},
	{"reset daily", "reset the daily checklist tier"},
	{"quit", "exit the application"},
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			cmd := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if cmd != "" {
				return m, func() tea.Msg {
					return CommandMsg(cmd)
				}
			}
			return m, nil

		case "tab":
			if match := m.firstMatch(); match != "" {
				m.input.SetValue(match)
				m.input.CursorEnd()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// firstMatch returns the first command the current input is a prefix of.
func (m Model) firstMatch() string {
	typed := strings.ToLower(strings.TrimSpace(m.input.Value()))
	if typed == "" {
		return ""
	}
	for _, c := range commands {
		if strings.HasPrefix(c.name, typed) {
			return c.name
		}
	}
	return ""
}

// View renders the command palette with matching completions below.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{
		titleStyle.Render("Command Palette"),
		m.input.View(),
	}

	typed := strings.ToLower(strings.TrimSpace(m.input.Value()))
	for _, c := range commands {
		if typed != "" && !strings.HasPrefix(c.name, typed) {
			continue
		}
		parts = append(parts, theme.DimmedStyle.Render("  "+c.name+" · "+c.desc))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
