package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding
	Left key.Binding
	Right key.Binding

	// Selection / toggle
	Select key.Binding
	Toggle key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Help toggle
	Help key.Binding

	// Item actions
	New    key.Binding
	Edit   key.Binding
	Delete key.Binding

	// View switching
	Tasks     key.Binding
	Calendar  key.Binding
	Checklist key.Binding
	CheckIn   key.Binding
	Reports   key.Binding
	Settings  key.Binding

	// Checklist tier cycling and manual reset
	CycleTier key.Binding
	Reset     key.Binding

	// Today jump
	Today key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "previous"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space/x", "toggle done"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Tasks: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "tasks"),
		),
		Calendar: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "calendar"),
		),
		Checklist: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "checklist"),
		),
		CheckIn: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "check-in"),
		),
		Reports: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "reports"),
		),
		Settings: key.NewBinding(
			key.WithKeys("6"),
			key.WithHelp("6", "settings"),
		),
		CycleTier: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle tier"),
		),
		Reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset tier"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Toggle,
		k.Back, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Select, k.Toggle},
		{k.New, k.Edit, k.Delete, k.Search, k.Today},
		{k.Tasks, k.Calendar, k.Checklist, k.CheckIn, k.Reports, k.Settings},
		{k.CycleTier, k.Reset, k.Back, k.Quit, k.Help},
	}
}
