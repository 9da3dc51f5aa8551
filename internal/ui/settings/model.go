package settings

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/lifeos/internal/backup"
	"github.com/nhle/lifeos/internal/checklist"
	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
	"github.com/nhle/lifeos/internal/theme"
)

// ConfigSavedMsg signals that preferences were persisted to disk.
type ConfigSavedMsg struct {
	Config *model.AppConfig
}

// DataChangedMsg signals that stored data changed outside the normal
// views (import, template reset, clearing) and views should reload.
type DataChangedMsg struct{}

// ActionDoneMsg reports the outcome of a settings action.
type ActionDoneMsg struct {
	Notice string
	Reload bool
	Err    error
}

type mode int

const (
	modeMenu mode = iota
	modeForm
	modeConfirm
	modeImportPath
)

type menuEntry struct {
	label string
	desc  string
}

var menuEntries = []menuEntry{
	{"Preferences", "appearance, calendar, tasks and notification options"},
	{"Export backup", "save all data as JSON"},
	{"Import backup", "merge a JSON backup into the current data"},
	{"Reset checklist templates", "restore the built-in checklist items"},
	{"Clear all data", "delete every task, check-in and checklist entry"},
}

const (
	menuPreferences = iota
	menuExport
	menuImport
	menuResetTemplates
	menuClearData
)

// formBindings holds the field values the preferences form writes into.
// Kept on the heap so huh's pointers stay valid across Update copies.
type formBindings struct {
	themeName      string
	accentColor    string
	compactMode    bool
	taskReminders  bool
	checkInRem     bool
	quietEnabled   bool
	quietStart     string
	quietEnd       string
	weekStart      string
	timeFormat     string
	showCompleted  bool
	highlightWkend bool
	durationMin    string
	priority       string
	streakTracking bool
	dailyGoal      bool
	showInsights   bool
}

// Model is the settings view: a small action menu, a preferences form,
// and confirm prompts for the destructive actions.
type Model struct {
	store      store.Store
	config     *model.AppConfig
	configPath string

	mode       mode
	cursor     int
	notice     string
	confirm    *bool
	pending    int // menu entry awaiting confirmation
	importPath *string

	form *huh.Form
	fb   *formBindings

	width  int
	height int
}

// New creates the settings view.
func New(s store.Store, cfg *model.AppConfig, configPath string, width, height int) Model {
	return Model{
		store:      s,
		config:     cfg,
		configPath: configPath,
		width:      width,
		height:     height,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// SetConfig swaps in a fresh configuration, e.g. after an import.
func (m *Model) SetConfig(cfg *model.AppConfig) {
	m.config = cfg
}

func (m *Model) buildForm() tea.Cmd {
	cfg := m.config
	fb := &formBindings{
		themeName:      cfg.Appearance.Theme,
		accentColor:    cfg.Appearance.AccentColor,
		compactMode:    cfg.Appearance.CompactMode,
		taskReminders:  cfg.Notifications.TaskReminders,
		checkInRem:     cfg.Notifications.DailyCheckInReminder,
		quietEnabled:   cfg.Notifications.QuietHours.Enabled,
		quietStart:     cfg.Notifications.QuietHours.Start,
		quietEnd:       cfg.Notifications.QuietHours.End,
		weekStart:      cfg.Calendar.WeekStartDay,
		timeFormat:     cfg.Calendar.TimeFormat,
		showCompleted:  cfg.Calendar.ShowCompletedTasks,
		highlightWkend: cfg.Calendar.HighlightWeekends,
		durationMin:    strconv.Itoa(cfg.Tasks.DefaultDurationMin),
		priority:       cfg.Tasks.DefaultPriority,
		streakTracking: cfg.Productivity.StreakTracking,
		dailyGoal:      cfg.Productivity.DailyGoal,
		showInsights:   cfg.Productivity.ShowInsights,
	}
	m.fb = fb

	var priorityOpts []huh.Option[string]
	for _, p := range model.Priorities() {
		priorityOpts = append(priorityOpts, huh.NewOption(string(p), string(p)))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("System", "system"),
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).
				Value(&fb.themeName),
			huh.NewInput().
				Title("Accent color").
				Value(&fb.accentColor),
			huh.NewConfirm().
				Title("Compact mode").
				Value(&fb.compactMode),
		).Title("Appearance"),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Task reminders").
				Value(&fb.taskReminders),
			huh.NewConfirm().
				Title("Daily check-in reminder").
				Value(&fb.checkInRem),
			huh.NewConfirm().
				Title("Quiet hours").
				Value(&fb.quietEnabled),
			huh.NewInput().
				Title("Quiet hours start").
				Value(&fb.quietStart).
				Validate(validateClock),
			huh.NewInput().
				Title("Quiet hours end").
				Value(&fb.quietEnd).
				Validate(validateClock),
		).Title("Notifications"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Week starts on").
				Options(
					huh.NewOption("Sunday", "sunday"),
					huh.NewOption("Monday", "monday"),
				).
				Value(&fb.weekStart),
			huh.NewSelect[string]().
				Title("Time format").
				Options(
					huh.NewOption("12-hour", "12h"),
					huh.NewOption("24-hour", "24h"),
				).
				Value(&fb.timeFormat),
			huh.NewConfirm().
				Title("Show completed tasks").
				Value(&fb.showCompleted),
			huh.NewConfirm().
				Title("Highlight weekends").
				Value(&fb.highlightWkend),
		).Title("Calendar"),
		huh.NewGroup(
			huh.NewInput().
				Title("Default task duration (minutes)").
				Value(&fb.durationMin).
				Validate(validateMinutes),
			huh.NewSelect[string]().
				Title("Default priority").
				Options(priorityOpts...).
				Value(&fb.priority),
			huh.NewConfirm().
				Title("Streak tracking").
				Value(&fb.streakTracking),
			huh.NewConfirm().
				Title("Daily goal").
				Value(&fb.dailyGoal),
			huh.NewConfirm().
				Title("Productivity insights").
				Value(&fb.showInsights),
		).Title("Tasks & Productivity"),
	).WithWidth(formWidth(m.width)).WithShowHelp(true)

	return m.form.Init()
}

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirm:
		return m.updateConfirm(msg)
	case modeImportPath:
		return m.updateImportPath(msg)
	}
	return m.updateMenu(msg)
}

func (m Model) updateMenu(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ActionDoneMsg:
		if msg.Err != nil {
			m.notice = msg.Err.Error()
			return m, nil
		}
		m.notice = msg.Notice
		if msg.Reload {
			return m, func() tea.Msg { return DataChangedMsg{} }
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(menuEntries)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "enter":
			return m.runEntry(m.cursor)
		}
	}
	return m, nil
}

func (m Model) runEntry(idx int) (Model, tea.Cmd) {
	m.notice = ""
	switch idx {
	case menuPreferences:
		m.mode = modeForm
		return m, m.buildForm()

	case menuExport:
		return m, m.exportBackup()

	case menuImport:
		m.mode = modeImportPath
		path := filepath.Join(m.config.DataDir, backup.Filename(time.Now()))
		m.importPath = &path
		m.form = huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Backup file to import").
				Value(m.importPath),
		)).WithWidth(formWidth(m.width))
		return m, m.form.Init()

	case menuResetTemplates, menuClearData:
		m.mode = modeConfirm
		m.pending = idx
		confirmed := false
		m.confirm = &confirmed
		title := "Reset checklist items to the built-in templates?"
		if idx == menuClearData {
			title = "Delete ALL tasks, check-ins and checklist data?"
		}
		m.form = huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(m.confirm),
		)).WithWidth(formWidth(m.width))
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.mode = modeMenu
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.applyForm()
		m.mode = modeMenu
		m.form = nil
		cfg := m.config
		path := m.configPath
		return m, func() tea.Msg {
			if err := model.SaveConfig(path, cfg); err != nil {
				return ActionDoneMsg{Err: err}
			}
			return ConfigSavedMsg{Config: cfg}
		}
	case huh.StateAborted:
		m.mode = modeMenu
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m *Model) applyForm() {
	fb := m.fb
	cfg := m.config
	cfg.Appearance.Theme = fb.themeName
	cfg.Appearance.AccentColor = fb.accentColor
	cfg.Appearance.CompactMode = fb.compactMode
	cfg.Notifications.TaskReminders = fb.taskReminders
	cfg.Notifications.DailyCheckInReminder = fb.checkInRem
	cfg.Notifications.QuietHours.Enabled = fb.quietEnabled
	cfg.Notifications.QuietHours.Start = fb.quietStart
	cfg.Notifications.QuietHours.End = fb.quietEnd
	cfg.Calendar.WeekStartDay = fb.weekStart
	cfg.Calendar.TimeFormat = fb.timeFormat
	cfg.Calendar.ShowCompletedTasks = fb.showCompleted
	cfg.Calendar.HighlightWeekends = fb.highlightWkend
	if n, err := strconv.Atoi(fb.durationMin); err == nil && n > 0 {
		cfg.Tasks.DefaultDurationMin = n
	}
	cfg.Tasks.DefaultPriority = fb.priority
	cfg.Productivity.StreakTracking = fb.streakTracking
	cfg.Productivity.DailyGoal = fb.dailyGoal
	cfg.Productivity.ShowInsights = fb.showInsights
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		confirmed := m.confirm != nil && *m.confirm
		pending := m.pending
		m.mode = modeMenu
		m.form = nil
		m.confirm = nil
		if !confirmed {
			return m, nil
		}
		switch pending {
		case menuResetTemplates:
			return m, m.resetTemplates()
		case menuClearData:
			return m, m.clearData()
		}
		return m, nil
	case huh.StateAborted:
		m.mode = modeMenu
		m.form = nil
		m.confirm = nil
		return m, nil
	}
	return m, cmd
}

func (m Model) exportBackup() tea.Cmd {
	s := m.store
	cfg := m.config
	return func() tea.Msg {
		now := time.Now()
		path := filepath.Join(cfg.DataDir, backup.Filename(now))
		if err := backup.WriteFile(context.Background(), s, cfg, path, now); err != nil {
			return ActionDoneMsg{Err: err}
		}
		return ActionDoneMsg{Notice: "Backup saved to " + path}
	}
}

func (m Model) updateImportPath(msg tea.Msg) (Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		path := ""
		if m.importPath != nil {
			path = *m.importPath
		}
		m.mode = modeMenu
		m.form = nil
		m.importPath = nil
		return m, m.importBackup(path)
	case huh.StateAborted:
		m.mode = modeMenu
		m.form = nil
		m.importPath = nil
		return m, nil
	}
	return m, cmd
}

func (m Model) importBackup(path string) tea.Cmd {
	s := m.store
	cfg := m.config
	configPath := m.configPath
	return func() tea.Msg {
		result, err := backup.ImportFile(context.Background(), s, cfg, path)
		if err != nil {
			return ActionDoneMsg{Err: fmt.Errorf("importing %s: %w", path, err)}
		}
		if result.SettingsApplied {
			if err := model.SaveConfig(configPath, cfg); err != nil {
				return ActionDoneMsg{Err: err}
			}
		}
		notice := fmt.Sprintf("Imported %d tasks (%d skipped), %d check-ins (%d skipped)",
			result.TasksAdded, result.TasksSkipped, result.CheckInsAdded, result.CheckInsSkipped)
		return ActionDoneMsg{Notice: notice, Reload: true}
	}
}

func (m Model) resetTemplates() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := checklist.ReinitializeTemplates(context.Background(), s); err != nil {
			return ActionDoneMsg{Err: err}
		}
		return ActionDoneMsg{Notice: "Checklist templates restored", Reload: true}
	}
}

func (m Model) clearData() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		if err := s.ClearAllTasks(ctx); err != nil {
			return ActionDoneMsg{Err: err}
		}
		if err := s.ClearAllCheckIns(ctx); err != nil {
			return ActionDoneMsg{Err: err}
		}
		if err := s.ClearChecklistData(ctx); err != nil {
			return ActionDoneMsg{Err: err}
		}
		if err := checklist.InitializeTemplates(ctx, s); err != nil {
			return ActionDoneMsg{Err: err}
		}
		return ActionDoneMsg{Notice: "All data cleared", Reload: true}
	}
}

// View renders the settings view.
func (m Model) View() string {
	if m.mode != modeMenu && m.form != nil {
		return lipgloss.NewStyle().Padding(0, 1).Render(m.form.View())
	}

	var b []string
	for i, entry := range menuEntries {
		line := fmt.Sprintf("%s  %s", entry.label, theme.DimmedStyle.Render(entry.desc))
		if i == m.cursor {
			line = theme.SelectedItemStyle.Render("> " + line)
		} else {
			line = theme.ListItemStyle.Render("  " + line)
		}
		b = append(b, line)
	}

	out := lipgloss.JoinVertical(lipgloss.Left, b...)
	out += "\n\n" + theme.HelpStyle.Render("j/k move · enter select · esc back")
	if m.notice != "" {
		out += "\n" + theme.HelpStyle.Render(m.notice)
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(out)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func formWidth(width int) int {
	if width > 80 {
		return 80
	}
	if width < 40 {
		return 40
	}
	return width
}

func validateClock(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("use HH:MM")
	}
	return nil
}

func validateMinutes(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number of minutes")
	}
	return nil
}
