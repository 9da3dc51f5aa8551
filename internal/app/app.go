// Package app contains the root Bubble Tea model: view routing, the
// shared layout frame, and the glue between views and the store.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/lifeos/internal/backup"
	"github.com/nhle/lifeos/internal/checklist"
	"github.com/nhle/lifeos/internal/events"
	"github.com/nhle/lifeos/internal/keys"
	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
	"github.com/nhle/lifeos/internal/ui"
	calendarview "github.com/nhle/lifeos/internal/ui/calendar"
	checkinview "github.com/nhle/lifeos/internal/ui/checkin"
	"github.com/nhle/lifeos/internal/ui/checklistview"
	"github.com/nhle/lifeos/internal/ui/command"
	helpview "github.com/nhle/lifeos/internal/ui/help"
	reportsview "github.com/nhle/lifeos/internal/ui/reports"
	settingsview "github.com/nhle/lifeos/internal/ui/settings"
	"github.com/nhle/lifeos/internal/ui/taskdetail"
	"github.com/nhle/lifeos/internal/ui/taskform"
	"github.com/nhle/lifeos/internal/ui/tasklist"
)

// headerStatsMsg refreshes the streak and daily progress in the header.
type headerStatsMsg struct {
	streak   model.ChecklistStreak
	progress model.Progress
}

// taskSavedResultMsg reports the outcome of persisting a task.
type taskSavedResultMsg struct {
	err error
}

// backupDoneMsg reports the outcome of a palette-triggered export.
type backupDoneMsg struct {
	path string
	err  error
}

// tierResetDoneMsg reports the outcome of a manual tier reset.
type tierResetDoneMsg struct {
	frequency model.Frequency
	err       error
}

// busEventMsg wraps a domain event received from the bus.
type busEventMsg struct {
	event events.Event
}

// reminderTickMsg fires the periodic reminder check.
type reminderTickMsg time.Time

// reminderNoticeMsg carries a due-task notice for the status line.
type reminderNoticeMsg struct {
	notice string
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewTasks ViewState = iota
	ViewCalendar
	ViewChecklist
	ViewCheckIn
	ViewReports
	ViewSettings
	ViewTaskForm
	ViewTaskDetail
	ViewHelp
	ViewCommand
)

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the persistence layer.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        store.Store
	config       *model.AppConfig
	keys         *keys.KeyMap
	scheduler    *checklist.Scheduler
	eventCh      <-chan events.Event

	taskList  tasklist.Model
	calendar  calendarview.Model
	checklist checklistview.Model
	checkIn   checkinview.Model
	reports   reportsview.Model
	settings  settingsview.Model
	taskForm  taskform.Model
	detail    taskdetail.Model
	helpView  helpview.Model
	palette   command.Model

	streak   model.ChecklistStreak
	progress model.Progress
	notice   string
	ready    bool
}

// New creates the root application model. A nil bus disables live
// refresh on scheduler resets.
func New(s store.Store, cfg *model.AppConfig, configPath string, sched *checklist.Scheduler, bus *events.Bus) Model {
	k := keys.DefaultKeyMap()
	weekStart := cfg.Calendar.WeekStartWeekday()

	var eventCh <-chan events.Event
	if bus != nil {
		eventCh = bus.Subscribe()
	}

	return Model{
		currentView: ViewTasks,
		store:       s,
		config:      cfg,
		keys:        k,
		scheduler:   sched,
		eventCh:     eventCh,
		taskList:    tasklist.New(s, k, 80, 24),
		calendar:    calendarview.New(s, k, weekStart, 80, 24),
		checklist:   checklistview.New(s, k, 80, 24),
		checkIn:     checkinview.New(s, k, 80, 24),
		reports:     reportsview.New(s, k, weekStart, 80, 24),
		settings:    settingsview.New(s, cfg, configPath, 80, 24),
		taskForm:    taskform.New(80, 24),
		detail:      taskdetail.New(s, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		palette:     command.New(80, 24),
	}
}

// Init loads the initial view data and starts the background waits.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.taskList.Init(),
		m.loadHeaderStats(),
		reminderTick(),
	}
	if m.eventCh != nil {
		cmds = append(cmds, m.waitForEvent())
	}
	return tea.Batch(cmds...)
}

// waitForEvent blocks on the bus subscription and surfaces the next
// domain event as a message.
func (m Model) waitForEvent() tea.Cmd {
	ch := m.eventCh
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return busEventMsg{event: ev}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.taskList.SetSize(w, h)
		m.calendar.SetSize(w, h)
		m.checklist.SetSize(w, h)
		m.checkIn.SetSize(w, h)
		m.reports.SetSize(w, h)
		m.settings.SetSize(w, h)
		m.taskForm.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.palette.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case headerStatsMsg:
		m.streak = msg.streak
		m.progress = msg.progress
		return m, nil

	case backupDoneMsg:
		if msg.err != nil {
			m.notice = "Backup failed: " + msg.err.Error()
		} else {
			m.notice = "Backup saved to " + msg.path
		}
		return m, nil

	case tasklist.SelectedTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewTaskDetail
		m.detail.SetTask(msg.Task)
		return m, nil

	case taskdetail.BackMsg:
		m.currentView = ViewTasks
		return m, m.taskList.LoadTasks()

	case taskdetail.EditRequestMsg:
		m.previousView = m.currentView
		m.currentView = ViewTaskForm
		return m, m.taskForm.StartEdit(msg.Task)

	case tasklist.NewTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewTaskForm
		return m, m.taskForm.StartCreate(msg.Date)

	case tasklist.TaskMutatedMsg:
		return m, tea.Batch(m.calendar.LoadMonth(), m.loadHeaderStats())

	case taskform.TaskSavedMsg:
		m.currentView = ViewTasks
		return m, m.saveTask(msg.Task, msg.IsEdit)

	case taskform.TaskFormCancelMsg:
		m.currentView = m.previousView
		return m, nil

	case taskSavedResultMsg:
		return m, tea.Batch(
			m.taskList.LoadTasks(),
			m.calendar.LoadMonth(),
			m.loadHeaderStats(),
		)

	case checklistview.TierResetRequestMsg:
		return m, m.manualReset(msg.Frequency)

	case checklistview.ItemToggledMsg:
		return m, tea.Batch(m.calendar.LoadMonth(), m.loadHeaderStats())

	case tierResetDoneMsg:
		return m, tea.Batch(
			m.checklist.LoadItems(),
			m.calendar.LoadMonth(),
			m.loadHeaderStats(),
		)

	case busEventMsg:
		// Scheduler resets arrive here so the hourly tick refreshes
		// the UI without a keypress.
		if _, ok := msg.event.(events.TierReset); ok {
			return m, tea.Batch(
				m.checklist.LoadItems(),
				m.calendar.LoadMonth(),
				m.loadHeaderStats(),
				m.waitForEvent(),
			)
		}
		return m, m.waitForEvent()

	case reminderTickMsg:
		return m, tea.Batch(m.checkReminders(time.Time(msg)), reminderTick())

	case reminderNoticeMsg:
		if msg.notice != "" {
			m.notice = msg.notice
		}
		return m, nil

	case calendarview.DateSelectedMsg:
		m.currentView = ViewTasks
		return m, m.taskList.SetDate(msg.Date)

	case checkinview.FreezeUsedMsg:
		return m, m.checkIn.Load()

	case settingsview.ConfigSavedMsg:
		m.config = msg.Config
		weekStart := m.config.Calendar.WeekStartWeekday()
		m.calendar.SetWeekStart(weekStart)
		m.reports.SetWeekStart(weekStart)
		return m, m.calendar.LoadMonth()

	case settingsview.DataChangedMsg:
		return m, tea.Batch(
			m.taskList.LoadTasks(),
			m.calendar.LoadMonth(),
			m.checklist.LoadItems(),
			m.checkIn.Load(),
			m.loadHeaderStats(),
		)

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(string(msg))

	case tea.KeyMsg:
		m.notice = ""
		if mdl, cmd, handled := m.handleGlobalKey(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work across views. Returns
// handled=false when the key should go to the active view instead.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.scheduler.Stop()
		return m, tea.Quit, true
	}

	// Text inputs own the keyboard.
	if m.currentView == ViewTaskForm || m.currentView == ViewSettings {
		return m, nil, false
	}
	if m.currentView == ViewTasks && m.taskList.Searching() {
		return m, nil, false
	}
	if m.currentView == ViewChecklist && m.checklist.Editing() {
		return m, nil, false
	}
	if m.currentView == ViewCheckIn && m.checkIn.Editing() {
		return m, nil, false
	}
	if m.currentView == ViewTaskDetail && m.detail.Editing() {
		return m, nil, false
	}

	if msg.String() == ":" {
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.palette.Focus(), true
	}
	if m.currentView == ViewCommand {
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.scheduler.Stop()
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
		} else {
			m.previousView = m.currentView
			m.currentView = ViewHelp
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false

	case key.Matches(msg, m.keys.Tasks):
		return m.switchView(ViewTasks, m.taskList.LoadTasks())
	case key.Matches(msg, m.keys.Calendar):
		return m.switchView(ViewCalendar, m.calendar.LoadMonth())
	case key.Matches(msg, m.keys.Checklist):
		return m.switchView(ViewChecklist, m.checklist.LoadItems())
	case key.Matches(msg, m.keys.CheckIn):
		return m.switchView(ViewCheckIn, m.checkIn.Load())
	case key.Matches(msg, m.keys.Reports):
		return m.switchView(ViewReports, m.reports.LoadReport())
	case key.Matches(msg, m.keys.Settings):
		return m.switchView(ViewSettings, nil)
	}

	return m, nil, false
}

func (m Model) switchView(v ViewState, loadCmd tea.Cmd) (tea.Model, tea.Cmd, bool) {
	if m.currentView == v {
		return m, nil, true
	}
	m.previousView = m.currentView
	m.currentView = v
	return m, loadCmd, true
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewTasks:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewCalendar:
		m.calendar, cmd = m.calendar.Update(msg)
	case ViewChecklist:
		m.checklist, cmd = m.checklist.Update(msg)
	case ViewCheckIn:
		m.checkIn, cmd = m.checkIn.Update(msg)
	case ViewReports:
		m.reports, cmd = m.reports.Update(msg)
	case ViewSettings:
		m.settings, cmd = m.settings.Update(msg)
	case ViewTaskForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewTaskDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.palette, cmd = m.palette.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("LifeOS", m.headerStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewTasks:
		return m.taskList.View()
	case ViewCalendar:
		return m.calendar.View()
	case ViewChecklist:
		return m.checklist.View()
	case ViewCheckIn:
		return m.checkIn.View()
	case ViewReports:
		return m.reports.View()
	case ViewSettings:
		return m.settings.View()
	case ViewTaskForm:
		return m.taskForm.View()
	case ViewTaskDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.palette.View()
	default:
		return ""
	}
}

// headerStatus shows the daily streak and today's checklist progress.
func (m Model) headerStatus() string {
	status := fmt.Sprintf("today %d%%", m.progress.Percentage)
	if m.streak.Current > 0 {
		status = fmt.Sprintf("🔥 %d · %s", m.streak.Current, status)
	}
	return status
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.notice != "" {
		return m.notice
	}
	switch m.currentView {
	case ViewTasks:
		return "n new | space done | / search | h/l day | 1-6 views | ? help"
	case ViewCalendar:
		return "h/j/k/l move | H/L month | t today | enter open day | ? help"
	case ViewChecklist:
		return "space done | tab tier | n new | e edit | R reset | ? help"
	case ViewCheckIn:
		return "n check in | e edit | f streak freeze | ? help"
	case ViewReports:
		return "tab period | j/k scroll | s save | ? help"
	case ViewSettings:
		return "j/k move | enter select | esc back"
	case ViewTaskForm:
		return "enter next | shift+tab back | esc cancel"
	case ViewTaskDetail:
		return "j/k subtask | space toggle | n add | d remove | e edit task | esc back"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	default:
		return "q quit | ? help"
	}
}

// loadHeaderStats fetches the streak and today's daily-tier progress.
func (m Model) loadHeaderStats() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		streak, err := s.GetChecklistStreak(ctx)
		if err != nil {
			return headerStatsMsg{}
		}
		progress, err := s.ChecklistProgress(ctx, model.FrequencyDaily, "")
		if err != nil {
			return headerStatsMsg{streak: streak}
		}
		return headerStatsMsg{streak: streak, progress: progress}
	}
}

// saveTask persists a created or edited task.
func (m Model) saveTask(task model.Task, isEdit bool) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if isEdit {
			err = s.UpdateTask(ctx, task)
		} else {
			_, err = s.CreateTask(ctx, task)
		}
		return taskSavedResultMsg{err: err}
	}
}

// executeCommand handles a command string from the command palette.
func (m Model) executeCommand(cmd string) (tea.Model, tea.Cmd) {
	switch cmd {
	case "tasks":
		m.currentView = ViewTasks
		return m, m.taskList.LoadTasks()
	case "calendar":
		m.currentView = ViewCalendar
		return m, m.calendar.LoadMonth()
	case "checklist":
		m.currentView = ViewChecklist
		return m, m.checklist.LoadItems()
	case "check in", "checkin":
		m.currentView = ViewCheckIn
		return m, m.checkIn.Load()
	case "reports":
		m.currentView = ViewReports
		return m, m.reports.LoadReport()
	case "settings":
		m.currentView = ViewSettings
		return m, nil
	case "today":
		m.currentView = ViewTasks
		return m, m.taskList.SetDate(time.Now().Format(model.DateLayout))
	case "export":
		return m, m.exportBackup()
	case "reset daily":
		return m, m.manualReset(model.FrequencyDaily)
	case "quit", "q":
		m.scheduler.Stop()
		return m, tea.Quit
	default:
		return m, nil
	}
}

// exportBackup writes a full backup into the data directory.
func (m Model) exportBackup() tea.Cmd {
	s := m.store
	cfg := m.config
	return func() tea.Msg {
		now := time.Now()
		path := filepath.Join(cfg.DataDir, backup.Filename(now))
		err := backup.WriteFile(context.Background(), s, cfg, path, now)
		return backupDoneMsg{path: path, err: err}
	}
}

// manualReset clears a checklist tier on user request.
func (m Model) manualReset(frequency model.Frequency) tea.Cmd {
	sched := m.scheduler
	return func() tea.Msg {
		err := sched.ManualReset(context.Background(), frequency, time.Now())
		return tierResetDoneMsg{frequency: frequency, err: err}
	}
}

// reminderWindow is how far ahead of its start time a reminder-flagged
// task surfaces a notice.
const reminderWindow = 15 * time.Minute

func reminderTick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return reminderTickMsg(t)
	})
}

// checkReminders looks for today's reminder-flagged tasks about to
// start. Disabled reminders and quiet hours suppress the check.
func (m Model) checkReminders(now time.Time) tea.Cmd {
	if !m.config.Notifications.TaskReminders {
		return nil
	}
	if m.config.Notifications.QuietHours.Covers(now) {
		return nil
	}
	s := m.store
	return func() tea.Msg {
		date := now.Format(model.DateLayout)
		remind := true
		completed := false
		tasks, err := s.GetTasks(context.Background(), store.TaskFilter{
			Date:      &date,
			Reminder:  &remind,
			Completed: &completed,
		})
		if err != nil {
			return reminderNoticeMsg{}
		}
		return reminderNoticeMsg{notice: dueReminderNotice(tasks, now)}
	}
}

// dueReminderNotice returns a status-line notice for the next task
// starting within the reminder window, or "" when none is due. Tasks
// arrive sorted by start time, so the first match is the soonest.
func dueReminderNotice(tasks []model.Task, now time.Time) string {
	for _, t := range tasks {
		start, err := time.ParseInLocation("2006-01-02 15:04", t.Date+" "+t.StartTime, now.Location())
		if err != nil {
			continue
		}
		until := start.Sub(now)
		if until < 0 || until > reminderWindow {
			continue
		}
		return fmt.Sprintf("Reminder: %s at %s", t.Title, t.StartTime)
	}
	return ""
}
