package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/theme"
)

// TaskSavedMsg is dispatched when the form is submitted.
type TaskSavedMsg struct {
	Task   model.Task
	IsEdit bool
}

// TaskFormCancelMsg is dispatched when the user cancels the form.
type TaskFormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	date        string
	startTime   string
	endTime     string
	category    model.Category
	priority    model.Priority
	reminder    bool
	recurring   model.Frequency // "" means not recurring
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editTask model.Task
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb: &formBindings{
			category: model.CategoryPersonalGrowth,
			priority: model.PriorityMedium,
		},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for a new task on the given date.
func (m *Model) StartCreate(date string) tea.Cmd {
	m.editMode = false
	m.editTask = model.Task{}
	m.fb.title = ""
	m.fb.description = ""
	m.fb.date = date
	m.fb.startTime = "09:00"
	m.fb.endTime = "10:00"
	m.fb.category = model.CategoryPersonalGrowth
	m.fb.priority = model.PriorityMedium
	m.fb.reminder = false
	m.fb.recurring = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing task.
func (m *Model) StartEdit(task model.Task) tea.Cmd {
	m.editMode = true
	m.editTask = task
	m.fb.title = task.Title
	m.fb.description = task.Description
	m.fb.date = task.Date
	m.fb.startTime = task.StartTime
	m.fb.endTime = task.EndTime
	m.fb.category = task.Category
	m.fb.priority = task.Priority
	m.fb.reminder = task.Reminder
	if task.Recurring != nil {
		m.fb.recurring = task.Recurring.Frequency
	} else {
		m.fb.recurring = ""
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return TaskFormCancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	categoryOpts := make([]huh.Option[model.Category], 0, len(model.Categories()))
	for _, c := range model.Categories() {
		categoryOpts = append(categoryOpts, huh.NewOption(string(c), c))
	}

	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What are you planning?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		huh.NewInput().
			Title("Date").
			Placeholder("YYYY-MM-DD").
			Value(&m.fb.date).
			Validate(validateDate),
		huh.NewInput().
			Title("Start").
			Placeholder("HH:MM").
			Value(&m.fb.startTime).
			Validate(validateClock),
		huh.NewInput().
			Title("End").
			Placeholder("HH:MM").
			Value(&m.fb.endTime).
			Validate(validateClock),
		huh.NewSelect[model.Category]().
			Title("Category").
			Options(categoryOpts...).
			Value(&m.fb.category),
		huh.NewSelect[model.Priority]().
			Title("Priority").
			Options(
				huh.NewOption("P1 - Critical", model.PriorityCritical),
				huh.NewOption("P2 - High", model.PriorityHigh),
				huh.NewOption("P3 - Medium", model.PriorityMedium),
				huh.NewOption("P4 - Low", model.PriorityLow),
			).
			Value(&m.fb.priority),
		huh.NewSelect[model.Frequency]().
			Title("Repeat").
			Options(
				huh.NewOption("Never", model.Frequency("")),
				huh.NewOption("Daily", model.FrequencyDaily),
				huh.NewOption("Weekly", model.FrequencyWeekly),
				huh.NewOption("Monthly", model.FrequencyMonthly),
				huh.NewOption("Yearly", model.FrequencyYearly),
			).
			Value(&m.fb.recurring),
		huh.NewConfirm().
			Title("Reminder").
			Value(&m.fb.reminder),
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	task := model.Task{
		Title:       m.fb.title,
		Description: m.fb.description,
		Date:        m.fb.date,
		StartTime:   m.fb.startTime,
		EndTime:     m.fb.endTime,
		Category:    m.fb.category,
		Priority:    m.fb.priority,
		Reminder:    m.fb.reminder,
	}
	if m.fb.recurring != "" {
		task.Recurring = &model.Recurrence{Frequency: m.fb.recurring}
	}

	if m.editMode {
		task.ID = m.editTask.ID
		task.Completed = m.editTask.Completed
		task.ChecklistIDs = m.editTask.ChecklistIDs
		task.Subtasks = m.editTask.Subtasks
		task.CreatedAt = m.editTask.CreatedAt
	}

	isEdit := m.editMode
	return func() tea.Msg { return TaskSavedMsg{Task: task, IsEdit: isEdit} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateDate(s string) error {
	if _, err := time.Parse(model.DateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid date, use YYYY-MM-DD")
	}
	return nil
}

func validateClock(s string) error {
	if _, err := time.Parse(model.TimeLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid time, use HH:MM")
	}
	return nil
}
