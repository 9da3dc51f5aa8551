package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/lifeos/internal/keys"
	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
	"github.com/nhle/lifeos/internal/theme"
)

// MonthLoadedMsg carries a month's task counts and completion heat data.
type MonthLoadedMsg struct {
	Year       int
	Month      time.Month
	TaskCounts map[string]int // date -> scheduled tasks
	DoneCounts map[string]int // date -> completed tasks
	Heat       map[string]int // date -> daily checklist percentage
}

// DateSelectedMsg asks the parent to open the task list on a date.
type DateSelectedMsg struct {
	Date string
}

// Model is the month calendar with a checklist completion heat-map.
type Model struct {
	store     store.Store
	keys      *keys.KeyMap
	weekStart time.Weekday
	year      int
	month     time.Month
	selected  time.Time

	taskCounts map[string]int
	doneCounts map[string]int
	heat       map[string]int

	width  int
	height int
}

// New creates a calendar model showing the current month.
func New(s store.Store, k *keys.KeyMap, weekStart time.Weekday, width, height int) Model {
	now := time.Now()
	return Model{
		store:     s,
		keys:      k,
		weekStart: weekStart,
		year:      now.Year(),
		month:     now.Month(),
		selected:  time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		width:     width,
		height:    height,
	}
}

// Init loads the current month.
func (m Model) Init() tea.Cmd {
	return m.LoadMonth()
}

// LoadMonth queries the store for the shown month's tasks and heat data.
func (m Model) LoadMonth() tea.Cmd {
	s := m.store
	year, month := m.year, m.month
	return func() tea.Msg {
		ctx := context.Background()

		first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
		last := first.AddDate(0, 1, -1)
		from := first.Format(model.DateLayout)
		to := last.Format(model.DateLayout)

		tasks, err := s.GetTasks(ctx, store.TaskFilter{DateFrom: &from, DateTo: &to})
		if err != nil {
			return MonthLoadedMsg{Year: year, Month: month}
		}

		taskCounts := make(map[string]int)
		doneCounts := make(map[string]int)
		for _, t := range tasks {
			taskCounts[t.Date]++
			if t.Completed {
				doneCounts[t.Date]++
			}
		}

		heat, _ := s.CompletionHistoryMap(ctx)

		return MonthLoadedMsg{
			Year:       year,
			Month:      month,
			TaskCounts: taskCounts,
			DoneCounts: doneCounts,
			Heat:       heat,
		}
	}
}

// Update handles messages for the calendar view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MonthLoadedMsg:
		if msg.Year != m.year || msg.Month != m.month {
			return m, nil
		}
		m.taskCounts = msg.TaskCounts
		m.doneCounts = msg.DoneCounts
		m.heat = msg.Heat
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		return m.shiftSelected(0, -1)

	case key.Matches(msg, m.keys.Right):
		return m.shiftSelected(0, 1)

	case key.Matches(msg, m.keys.Up):
		return m.shiftSelected(0, -7)

	case key.Matches(msg, m.keys.Down):
		return m.shiftSelected(0, 7)

	case msg.String() == "H", msg.String() == "pgup":
		return m.shiftSelected(-1, 0)

	case msg.String() == "L", msg.String() == "pgdown":
		return m.shiftSelected(1, 0)

	case key.Matches(msg, m.keys.Today):
		now := time.Now()
		m.selected = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		m.year, m.month = now.Year(), now.Month()
		return m, m.LoadMonth()

	case key.Matches(msg, m.keys.Select):
		date := m.selected.Format(model.DateLayout)
		return m, func() tea.Msg {
			return DateSelectedMsg{Date: date}
		}
	}

	return m, nil
}

// shiftSelected moves the selection by months and/or days, reloading
// when the shown month changes.
func (m Model) shiftSelected(months, days int) (Model, tea.Cmd) {
	m.selected = m.selected.AddDate(0, months, days)
	if m.selected.Year() != m.year || m.selected.Month() != m.month {
		m.year, m.month = m.selected.Year(), m.selected.Month()
		return m, m.LoadMonth()
	}
	return m, nil
}

// View renders the month grid.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %d", m.month, m.year)))
	b.WriteString("\n\n")

	b.WriteString(m.renderWeekdayHeader())
	b.WriteString("\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n")
	b.WriteString(m.renderSelectedSummary())
	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render(
		"cell shows day + checklist heat · enter opens the day's tasks · H/L change month"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) renderWeekdayHeader() string {
	var cells []string
	for i := 0; i < 7; i++ {
		day := time.Weekday((int(m.weekStart) + i) % 7)
		cells = append(cells, lipgloss.NewStyle().
			Width(6).
			Foreground(theme.ColorGray).
			Render(day.String()[:3]))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model) renderGrid() string {
	first := time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	lead := (int(first.Weekday()) - int(m.weekStart) + 7) % 7

	today := time.Now().Format(model.DateLayout)

	var rows []string
	var cells []string
	for i := 0; i < lead; i++ {
		cells = append(cells, lipgloss.NewStyle().Width(6).Render(""))
	}

	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(m.year, m.month, day, 0, 0, 0, 0, time.Local)
		dateStr := date.Format(model.DateLayout)

		cell := m.renderDayCell(day, dateStr, dateStr == today,
			date.Equal(m.selected))
		cells = append(cells, cell)

		if len(cells) == 7 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
			cells = nil
		}
	}
	if len(cells) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderDayCell(day int, dateStr string, isToday, isSelected bool) string {
	heatMark := " "
	if pct, ok := m.heat[dateStr]; ok {
		heatMark = theme.HeatStyle(pct).Render("■")
	}

	taskMark := " "
	if n := m.taskCounts[dateStr]; n > 0 {
		if m.doneCounts[dateStr] == n {
			taskMark = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("•")
		} else {
			taskMark = lipgloss.NewStyle().Foreground(theme.ColorYellow).Render("•")
		}
	}

	label := fmt.Sprintf("%2d%s%s", day, heatMark, taskMark)

	style := lipgloss.NewStyle().Width(6)
	switch {
	case isSelected:
		style = style.Bold(true).Foreground(theme.ColorBlue).Underline(true)
	case isToday:
		style = style.Bold(true).Foreground(theme.ColorWhite)
	}
	return style.Render(label)
}

func (m Model) renderSelectedSummary() string {
	dateStr := m.selected.Format(model.DateLayout)
	total := m.taskCounts[dateStr]
	done := m.doneCounts[dateStr]

	summary := fmt.Sprintf("%s: %d tasks (%d done)", dateStr, total, done)
	if pct, ok := m.heat[dateStr]; ok {
		summary += fmt.Sprintf(", checklist %d%%", pct)
	}
	return theme.HelpStyle.Render(summary)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetWeekStart changes which weekday the grid starts on.
func (m *Model) SetWeekStart(w time.Weekday) {
	m.weekStart = w
}
