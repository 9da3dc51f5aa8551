package reports

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/lifeos/internal/analytics"
	"github.com/nhle/lifeos/internal/keys"
	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/report"
	"github.com/nhle/lifeos/internal/store"
	"github.com/nhle/lifeos/internal/theme"
)

// ReportLoadedMsg carries a rendered report for display.
type ReportLoadedMsg struct {
	Period   report.PeriodType
	Rendered string
	Markdown string
}

// ReportSavedMsg reports the outcome of saving a report to disk.
type ReportSavedMsg struct {
	Path string
	Err  error
}

// Model is the reports view: period tabs, a scrollable rendered report,
// and save-to-file.
type Model struct {
	store     store.Store
	keys      *keys.KeyMap
	weekStart time.Weekday
	period    report.PeriodType
	viewport  viewport.Model
	markdown  string
	notice    string
	ready     bool

	width  int
	height int
}

// New creates a reports view model starting on the daily period.
func New(s store.Store, k *keys.KeyMap, weekStart time.Weekday, width, height int) Model {
	vp := viewport.New(width-4, height-6)
	return Model{
		store:     s,
		keys:      k,
		weekStart: weekStart,
		period:    report.PeriodDaily,
		viewport:  vp,
		width:     width,
		height:    height,
	}
}

// Init loads the initial report.
func (m Model) Init() tea.Cmd {
	return m.LoadReport()
}

// LoadReport gathers and renders the current period's report, appending
// the mood-productivity analysis.
func (m Model) LoadReport() tea.Cmd {
	s := m.store
	periodType := m.period
	weekStart := m.weekStart
	return func() tea.Msg {
		ctx := context.Background()
		now := time.Now()

		period := report.NewPeriod(periodType, now, weekStart)
		stats, err := report.Gather(ctx, s, period)
		if err != nil {
			return ReportLoadedMsg{Period: periodType, Rendered: "Failed to build report: " + err.Error()}
		}

		md := report.Markdown(stats)
		md += "\n" + analyticsMarkdown(ctx, s, now)

		return ReportLoadedMsg{
			Period:   periodType,
			Rendered: report.Render(md),
			Markdown: md,
		}
	}
}

// analyticsMarkdown appends the mood-productivity section.
func analyticsMarkdown(ctx context.Context, s store.Store, now time.Time) string {
	checkIns, err := s.GetCheckIns(ctx, store.CheckInFilter{})
	if err != nil {
		return ""
	}
	weekAgo := now.AddDate(0, 0, -6).Format(model.DateLayout)
	today := now.Format(model.DateLayout)
	tasks, err := s.GetTasks(ctx, store.TaskFilter{DateFrom: &weekAgo, DateTo: &today})
	if err != nil {
		return ""
	}

	r := analytics.Analyze(checkIns, tasks, now)

	var b strings.Builder
	b.WriteString("## Mood & Productivity\n\n")
	fmt.Fprintf(&b, "Weekly completion: %d%% (%s)\n\n", r.AvgCompletionRate, r.WeeklyTrend)

	if len(r.MoodProductivity) > 0 {
		b.WriteString("| Mood | Completion | Avg tasks | Energy | Focus | Days |\n")
		b.WriteString("|------|-----------:|----------:|-------:|------:|-----:|\n")
		for _, mp := range r.MoodProductivity {
			fmt.Fprintf(&b, "| %s | %d%% | %.1f | %.1f | %.1f | %d |\n",
				mp.Mood, mp.CompletionRate, mp.AvgTasks, mp.AvgEnergy, mp.AvgFocus, mp.Occurrences)
		}
		b.WriteString("\n")
	}

	for _, insight := range r.Insights {
		fmt.Fprintf(&b, "**%s**: %s", insight.Title, insight.Message)
		if insight.Recommendation != "" {
			fmt.Fprintf(&b, " _%s_", insight.Recommendation)
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// Update handles messages for the reports view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ReportLoadedMsg:
		if msg.Period != m.period {
			return m, nil
		}
		m.markdown = msg.Markdown
		m.viewport.SetContent(msg.Rendered)
		m.viewport.GotoTop()
		m.ready = true
		return m, nil

	case ReportSavedMsg:
		if msg.Err != nil {
			m.notice = "Save failed: " + msg.Err.Error()
		} else {
			m.notice = "Saved " + msg.Path
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.CycleTier), key.Matches(msg, m.keys.Right):
		m.period = nextPeriod(m.period)
		m.ready = false
		return m, m.LoadReport()

	case key.Matches(msg, m.keys.Left):
		m.period = prevPeriod(m.period)
		m.ready = false
		return m, m.LoadReport()

	case msg.String() == "s":
		markdown := m.markdown
		path := report.Filename(m.period, time.Now())
		return m, func() tea.Msg {
			err := os.WriteFile(path, []byte(markdown), 0o644)
			return ReportSavedMsg{Path: path, Err: err}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the reports view.
func (m Model) View() string {
	var b strings.Builder

	var tabs []string
	for _, p := range report.PeriodTypes() {
		label := string(p)
		if p == m.period {
			tabs = append(tabs, theme.SelectedItemStyle.Render(label))
		} else {
			tabs = append(tabs, theme.ListItemStyle.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	if !m.ready {
		b.WriteString(theme.HelpStyle.Render("Building report..."))
	} else {
		b.WriteString(m.viewport.View())
	}

	b.WriteString("\n" + theme.HelpStyle.Render("tab next period · j/k scroll · s save as markdown"))
	if m.notice != "" {
		b.WriteString("\n" + theme.HelpStyle.Render(m.notice))
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

// SetWeekStart changes the weekday weekly reports start on.
func (m *Model) SetWeekStart(w time.Weekday) {
	m.weekStart = w
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 4
	m.viewport.Height = height - 6
}

func nextPeriod(p report.PeriodType) report.PeriodType {
	all := report.PeriodTypes()
	for i, t := range all {
		if t == p {
			return all[(i+1)%len(all)]
		}
	}
	return report.PeriodDaily
}

func prevPeriod(p report.PeriodType) report.PeriodType {
	all := report.PeriodTypes()
	for i, t := range all {
		if t == p {
			return all[(i+len(all)-1)%len(all)]
		}
	}
	return report.PeriodDaily
}
