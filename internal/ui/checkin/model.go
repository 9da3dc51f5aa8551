package checkin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/lifeos/internal/keys"
	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
	"github.com/nhle/lifeos/internal/theme"
)

// LoadedMsg carries today's check-in (nil when none) and journal stats.
type LoadedMsg struct {
	Today   *model.CheckIn
	Stats   model.CheckInStats
	Freezes int
}

// FreezeUsedMsg reports the outcome of a streak freeze attempt.
type FreezeUsedMsg struct {
	Used bool
}

// formBindings holds check-in form values on the heap for huh.
type formBindings struct {
	mood       model.Mood
	energy     int
	focus      int
	reflection string
	gratitude  string // one entry per line
	activities []string
}

// Model is the daily check-in view: today's entry, the journal streak,
// and the check-in form.
type Model struct {
	store   store.Store
	keys    *keys.KeyMap
	today   *model.CheckIn
	stats   model.CheckInStats
	freezes int
	notice  string

	form    *huh.Form
	fb      *formBindings
	editing bool

	width  int
	height int
}

// New creates a check-in view model.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	return Model{
		store:  s,
		keys:   k,
		fb:     &formBindings{mood: model.MoodNeutral, energy: 5, focus: 3},
		width:  width,
		height: height,
	}
}

// Init loads today's check-in and the stats.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Editing reports whether the check-in form has keyboard focus.
func (m Model) Editing() bool {
	return m.form != nil
}

// Load queries the store for today's entry, stats, and freezes.
func (m Model) Load() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		now := time.Now()

		var today *model.CheckIn
		if c, err := s.GetCheckInByDate(ctx, now.Format(model.DateLayout)); err == nil {
			today = c
		}
		stats, _ := s.CheckInStats(ctx, now)
		freezes, _ := s.StreakFreezesRemaining(ctx, now)

		return LoadedMsg{Today: today, Stats: stats, Freezes: freezes}
	}
}

// Update handles messages for the check-in view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case LoadedMsg:
		m.today = msg.Today
		m.stats = msg.Stats
		m.freezes = msg.Freezes
		return m, nil

	case FreezeUsedMsg:
		if msg.Used {
			m.notice = "Streak freeze applied to yesterday."
		} else {
			m.notice = "No freeze applied: none left this month, or yesterday is already covered."
		}
		return m, m.Load()

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.New), key.Matches(msg, m.keys.Select):
		if m.today != nil {
			return m, nil
		}
		m.editing = false
		m.resetBindings(nil)
		m.form = m.buildForm()
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		if m.today == nil {
			return m, nil
		}
		m.editing = true
		m.resetBindings(m.today)
		m.form = m.buildForm()
		return m, m.form.Init()

	case msg.String() == "f":
		s := m.store
		return m, func() tea.Msg {
			used, _ := s.UseStreakFreeze(context.Background(), time.Now())
			return FreezeUsedMsg{Used: used}
		}
	}

	return m, nil
}

func (m *Model) resetBindings(from *model.CheckIn) {
	if from == nil {
		m.fb.mood = model.MoodNeutral
		m.fb.energy = 5
		m.fb.focus = 3
		m.fb.reflection = ""
		m.fb.gratitude = ""
		m.fb.activities = nil
		return
	}
	m.fb.mood = from.Mood
	m.fb.energy = from.Energy
	m.fb.focus = from.Focus
	m.fb.reflection = from.Reflection
	m.fb.gratitude = strings.Join(from.Gratitude, "\n")
	m.fb.activities = from.Activities
}

func (m *Model) buildForm() *huh.Form {
	moodOpts := make([]huh.Option[model.Mood], 0, len(model.Moods()))
	for _, mood := range model.Moods() {
		moodOpts = append(moodOpts, huh.NewOption(string(mood), mood))
	}

	scaleOpts := func(lo, hi int) []huh.Option[int] {
		opts := make([]huh.Option[int], 0, hi-lo+1)
		for v := lo; v <= hi; v++ {
			opts = append(opts, huh.NewOption(fmt.Sprintf("%d", v), v))
		}
		return opts
	}

	activityOpts := make([]huh.Option[string], len(model.ActivityOptions))
	for i, a := range model.ActivityOptions {
		activityOpts[i] = huh.NewOption(a, a)
	}

	return huh.NewForm(huh.NewGroup(
		huh.NewSelect[model.Mood]().
			Title("How do you feel today?").
			Options(moodOpts...).
			Value(&m.fb.mood),
		huh.NewSelect[int]().
			Title("Energy (1-10)").
			Options(scaleOpts(1, 10)...).
			Value(&m.fb.energy),
		huh.NewSelect[int]().
			Title("Focus (1-5)").
			Options(scaleOpts(1, 5)...).
			Value(&m.fb.focus),
		huh.NewMultiSelect[string]().
			Title("Activities").
			Options(activityOpts...).
			Value(&m.fb.activities),
		huh.NewText().
			Title("Reflection").
			Placeholder("How did the day go?").
			Value(&m.fb.reflection),
		huh.NewText().
			Title("Gratitude").
			Placeholder("One thing per line...").
			Value(&m.fb.gratitude),
	)).WithWidth(minInt(m.width-4, 80)).WithHeight(m.height - 4)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		submit := m.submit()
		m.form = nil
		return m, submit
	}
	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m Model) submit() tea.Cmd {
	s := m.store
	editing := m.editing
	existing := m.today
	load := m.Load()

	c := model.CheckIn{
		Date:       time.Now().Format(model.DateLayout),
		Mood:       m.fb.mood,
		Energy:     m.fb.energy,
		Focus:      m.fb.focus,
		Reflection: m.fb.reflection,
		Gratitude:  splitLines(m.fb.gratitude),
		Activities: m.fb.activities,
	}

	return func() tea.Msg {
		ctx := context.Background()
		if editing && existing != nil {
			c.ID = existing.ID
			c.CreatedAt = existing.CreatedAt
			c.CompletedTasksCount = existing.CompletedTasksCount
			c.MissedTasksCount = existing.MissedTasksCount
			_ = s.UpdateCheckIn(ctx, c)
		} else {
			// Snapshot today's task outcome into the check-in so
			// mood analytics can correlate them later.
			today := c.Date
			completed := true
			c.CompletedTasksCount, _ = s.CountTasks(ctx, store.TaskFilter{Date: &today, Completed: &completed})
			total, _ := s.CountTasks(ctx, store.TaskFilter{Date: &today})
			c.MissedTasksCount = total - c.CompletedTasksCount
			_, _ = s.CreateCheckIn(ctx, c)
		}
		return load()
	}
}

// View renders the check-in view.
func (m Model) View() string {
	if m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(titleStyle.Render("Daily Check-In"))
	b.WriteString("\n\n")

	if m.today == nil {
		b.WriteString(theme.HelpStyle.Render("You haven't checked in today. Press n to start."))
	} else {
		b.WriteString(m.renderToday())
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderStats())

	if m.notice != "" {
		b.WriteString("\n\n" + theme.HelpStyle.Render(m.notice))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) renderToday() string {
	c := m.today
	var b strings.Builder

	fmt.Fprintf(&b, "Mood: %s   Energy: %d/10   Focus: %d/5\n",
		theme.MoodStyle(c.Mood).Render(string(c.Mood)), c.Energy, c.Focus)

	if c.Reflection != "" {
		b.WriteString("\n" + c.Reflection + "\n")
	}
	if len(c.Gratitude) > 0 {
		b.WriteString("\nGrateful for:\n")
		for _, g := range c.Gratitude {
			b.WriteString("  · " + g + "\n")
		}
	}
	if len(c.Activities) > 0 {
		b.WriteString("\nActivities: " + strings.Join(c.Activities, ", ") + "\n")
	}
	b.WriteString("\n" + theme.HelpStyle.Render("Press e to edit today's entry."))
	return b.String()
}

func (m Model) renderStats() string {
	var b strings.Builder

	b.WriteString(theme.StreakStyle.Render(
		fmt.Sprintf("🔥 %d day check-in streak", m.stats.CurrentStreak)))
	fmt.Fprintf(&b, "   %d total check-ins   %d freezes left",
		m.stats.TotalCheckIns, m.freezes)

	if len(m.stats.WeeklyMoods) > 0 {
		fmt.Fprintf(&b, "\n\nLast 7 days: avg energy %.1f, avg focus %.1f\n",
			m.stats.WeeklyAvgEnergy, m.stats.WeeklyAvgFocus)
		for _, dm := range m.stats.WeeklyMoods {
			b.WriteString(theme.MoodStyle(dm.Mood).Render("●") + " ")
		}
	}
	return b.String()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
