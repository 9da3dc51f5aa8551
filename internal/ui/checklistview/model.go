package checklistview

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

// ItemsLoadedMsg carries the current tier's items and aggregates.
type ItemsLoadedMsg struct {
	Frequency model.Frequency
	Items     []model.ChecklistItem
	Progress  model.Progress
	Streak    model.ChecklistStreak
}

// TierResetRequestMsg asks the parent to manually reset the shown tier.
type TierResetRequestMsg struct {
	Frequency model.Frequency
}

// ItemToggledMsg is sent after an item's completion flips.
type ItemToggledMsg struct {
	Item model.ChecklistItem
}

// formBindings holds item form values on the heap for huh.
type formBindings struct {
	title    string
	category model.Category
}

// Model is the checklist view: one recurrence tier at a time, items
// grouped by category, with progress and streak in the footer.
type Model struct {
	store     store.Store
	keys      *keys.KeyMap
	frequency model.Frequency
	items     []model.ChecklistItem
	progress  model.Progress
	streak    model.ChecklistStreak
	cursor    int
	notice    string

	form     *huh.Form
	fb       *formBindings
	editing  bool
	editItem model.ChecklistItem

	width  int
	height int
}

// New creates a checklist view model showing the daily tier.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	return Model{
		store:     s,
		keys:      k,
		frequency: model.FrequencyDaily,
		fb:        &formBindings{category: model.CategoryPersonalGrowth},
		width:     width,
		height:    height,
	}
}

// Init loads the initial tier.
func (m Model) Init() tea.Cmd {
	return m.LoadItems()
}

// Frequency returns the currently shown tier.
func (m Model) Frequency() model.Frequency {
	return m.frequency
}

// Editing reports whether the add/edit form has keyboard focus.
func (m Model) Editing() bool {
	return m.form != nil
}

// LoadItems queries the store for the current tier's items, progress,
// and the streak.
func (m Model) LoadItems() tea.Cmd {
	s := m.store
	freq := m.frequency
	return func() tea.Msg {
		ctx := context.Background()
		items, err := s.GetChecklistItems(ctx, store.ChecklistFilter{Frequency: &freq})
		if err != nil {
			return ItemsLoadedMsg{Frequency: freq}
		}
		progress, _ := s.ChecklistProgress(ctx, freq, "")
		streak, _ := s.GetChecklistStreak(ctx)
		return ItemsLoadedMsg{
			Frequency: freq,
			Items:     items,
			Progress:  progress,
			Streak:    streak,
		}
	}
}

// Update handles messages for the checklist view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case ItemsLoadedMsg:
		if msg.Frequency != m.frequency {
			return m, nil
		}
		m.items = msg.Items
		m.progress = msg.Progress
		m.streak = msg.Streak
		if m.cursor >= len(m.items) {
			m.cursor = len(m.items) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleTier):
		m.frequency = nextTier(m.frequency)
		m.cursor = 0
		return m, m.LoadItems()

	case key.Matches(msg, m.keys.Toggle):
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.toggleItem(item.ID)

	case key.Matches(msg, m.keys.New):
		m.editing = false
		m.fb.title = ""
		m.fb.category = model.CategoryPersonalGrowth
		m.form = m.buildItemForm()
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editing = true
		m.editItem = item
		m.fb.title = item.Title
		m.fb.category = item.Category
		m.form = m.buildItemForm()
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		if item.IsTemplate {
			m.notice = "Template items can't be deleted. Edit it instead, or reset to defaults in settings."
			return m, nil
		}
		return m, m.deleteItem(item.ID)

	case key.Matches(msg, m.keys.Reset):
		freq := m.frequency
		return m, func() tea.Msg {
			return TierResetRequestMsg{Frequency: freq}
		}

	case msg.String() == "J":
		return m.moveItem(1)

	case msg.String() == "K":
		return m.moveItem(-1)
	}

	return m, nil
}

// moveItem swaps the selected item with its neighbor within the same
// category and persists the tier's new order.
func (m Model) moveItem(delta int) (Model, tea.Cmd) {
	target := m.cursor + delta
	if m.cursor < 0 || m.cursor >= len(m.items) || target < 0 || target >= len(m.items) {
		return m, nil
	}
	if m.items[m.cursor].Category != m.items[target].Category {
		return m, nil
	}

	m.items[m.cursor], m.items[target] = m.items[target], m.items[m.cursor]
	m.cursor = target

	ids := make([]string, len(m.items))
	for i, item := range m.items {
		ids[i] = item.ID
	}
	s := m.store
	freq := m.frequency
	load := m.LoadItems()
	return m, func() tea.Msg {
		_ = s.ReorderChecklistItems(context.Background(), freq, ids)
		return load()
	}
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		submit := m.submitItemForm()
		m.form = nil
		return m, submit
	}
	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m *Model) buildItemForm() *huh.Form {
	categoryOpts := make([]huh.Option[model.Category], 0, len(model.Categories()))
	for _, c := range model.Categories() {
		categoryOpts = append(categoryOpts, huh.NewOption(string(c), c))
	}

	return huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Title").
			Placeholder("What should recur?").
			Value(&m.fb.title).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("Title is required")
				}
				return nil
			}),
		huh.NewSelect[model.Category]().
			Title("Category").
			Options(categoryOpts...).
			Value(&m.fb.category),
	)).WithWidth(minInt(m.width-4, 80))
}

func (m Model) submitItemForm() tea.Cmd {
	s := m.store
	load := m.LoadItems()

	if m.editing {
		item := m.editItem
		item.Title = m.fb.title
		return func() tea.Msg {
			_ = s.UpdateChecklistItem(context.Background(), item)
			return load()
		}
	}

	item := model.ChecklistItem{
		Title:     m.fb.title,
		Category:  m.fb.category,
		Frequency: m.frequency,
		SortOrder: len(m.items) + 1,
	}
	return func() tea.Msg {
		_, _ = s.AddChecklistItem(context.Background(), item)
		return load()
	}
}

func (m Model) toggleItem(id string) tea.Cmd {
	s := m.store
	load := m.LoadItems()
	return func() tea.Msg {
		item, err := s.ToggleChecklistItem(context.Background(), id)
		if err != nil {
			return load()
		}
		return tea.BatchMsg{
			func() tea.Msg { return ItemToggledMsg{Item: item} },
			func() tea.Msg { return load() },
		}
	}
}

func (m Model) deleteItem(id string) tea.Cmd {
	s := m.store
	load := m.LoadItems()
	return func() tea.Msg {
		_ = s.DeleteChecklistItem(context.Background(), id)
		return load()
	}
}

func (m Model) selected() (model.ChecklistItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return model.ChecklistItem{}, false
	}
	return m.items[m.cursor], true
}

// View renders the checklist for the current tier.
func (m Model) View() string {
	if m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	var b strings.Builder

	b.WriteString(m.renderTierTabs())
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(theme.HelpStyle.Render("No items in this tier. Press n to add one."))
	} else {
		b.WriteString(m.renderItems())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	if m.notice != "" {
		b.WriteString("\n" + theme.HelpStyle.Render(m.notice))
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

func (m Model) renderTierTabs() string {
	var tabs []string
	for _, f := range model.Frequencies() {
		label := string(f)
		if f == m.frequency {
			tabs = append(tabs, theme.SelectedItemStyle.Render(label))
		} else {
			tabs = append(tabs, theme.ListItemStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderItems() string {
	var b strings.Builder
	var lastCategory model.Category

	for i, item := range m.items {
		if item.Category != lastCategory {
			if lastCategory != "" {
				b.WriteString("\n")
			}
			b.WriteString(theme.CategoryStyle(item.Category).Render(string(item.Category)))
			b.WriteString("\n")
			lastCategory = item.Category
		}

		var prefix string
		if item.Completed {
			prefix = "✓"
		} else {
			prefix = "○"
		}

		line := fmt.Sprintf("%s %s", prefix, item.Title)
		if item.Completed {
			line = theme.DimmedStyle.Render(line)
		}
		if i == m.cursor {
			line = theme.SelectedItemStyle.Render(line)
		} else {
			line = theme.ListItemStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderFooter() string {
	bar := theme.ProgressBar(m.progress.Percentage, 24)
	progressLine := fmt.Sprintf("%s %d/%d (%d%%)",
		bar, m.progress.Completed, m.progress.Total, m.progress.Percentage)

	streakLine := theme.StreakStyle.Render(
		fmt.Sprintf("🔥 %d day streak", m.streak.Current))
	if m.streak.Longest > m.streak.Current {
		streakLine += theme.HelpStyle.Render(
			fmt.Sprintf("  (best %d)", m.streak.Longest))
	}

	return progressLine + "\n" + streakLine
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func nextTier(f model.Frequency) model.Frequency {
	tiers := model.Frequencies()
	for i, t := range tiers {
		if t == f {
			return tiers[(i+1)%len(tiers)]
		}
	}
	return model.FrequencyDaily
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// resetNotice formats the time since a tier's last reset for display.
func resetNotice(last time.Time) string {
	if last.IsZero() {
		return "never reset"
	}
	return "last reset " + last.Format(model.DateLayout)
}
