// Package report builds markdown status reports over a daily, weekly,
// monthly, or yearly period, combining tasks, the matching checklist
// tier, and check-in averages.
package report

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
)

// PeriodType selects the reporting window and checklist tier.
type PeriodType string

const (
	PeriodDaily   PeriodType = "daily"
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
	PeriodYearly  PeriodType = "yearly"
)

// PeriodTypes returns all period types in ascending span order.
func PeriodTypes() []PeriodType {
	return []PeriodType{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly}
}

// Period is an inclusive date window.
type Period struct {
	Type  PeriodType
	Start time.Time
	End   time.Time
}

// NewPeriod computes the window containing now. Weekly windows start on
// weekStart; daily is today, monthly the calendar month, yearly the
// calendar year.
func NewPeriod(t PeriodType, now time.Time, weekStart time.Weekday) Period {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	switch t {
	case PeriodWeekly:
		back := (int(now.Weekday()) - int(weekStart) + 7) % 7
		start := today.AddDate(0, 0, -back)
		return Period{Type: t, Start: start, End: today}
	case PeriodMonthly:
		start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 1, -1)
		return Period{Type: t, Start: start, End: end}
	case PeriodYearly:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, now.Location())
		end := time.Date(y, time.December, 31, 0, 0, 0, 0, now.Location())
		return Period{Type: t, Start: start, End: end}
	default:
		return Period{Type: PeriodDaily, Start: today, End: today}
	}
}

// Frequency maps the period to its checklist tier.
func (p Period) Frequency() model.Frequency {
	switch p.Type {
	case PeriodWeekly:
		return model.FrequencyWeekly
	case PeriodMonthly:
		return model.FrequencyMonthly
	case PeriodYearly:
		return model.FrequencyYearly
	default:
		return model.FrequencyDaily
	}
}

// Stats summarizes one period.
type Stats struct {
	Period Period

	TotalTasks      int
	CompletedTasks  int
	PendingTasks    int
	CompletionRate  int
	TasksByPriority map[model.Priority]int
	TasksByCategory map[model.Category]int

	ChecklistTotal     int
	ChecklistCompleted int
	ChecklistRate      int

	CheckInsCount  int
	AvgEnergy      int
	AvgFocus       int
	MostCommonMood model.Mood // empty when no check-ins
}

// Gather collects the period's data from the store and computes summary
// statistics.
func Gather(ctx context.Context, s store.Store, period Period) (Stats, error) {
	from := period.Start.Format(model.DateLayout)
	to := period.End.Format(model.DateLayout)

	tasks, err := s.GetTasks(ctx, store.TaskFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		return Stats{}, fmt.Errorf("gathering tasks: %w", err)
	}

	freq := period.Frequency()
	items, err := s.GetChecklistItems(ctx, store.ChecklistFilter{Frequency: &freq})
	if err != nil {
		return Stats{}, fmt.Errorf("gathering checklist items: %w", err)
	}

	checkIns, err := s.GetCheckIns(ctx, store.CheckInFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		return Stats{}, fmt.Errorf("gathering check-ins: %w", err)
	}

	stats := Stats{
		Period:          period,
		TotalTasks:      len(tasks),
		TasksByPriority: make(map[model.Priority]int),
		TasksByCategory: make(map[model.Category]int),
		CheckInsCount:   len(checkIns),
	}

	for _, t := range tasks {
		if t.Completed {
			stats.CompletedTasks++
		}
		stats.TasksByPriority[t.Priority]++
		stats.TasksByCategory[t.Category]++
	}
	stats.PendingTasks = stats.TotalTasks - stats.CompletedTasks
	stats.CompletionRate = rate(stats.CompletedTasks, stats.TotalTasks)

	stats.ChecklistTotal = len(items)
	for _, item := range items {
		if item.Completed {
			stats.ChecklistCompleted++
		}
	}
	stats.ChecklistRate = rate(stats.ChecklistCompleted, stats.ChecklistTotal)

	if len(checkIns) > 0 {
		var energySum, focusSum int
		moodCounts := make(map[model.Mood]int)
		for _, c := range checkIns {
			energySum += c.Energy
			focusSum += c.Focus
			moodCounts[c.Mood]++
		}
		stats.AvgEnergy = int(math.Round(float64(energySum) / float64(len(checkIns))))
		stats.AvgFocus = int(math.Round(float64(focusSum) / float64(len(checkIns))))
		stats.MostCommonMood = commonMood(moodCounts)
	}
	return stats, nil
}

// Markdown renders the stats as a markdown document.
func Markdown(stats Stats) string {
	var b strings.Builder

	title := strings.ToUpper(string(stats.Period.Type)[:1]) + string(stats.Period.Type)[1:]
	fmt.Fprintf(&b, "# %s Report\n\n", title)
	fmt.Fprintf(&b, "**Period:** %s to %s\n\n",
		stats.Period.Start.Format("January 2, 2006"),
		stats.Period.End.Format("January 2, 2006"))

	b.WriteString("## Tasks\n\n")
	fmt.Fprintf(&b, "- Total: %d\n", stats.TotalTasks)
	fmt.Fprintf(&b, "- Completed: %d\n", stats.CompletedTasks)
	fmt.Fprintf(&b, "- Pending: %d\n", stats.PendingTasks)
	fmt.Fprintf(&b, "- Completion rate: %d%%\n\n", stats.CompletionRate)

	if stats.TotalTasks > 0 {
		b.WriteString("### By Priority\n\n")
		for _, p := range model.Priorities() {
			if n := stats.TasksByPriority[p]; n > 0 {
				fmt.Fprintf(&b, "- %s: %d\n", p, n)
			}
		}
		b.WriteString("\n### By Category\n\n")
		for _, c := range sortedCategories(stats.TasksByCategory) {
			fmt.Fprintf(&b, "- %s: %d\n", c, stats.TasksByCategory[c])
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## %s Checklist\n\n", title)
	fmt.Fprintf(&b, "- Items: %d\n", stats.ChecklistTotal)
	fmt.Fprintf(&b, "- Completed: %d\n", stats.ChecklistCompleted)
	fmt.Fprintf(&b, "- Completion rate: %d%%\n\n", stats.ChecklistRate)

	b.WriteString("## Well-being\n\n")
	if stats.CheckInsCount == 0 {
		b.WriteString("No check-ins recorded this period.\n")
	} else {
		fmt.Fprintf(&b, "- Check-ins: %d\n", stats.CheckInsCount)
		fmt.Fprintf(&b, "- Average energy: %d/10\n", stats.AvgEnergy)
		fmt.Fprintf(&b, "- Average focus: %d/5\n", stats.AvgFocus)
		fmt.Fprintf(&b, "- Most common mood: %s\n", stats.MostCommonMood)
	}
	return b.String()
}

// Render renders the markdown report for terminal display.
func Render(md string) string {
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

// Filename returns the conventional report file name,
// lifeos-report-<period>-YYYY-MM-DD.md.
func Filename(t PeriodType, now time.Time) string {
	return fmt.Sprintf("lifeos-report-%s-%s.md", t, now.Format(model.DateLayout))
}

// WriteFile gathers the period's stats and saves the markdown report.
func WriteFile(ctx context.Context, s store.Store, period Period, path string) error {
	stats, err := Gather(ctx, s, period)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(Markdown(stats)), 0o644); err != nil {
		return fmt.Errorf("writing report to %s: %w", path, err)
	}
	return nil
}

func rate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func commonMood(counts map[model.Mood]int) model.Mood {
	var best model.Mood
	bestN := 0
	for _, m := range model.Moods() {
		if counts[m] > bestN {
			best = m
			bestN = counts[m]
		}
	}
	return best
}

func sortedCategories(m map[model.Category]int) []model.Category {
	cats := make([]model.Category, 0, len(m))
	for c := range m {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}
