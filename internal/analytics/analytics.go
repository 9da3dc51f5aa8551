// Package analytics correlates check-in moods with task completion and
// derives insights from the patterns.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/nhle/lifeos/internal/model"
)

// Trend describes the direction of the week's completion rate.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// InsightType classifies an insight for presentation.
type InsightType string

const (
	InsightSuccess InsightType = "success"
	InsightWarning InsightType = "warning"
	InsightInfo    InsightType = "info"
	InsightAlert   InsightType = "alert"
)

// MoodProductivity aggregates task outcomes for one mood.
type MoodProductivity struct {
	Mood           model.Mood
	CompletionRate int     // 0-100
	AvgTasks       float64 // tasks per day, 1 decimal
	AvgEnergy      float64 // 1 decimal
	AvgFocus       float64 // 1 decimal
	Occurrences    int
}

// DayPerformance is one day's task outcome, joined with that day's
// check-in when one exists.
type DayPerformance struct {
	Date           string
	TasksCompleted int
	TasksTotal     int
	CompletionRate int
	Mood           model.Mood // empty when no check-in
	Energy         int
	Focus          int
}

// Insight is an actionable observation derived from the data.
type Insight struct {
	Type           InsightType
	Title          string
	Message        string
	Recommendation string
}

// Report is the full mood-productivity analysis.
type Report struct {
	MoodProductivity  []MoodProductivity
	BestMood          *MoodProductivity
	WorstMood         *MoodProductivity
	WeeklyPerformance []DayPerformance
	AvgCompletionRate int
	WeeklyTrend       Trend
	Insights          []Insight
}

// AnalyzeMoodProductivity buckets check-ins by mood and computes each
// mood's completion rate and averages, sorted best first. Moods never
// recorded are omitted.
func AnalyzeMoodProductivity(checkIns []model.CheckIn) []MoodProductivity {
	type bucket struct {
		completions int
		totals      int
		energySum   int
		focusSum    int
		count       int
	}
	buckets := make(map[model.Mood]*bucket)

	for _, c := range checkIns {
		if !c.Mood.IsValid() {
			continue
		}
		b, ok := buckets[c.Mood]
		if !ok {
			b = &bucket{}
			buckets[c.Mood] = b
		}
		b.completions += c.CompletedTasksCount
		b.totals += c.CompletedTasksCount + c.MissedTasksCount
		b.energySum += c.Energy
		b.focusSum += c.Focus
		b.count++
	}

	var results []MoodProductivity
	for _, mood := range model.Moods() {
		b, ok := buckets[mood]
		if !ok {
			continue
		}
		rate := 0
		if b.totals > 0 {
			rate = int(math.Round(float64(b.completions) / float64(b.totals) * 100))
		}
		results = append(results, MoodProductivity{
			Mood:           mood,
			CompletionRate: rate,
			AvgTasks:       round1(float64(b.totals) / float64(b.count)),
			AvgEnergy:      round1(float64(b.energySum) / float64(b.count)),
			AvgFocus:       round1(float64(b.focusSum) / float64(b.count)),
			Occurrences:    b.count,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompletionRate > results[j].CompletionRate
	})
	return results
}

// WeeklyPerformance computes one DayPerformance per day for the seven
// days ending at now, oldest first.
func WeeklyPerformance(checkIns []model.CheckIn, tasks []model.Task, now time.Time) []DayPerformance {
	byDate := make(map[string]model.CheckIn, len(checkIns))
	for _, c := range checkIns {
		byDate[c.Date] = c
	}

	performance := make([]DayPerformance, 0, 7)
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(model.DateLayout)

		var completed, total int
		for _, t := range tasks {
			if t.Date != date {
				continue
			}
			total++
			if t.Completed {
				completed++
			}
		}
		rate := 0
		if total > 0 {
			rate = int(math.Round(float64(completed) / float64(total) * 100))
		}

		day := DayPerformance{
			Date:           date,
			TasksCompleted: completed,
			TasksTotal:     total,
			CompletionRate: rate,
		}
		if c, ok := byDate[date]; ok {
			day.Mood = c.Mood
			day.Energy = c.Energy
			day.Focus = c.Focus
		}
		performance = append(performance, day)
	}
	return performance
}

// weeklyTrend compares the first half of the week against the second,
// with a 5-point dead band so small wobbles read as stable.
func weeklyTrend(performance []DayPerformance) Trend {
	if len(performance) < 2 {
		return TrendStable
	}
	mid := len(performance) / 2
	firstAvg := avgRate(performance[:mid])
	secondAvg := avgRate(performance[mid:])

	switch {
	case secondAvg > firstAvg+5:
		return TrendImproving
	case secondAvg < firstAvg-5:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func avgRate(days []DayPerformance) float64 {
	if len(days) == 0 {
		return 0
	}
	sum := 0
	for _, d := range days {
		sum += d.CompletionRate
	}
	return float64(sum) / float64(len(days))
}

// Analyze runs the full mood-productivity analysis over the given
// check-ins and tasks as of now.
func Analyze(checkIns []model.CheckIn, tasks []model.Task, now time.Time) Report {
	valid := make([]model.CheckIn, 0, len(checkIns))
	for _, c := range checkIns {
		if c.Mood.IsValid() {
			valid = append(valid, c)
		}
	}

	moodProductivity := AnalyzeMoodProductivity(valid)
	performance := WeeklyPerformance(valid, tasks, now)

	var totalCompleted, totalTasks int
	for _, d := range performance {
		totalCompleted += d.TasksCompleted
		totalTasks += d.TasksTotal
	}
	avgRate := 0
	if totalTasks > 0 {
		avgRate = int(math.Round(float64(totalCompleted) / float64(totalTasks) * 100))
	}

	report := Report{
		MoodProductivity:  moodProductivity,
		WeeklyPerformance: performance,
		AvgCompletionRate: avgRate,
		WeeklyTrend:       weeklyTrend(performance),
	}
	if len(moodProductivity) > 0 {
		report.BestMood = &moodProductivity[0]
		report.WorstMood = &moodProductivity[len(moodProductivity)-1]
	}
	report.Insights = generateInsights(report)
	return report
}

// generateInsights turns the aggregates into human-readable
// observations with recommendations.
func generateInsights(r Report) []Insight {
	var insights []Insight

	if len(r.MoodProductivity) == 0 {
		return []Insight{{
			Type:           InsightInfo,
			Title:          "Start tracking your productivity",
			Message:        "Complete daily check-ins to unlock personalized insights.",
			Recommendation: "Track your mood, energy, and tasks for 3 days to see patterns.",
		}}
	}

	if len(r.MoodProductivity) == 1 {
		m := r.MoodProductivity[0]
		return []Insight{{
			Type:  InsightInfo,
			Title: "Great start!",
			Message: fmt.Sprintf("Your %s mood shows %.1f/10 energy with %d%% task completion.",
				m.Mood, m.AvgEnergy, m.CompletionRate),
			Recommendation: "Add 2 more check-ins to unlock trend analysis and recommendations.",
		}}
	}

	if r.BestMood != nil {
		insights = append(insights, Insight{
			Type:  InsightSuccess,
			Title: fmt.Sprintf("Peak productivity: %s", titleMood(r.BestMood.Mood)),
			Message: fmt.Sprintf("%d%% task completion when you feel %s.",
				r.BestMood.CompletionRate, r.BestMood.Mood),
			Recommendation: "Schedule your most important tasks when feeling this way.",
		})
	}

	if r.WorstMood != nil && r.WorstMood.CompletionRate < 70 {
		insights = append(insights, Insight{
			Type:  InsightWarning,
			Title: fmt.Sprintf("Challenge mood: %s", titleMood(r.WorstMood.Mood)),
			Message: fmt.Sprintf("%d%% completion when you feel %s.",
				r.WorstMood.CompletionRate, r.WorstMood.Mood),
			Recommendation: fmt.Sprintf("Consider lighter tasks or breaks during %s days.", r.WorstMood.Mood),
		})
	}

	if len(r.WeeklyPerformance) >= 2 {
		first := r.WeeklyPerformance[0]
		last := r.WeeklyPerformance[len(r.WeeklyPerformance)-1]
		change := last.CompletionRate - first.CompletionRate

		switch {
		case change > 10:
			insights = append(insights, Insight{
				Type:           InsightSuccess,
				Title:          "Improving momentum",
				Message:        fmt.Sprintf("Your completion rate improved by %d%% this week.", change),
				Recommendation: "Keep up this positive momentum!",
			})
		case change < -10:
			insights = append(insights, Insight{
				Type:           InsightAlert,
				Title:          "Declining performance",
				Message:        fmt.Sprintf("Your completion rate dropped by %d%% this week.", -change),
				Recommendation: "Consider reducing workload or taking a rest day.",
			})
		case r.AvgCompletionRate > 80:
			insights = append(insights, Insight{
				Type:           InsightSuccess,
				Title:          "Consistent performer",
				Message:        fmt.Sprintf("You're maintaining a strong %d%% completion rate.", r.AvgCompletionRate),
				Recommendation: "Your consistency is key to long-term success!",
			})
		}
	}

	var highEnergy, lowEnergy []MoodProductivity
	for _, m := range r.MoodProductivity {
		if m.AvgEnergy >= 7 {
			highEnergy = append(highEnergy, m)
		} else if m.AvgEnergy <= 4 {
			lowEnergy = append(lowEnergy, m)
		}
	}
	if len(highEnergy) > 0 && len(lowEnergy) > 0 {
		diff := int(math.Round(avgCompletion(highEnergy) - avgCompletion(lowEnergy)))
		if diff > 15 {
			insights = append(insights, Insight{
				Type:  InsightInfo,
				Title: "Energy drives productivity",
				Message: fmt.Sprintf("High-energy days show %d%% better task completion than low-energy days.",
					diff),
				Recommendation: "Prioritize sleep, breaks, and exercise to maintain energy.",
			})
		}
	}

	if len(insights) == 0 {
		insights = append(insights, Insight{
			Type:           InsightInfo,
			Title:          "Building your profile",
			Message:        "Continue tracking to unlock personalized recommendations.",
			Recommendation: "Complete your daily check-in with task updates for better insights.",
		})
	}
	return insights
}

func avgCompletion(moods []MoodProductivity) float64 {
	sum := 0
	for _, m := range moods {
		sum += m.CompletionRate
	}
	return float64(sum) / float64(len(moods))
}

func titleMood(m model.Mood) string {
	s := string(m)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
