package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidMood = errors.New("model: invalid mood")

// Mood is the self-reported mood of a daily check-in.
type Mood string

const (
	MoodHappy      Mood = "happy"
	MoodExcited    Mood = "excited"
	MoodCalm       Mood = "calm"
	MoodProductive Mood = "productive"
	MoodNeutral    Mood = "neutral"
	MoodTired      Mood = "tired"
	MoodStressed   Mood = "stressed"
)

// Moods returns all moods in display order.
func Moods() []Mood {
	return []Mood{
		MoodHappy, MoodExcited, MoodCalm, MoodProductive,
		MoodNeutral, MoodTired, MoodStressed,
	}
}

func (m Mood) IsValid() bool {
	switch m {
	case MoodHappy, MoodExcited, MoodCalm, MoodProductive,
		MoodNeutral, MoodTired, MoodStressed:
		return true
	default:
		return false
	}
}

// ActivityOptions are the selectable activity tags for a check-in.
var ActivityOptions = []string{
	"exercise", "social", "learning", "deep-work",
	"leisure", "ate-well", "good-sleep", "meditation",
}

// CheckIn is a daily mood/energy journal entry. One exists per date.
type CheckIn struct {
	ID                       string    `json:"id" db:"id"`
	Date                     string    `json:"date" db:"date"` // YYYY-MM-DD
	Mood                     Mood      `json:"mood" db:"mood"`
	Energy                   int       `json:"energy" db:"energy"` // 1-10
	Focus                    int       `json:"focus" db:"focus"`   // 1-5
	Reflection               string    `json:"reflection" db:"reflection"`
	Gratitude                []string  `json:"gratitude" db:"-"`
	CompletedTasksCount      int       `json:"completedTasksCount" db:"completed_tasks_count"`
	MissedTasksCount         int       `json:"missedTasksCount" db:"missed_tasks_count"`
	Activities               []string  `json:"activities,omitempty" db:"-"`
	SleepQuality             int       `json:"sleepQuality,omitempty" db:"sleep_quality"` // 1-5, 0 unset
	Stress                   int       `json:"stress,omitempty" db:"stress"`             // 1-10, 0 unset
	TimeOfDay                string    `json:"timeOfDay,omitempty" db:"time_of_day"`     // morning|evening
	MicroCommitment          string    `json:"microCommitment,omitempty" db:"micro_commitment"`
	MicroCommitmentCompleted bool      `json:"microCommitmentCompleted,omitempty" db:"micro_commitment_completed"`
	CreatedAt                time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt                time.Time `json:"updatedAt" db:"updated_at"`
}

// Validate checks required fields and rating ranges.
func (c CheckIn) Validate() error {
	if _, err := time.Parse(DateLayout, c.Date); err != nil {
		return fmt.Errorf("model: invalid check-in date %q: %w", c.Date, err)
	}
	if !c.Mood.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMood, c.Mood)
	}
	if c.Energy < 1 || c.Energy > 10 {
		return fmt.Errorf("model: energy must be 1-10, got %d", c.Energy)
	}
	if c.Focus < 1 || c.Focus > 5 {
		return fmt.Errorf("model: focus must be 1-5, got %d", c.Focus)
	}
	if c.SleepQuality != 0 && (c.SleepQuality < 1 || c.SleepQuality > 5) {
		return fmt.Errorf("model: sleep quality must be 1-5, got %d", c.SleepQuality)
	}
	if c.Stress != 0 && (c.Stress < 1 || c.Stress > 10) {
		return fmt.Errorf("model: stress must be 1-10, got %d", c.Stress)
	}
	if t := strings.TrimSpace(c.TimeOfDay); t != "" && t != "morning" && t != "evening" {
		return fmt.Errorf("model: time of day must be morning or evening, got %q", c.TimeOfDay)
	}
	return nil
}

// CheckInStats is an aggregate view over the check-in journal.
type CheckInStats struct {
	TotalCheckIns   int
	CurrentStreak   int
	WeeklyAvgEnergy float64
	WeeklyAvgFocus  float64
	WeeklyMoods     []DatedMood
}

// DatedMood pairs a date with the mood recorded on it.
type DatedMood struct {
	Date string
	Mood Mood
}
