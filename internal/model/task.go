package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used across the app (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// TimeLayout is the clock format used for task start/end times (HH:MM).
const TimeLayout = "15:04"

var (
	ErrInvalidCategory  = errors.New("model: invalid category")
	ErrInvalidPriority  = errors.New("model: invalid priority")
	ErrInvalidTimeRange = errors.New("model: end time must be after start time")
)

// Category is the closed activity category set shared by tasks and
// checklist items.
type Category string

const (
	CategoryWork           Category = "work"
	CategoryHealth         Category = "health"
	CategoryFinance        Category = "finance"
	CategoryLearning       Category = "learning"
	CategoryRelationships  Category = "relationships"
	CategoryPersonalGrowth Category = "personal-growth"
)

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{
		CategoryWork,
		CategoryHealth,
		CategoryFinance,
		CategoryLearning,
		CategoryRelationships,
		CategoryPersonalGrowth,
	}
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryWork, CategoryHealth, CategoryFinance,
		CategoryLearning, CategoryRelationships, CategoryPersonalGrowth:
		return true
	default:
		return false
	}
}

// Priority is the task urgency level.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities returns all priorities from most to least urgent.
func Priorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Subtask is a lightweight child entry within a task.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Recurrence describes how a task repeats. EndsOn, when set, is the
// last date (YYYY-MM-DD) on which an occurrence may be generated.
type Recurrence struct {
	Frequency Frequency `json:"frequency"`
	EndsOn    string    `json:"endsOn,omitempty"`
}

// Task is a scheduled, single-occurrence activity on the calendar.
type Task struct {
	ID           string      `json:"id" db:"id"`
	Title        string      `json:"title" db:"title"`
	Description  string      `json:"description,omitempty" db:"description"`
	Date         string      `json:"date" db:"date"`            // YYYY-MM-DD
	StartTime    string      `json:"startTime" db:"start_time"` // HH:MM
	EndTime      string      `json:"endTime" db:"end_time"`     // HH:MM
	Category     Category    `json:"category" db:"category"`
	Priority     Priority    `json:"priority" db:"priority"`
	Completed    bool        `json:"completed" db:"completed"`
	Reminder     bool        `json:"reminder,omitempty" db:"reminder"`
	ChecklistIDs []string    `json:"checklistIds,omitempty" db:"-"`
	Subtasks     []Subtask   `json:"subtasks,omitempty" db:"-"`
	Recurring    *Recurrence `json:"recurring,omitempty" db:"-"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`
}

// Validate checks the task's required fields and the start/end time
// ordering. It does not check ID because the store assigns one.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return fmt.Errorf("model: invalid task date %q: %w", t.Date, err)
	}
	start, err := time.Parse(TimeLayout, t.StartTime)
	if err != nil {
		return fmt.Errorf("model: invalid start time %q: %w", t.StartTime, err)
	}
	end, err := time.Parse(TimeLayout, t.EndTime)
	if err != nil {
		return fmt.Errorf("model: invalid end time %q: %w", t.EndTime, err)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, t.StartTime, t.EndTime)
	}
	if !t.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.Recurring != nil && !t.Recurring.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, t.Recurring.Frequency)
	}
	return nil
}
