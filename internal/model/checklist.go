package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidFrequency = errors.New("model: invalid frequency")

// Frequency is the recurrence tier of a checklist item.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Frequencies returns the four tiers in reset order.
func Frequencies() []Frequency {
	return []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly}
}

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	default:
		return false
	}
}

// ChecklistItem is one trackable unit of the recurring checklist system.
// Frequency and Category are fixed at creation. Completed and CompletedAt
// are the only fields mutated by toggles and tier resets.
type ChecklistItem struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Category    Category   `json:"category" db:"category"`
	Frequency   Frequency  `json:"frequency" db:"frequency"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty" db:"completed_at"`
	SortOrder   int        `json:"order" db:"sort_order"`
	IsTemplate  bool       `json:"isTemplate" db:"is_template"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

// Validate checks required fields and enum membership.
func (i ChecklistItem) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return errors.New("model: checklist item title is required")
	}
	if !i.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, i.Category)
	}
	if !i.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, i.Frequency)
	}
	return nil
}

// TemplateKey identifies a checklist item across template
// reinitializations. Two items with the same key are the same logical
// entry even when their ids differ.
type TemplateKey struct {
	Title     string
	Category  Category
	Frequency Frequency
}

// Key returns the item's natural template key.
func (i ChecklistItem) Key() TemplateKey {
	return TemplateKey{Title: i.Title, Category: i.Category, Frequency: i.Frequency}
}

// ChecklistStreak tracks consecutive days on which every daily item was
// completed.
type ChecklistStreak struct {
	Current           int    `json:"current" db:"current"`
	Longest           int    `json:"longest" db:"longest"`
	LastCompletedDate string `json:"lastCompletedDate" db:"last_completed_date"` // YYYY-MM-DD
	TotalDaysCompleted int   `json:"totalDaysCompleted" db:"total_days_completed"`
}

// ResetTimestamps records when each tier was last reset. A zero time
// means the tier has never been reset and is immediately due.
type ResetTimestamps struct {
	LastDailyReset   time.Time `json:"lastDailyReset" db:"last_daily_reset"`
	LastWeeklyReset  time.Time `json:"lastWeeklyReset" db:"last_weekly_reset"`
	LastMonthlyReset time.Time `json:"lastMonthlyReset" db:"last_monthly_reset"`
	LastYearlyReset  time.Time `json:"lastYearlyReset" db:"last_yearly_reset"`
}

// For returns the timestamp for a tier.
func (r ResetTimestamps) For(f Frequency) time.Time {
	switch f {
	case FrequencyDaily:
		return r.LastDailyReset
	case FrequencyWeekly:
		return r.LastWeeklyReset
	case FrequencyMonthly:
		return r.LastMonthlyReset
	case FrequencyYearly:
		return r.LastYearlyReset
	default:
		return time.Time{}
	}
}

// DailyCompletionRecord is a point-in-time snapshot of daily checklist
// completion for one calendar date. At most one record exists per date.
type DailyCompletionRecord struct {
	Date       string `json:"date" db:"date"` // YYYY-MM-DD
	Completed  int    `json:"completed" db:"completed"`
	Total      int    `json:"total" db:"total"`
	Percentage int    `json:"percentage" db:"percentage"`
}

// CompletionHistoryCap is the maximum number of daily completion
// records retained; the oldest dates are evicted beyond it.
const CompletionHistoryCap = 365

// Progress is a completed/total/percentage aggregate over a slice of
// checklist items. Percentage is 0 when Total is 0.
type Progress struct {
	Frequency Frequency `json:"frequency,omitempty"`
	Category  Category  `json:"category,omitempty"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	Percentage int      `json:"percentage"`
}
