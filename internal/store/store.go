package store

import (
	"context"
	"time"

	"github.com/nhle/lifeos/internal/model"
)

// TaskFilter controls filtering, sorting, and pagination for task queries.
type TaskFilter struct {
	Date      *string // exact YYYY-MM-DD
	DateFrom  *string // inclusive range start
	DateTo    *string // inclusive range end
	Category  *model.Category
	Priority  *model.Priority
	Completed *bool
	Reminder  *bool
	Query     *string // search title + description
	Limit     int
	Offset    int
}

// ChecklistFilter narrows checklist item queries. When Frequency is set
// the result is sorted by category then sort order; when only Category
// is set the result is sorted by sort order.
type ChecklistFilter struct {
	Frequency *model.Frequency
	Category  *model.Category
}

// CheckInFilter narrows check-in queries to a date window.
type CheckInFilter struct {
	DateFrom *string // inclusive YYYY-MM-DD
	DateTo   *string // inclusive YYYY-MM-DD
	Limit    int
}

// Store defines the persistence interface for tasks, the checklist
// lifecycle engine, and the daily check-in journal.
type Store interface {
	// === Tasks ===

	CreateTask(ctx context.Context, task model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) error
	DeleteTask(ctx context.Context, id string) error
	ToggleTask(ctx context.Context, id string) error
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	CountTasks(ctx context.Context, filter TaskFilter) (int, error)
	ClearCompletedTasks(ctx context.Context) (int, error)
	ClearAllTasks(ctx context.Context) error

	// === Checklist items ===

	AddChecklistItem(ctx context.Context, item model.ChecklistItem) (model.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, item model.ChecklistItem) error
	DeleteChecklistItem(ctx context.Context, id string) error
	ToggleChecklistItem(ctx context.Context, id string) (model.ChecklistItem, error)
	ReorderChecklistItems(ctx context.Context, frequency model.Frequency, ids []string) error
	GetChecklistItemByID(ctx context.Context, id string) (*model.ChecklistItem, error)
	GetChecklistItems(ctx context.Context, filter ChecklistFilter) ([]model.ChecklistItem, error)
	ReplaceChecklistItems(ctx context.Context, items []model.ChecklistItem) error

	// === Checklist progress ===

	ChecklistProgress(ctx context.Context, frequency model.Frequency, category model.Category) (model.Progress, error)
	OverallChecklistProgress(ctx context.Context) (model.Progress, error)

	// === Checklist lifecycle ===

	IsChecklistInitialized(ctx context.Context) (bool, error)
	SetChecklistInitialized(ctx context.Context, initialized bool) error
	ResetChecklistTier(ctx context.Context, frequency model.Frequency, now time.Time) error
	GetResetTimestamps(ctx context.Context) (model.ResetTimestamps, error)
	GetChecklistStreak(ctx context.Context) (model.ChecklistStreak, error)
	UpdateChecklistStreak(ctx context.Context, now time.Time) (model.ChecklistStreak, error)
	ResetChecklistStreak(ctx context.Context) error
	RecordDailyCompletion(ctx context.Context, now time.Time) (model.DailyCompletionRecord, error)
	GetCompletionHistory(ctx context.Context) ([]model.DailyCompletionRecord, error)
	CompletionHistoryMap(ctx context.Context) (map[string]int, error)
	ClearChecklistData(ctx context.Context) error
	RestoreChecklistData(ctx context.Context, items []model.ChecklistItem, streak model.ChecklistStreak, ts model.ResetTimestamps, history []model.DailyCompletionRecord) error

	// === Check-ins ===

	CreateCheckIn(ctx context.Context, c model.CheckIn) (model.CheckIn, error)
	UpdateCheckIn(ctx context.Context, c model.CheckIn) error
	GetCheckInByDate(ctx context.Context, date string) (*model.CheckIn, error)
	GetCheckIns(ctx context.Context, filter CheckInFilter) ([]model.CheckIn, error)
	CheckInStats(ctx context.Context, now time.Time) (model.CheckInStats, error)
	CurrentCheckInStreak(ctx context.Context, now time.Time) (int, error)
	LongestCheckInStreak(ctx context.Context) (int, error)
	StreakFreezesRemaining(ctx context.Context, now time.Time) (int, error)
	UseStreakFreeze(ctx context.Context, now time.Time) (bool, error)
	ClearAllCheckIns(ctx context.Context) error

	// === Backup ===

	ApplySnapshot(ctx context.Context, tasks []model.Task, checkIns []model.CheckIn, checklist *SnapshotChecklist) error
}
