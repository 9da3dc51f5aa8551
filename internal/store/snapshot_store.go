package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/lifeos/internal/model"
)

// SnapshotChecklist groups the checklist section of an imported backup.
type SnapshotChecklist struct {
	Items      []model.ChecklistItem
	Streak     model.ChecklistStreak
	Timestamps model.ResetTimestamps
	History    []model.DailyCompletionRecord
}

// ApplySnapshot writes a staged backup import in one transaction: the
// given tasks and check-ins are inserted and, when checklist is
// non-nil, the checklist section is replaced. A failure on any row
// rolls everything back, so a bad snapshot leaves the store untouched.
func (s *SQLiteStore) ApplySnapshot(ctx context.Context, tasks []model.Task, checkIns []model.CheckIn, checklist *SnapshotChecklist) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	for _, task := range tasks {
		if task.ID == "" {
			task.ID = uuid.New().String()
		}
		if task.CreatedAt.IsZero() {
			task.CreatedAt = now
		}
		task.UpdatedAt = now
		if task.Priority == "" {
			task.Priority = model.PriorityMedium
		}
		if err := task.Validate(); err != nil {
			return err
		}
		checklistIDs, subtasks, recurring, err := marshalTaskExtras(task)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (
				id, title, description, date, start_time, end_time,
				category, priority, completed, reminder,
				checklist_ids, subtasks, recurring,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			task.ID, task.Title, task.Description, task.Date, task.StartTime, task.EndTime,
			task.Category, task.Priority, task.Completed, task.Reminder,
			checklistIDs, subtasks, recurring,
			task.CreatedAt, task.UpdatedAt,
		); err != nil {
			return fmt.Errorf("applying task %q: %w", task.Title, err)
		}
	}

	for _, c := range checkIns {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.UpdatedAt = now
		if err := c.Validate(); err != nil {
			return err
		}
		gratitude, activities, err := marshalCheckInExtras(c)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO check_ins (
				id, date, mood, energy, focus, reflection, gratitude,
				completed_tasks_count, missed_tasks_count, activities,
				sleep_quality, stress, time_of_day,
				micro_commitment, micro_commitment_completed,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Date, c.Mood, c.Energy, c.Focus, c.Reflection, gratitude,
			c.CompletedTasksCount, c.MissedTasksCount, activities,
			c.SleepQuality, c.Stress, c.TimeOfDay,
			c.MicroCommitment, c.MicroCommitmentCompleted,
			c.CreatedAt, c.UpdatedAt,
		); err != nil {
			return fmt.Errorf("applying check-in for %s: %w", c.Date, err)
		}
	}

	if checklist != nil {
		err := restoreChecklistTx(ctx, tx,
			checklist.Items, checklist.Streak, checklist.Timestamps, checklist.History)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}
