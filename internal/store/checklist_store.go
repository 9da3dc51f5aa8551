package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/lifeos/internal/events"
	"github.com/nhle/lifeos/internal/model"
)

// AddChecklistItem inserts a checklist item. Generates a UUID if ID is
// empty and stamps created_at.
func (s *SQLiteStore) AddChecklistItem(ctx context.Context, item model.ChecklistItem) (model.ChecklistItem, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if err := item.Validate(); err != nil {
		return model.ChecklistItem{}, err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checklist_items (
			id, title, category, frequency, completed, completed_at,
			sort_order, is_template, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Title, item.Category, item.Frequency,
		item.Completed, item.CompletedAt,
		item.SortOrder, item.IsTemplate, item.CreatedAt,
	)
	if err != nil {
		return model.ChecklistItem{}, fmt.Errorf("adding checklist item: %w", err)
	}
	return item, nil
}

// UpdateChecklistItem updates an item's mutable fields. Category and
// frequency are fixed at creation and never written here.
func (s *SQLiteStore) UpdateChecklistItem(ctx context.Context, item model.ChecklistItem) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE checklist_items SET
			title = ?, completed = ?, completed_at = ?, sort_order = ?
		WHERE id = ?`,
		item.Title, item.Completed, item.CompletedAt, item.SortOrder,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating checklist item %s: %w", item.ID, err)
	}
	return checkFound(result, item.ID)
}

// DeleteChecklistItem removes an item by ID. Template items are not
// protected here: keeping them is a UI policy, not a store invariant.
func (s *SQLiteStore) DeleteChecklistItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM checklist_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting checklist item %s: %w", id, err)
	}
	return checkFound(result, id)
}

// ToggleChecklistItem flips an item's completed flag, setting
// completed_at when completing and clearing it when un-completing.
// Publishes an ItemToggled event so the completion-history recorder can
// snapshot today for daily items.
func (s *SQLiteStore) ToggleChecklistItem(ctx context.Context, id string) (model.ChecklistItem, error) {
	item, err := s.GetChecklistItemByID(ctx, id)
	if err != nil {
		return model.ChecklistItem{}, err
	}

	item.Completed = !item.Completed
	if item.Completed {
		now := time.Now().UTC()
		item.CompletedAt = &now
	} else {
		item.CompletedAt = nil
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE checklist_items SET completed = ?, completed_at = ? WHERE id = ?`,
		item.Completed, item.CompletedAt, item.ID,
	)
	if err != nil {
		return model.ChecklistItem{}, fmt.Errorf("toggling checklist item %s: %w", id, err)
	}

	s.publish(events.ItemToggled{
		ID:        item.ID,
		Frequency: item.Frequency,
		Completed: item.Completed,
	})
	return *item, nil
}

// ReorderChecklistItems rewrites sort_order within a frequency tier to
// match the given id order (1-based). Ids outside the tier are ignored.
func (s *SQLiteStore) ReorderChecklistItems(ctx context.Context, frequency model.Frequency, ids []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning reorder transaction: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, `
			UPDATE checklist_items SET sort_order = ?
			WHERE id = ? AND frequency = ?`,
			i+1, id, frequency,
		); err != nil {
			return fmt.Errorf("reordering checklist item %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// GetChecklistItemByID retrieves a single checklist item.
func (s *SQLiteStore) GetChecklistItemByID(ctx context.Context, id string) (*model.ChecklistItem, error) {
	var item model.ChecklistItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM checklist_items WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting checklist item %s: %w", id, err)
	}
	return &item, nil
}

// GetChecklistItems retrieves items matching the filter. Frequency
// queries sort by category then sort order; category queries sort by
// sort order alone.
func (s *SQLiteStore) GetChecklistItems(ctx context.Context, filter ChecklistFilter) ([]model.ChecklistItem, error) {
	query := "SELECT * FROM checklist_items"
	var args []interface{}

	switch {
	case filter.Frequency != nil && filter.Category != nil:
		query += " WHERE frequency = ? AND category = ? ORDER BY sort_order ASC"
		args = append(args, *filter.Frequency, *filter.Category)
	case filter.Frequency != nil:
		query += " WHERE frequency = ? ORDER BY category ASC, sort_order ASC"
		args = append(args, *filter.Frequency)
	case filter.Category != nil:
		query += " WHERE category = ? ORDER BY sort_order ASC"
		args = append(args, *filter.Category)
	default:
		query += " ORDER BY frequency ASC, category ASC, sort_order ASC"
	}

	var items []model.ChecklistItem
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("querying checklist items: %w", err)
	}
	return items, nil
}

// ReplaceChecklistItems swaps the entire item collection in one
// transaction. Streak, reset timestamps, and history are untouched.
func (s *SQLiteStore) ReplaceChecklistItems(ctx context.Context, items []model.ChecklistItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning replace transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM checklist_items"); err != nil {
		return fmt.Errorf("clearing checklist items: %w", err)
	}

	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now().UTC()
		}
		if err := item.Validate(); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO checklist_items (
				id, title, category, frequency, completed, completed_at,
				sort_order, is_template, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.Title, item.Category, item.Frequency,
			item.Completed, item.CompletedAt,
			item.SortOrder, item.IsTemplate, item.CreatedAt,
		); err != nil {
			return fmt.Errorf("inserting checklist item %q: %w", item.Title, err)
		}
	}
	return tx.Commit()
}

// ChecklistProgress aggregates completion for a frequency tier,
// optionally narrowed to one category. Percentage is 0 when no items
// match.
func (s *SQLiteStore) ChecklistProgress(ctx context.Context, frequency model.Frequency, category model.Category) (model.Progress, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(completed), 0)
		FROM checklist_items WHERE frequency = ?`
	args := []interface{}{frequency}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}

	var total, completed int
	if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&total, &completed); err != nil {
		return model.Progress{}, fmt.Errorf("aggregating checklist progress: %w", err)
	}

	return model.Progress{
		Frequency:  frequency,
		Category:   category,
		Completed:  completed,
		Total:      total,
		Percentage: percentage(completed, total),
	}, nil
}

// OverallChecklistProgress aggregates completion across all items.
func (s *SQLiteStore) OverallChecklistProgress(ctx context.Context) (model.Progress, error) {
	var total, completed int
	err := s.db.QueryRowxContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(completed), 0) FROM checklist_items`,
	).Scan(&total, &completed)
	if err != nil {
		return model.Progress{}, fmt.Errorf("aggregating overall progress: %w", err)
	}
	return model.Progress{
		Completed:  completed,
		Total:      total,
		Percentage: percentage(completed, total),
	}, nil
}

// IsChecklistInitialized reports whether templates were already loaded.
func (s *SQLiteStore) IsChecklistInitialized(ctx context.Context) (bool, error) {
	var initialized bool
	err := s.db.GetContext(ctx, &initialized,
		"SELECT initialized FROM checklist_state WHERE id = 1")
	if err != nil {
		return false, fmt.Errorf("reading checklist initialized flag: %w", err)
	}
	return initialized, nil
}

// SetChecklistInitialized records whether templates were loaded.
func (s *SQLiteStore) SetChecklistInitialized(ctx context.Context, initialized bool) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE checklist_state SET initialized = ? WHERE id = 1", initialized)
	if err != nil {
		return fmt.Errorf("setting checklist initialized flag: %w", err)
	}
	return nil
}

// ResetChecklistTier clears completed/completed_at on all items of the
// given tier and stamps the tier's last-reset timestamp with now.
func (s *SQLiteStore) ResetChecklistTier(ctx context.Context, frequency model.Frequency, now time.Time) error {
	if !frequency.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidFrequency, frequency)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning reset transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE checklist_items SET completed = 0, completed_at = NULL
		WHERE frequency = ?`, frequency,
	); err != nil {
		return fmt.Errorf("resetting %s checklist items: %w", frequency, err)
	}

	column := map[model.Frequency]string{
		model.FrequencyDaily:   "last_daily_reset",
		model.FrequencyWeekly:  "last_weekly_reset",
		model.FrequencyMonthly: "last_monthly_reset",
		model.FrequencyYearly:  "last_yearly_reset",
	}[frequency]

	if _, err := tx.ExecContext(ctx,
		"UPDATE checklist_state SET "+column+" = ? WHERE id = 1", now.UTC(),
	); err != nil {
		return fmt.Errorf("stamping %s reset: %w", frequency, err)
	}
	return tx.Commit()
}

// GetResetTimestamps returns the last reset time per tier. A tier that
// never reset reports the zero time.
func (s *SQLiteStore) GetResetTimestamps(ctx context.Context) (model.ResetTimestamps, error) {
	var daily, weekly, monthly, yearly *time.Time
	err := s.db.QueryRowxContext(ctx, `
		SELECT last_daily_reset, last_weekly_reset, last_monthly_reset, last_yearly_reset
		FROM checklist_state WHERE id = 1`,
	).Scan(&daily, &weekly, &monthly, &yearly)
	if err != nil {
		return model.ResetTimestamps{}, fmt.Errorf("reading reset timestamps: %w", err)
	}

	var ts model.ResetTimestamps
	if daily != nil {
		ts.LastDailyReset = *daily
	}
	if weekly != nil {
		ts.LastWeeklyReset = *weekly
	}
	if monthly != nil {
		ts.LastMonthlyReset = *monthly
	}
	if yearly != nil {
		ts.LastYearlyReset = *yearly
	}
	return ts, nil
}

// GetChecklistStreak returns the persisted streak state.
func (s *SQLiteStore) GetChecklistStreak(ctx context.Context) (model.ChecklistStreak, error) {
	var streak model.ChecklistStreak
	err := s.db.QueryRowxContext(ctx, `
		SELECT current, longest, last_completed_date, total_days_completed
		FROM checklist_state WHERE id = 1`,
	).Scan(&streak.Current, &streak.Longest, &streak.LastCompletedDate, &streak.TotalDaysCompleted)
	if err != nil {
		return model.ChecklistStreak{}, fmt.Errorf("reading checklist streak: %w", err)
	}
	return streak, nil
}

// UpdateChecklistStreak advances the daily completion streak. It must
// run before the daily reset clears today's items: it checks whether
// all daily items are currently complete and whether yesterday's
// history record was 100%. The lastCompletedDate guard keeps a
// continuing streak from being credited twice in one day.
func (s *SQLiteStore) UpdateChecklistStreak(ctx context.Context, now time.Time) (model.ChecklistStreak, error) {
	streak, err := s.GetChecklistStreak(ctx)
	if err != nil {
		return model.ChecklistStreak{}, err
	}

	var remaining int
	err = s.db.GetContext(ctx, &remaining, `
		SELECT COUNT(*) FROM checklist_items
		WHERE frequency = ? AND completed = 0`, model.FrequencyDaily)
	if err != nil {
		return model.ChecklistStreak{}, fmt.Errorf("counting incomplete daily items: %w", err)
	}
	allDailyCompleted := remaining == 0

	today := now.Format(model.DateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(model.DateLayout)

	var yesterdayPct int
	haveYesterday := true
	err = s.db.GetContext(ctx, &yesterdayPct,
		"SELECT percentage FROM completion_history WHERE date = ?", yesterday)
	if errors.Is(err, sql.ErrNoRows) {
		haveYesterday = false
	} else if err != nil {
		return model.ChecklistStreak{}, fmt.Errorf("reading yesterday's completion: %w", err)
	}

	switch {
	case !haveYesterday || yesterdayPct < 100:
		// Chain is broken; a fully complete today starts a new streak.
		if !allDailyCompleted {
			return streak, nil
		}
		streak.Current = 1
		if streak.Longest < 1 {
			streak.Longest = 1
		}
		streak.LastCompletedDate = today
		streak.TotalDaysCompleted++
	case allDailyCompleted && streak.LastCompletedDate != today:
		streak.Current++
		if streak.Current > streak.Longest {
			streak.Longest = streak.Current
		}
		streak.LastCompletedDate = today
		streak.TotalDaysCompleted++
	default:
		return streak, nil
	}

	if err := s.writeChecklistStreak(ctx, streak); err != nil {
		return model.ChecklistStreak{}, err
	}
	return streak, nil
}

// ResetChecklistStreak zeroes the streak state.
func (s *SQLiteStore) ResetChecklistStreak(ctx context.Context) error {
	return s.writeChecklistStreak(ctx, model.ChecklistStreak{})
}

func (s *SQLiteStore) writeChecklistStreak(ctx context.Context, streak model.ChecklistStreak) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE checklist_state SET
			current = ?, longest = ?, last_completed_date = ?, total_days_completed = ?
		WHERE id = 1`,
		streak.Current, streak.Longest, streak.LastCompletedDate, streak.TotalDaysCompleted,
	)
	if err != nil {
		return fmt.Errorf("writing checklist streak: %w", err)
	}
	return nil
}

// RecordDailyCompletion snapshots today's daily-item completion into
// the history, replacing any existing record for the date and pruning
// the history to the most recent 365 dates.
func (s *SQLiteStore) RecordDailyCompletion(ctx context.Context, now time.Time) (model.DailyCompletionRecord, error) {
	var total, completed int
	err := s.db.QueryRowxContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(completed), 0)
		FROM checklist_items WHERE frequency = ?`, model.FrequencyDaily,
	).Scan(&total, &completed)
	if err != nil {
		return model.DailyCompletionRecord{}, fmt.Errorf("aggregating daily completion: %w", err)
	}

	record := model.DailyCompletionRecord{
		Date:       now.Format(model.DateLayout),
		Completed:  completed,
		Total:      total,
		Percentage: percentage(completed, total),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.DailyCompletionRecord{}, fmt.Errorf("beginning history transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO completion_history (date, completed, total, percentage)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			completed = excluded.completed,
			total = excluded.total,
			percentage = excluded.percentage`,
		record.Date, record.Completed, record.Total, record.Percentage,
	); err != nil {
		return model.DailyCompletionRecord{}, fmt.Errorf("recording daily completion: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM completion_history WHERE date NOT IN (
			SELECT date FROM completion_history ORDER BY date DESC LIMIT ?
		)`, model.CompletionHistoryCap,
	); err != nil {
		return model.DailyCompletionRecord{}, fmt.Errorf("pruning completion history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.DailyCompletionRecord{}, err
	}
	return record, nil
}

// GetCompletionHistory returns all retained records, newest first.
func (s *SQLiteStore) GetCompletionHistory(ctx context.Context) ([]model.DailyCompletionRecord, error) {
	var records []model.DailyCompletionRecord
	err := s.db.SelectContext(ctx, &records,
		"SELECT * FROM completion_history ORDER BY date DESC")
	if err != nil {
		return nil, fmt.Errorf("querying completion history: %w", err)
	}
	return records, nil
}

// CompletionHistoryMap returns the history as a date -> percentage
// lookup for calendar heat-mapping.
func (s *SQLiteStore) CompletionHistoryMap(ctx context.Context) (map[string]int, error) {
	records, err := s.GetCompletionHistory(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]int, len(records))
	for _, r := range records {
		m[r.Date] = r.Percentage
	}
	return m, nil
}

// ClearChecklistData wipes items, streak, reset timestamps, history,
// and the initialized flag in one transaction.
func (s *SQLiteStore) ClearChecklistData(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning clear transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM checklist_items"); err != nil {
		return fmt.Errorf("clearing checklist items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM completion_history"); err != nil {
		return fmt.Errorf("clearing completion history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE checklist_state SET
			initialized = 0, current = 0, longest = 0,
			last_completed_date = '', total_days_completed = 0,
			last_daily_reset = NULL, last_weekly_reset = NULL,
			last_monthly_reset = NULL, last_yearly_reset = NULL
		WHERE id = 1`,
	); err != nil {
		return fmt.Errorf("clearing checklist state: %w", err)
	}
	return tx.Commit()
}

// RestoreChecklistData replaces the entire checklist section from a
// backup snapshot in one transaction: items, streak state, reset
// timestamps, and completion history. A failure leaves everything as
// it was.
func (s *SQLiteStore) RestoreChecklistData(ctx context.Context, items []model.ChecklistItem, streak model.ChecklistStreak, ts model.ResetTimestamps, history []model.DailyCompletionRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning restore transaction: %w", err)
	}
	defer tx.Rollback()

	if err := restoreChecklistTx(ctx, tx, items, streak, ts, history); err != nil {
		return err
	}
	return tx.Commit()
}

// restoreChecklistTx is the transaction body shared by
// RestoreChecklistData and ApplySnapshot.
func restoreChecklistTx(ctx context.Context, tx *sqlx.Tx, items []model.ChecklistItem, streak model.ChecklistStreak, ts model.ResetTimestamps, history []model.DailyCompletionRecord) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM checklist_items"); err != nil {
		return fmt.Errorf("clearing checklist items: %w", err)
	}
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now().UTC()
		}
		if err := item.Validate(); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO checklist_items (
				id, title, category, frequency, completed, completed_at,
				sort_order, is_template, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.Title, item.Category, item.Frequency,
			item.Completed, item.CompletedAt,
			item.SortOrder, item.IsTemplate, item.CreatedAt,
		); err != nil {
			return fmt.Errorf("restoring checklist item %q: %w", item.Title, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM completion_history"); err != nil {
		return fmt.Errorf("clearing completion history: %w", err)
	}
	for _, r := range history {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO completion_history (date, completed, total, percentage)
			VALUES (?, ?, ?, ?)`,
			r.Date, r.Completed, r.Total, r.Percentage,
		); err != nil {
			return fmt.Errorf("restoring history for %s: %w", r.Date, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE checklist_state SET
			initialized = 1,
			current = ?, longest = ?, last_completed_date = ?, total_days_completed = ?,
			last_daily_reset = ?, last_weekly_reset = ?,
			last_monthly_reset = ?, last_yearly_reset = ?
		WHERE id = 1`,
		streak.Current, streak.Longest, streak.LastCompletedDate, streak.TotalDaysCompleted,
		nullableTime(ts.LastDailyReset), nullableTime(ts.LastWeeklyReset),
		nullableTime(ts.LastMonthlyReset), nullableTime(ts.LastYearlyReset),
	); err != nil {
		return fmt.Errorf("restoring checklist state: %w", err)
	}
	return nil
}

// nullableTime maps the zero time to NULL for storage.
func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// percentage computes round(100 * completed / total), 0 when total is 0.
func percentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
