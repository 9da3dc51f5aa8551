package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/lifeos/internal/model"
)

// CreateCheckIn inserts a check-in for its date. The date is unique:
// re-creating for an existing date fails at the database level, so
// callers that want upsert behavior check GetCheckInByDate first.
func (s *SQLiteStore) CreateCheckIn(ctx context.Context, c model.CheckIn) (model.CheckIn, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if err := c.Validate(); err != nil {
		return model.CheckIn{}, err
	}

	gratitude, activities, err := marshalCheckInExtras(c)
	if err != nil {
		return model.CheckIn{}, err
	}

	_, err = s.db.ExecContext(ctx, `
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
	)
	if err != nil {
		return model.CheckIn{}, fmt.Errorf("creating check-in for %s: %w", c.Date, err)
	}
	return c, nil
}

// UpdateCheckIn rewrites an existing check-in by ID, preserving its
// creation time.
func (s *SQLiteStore) UpdateCheckIn(ctx context.Context, c model.CheckIn) error {
	c.UpdatedAt = time.Now().UTC()
	if err := c.Validate(); err != nil {
		return err
	}

	gratitude, activities, err := marshalCheckInExtras(c)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE check_ins SET
			date = ?, mood = ?, energy = ?, focus = ?, reflection = ?,
			gratitude = ?, completed_tasks_count = ?, missed_tasks_count = ?,
			activities = ?, sleep_quality = ?, stress = ?, time_of_day = ?,
			micro_commitment = ?, micro_commitment_completed = ?, updated_at = ?
		WHERE id = ?`,
		c.Date, c.Mood, c.Energy, c.Focus, c.Reflection,
		gratitude, c.CompletedTasksCount, c.MissedTasksCount,
		activities, c.SleepQuality, c.Stress, c.TimeOfDay,
		c.MicroCommitment, c.MicroCommitmentCompleted, c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating check-in %s: %w", c.ID, err)
	}
	return checkFound(result, c.ID)
}

// GetCheckInByDate retrieves the check-in recorded on a YYYY-MM-DD date.
func (s *SQLiteStore) GetCheckInByDate(ctx context.Context, date string) (*model.CheckIn, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM check_ins WHERE date = ?", date)
	c, err := scanCheckIn(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting check-in for %s: %w", date, err)
	}
	return c, nil
}

// GetCheckIns retrieves check-ins in a date window, newest first.
func (s *SQLiteStore) GetCheckIns(ctx context.Context, filter CheckInFilter) ([]model.CheckIn, error) {
	query := "SELECT * FROM check_ins"
	var conditions []string
	var args []interface{}

	if filter.DateFrom != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, *filter.DateTo)
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY date DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying check-ins: %w", err)
	}
	defer rows.Close()

	var checkIns []model.CheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning check-in: %w", err)
		}
		checkIns = append(checkIns, *c)
	}
	return checkIns, rows.Err()
}

// CheckInStats summarizes the journal: total entries, the current
// streak, and trailing-7-day energy/focus averages and moods.
func (s *SQLiteStore) CheckInStats(ctx context.Context, now time.Time) (model.CheckInStats, error) {
	var stats model.CheckInStats

	if err := s.db.GetContext(ctx, &stats.TotalCheckIns,
		"SELECT COUNT(*) FROM check_ins"); err != nil {
		return model.CheckInStats{}, fmt.Errorf("counting check-ins: %w", err)
	}

	streak, err := s.CurrentCheckInStreak(ctx, now)
	if err != nil {
		return model.CheckInStats{}, err
	}
	stats.CurrentStreak = streak

	weekAgo := now.AddDate(0, 0, -6).Format(model.DateLayout)
	today := now.Format(model.DateLayout)

	rows, err := s.db.QueryxContext(ctx, `
		SELECT date, mood, energy, focus FROM check_ins
		WHERE date >= ? AND date <= ? ORDER BY date ASC`, weekAgo, today)
	if err != nil {
		return model.CheckInStats{}, fmt.Errorf("querying weekly check-ins: %w", err)
	}
	defer rows.Close()

	var energySum, focusSum, n int
	for rows.Next() {
		var dm model.DatedMood
		var energy, focus int
		if err := rows.Scan(&dm.Date, &dm.Mood, &energy, &focus); err != nil {
			return model.CheckInStats{}, fmt.Errorf("scanning weekly check-in: %w", err)
		}
		stats.WeeklyMoods = append(stats.WeeklyMoods, dm)
		energySum += energy
		focusSum += focus
		n++
	}
	if err := rows.Err(); err != nil {
		return model.CheckInStats{}, err
	}
	if n > 0 {
		stats.WeeklyAvgEnergy = float64(energySum) / float64(n)
		stats.WeeklyAvgFocus = float64(focusSum) / float64(n)
	}
	return stats, nil
}

// CurrentCheckInStreak counts consecutive checked-in days ending today.
// A missing check-in for today means the streak counts back from
// yesterday; a gap before that breaks it.
func (s *SQLiteStore) CurrentCheckInStreak(ctx context.Context, now time.Time) (int, error) {
	var dates []string
	err := s.db.SelectContext(ctx, &dates,
		"SELECT date FROM check_ins ORDER BY date DESC")
	if err != nil {
		return 0, fmt.Errorf("querying check-in dates: %w", err)
	}
	if len(dates) == 0 {
		return 0, nil
	}

	have := make(map[string]bool, len(dates))
	for _, d := range dates {
		have[d] = true
	}

	day := now
	if !have[now.Format(model.DateLayout)] {
		day = now.AddDate(0, 0, -1)
	}

	streak := 0
	for have[day.Format(model.DateLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}

	if err := s.recordLongestCheckInStreak(ctx, streak); err != nil {
		return 0, err
	}
	return streak, nil
}

// LongestCheckInStreak returns the best streak ever recorded.
func (s *SQLiteStore) LongestCheckInStreak(ctx context.Context) (int, error) {
	var longest int
	err := s.db.GetContext(ctx, &longest,
		"SELECT longest_streak FROM checkin_state WHERE id = 1")
	if err != nil {
		return 0, fmt.Errorf("reading longest check-in streak: %w", err)
	}
	return longest, nil
}

func (s *SQLiteStore) recordLongestCheckInStreak(ctx context.Context, streak int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE checkin_state SET longest_streak = MAX(longest_streak, ?)
		WHERE id = 1`, streak)
	if err != nil {
		return fmt.Errorf("recording longest check-in streak: %w", err)
	}
	return nil
}

// StreakFreezesRemaining reports how many freezes are left this month,
// replenishing the monthly allowance of two when the month rolls over.
func (s *SQLiteStore) StreakFreezesRemaining(ctx context.Context, now time.Time) (int, error) {
	if err := s.replenishFreezes(ctx, now); err != nil {
		return 0, err
	}
	var remaining int
	err := s.db.GetContext(ctx, &remaining,
		"SELECT freezes_remaining FROM checkin_state WHERE id = 1")
	if err != nil {
		return 0, fmt.Errorf("reading streak freezes: %w", err)
	}
	return remaining, nil
}

// UseStreakFreeze repairs a streak broken by missing yesterday: it
// spends one of the month's two freezes and backfills a neutral
// placeholder check-in for yesterday. Returns false without error when
// no freeze applies (none left, or yesterday is already covered).
func (s *SQLiteStore) UseStreakFreeze(ctx context.Context, now time.Time) (bool, error) {
	remaining, err := s.StreakFreezesRemaining(ctx, now)
	if err != nil {
		return false, err
	}
	if remaining <= 0 {
		return false, nil
	}

	yesterday := now.AddDate(0, 0, -1).Format(model.DateLayout)
	if _, err := s.GetCheckInByDate(ctx, yesterday); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	placeholder := model.CheckIn{
		Date:       yesterday,
		Mood:       model.MoodNeutral,
		Energy:     5,
		Focus:      3,
		Reflection: "Streak freeze used",
	}
	if _, err := s.CreateCheckIn(ctx, placeholder); err != nil {
		return false, err
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE checkin_state SET freezes_remaining = freezes_remaining - 1
		WHERE id = 1`,
	); err != nil {
		return false, fmt.Errorf("spending streak freeze: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) replenishFreezes(ctx context.Context, now time.Time) error {
	var lastReset *time.Time
	err := s.db.QueryRowxContext(ctx,
		"SELECT last_freeze_reset FROM checkin_state WHERE id = 1").Scan(&lastReset)
	if err != nil {
		return fmt.Errorf("reading freeze reset time: %w", err)
	}

	if lastReset != nil &&
		lastReset.Year() == now.Year() && lastReset.Month() == now.Month() {
		return nil
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE checkin_state SET freezes_remaining = 2, last_freeze_reset = ?
		WHERE id = 1`, now.UTC())
	if err != nil {
		return fmt.Errorf("replenishing streak freezes: %w", err)
	}
	return nil
}

// ClearAllCheckIns deletes the journal and resets freeze state.
func (s *SQLiteStore) ClearAllCheckIns(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning clear transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM check_ins"); err != nil {
		return fmt.Errorf("clearing check-ins: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE checkin_state SET
			longest_streak = 0, freezes_remaining = 2, last_freeze_reset = NULL
		WHERE id = 1`,
	); err != nil {
		return fmt.Errorf("resetting check-in state: %w", err)
	}
	return tx.Commit()
}

func marshalCheckInExtras(c model.CheckIn) (gratitude, activities string, err error) {
	g, err := json.Marshal(orEmpty(c.Gratitude))
	if err != nil {
		return "", "", fmt.Errorf("marshaling gratitude: %w", err)
	}
	a, err := json.Marshal(orEmpty(c.Activities))
	if err != nil {
		return "", "", fmt.Errorf("marshaling activities: %w", err)
	}
	return string(g), string(a), nil
}

func scanCheckIn(row rowScanner) (*model.CheckIn, error) {
	var c model.CheckIn
	var gratitude, activities string

	err := row.Scan(
		&c.ID, &c.Date, &c.Mood, &c.Energy, &c.Focus, &c.Reflection,
		&gratitude, &c.CompletedTasksCount, &c.MissedTasksCount, &activities,
		&c.SleepQuality, &c.Stress, &c.TimeOfDay,
		&c.MicroCommitment, &c.MicroCommitmentCompleted,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(gratitude), &c.Gratitude); err != nil {
		return nil, fmt.Errorf("unmarshaling gratitude: %w", err)
	}
	if err := json.Unmarshal([]byte(activities), &c.Activities); err != nil {
		return nil, fmt.Errorf("unmarshaling activities: %w", err)
	}
	if len(c.Gratitude) == 0 {
		c.Gratitude = nil
	}
	if len(c.Activities) == 0 {
		c.Activities = nil
	}
	return &c, nil
}
