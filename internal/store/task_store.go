package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/lifeos/internal/model"
)

// CreateTask inserts a new task. Generates a UUID if ID is empty and
// stamps created_at/updated_at.
func (s *SQLiteStore) CreateTask(ctx context.Context, task model.Task) (model.Task, error) {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}

	checklistIDs, subtasks, recurring, err := marshalTaskExtras(task)
	if err != nil {
		return model.Task{}, err
	}

	_, err = s.db.ExecContext(ctx, `
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
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("creating task: %w", err)
	}
	return task, nil
}

// UpdateTask updates an existing task by ID, preserving created_at.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task model.Task) error {
	task.UpdatedAt = time.Now().UTC()
	if err := task.Validate(); err != nil {
		return err
	}

	checklistIDs, subtasks, recurring, err := marshalTaskExtras(task)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			title = ?, description = ?, date = ?, start_time = ?, end_time = ?,
			category = ?, priority = ?, completed = ?, reminder = ?,
			checklist_ids = ?, subtasks = ?, recurring = ?, updated_at = ?
		WHERE id = ?`,
		task.Title, task.Description, task.Date, task.StartTime, task.EndTime,
		task.Category, task.Priority, task.Completed, task.Reminder,
		checklistIDs, subtasks, recurring, task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", task.ID, err)
	}
	return checkFound(result, task.ID)
}

// DeleteTask removes a task by ID.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return checkFound(result, id)
}

// ToggleTask flips a task's completed flag.
func (s *SQLiteStore) ToggleTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET completed = NOT completed, updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("toggling task %s: %w", id, err)
	}
	return checkFound(result, id)
}

// GetTaskByID retrieves a single task by ID.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return &task, nil
}

// GetTasks retrieves tasks matching the filter, ordered by date then
// start time.
func (s *SQLiteStore) GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query, args := buildTaskQuery("SELECT *", filter)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// CountTasks returns the count of tasks matching the filter.
func (s *SQLiteStore) CountTasks(ctx context.Context, filter TaskFilter) (int, error) {
	query, args := buildTaskQuery("SELECT COUNT(*)", filter)
	// Strip the ordering; COUNT ignores it but SQLite still parses it.
	query = strings.Split(query, " ORDER BY")[0]

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return count, nil
}

// ClearCompletedTasks deletes all completed tasks and reports how many
// were removed.
func (s *SQLiteStore) ClearCompletedTasks(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE completed = 1")
	if err != nil {
		return 0, fmt.Errorf("clearing completed tasks: %w", err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

// ClearAllTasks deletes every task.
func (s *SQLiteStore) ClearAllTasks(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("clearing tasks: %w", err)
	}
	return nil
}

// buildTaskQuery assembles the WHERE clause shared by GetTasks and
// CountTasks.
func buildTaskQuery(selectClause string, filter TaskFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Date != nil {
		conditions = append(conditions, "date = ?")
		args = append(args, *filter.Date)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, *filter.DateTo)
	}
	if filter.Category != nil {
		conditions = append(conditions, "category = ?")
		args = append(args, *filter.Category)
	}
	if filter.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, *filter.Priority)
	}
	if filter.Completed != nil {
		conditions = append(conditions, "completed = ?")
		args = append(args, *filter.Completed)
	}
	if filter.Reminder != nil {
		conditions = append(conditions, "reminder = ?")
		args = append(args, *filter.Reminder)
	}
	if filter.Query != nil && strings.TrimSpace(*filter.Query) != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + strings.TrimSpace(*filter.Query) + "%"
		args = append(args, pattern, pattern)
	}

	query := selectClause + " FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date ASC, start_time ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}
	return query, args
}

// marshalTaskExtras serializes the JSON-encoded columns of a task.
func marshalTaskExtras(task model.Task) (checklistIDs, subtasks, recurring string, err error) {
	ids, err := json.Marshal(orEmpty(task.ChecklistIDs))
	if err != nil {
		return "", "", "", fmt.Errorf("marshaling checklist ids for task %s: %w", task.ID, err)
	}
	subs, err := json.Marshal(orEmptySubtasks(task.Subtasks))
	if err != nil {
		return "", "", "", fmt.Errorf("marshaling subtasks for task %s: %w", task.ID, err)
	}
	rec := ""
	if task.Recurring != nil {
		raw, err := json.Marshal(task.Recurring)
		if err != nil {
			return "", "", "", fmt.Errorf("marshaling recurrence for task %s: %w", task.ID, err)
		}
		rec = string(raw)
	}
	return string(ids), string(subs), rec, nil
}

func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func orEmptySubtasks(v []model.Subtask) []model.Subtask {
	if v == nil {
		return []model.Subtask{}
	}
	return v
}

// rowScanner lets scanTask work with both Row and Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var task model.Task
	var checklistIDs, subtasks, recurring string

	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &task.Date,
		&task.StartTime, &task.EndTime, &task.Category, &task.Priority,
		&task.Completed, &task.Reminder,
		&checklistIDs, &subtasks, &recurring,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return model.Task{}, err
	}

	if err := json.Unmarshal([]byte(checklistIDs), &task.ChecklistIDs); err != nil {
		return model.Task{}, fmt.Errorf("parsing checklist ids for task %s: %w", task.ID, err)
	}
	if err := json.Unmarshal([]byte(subtasks), &task.Subtasks); err != nil {
		return model.Task{}, fmt.Errorf("parsing subtasks for task %s: %w", task.ID, err)
	}
	if recurring != "" {
		var rec model.Recurrence
		if err := json.Unmarshal([]byte(recurring), &rec); err != nil {
			return model.Task{}, fmt.Errorf("parsing recurrence for task %s: %w", task.ID, err)
		}
		task.Recurring = &rec
	}
	if len(task.ChecklistIDs) == 0 {
		task.ChecklistIDs = nil
	}
	if len(task.Subtasks) == 0 {
		task.Subtasks = nil
	}
	return task, nil
}

// checkFound maps zero affected rows to ErrNotFound.
func checkFound(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
