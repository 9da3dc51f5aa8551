package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
	"github.com/nhle/lifeos/tests/testutil"
)

func newTask(title, date string) model.Task {
	return model.Task{
		Title:     title,
		Date:      date,
		StartTime: "09:00",
		EndTime:   "10:00",
		Category:  model.CategoryWork,
		Priority:  model.PriorityMedium,
	}
}

func TestCreateTaskAssignsDefaults(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	task := newTask("Write weekly plan", "2025-03-10")
	task.Priority = ""

	created, err := s.CreateTask(ctx, task)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.ID == "" {
		t.Error("expected a generated ID")
	}
	if created.Priority != model.PriorityMedium {
		t.Errorf("priority = %q, want %q", created.Priority, model.PriorityMedium)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestCreateTaskValidation(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		task model.Task
	}{
		{"missing title", newTask("", "2025-03-10")},
		{"bad date", newTask("x", "10/03/2025")},
		{"end before start", func() model.Task {
			task := newTask("x", "2025-03-10")
			task.StartTime = "11:00"
			task.EndTime = "10:00"
			return task
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CreateTask(ctx, tt.task); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestToggleTask(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	created, err := s.CreateTask(ctx, newTask("Stretch", "2025-03-10"))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err := s.ToggleTask(ctx, created.ID); err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	got, err := s.GetTaskByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTaskByID: %v", err)
	}
	if !got.Completed {
		t.Error("expected task to be completed after toggle")
	}

	if err := s.ToggleTask(ctx, created.ID); err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	got, _ = s.GetTaskByID(ctx, created.ID)
	if got.Completed {
		t.Error("expected task to be pending after second toggle")
	}
}

func TestTaskNotFound(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if _, err := s.GetTaskByID(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetTaskByID error = %v, want ErrNotFound", err)
	}
	if err := s.ToggleTask(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ToggleTask error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteTask(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteTask error = %v, want ErrNotFound", err)
	}

	task := newTask("ghost", "2025-03-10")
	task.ID = "missing"
	if err := s.UpdateTask(ctx, task); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateTask error = %v, want ErrNotFound", err)
	}
}

func TestGetTasksFilters(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	seed := []model.Task{
		newTask("Morning run", "2025-03-10"),
		newTask("Budget review", "2025-03-10"),
		newTask("Dentist", "2025-03-12"),
	}
	seed[0].Category = model.CategoryHealth
	seed[1].Category = model.CategoryFinance
	seed[1].Priority = model.PriorityHigh
	for i, task := range seed {
		created, err := s.CreateTask(ctx, task)
		if err != nil {
			t.Fatalf("CreateTask %d: %v", i, err)
		}
		seed[i] = created
	}
	if err := s.ToggleTask(ctx, seed[2].ID); err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}

	date := "2025-03-10"
	health := model.CategoryHealth
	high := model.PriorityHigh
	done := true
	query := "budget"
	from := "2025-03-11"

	tests := []struct {
		name   string
		filter store.TaskFilter
		want   int
	}{
		{"by date", store.TaskFilter{Date: &date}, 2},
		{"by category", store.TaskFilter{Category: &health}, 1},
		{"by priority", store.TaskFilter{Priority: &high}, 1},
		{"by completed", store.TaskFilter{Completed: &done}, 1},
		{"by text", store.TaskFilter{Query: &query}, 1},
		{"date range", store.TaskFilter{DateFrom: &from}, 1},
		{"no filter", store.TaskFilter{}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := s.GetTasks(ctx, tt.filter)
			if err != nil {
				t.Fatalf("GetTasks: %v", err)
			}
			if len(tasks) != tt.want {
				t.Errorf("got %d tasks, want %d", len(tasks), tt.want)
			}

			count, err := s.CountTasks(ctx, tt.filter)
			if err != nil {
				t.Fatalf("CountTasks: %v", err)
			}
			if count != tt.want {
				t.Errorf("count = %d, want %d", count, tt.want)
			}
		})
	}
}

func TestTaskExtrasRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	task := newTask("Project kickoff", "2025-03-10")
	task.Subtasks = []model.Subtask{
		{ID: "s1", Title: "Book room"},
		{ID: "s2", Title: "Send invites", Completed: true},
	}
	task.Recurring = &model.Recurrence{Frequency: model.FrequencyWeekly, EndsOn: "2025-06-01"}
	task.ChecklistIDs = []string{"cl-1"}

	created, err := s.CreateTask(ctx, task)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	got, err := s.GetTaskByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTaskByID: %v", err)
	}
	if len(got.Subtasks) != 2 || got.Subtasks[1].Title != "Send invites" || !got.Subtasks[1].Completed {
		t.Errorf("subtasks = %+v", got.Subtasks)
	}
	if got.Recurring == nil || got.Recurring.Frequency != model.FrequencyWeekly || got.Recurring.EndsOn != "2025-06-01" {
		t.Errorf("recurring = %+v", got.Recurring)
	}
	if len(got.ChecklistIDs) != 1 || got.ChecklistIDs[0] != "cl-1" {
		t.Errorf("checklist ids = %v", got.ChecklistIDs)
	}
}

func TestClearCompletedTasks(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	a, _ := s.CreateTask(ctx, newTask("a", "2025-03-10"))
	b, _ := s.CreateTask(ctx, newTask("b", "2025-03-10"))
	if _, err := s.CreateTask(ctx, newTask("c", "2025-03-10")); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	s.ToggleTask(ctx, a.ID)
	s.ToggleTask(ctx, b.ID)

	removed, err := s.ClearCompletedTasks(ctx)
	if err != nil {
		t.Fatalf("ClearCompletedTasks: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	remaining, _ := s.GetTasks(ctx, store.TaskFilter{})
	if len(remaining) != 1 {
		t.Errorf("remaining = %d, want 1", len(remaining))
	}
}
