package backup_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nhle/lifeos/internal/backup"
	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
	"github.com/nhle/lifeos/tests/testutil"
)

func seedStore(t *testing.T, s *store.SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.CreateTask(ctx, model.Task{
		Title:     "Write weekly plan",
		Date:      "2025-03-10",
		StartTime: "09:00",
		EndTime:   "10:00",
		Category:  model.CategoryWork,
		Priority:  model.PriorityMedium,
	}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if _, err := s.CreateCheckIn(ctx, model.CheckIn{
		Date:   "2025-03-10",
		Mood:   model.MoodCalm,
		Energy: 7,
		Focus:  4,
	}); err != nil {
		t.Fatalf("CreateCheckIn: %v", err)
	}

	if _, err := s.AddChecklistItem(ctx, model.ChecklistItem{
		Title:     "Meditate",
		Category:  model.CategoryHealth,
		Frequency: model.FrequencyDaily,
		SortOrder: 1,
	}); err != nil {
		t.Fatalf("AddChecklistItem: %v", err)
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)
	if got := backup.Filename(now); got != "lifeos-backup-2025-03-10.json" {
		t.Errorf("Filename = %q", got)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := testutil.NewTestStore(t)
	seedStore(t, src)
	ctx := context.Background()

	cfg := model.DefaultAppConfig()
	cfg.Tasks.DefaultDurationMin = 45

	path := filepath.Join(t.TempDir(), backup.Filename(time.Now()))
	now := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)
	if err := backup.WriteFile(ctx, src, cfg, path, now); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	dst := testutil.NewTestStore(t)
	dstCfg := model.DefaultAppConfig()
	result, err := backup.ImportFile(ctx, dst, dstCfg, path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}

	if result.TasksAdded != 1 || result.TasksSkipped != 0 {
		t.Errorf("tasks added/skipped = %d/%d", result.TasksAdded, result.TasksSkipped)
	}
	if result.CheckInsAdded != 1 {
		t.Errorf("check-ins added = %d", result.CheckInsAdded)
	}
	if !result.ChecklistReplaced {
		t.Error("checklist section not applied")
	}
	if !result.SettingsApplied || dstCfg.Tasks.DefaultDurationMin != 45 {
		t.Errorf("settings not applied: %+v", dstCfg.Tasks)
	}

	tasks, err := dst.GetTasks(ctx, store.TaskFilter{})
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Write weekly plan" {
		t.Errorf("tasks after import: %+v", tasks)
	}
	if _, err := dst.GetCheckInByDate(ctx, "2025-03-10"); err != nil {
		t.Errorf("check-in missing after import: %v", err)
	}
	items, err := dst.GetChecklistItems(ctx, store.ChecklistFilter{})
	if err != nil {
		t.Fatalf("GetChecklistItems: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Meditate" {
		t.Errorf("checklist after import: %+v", items)
	}
}

func TestImportMergesByIdentity(t *testing.T) {
	s := testutil.NewTestStore(t)
	seedStore(t, s)
	ctx := context.Background()

	snap, err := backup.Export(ctx, s, model.DefaultAppConfig(), time.Now())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	snap.Tasks = append(snap.Tasks, model.Task{
		Title:     "New from backup",
		Date:      "2025-03-11",
		StartTime: "14:00",
		EndTime:   "15:00",
		Category:  model.CategoryPersonalGrowth,
		Priority:  model.PriorityLow,
	})
	snap.CheckIns = append(snap.CheckIns, model.CheckIn{
		Date:   "2025-03-11",
		Mood:   model.MoodHappy,
		Energy: 8,
		Focus:  4,
	})

	// Importing into the same store: existing records skip, new ones add.
	result, err := backup.Import(ctx, s, nil, snap)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.TasksAdded != 1 || result.TasksSkipped != 1 {
		t.Errorf("tasks added/skipped = %d/%d, want 1/1", result.TasksAdded, result.TasksSkipped)
	}
	if result.CheckInsAdded != 1 || result.CheckInsSkipped != 1 {
		t.Errorf("check-ins added/skipped = %d/%d, want 1/1", result.CheckInsAdded, result.CheckInsSkipped)
	}
	if result.SettingsApplied {
		t.Error("settings applied with nil config")
	}
}

func TestImportReplacesChecklistOutright(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if _, err := s.AddChecklistItem(ctx, model.ChecklistItem{
		Title:     "Old item",
		Category:  model.CategoryWork,
		Frequency: model.FrequencyWeekly,
		SortOrder: 1,
	}); err != nil {
		t.Fatalf("AddChecklistItem: %v", err)
	}

	snap := &backup.Snapshot{
		Version:    backup.FormatVersion,
		ExportDate: time.Now().UTC(),
		Checklists: &backup.ChecklistSection{
			Items: []model.ChecklistItem{{
				ID:        "restored-1",
				Title:     "Restored item",
				Category:  model.CategoryHealth,
				Frequency: model.FrequencyDaily,
				SortOrder: 1,
			}},
			Streak: model.ChecklistStreak{Current: 4, Longest: 9, LastCompletedDate: "2025-03-09"},
			CompletionHistory: []model.DailyCompletionRecord{
				{Date: "2025-03-09", Completed: 1, Total: 1, Percentage: 100},
			},
		},
	}

	if _, err := backup.Import(ctx, s, nil, snap); err != nil {
		t.Fatalf("Import: %v", err)
	}

	items, err := s.GetChecklistItems(ctx, store.ChecklistFilter{})
	if err != nil {
		t.Fatalf("GetChecklistItems: %v", err)
	}
	if len(items) != 1 || items[0].ID != "restored-1" {
		t.Errorf("checklist after import: %+v", items)
	}
	streak, err := s.GetChecklistStreak(ctx)
	if err != nil {
		t.Fatalf("GetChecklistStreak: %v", err)
	}
	if streak.Current != 4 || streak.Longest != 9 {
		t.Errorf("streak after import: %+v", streak)
	}
}

func TestImportIsAtomic(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	existing, err := s.AddChecklistItem(ctx, model.ChecklistItem{
		Title:     "Keep me",
		Category:  model.CategoryWork,
		Frequency: model.FrequencyDaily,
		SortOrder: 1,
	})
	if err != nil {
		t.Fatalf("AddChecklistItem: %v", err)
	}

	// The duplicated checklist item ID passes validation but violates
	// the primary key, failing the apply after the tasks were staged.
	snap := &backup.Snapshot{
		Version:    backup.FormatVersion,
		ExportDate: time.Now().UTC(),
		Tasks: []model.Task{{
			Title:     "Should not survive",
			Date:      "2025-03-10",
			StartTime: "09:00",
			EndTime:   "10:00",
			Category:  model.CategoryWork,
			Priority:  model.PriorityMedium,
		}},
		CheckIns: []model.CheckIn{{
			Date:   "2025-03-10",
			Mood:   model.MoodCalm,
			Energy: 6,
			Focus:  3,
		}},
		Checklists: &backup.ChecklistSection{
			Items: []model.ChecklistItem{
				{ID: "dup", Title: "First", Category: model.CategoryHealth,
					Frequency: model.FrequencyDaily, SortOrder: 1},
				{ID: "dup", Title: "Second", Category: model.CategoryHealth,
					Frequency: model.FrequencyDaily, SortOrder: 2},
			},
		},
	}

	if _, err := backup.Import(ctx, s, nil, snap); err == nil {
		t.Fatal("expected import to fail on the duplicate checklist ID")
	}

	tasks, err := s.GetTasks(ctx, store.TaskFilter{})
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("%d tasks persisted after failed import", len(tasks))
	}
	if _, err := s.GetCheckInByDate(ctx, "2025-03-10"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("check-in persisted after failed import: %v", err)
	}
	items, err := s.GetChecklistItems(ctx, store.ChecklistFilter{})
	if err != nil {
		t.Fatalf("GetChecklistItems: %v", err)
	}
	if len(items) != 1 || items[0].ID != existing.ID {
		t.Errorf("checklist changed by failed import: %+v", items)
	}
}

func TestReadFileRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}
		return path
	}

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"not json", "not a backup", backup.ErrInvalidBackup},
		{"missing version", `{"exportDate":"2025-03-10T00:00:00Z"}`, backup.ErrInvalidBackup},
		{"unsupported version", `{"version":"9.0.0","exportDate":"2025-03-10T00:00:00Z"}`, backup.ErrUnsupportedFormat},
		{"invalid task", `{"version":"1.0.0","exportDate":"2025-03-10T00:00:00Z",` +
			`"tasks":[{"title":"","date":"2025-03-10"}]}`, backup.ErrInvalidBackup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := write("bad.json", tt.content)
			if _, err := backup.ReadFile(path); !errors.Is(err, tt.want) {
				t.Errorf("ReadFile error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestImportValidatesBeforeTouchingStore(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	snap := &backup.Snapshot{
		Version:    backup.FormatVersion,
		ExportDate: time.Now().UTC(),
		Tasks: []model.Task{
			{Title: "Valid", Date: "2025-03-10", StartTime: "09:00", EndTime: "10:00",
				Category: model.CategoryWork, Priority: model.PriorityMedium},
			{Title: "", Date: "2025-03-11"},
		},
	}

	if _, err := backup.Import(ctx, s, nil, snap); !errors.Is(err, backup.ErrInvalidBackup) {
		t.Fatalf("Import error = %v, want ErrInvalidBackup", err)
	}

	tasks, err := s.GetTasks(ctx, store.TaskFilter{})
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("%d tasks written by a rejected import", len(tasks))
	}
}
