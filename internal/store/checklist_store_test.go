package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
	"github.com/nhle/lifeos/tests/testutil"
)

func newItem(title string, freq model.Frequency, order int) model.ChecklistItem {
	return model.ChecklistItem{
		Title:     title,
		Category:  model.CategoryHealth,
		Frequency: freq,
		SortOrder: order,
	}
}

func mustAdd(t *testing.T, s *store.SQLiteStore, item model.ChecklistItem) model.ChecklistItem {
	t.Helper()
	added, err := s.AddChecklistItem(context.Background(), item)
	if err != nil {
		t.Fatalf("AddChecklistItem: %v", err)
	}
	return added
}

func TestDeleteChecklistItemIgnoresTemplateFlag(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	item := newItem("Drink water", model.FrequencyDaily, 1)
	item.IsTemplate = true
	added := mustAdd(t, s, item)

	// Template protection is a UI concern; the store deletes anything.
	if err := s.DeleteChecklistItem(ctx, added.ID); err != nil {
		t.Fatalf("DeleteChecklistItem: %v", err)
	}
	if _, err := s.GetChecklistItemByID(ctx, added.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("item still present after delete: %v", err)
	}
}

func TestChecklistItemImmutableFields(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	added := mustAdd(t, s, newItem("Drink water", model.FrequencyDaily, 1))

	added.Title = "Drink more water"
	added.Category = model.CategoryWork
	added.Frequency = model.FrequencyYearly
	if err := s.UpdateChecklistItem(ctx, added); err != nil {
		t.Fatalf("UpdateChecklistItem: %v", err)
	}

	got, err := s.GetChecklistItemByID(ctx, added.ID)
	if err != nil {
		t.Fatalf("GetChecklistItemByID: %v", err)
	}
	if got.Title != "Drink more water" {
		t.Errorf("title = %q, want updated title", got.Title)
	}
	if got.Category != model.CategoryHealth || got.Frequency != model.FrequencyDaily {
		t.Errorf("category/frequency changed: %s/%s", got.Category, got.Frequency)
	}
}

func TestToggleChecklistItem(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	added := mustAdd(t, s, newItem("Meditate", model.FrequencyDaily, 1))

	toggled, err := s.ToggleChecklistItem(ctx, added.ID)
	if err != nil {
		t.Fatalf("ToggleChecklistItem: %v", err)
	}
	if !toggled.Completed || toggled.CompletedAt == nil {
		t.Errorf("toggled = %+v, want completed with timestamp", toggled)
	}

	toggled, err = s.ToggleChecklistItem(ctx, added.ID)
	if err != nil {
		t.Fatalf("ToggleChecklistItem: %v", err)
	}
	if toggled.Completed || toggled.CompletedAt != nil {
		t.Errorf("toggled = %+v, want pending with no timestamp", toggled)
	}
}

func TestChecklistProgress(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	a := mustAdd(t, s, newItem("a", model.FrequencyDaily, 1))
	b := mustAdd(t, s, newItem("b", model.FrequencyDaily, 2))
	mustAdd(t, s, newItem("c", model.FrequencyDaily, 3))
	mustAdd(t, s, newItem("w", model.FrequencyWeekly, 1))

	s.ToggleChecklistItem(ctx, a.ID)
	s.ToggleChecklistItem(ctx, b.ID)

	progress, err := s.ChecklistProgress(ctx, model.FrequencyDaily, "")
	if err != nil {
		t.Fatalf("ChecklistProgress: %v", err)
	}
	if progress.Completed != 2 || progress.Total != 3 || progress.Percentage != 67 {
		t.Errorf("progress = %+v, want 2/3 at 67%%", progress)
	}

	overall, err := s.OverallChecklistProgress(ctx)
	if err != nil {
		t.Fatalf("OverallChecklistProgress: %v", err)
	}
	if overall.Completed != 2 || overall.Total != 4 || overall.Percentage != 50 {
		t.Errorf("overall = %+v, want 2/4 at 50%%", overall)
	}

	empty, err := s.ChecklistProgress(ctx, model.FrequencyMonthly, "")
	if err != nil {
		t.Fatalf("ChecklistProgress: %v", err)
	}
	if empty.Percentage != 0 {
		t.Errorf("empty tier percentage = %d, want 0", empty.Percentage)
	}
}

func TestReorderChecklistItems(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	a := mustAdd(t, s, newItem("first", model.FrequencyDaily, 1))
	b := mustAdd(t, s, newItem("second", model.FrequencyDaily, 2))
	c := mustAdd(t, s, newItem("third", model.FrequencyDaily, 3))

	if err := s.ReorderChecklistItems(ctx, model.FrequencyDaily, []string{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("ReorderChecklistItems: %v", err)
	}

	freq := model.FrequencyDaily
	items, err := s.GetChecklistItems(ctx, store.ChecklistFilter{Frequency: &freq})
	if err != nil {
		t.Fatalf("GetChecklistItems: %v", err)
	}
	want := []string{"third", "first", "second"}
	for i, item := range items {
		if item.Title != want[i] {
			t.Errorf("items[%d] = %q, want %q", i, item.Title, want[i])
		}
	}
}

func TestResetChecklistTier(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	daily := mustAdd(t, s, newItem("daily", model.FrequencyDaily, 1))
	weekly := mustAdd(t, s, newItem("weekly", model.FrequencyWeekly, 1))
	s.ToggleChecklistItem(ctx, daily.ID)
	s.ToggleChecklistItem(ctx, weekly.ID)

	before, err := s.GetResetTimestamps(ctx)
	if err != nil {
		t.Fatalf("GetResetTimestamps: %v", err)
	}
	if !before.LastDailyReset.IsZero() {
		t.Error("expected zero daily reset before any reset")
	}

	now := time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)
	if err := s.ResetChecklistTier(ctx, model.FrequencyDaily, now); err != nil {
		t.Fatalf("ResetChecklistTier: %v", err)
	}

	got, _ := s.GetChecklistItemByID(ctx, daily.ID)
	if got.Completed || got.CompletedAt != nil {
		t.Errorf("daily item not cleared: %+v", got)
	}
	other, _ := s.GetChecklistItemByID(ctx, weekly.ID)
	if !other.Completed {
		t.Error("weekly item should be untouched by a daily reset")
	}

	after, _ := s.GetResetTimestamps(ctx)
	if !after.LastDailyReset.Equal(now) {
		t.Errorf("daily reset = %v, want %v", after.LastDailyReset, now)
	}
	if !after.LastWeeklyReset.IsZero() {
		t.Error("weekly reset should still be zero")
	}
}

func TestUpdateChecklistStreakStartsAtOne(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	a := mustAdd(t, s, newItem("a", model.FrequencyDaily, 1))
	s.ToggleChecklistItem(ctx, a.ID)

	now := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	streak, err := s.UpdateChecklistStreak(ctx, now)
	if err != nil {
		t.Fatalf("UpdateChecklistStreak: %v", err)
	}
	if streak.Current != 1 || streak.Longest != 1 || streak.TotalDaysCompleted != 1 {
		t.Errorf("streak = %+v, want 1/1/1", streak)
	}
	if streak.LastCompletedDate != "2025-03-10" {
		t.Errorf("last completed = %q", streak.LastCompletedDate)
	}
}

func TestUpdateChecklistStreakContinues(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	a := mustAdd(t, s, newItem("a", model.FrequencyDaily, 1))
	s.ToggleChecklistItem(ctx, a.ID)

	// Day one: everything complete, snapshot, then advance a day.
	day1 := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	if _, err := s.UpdateChecklistStreak(ctx, day1); err != nil {
		t.Fatalf("UpdateChecklistStreak day1: %v", err)
	}
	if _, err := s.RecordDailyCompletion(ctx, day1); err != nil {
		t.Fatalf("RecordDailyCompletion: %v", err)
	}

	day2 := day1.AddDate(0, 0, 1)
	streak, err := s.UpdateChecklistStreak(ctx, day2)
	if err != nil {
		t.Fatalf("UpdateChecklistStreak day2: %v", err)
	}
	if streak.Current != 2 || streak.Longest != 2 || streak.TotalDaysCompleted != 2 {
		t.Errorf("streak = %+v, want 2/2/2", streak)
	}

	// Re-running on the same day must not double-credit.
	streak, err = s.UpdateChecklistStreak(ctx, day2)
	if err != nil {
		t.Fatalf("UpdateChecklistStreak repeat: %v", err)
	}
	if streak.Current != 2 || streak.TotalDaysCompleted != 2 {
		t.Errorf("repeat streak = %+v, want unchanged", streak)
	}
}

func TestUpdateChecklistStreakBreaks(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	a := mustAdd(t, s, newItem("a", model.FrequencyDaily, 1))
	b := mustAdd(t, s, newItem("b", model.FrequencyDaily, 2))

	// Build a 2-day streak.
	s.ToggleChecklistItem(ctx, a.ID)
	s.ToggleChecklistItem(ctx, b.ID)
	day1 := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	s.UpdateChecklistStreak(ctx, day1)
	s.RecordDailyCompletion(ctx, day1)
	day2 := day1.AddDate(0, 0, 1)
	s.UpdateChecklistStreak(ctx, day2)
	s.RecordDailyCompletion(ctx, day2)

	// Day three: one item left undone, record the partial day.
	s.ToggleChecklistItem(ctx, b.ID)
	day3 := day1.AddDate(0, 0, 2)
	s.RecordDailyCompletion(ctx, day3)

	// Day four: everything complete again. Yesterday was partial, so
	// the streak restarts at 1 but the longest streak is kept.
	s.ToggleChecklistItem(ctx, b.ID)
	day4 := day1.AddDate(0, 0, 3)
	streak, err := s.UpdateChecklistStreak(ctx, day4)
	if err != nil {
		t.Fatalf("UpdateChecklistStreak day4: %v", err)
	}
	if streak.Current != 1 {
		t.Errorf("current = %d, want 1", streak.Current)
	}
	if streak.Longest != 2 {
		t.Errorf("longest = %d, want 2", streak.Longest)
	}
}

func TestUpdateChecklistStreakIncompleteDayNoChange(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	mustAdd(t, s, newItem("a", model.FrequencyDaily, 1))

	streak, err := s.UpdateChecklistStreak(ctx, time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("UpdateChecklistStreak: %v", err)
	}
	if streak.Current != 0 || streak.TotalDaysCompleted != 0 {
		t.Errorf("streak = %+v, want untouched", streak)
	}
}

func TestRecordDailyCompletionUpserts(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	a := mustAdd(t, s, newItem("a", model.FrequencyDaily, 1))
	mustAdd(t, s, newItem("b", model.FrequencyDaily, 2))

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	record, err := s.RecordDailyCompletion(ctx, now)
	if err != nil {
		t.Fatalf("RecordDailyCompletion: %v", err)
	}
	if record.Percentage != 0 {
		t.Errorf("percentage = %d, want 0", record.Percentage)
	}

	s.ToggleChecklistItem(ctx, a.ID)
	record, err = s.RecordDailyCompletion(ctx, now)
	if err != nil {
		t.Fatalf("RecordDailyCompletion: %v", err)
	}
	if record.Percentage != 50 {
		t.Errorf("percentage = %d, want 50", record.Percentage)
	}

	history, err := s.GetCompletionHistory(ctx)
	if err != nil {
		t.Fatalf("GetCompletionHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1 (upsert)", len(history))
	}
	if history[0].Completed != 1 || history[0].Total != 2 {
		t.Errorf("history[0] = %+v", history[0])
	}

	heat, err := s.CompletionHistoryMap(ctx)
	if err != nil {
		t.Fatalf("CompletionHistoryMap: %v", err)
	}
	if heat["2025-03-10"] != 50 {
		t.Errorf("heat = %v", heat)
	}
}

func TestCompletionHistoryPrunes(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	mustAdd(t, s, newItem("a", model.FrequencyDaily, 1))

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < model.CompletionHistoryCap+10; i++ {
		if _, err := s.RecordDailyCompletion(ctx, start.AddDate(0, 0, i)); err != nil {
			t.Fatalf("RecordDailyCompletion %d: %v", i, err)
		}
	}

	history, err := s.GetCompletionHistory(ctx)
	if err != nil {
		t.Fatalf("GetCompletionHistory: %v", err)
	}
	if len(history) != model.CompletionHistoryCap {
		t.Fatalf("history length = %d, want %d", len(history), model.CompletionHistoryCap)
	}
	// Newest first; the oldest ten dates must be gone.
	newest := start.AddDate(0, 0, model.CompletionHistoryCap+9).Format(model.DateLayout)
	if history[0].Date != newest {
		t.Errorf("history[0].Date = %s, want %s", history[0].Date, newest)
	}
}

func TestRestoreChecklistData(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	mustAdd(t, s, newItem("old", model.FrequencyDaily, 1))

	items := []model.ChecklistItem{
		newItem("restored", model.FrequencyDaily, 1),
	}
	streak := model.ChecklistStreak{Current: 3, Longest: 7, LastCompletedDate: "2025-03-09", TotalDaysCompleted: 40}
	ts := model.ResetTimestamps{LastDailyReset: time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)}
	history := []model.DailyCompletionRecord{
		{Date: "2025-03-09", Completed: 1, Total: 1, Percentage: 100},
	}

	if err := s.RestoreChecklistData(ctx, items, streak, ts, history); err != nil {
		t.Fatalf("RestoreChecklistData: %v", err)
	}

	got, err := s.GetChecklistItems(ctx, store.ChecklistFilter{})
	if err != nil {
		t.Fatalf("GetChecklistItems: %v", err)
	}
	if len(got) != 1 || got[0].Title != "restored" {
		t.Errorf("items = %+v", got)
	}

	gotStreak, _ := s.GetChecklistStreak(ctx)
	if gotStreak != streak {
		t.Errorf("streak = %+v, want %+v", gotStreak, streak)
	}

	gotTS, _ := s.GetResetTimestamps(ctx)
	if !gotTS.LastDailyReset.Equal(ts.LastDailyReset) || !gotTS.LastWeeklyReset.IsZero() {
		t.Errorf("timestamps = %+v", gotTS)
	}

	gotHistory, _ := s.GetCompletionHistory(ctx)
	if len(gotHistory) != 1 || gotHistory[0].Percentage != 100 {
		t.Errorf("history = %+v", gotHistory)
	}

	initialized, _ := s.IsChecklistInitialized(ctx)
	if !initialized {
		t.Error("restore should mark the checklist initialized")
	}
}

func TestClearChecklistData(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	a := mustAdd(t, s, newItem("a", model.FrequencyDaily, 1))
	s.ToggleChecklistItem(ctx, a.ID)
	s.UpdateChecklistStreak(ctx, time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC))
	s.RecordDailyCompletion(ctx, time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC))
	s.SetChecklistInitialized(ctx, true)

	if err := s.ClearChecklistData(ctx); err != nil {
		t.Fatalf("ClearChecklistData: %v", err)
	}

	items, _ := s.GetChecklistItems(ctx, store.ChecklistFilter{})
	if len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
	streak, _ := s.GetChecklistStreak(ctx)
	if streak.Current != 0 || streak.TotalDaysCompleted != 0 {
		t.Errorf("streak = %+v, want zeroed", streak)
	}
	history, _ := s.GetCompletionHistory(ctx)
	if len(history) != 0 {
		t.Errorf("history = %d, want 0", len(history))
	}
	initialized, _ := s.IsChecklistInitialized(ctx)
	if initialized {
		t.Error("initialized flag should be cleared")
	}
}
