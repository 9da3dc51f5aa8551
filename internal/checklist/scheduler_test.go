package checklist_test

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/lifeos/internal/checklist"
	"github.com/nhle/lifeos/internal/events"
	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
	"github.com/nhle/lifeos/tests/testutil"
)

func TestResetPredicates(t *testing.T) {
	monday := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC)
	firstOfMonth := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	newYear := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		fn   func(last, now time.Time) bool
		last time.Time
		now  time.Time
		want bool
	}{
		{"daily never reset", checklist.ShouldResetDaily, time.Time{}, monday, true},
		{"daily reset yesterday", checklist.ShouldResetDaily, monday.AddDate(0, 0, -1), monday, true},
		{"daily reset today", checklist.ShouldResetDaily, monday.Add(-2 * time.Hour), monday, false},
		{"daily across year boundary", checklist.ShouldResetDaily,
			time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), newYear, true},
		{"weekly on sunday", checklist.ShouldResetWeekly, sunday.AddDate(0, 0, -7), sunday, true},
		{"weekly not sunday", checklist.ShouldResetWeekly, monday.AddDate(0, 0, -7), monday, false},
		{"weekly already reset today", checklist.ShouldResetWeekly, sunday.Add(-time.Hour), sunday, false},
		{"monthly on the first", checklist.ShouldResetMonthly, monday, firstOfMonth, true},
		{"monthly mid-month", checklist.ShouldResetMonthly, time.Time{}, monday, false},
		{"yearly on jan first", checklist.ShouldResetYearly, monday, newYear, true},
		{"yearly on other first", checklist.ShouldResetYearly, monday, firstOfMonth, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.last, tt.now); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func seedTier(t *testing.T, s *store.SQLiteStore, freq model.Frequency, titles ...string) []model.ChecklistItem {
	t.Helper()
	items := make([]model.ChecklistItem, 0, len(titles))
	for i, title := range titles {
		added, err := s.AddChecklistItem(context.Background(), model.ChecklistItem{
			Title:     title,
			Category:  model.CategoryHealth,
			Frequency: freq,
			SortOrder: i + 1,
		})
		if err != nil {
			t.Fatalf("AddChecklistItem: %v", err)
		}
		items = append(items, added)
	}
	return items
}

func TestCheckNowDailyPath(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	sched := checklist.NewScheduler(s, nil)

	items := seedTier(t, s, model.FrequencyDaily, "Stretch", "Hydrate")
	for _, item := range items {
		if _, err := s.ToggleChecklistItem(ctx, item.ID); err != nil {
			t.Fatalf("ToggleChecklistItem: %v", err)
		}
	}

	// A Monday mid-month: only the daily boundary applies.
	monday := time.Date(2025, 3, 10, 0, 5, 0, 0, time.UTC)
	if err := sched.CheckNow(ctx, monday); err != nil {
		t.Fatalf("CheckNow: %v", err)
	}

	streak, err := s.GetChecklistStreak(ctx)
	if err != nil {
		t.Fatalf("GetChecklistStreak: %v", err)
	}
	if streak.Current != 1 {
		t.Errorf("streak = %d, want 1 after a fully completed day", streak.Current)
	}

	remaining, err := s.GetChecklistItems(ctx, store.ChecklistFilter{})
	if err != nil {
		t.Fatalf("GetChecklistItems: %v", err)
	}
	for _, item := range remaining {
		if item.Completed {
			t.Errorf("item %q still completed after daily reset", item.Title)
		}
	}

	history, err := s.CompletionHistoryMap(ctx)
	if err != nil {
		t.Fatalf("CompletionHistoryMap: %v", err)
	}
	if pct, ok := history["2025-03-10"]; !ok || pct != 0 {
		t.Errorf("history[2025-03-10] = %d, %v; want fresh 0%% record", pct, ok)
	}

	ts, err := s.GetResetTimestamps(ctx)
	if err != nil {
		t.Fatalf("GetResetTimestamps: %v", err)
	}
	if ts.LastDailyReset.IsZero() {
		t.Error("daily reset timestamp not stamped")
	}
	if !ts.LastWeeklyReset.IsZero() || !ts.LastMonthlyReset.IsZero() {
		t.Error("weekly/monthly reset ran on a mid-month Monday")
	}
}

func TestCheckNowSameDayIsNoOp(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	sched := checklist.NewScheduler(s, nil)

	items := seedTier(t, s, model.FrequencyDaily, "Stretch")
	monday := time.Date(2025, 3, 10, 0, 5, 0, 0, time.UTC)
	if err := sched.CheckNow(ctx, monday); err != nil {
		t.Fatalf("CheckNow: %v", err)
	}

	if _, err := s.ToggleChecklistItem(ctx, items[0].ID); err != nil {
		t.Fatalf("ToggleChecklistItem: %v", err)
	}
	if err := sched.CheckNow(ctx, monday.Add(6*time.Hour)); err != nil {
		t.Fatalf("CheckNow: %v", err)
	}

	got, err := s.GetChecklistItemByID(ctx, items[0].ID)
	if err != nil {
		t.Fatalf("GetChecklistItemByID: %v", err)
	}
	if !got.Completed {
		t.Error("item cleared by a second check on the same day")
	}
}

func TestCheckNowWeeklyOnSunday(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	sched := checklist.NewScheduler(s, nil)

	weekly := seedTier(t, s, model.FrequencyWeekly, "Plan the week")
	if _, err := s.ToggleChecklistItem(ctx, weekly[0].ID); err != nil {
		t.Fatalf("ToggleChecklistItem: %v", err)
	}

	sunday := time.Date(2025, 3, 9, 0, 5, 0, 0, time.UTC)
	if err := sched.CheckNow(ctx, sunday); err != nil {
		t.Fatalf("CheckNow: %v", err)
	}

	got, err := s.GetChecklistItemByID(ctx, weekly[0].ID)
	if err != nil {
		t.Fatalf("GetChecklistItemByID: %v", err)
	}
	if got.Completed {
		t.Error("weekly item not cleared on Sunday")
	}

	ts, err := s.GetResetTimestamps(ctx)
	if err != nil {
		t.Fatalf("GetResetTimestamps: %v", err)
	}
	if ts.LastWeeklyReset.IsZero() {
		t.Error("weekly reset timestamp not stamped")
	}
	if !ts.LastMonthlyReset.IsZero() || !ts.LastYearlyReset.IsZero() {
		t.Error("monthly/yearly reset ran on March 9th")
	}
}

func TestManualReset(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	sched := checklist.NewScheduler(s, nil)

	monthly := seedTier(t, s, model.FrequencyMonthly, "Pay bills")
	if _, err := s.ToggleChecklistItem(ctx, monthly[0].ID); err != nil {
		t.Fatalf("ToggleChecklistItem: %v", err)
	}

	midMonth := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	if err := sched.ManualReset(ctx, model.FrequencyMonthly, midMonth); err != nil {
		t.Fatalf("ManualReset: %v", err)
	}

	got, err := s.GetChecklistItemByID(ctx, monthly[0].ID)
	if err != nil {
		t.Fatalf("GetChecklistItemByID: %v", err)
	}
	if got.Completed {
		t.Error("monthly item not cleared by manual reset")
	}
}

func TestManualResetPublishesTierReset(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	bus := events.NewBus()
	defer bus.Close()
	sub := bus.Subscribe()

	sched := checklist.NewScheduler(s, bus)
	midMonth := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	if err := sched.ManualReset(ctx, model.FrequencyWeekly, midMonth); err != nil {
		t.Fatalf("ManualReset: %v", err)
	}

	select {
	case ev := <-sub:
		reset, ok := ev.(events.TierReset)
		if !ok {
			t.Fatalf("event = %T, want TierReset", ev)
		}
		if reset.Frequency != model.FrequencyWeekly {
			t.Errorf("frequency = %s, want weekly", reset.Frequency)
		}
	case <-time.After(time.Second):
		t.Fatal("no event published for the reset")
	}
}

func TestSchedulerSnapshotsOnToggle(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	bus := events.NewBus()
	defer bus.Close()
	s.SetEventBus(bus)

	items := seedTier(t, s, model.FrequencyDaily, "Stretch", "Hydrate")

	sched := checklist.NewScheduler(s, bus)
	// Stamp today's boundaries first so the startup check is a no-op
	// and cannot clear the toggle below.
	if err := sched.CheckNow(ctx, time.Now()); err != nil {
		t.Fatalf("CheckNow: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if _, err := s.ToggleChecklistItem(ctx, items[0].ID); err != nil {
		t.Fatalf("ToggleChecklistItem: %v", err)
	}

	today := time.Now().Format(model.DateLayout)
	deadline := time.After(2 * time.Second)
	for {
		history, err := s.CompletionHistoryMap(ctx)
		if err != nil {
			t.Fatalf("CompletionHistoryMap: %v", err)
		}
		if history[today] == 50 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("history[%s] = %d, want 50", today, history[today])
		case <-time.After(20 * time.Millisecond):
		}
	}
}
