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

func newCheckIn(date string) model.CheckIn {
	return model.CheckIn{
		Date:   date,
		Mood:   model.MoodCalm,
		Energy: 7,
		Focus:  4,
	}
}

func mustCheckIn(t *testing.T, s *store.SQLiteStore, c model.CheckIn) model.CheckIn {
	t.Helper()
	created, err := s.CreateCheckIn(context.Background(), c)
	if err != nil {
		t.Fatalf("CreateCheckIn(%s): %v", c.Date, err)
	}
	return created
}

func TestCreateCheckInAssignsDefaults(t *testing.T) {
	s := testutil.NewTestStore(t)

	created := mustCheckIn(t, s, newCheckIn("2025-03-10"))
	if created.ID == "" {
		t.Error("ID not assigned")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped")
	}
}

func TestCreateCheckInValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.CheckIn)
	}{
		{"bad date", func(c *model.CheckIn) { c.Date = "10/03/2025" }},
		{"bad mood", func(c *model.CheckIn) { c.Mood = "ecstatic" }},
		{"energy out of range", func(c *model.CheckIn) { c.Energy = 11 }},
		{"focus out of range", func(c *model.CheckIn) { c.Focus = 0 }},
		{"bad sleep quality", func(c *model.CheckIn) { c.SleepQuality = 6 }},
		{"bad time of day", func(c *model.CheckIn) { c.TimeOfDay = "noon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testutil.NewTestStore(t)
			c := newCheckIn("2025-03-10")
			tt.mutate(&c)
			if _, err := s.CreateCheckIn(context.Background(), c); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreateCheckInDuplicateDate(t *testing.T) {
	s := testutil.NewTestStore(t)

	mustCheckIn(t, s, newCheckIn("2025-03-10"))
	if _, err := s.CreateCheckIn(context.Background(), newCheckIn("2025-03-10")); err == nil {
		t.Error("expected error for duplicate date")
	}
}

func TestGetCheckInByDate(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	created := mustCheckIn(t, s, model.CheckIn{
		Date:       "2025-03-10",
		Mood:       model.MoodProductive,
		Energy:     8,
		Focus:      5,
		Reflection: "Shipped the release",
		Gratitude:  []string{"coffee", "quiet morning"},
		Activities: []string{"deep-work", "exercise"},
	})

	got, err := s.GetCheckInByDate(ctx, "2025-03-10")
	if err != nil {
		t.Fatalf("GetCheckInByDate: %v", err)
	}
	if got.ID != created.ID || got.Mood != model.MoodProductive {
		t.Errorf("got %+v", got)
	}
	if len(got.Gratitude) != 2 || got.Gratitude[0] != "coffee" {
		t.Errorf("gratitude = %v", got.Gratitude)
	}
	if len(got.Activities) != 2 || got.Activities[1] != "exercise" {
		t.Errorf("activities = %v", got.Activities)
	}

	if _, err := s.GetCheckInByDate(ctx, "2025-03-11"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing date error = %v, want ErrNotFound", err)
	}
}

func TestUpdateCheckIn(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	created := mustCheckIn(t, s, newCheckIn("2025-03-10"))

	created.Mood = model.MoodTired
	created.Energy = 3
	created.Reflection = "Long day"
	if err := s.UpdateCheckIn(ctx, created); err != nil {
		t.Fatalf("UpdateCheckIn: %v", err)
	}

	got, err := s.GetCheckInByDate(ctx, "2025-03-10")
	if err != nil {
		t.Fatalf("GetCheckInByDate: %v", err)
	}
	if got.Mood != model.MoodTired || got.Energy != 3 || got.Reflection != "Long day" {
		t.Errorf("got %+v after update", got)
	}

	missing := newCheckIn("2025-03-11")
	missing.ID = "nope"
	if err := s.UpdateCheckIn(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("updating unknown ID = %v, want ErrNotFound", err)
	}
}

func TestGetCheckInsWindowAndLimit(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, date := range []string{"2025-03-08", "2025-03-09", "2025-03-10", "2025-03-11"} {
		mustCheckIn(t, s, newCheckIn(date))
	}

	from, to := "2025-03-09", "2025-03-11"
	got, err := s.GetCheckIns(ctx, store.CheckInFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		t.Fatalf("GetCheckIns: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d check-ins, want 3", len(got))
	}
	if got[0].Date != "2025-03-11" || got[2].Date != "2025-03-09" {
		t.Errorf("order = %s..%s, want newest first", got[0].Date, got[2].Date)
	}

	limited, err := s.GetCheckIns(ctx, store.CheckInFilter{Limit: 2})
	if err != nil {
		t.Fatalf("GetCheckIns limit: %v", err)
	}
	if len(limited) != 2 || limited[0].Date != "2025-03-11" {
		t.Errorf("limited = %d entries starting %s", len(limited), limited[0].Date)
	}
}

func TestCurrentCheckInStreak(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{"empty journal", nil, 0},
		{"consecutive ending today", []string{"2025-03-08", "2025-03-09", "2025-03-10"}, 3},
		{"today missing counts from yesterday", []string{"2025-03-08", "2025-03-09"}, 2},
		{"gap breaks streak", []string{"2025-03-07", "2025-03-09", "2025-03-10"}, 2},
		{"two-day gap resets to zero", []string{"2025-03-07", "2025-03-08"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testutil.NewTestStore(t)
			for _, date := range tt.dates {
				mustCheckIn(t, s, newCheckIn(date))
			}
			got, err := s.CurrentCheckInStreak(context.Background(), now)
			if err != nil {
				t.Fatalf("CurrentCheckInStreak: %v", err)
			}
			if got != tt.want {
				t.Errorf("streak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLongestCheckInStreakRecorded(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, date := range []string{"2025-03-06", "2025-03-07", "2025-03-08"} {
		mustCheckIn(t, s, newCheckIn(date))
	}

	then := time.Date(2025, 3, 8, 20, 0, 0, 0, time.UTC)
	if _, err := s.CurrentCheckInStreak(ctx, then); err != nil {
		t.Fatalf("CurrentCheckInStreak: %v", err)
	}

	// Streak broke since; the longest stays at its high-water mark.
	later := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	current, err := s.CurrentCheckInStreak(ctx, later)
	if err != nil {
		t.Fatalf("CurrentCheckInStreak: %v", err)
	}
	if current != 0 {
		t.Errorf("current streak = %d, want 0", current)
	}

	longest, err := s.LongestCheckInStreak(ctx)
	if err != nil {
		t.Fatalf("LongestCheckInStreak: %v", err)
	}
	if longest != 3 {
		t.Errorf("longest streak = %d, want 3", longest)
	}
}

func TestStreakFreezesReplenishMonthly(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	march := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	remaining, err := s.StreakFreezesRemaining(ctx, march)
	if err != nil {
		t.Fatalf("StreakFreezesRemaining: %v", err)
	}
	if remaining != 2 {
		t.Fatalf("initial freezes = %d, want 2", remaining)
	}

	used, err := s.UseStreakFreeze(ctx, march)
	if err != nil || !used {
		t.Fatalf("UseStreakFreeze = %v, %v", used, err)
	}
	remaining, err = s.StreakFreezesRemaining(ctx, march)
	if err != nil {
		t.Fatalf("StreakFreezesRemaining: %v", err)
	}
	if remaining != 1 {
		t.Errorf("freezes after use = %d, want 1", remaining)
	}

	april := time.Date(2025, 4, 2, 12, 0, 0, 0, time.UTC)
	remaining, err = s.StreakFreezesRemaining(ctx, april)
	if err != nil {
		t.Fatalf("StreakFreezesRemaining: %v", err)
	}
	if remaining != 2 {
		t.Errorf("freezes after month rollover = %d, want 2", remaining)
	}
}

func TestUseStreakFreezeBackfillsYesterday(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	mustCheckIn(t, s, newCheckIn("2025-03-08"))

	used, err := s.UseStreakFreeze(ctx, now)
	if err != nil {
		t.Fatalf("UseStreakFreeze: %v", err)
	}
	if !used {
		t.Fatal("freeze not applied")
	}

	got, err := s.GetCheckInByDate(ctx, "2025-03-09")
	if err != nil {
		t.Fatalf("placeholder not created: %v", err)
	}
	if got.Mood != model.MoodNeutral || got.Energy != 5 || got.Focus != 3 {
		t.Errorf("placeholder = %s/%d/%d", got.Mood, got.Energy, got.Focus)
	}
	if got.Reflection != "Streak freeze used" {
		t.Errorf("placeholder reflection = %q", got.Reflection)
	}

	streak, err := s.CurrentCheckInStreak(ctx, now)
	if err != nil {
		t.Fatalf("CurrentCheckInStreak: %v", err)
	}
	if streak != 2 {
		t.Errorf("repaired streak = %d, want 2", streak)
	}
}

func TestUseStreakFreezeRefusals(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("yesterday already covered", func(t *testing.T) {
		s := testutil.NewTestStore(t)
		mustCheckIn(t, s, newCheckIn("2025-03-09"))

		used, err := s.UseStreakFreeze(ctx, now)
		if err != nil {
			t.Fatalf("UseStreakFreeze: %v", err)
		}
		if used {
			t.Error("freeze spent when yesterday already has a check-in")
		}
	})

	t.Run("none left", func(t *testing.T) {
		s := testutil.NewTestStore(t)
		for i := 0; i < 2; i++ {
			day := now.AddDate(0, 0, i*2)
			used, err := s.UseStreakFreeze(ctx, day)
			if err != nil || !used {
				t.Fatalf("freeze %d = %v, %v", i, used, err)
			}
		}
		used, err := s.UseStreakFreeze(ctx, now.AddDate(0, 0, 6))
		if err != nil {
			t.Fatalf("UseStreakFreeze: %v", err)
		}
		if used {
			t.Error("third freeze granted within one month")
		}
	})
}

func TestCheckInStats(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	// Outside the trailing week, counts toward the total only.
	mustCheckIn(t, s, newCheckIn("2025-03-01"))

	in := newCheckIn("2025-03-09")
	in.Mood = model.MoodHappy
	in.Energy = 6
	in.Focus = 3
	mustCheckIn(t, s, in)

	in = newCheckIn("2025-03-10")
	in.Mood = model.MoodStressed
	in.Energy = 4
	in.Focus = 5
	mustCheckIn(t, s, in)

	stats, err := s.CheckInStats(ctx, now)
	if err != nil {
		t.Fatalf("CheckInStats: %v", err)
	}
	if stats.TotalCheckIns != 3 {
		t.Errorf("total = %d, want 3", stats.TotalCheckIns)
	}
	if stats.CurrentStreak != 2 {
		t.Errorf("streak = %d, want 2", stats.CurrentStreak)
	}
	if stats.WeeklyAvgEnergy != 5 {
		t.Errorf("weekly avg energy = %v, want 5", stats.WeeklyAvgEnergy)
	}
	if stats.WeeklyAvgFocus != 4 {
		t.Errorf("weekly avg focus = %v, want 4", stats.WeeklyAvgFocus)
	}
	if len(stats.WeeklyMoods) != 2 ||
		stats.WeeklyMoods[0].Mood != model.MoodHappy ||
		stats.WeeklyMoods[1].Mood != model.MoodStressed {
		t.Errorf("weekly moods = %+v", stats.WeeklyMoods)
	}
}

func TestClearAllCheckIns(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	mustCheckIn(t, s, newCheckIn("2025-03-09"))
	mustCheckIn(t, s, newCheckIn("2025-03-10"))
	if _, err := s.CurrentCheckInStreak(ctx, now); err != nil {
		t.Fatalf("CurrentCheckInStreak: %v", err)
	}
	if _, err := s.UseStreakFreeze(ctx, now.AddDate(0, 0, 2)); err != nil {
		t.Fatalf("UseStreakFreeze: %v", err)
	}

	if err := s.ClearAllCheckIns(ctx); err != nil {
		t.Fatalf("ClearAllCheckIns: %v", err)
	}

	got, err := s.GetCheckIns(ctx, store.CheckInFilter{})
	if err != nil {
		t.Fatalf("GetCheckIns: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("%d check-ins remain after clear", len(got))
	}
	longest, err := s.LongestCheckInStreak(ctx)
	if err != nil {
		t.Fatalf("LongestCheckInStreak: %v", err)
	}
	if longest != 0 {
		t.Errorf("longest streak = %d after clear, want 0", longest)
	}
	remaining, err := s.StreakFreezesRemaining(ctx, now)
	if err != nil {
		t.Fatalf("StreakFreezesRemaining: %v", err)
	}
	if remaining != 2 {
		t.Errorf("freezes = %d after clear, want 2", remaining)
	}
}
