package checklist

import (
	"context"
	"sync"
	"time"

	"github.com/nhle/lifeos/internal/events"
	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
)

// checkInterval is how often the scheduler re-evaluates reset
// boundaries while the app runs.
const checkInterval = time.Hour

// checkTimeout bounds a single reset pass.
const checkTimeout = 30 * time.Second

// ShouldResetDaily reports whether the daily tier is due: the last
// reset happened on an earlier calendar day, or never.
func ShouldResetDaily(last, now time.Time) bool {
	return dayBefore(last, now)
}

// ShouldResetWeekly reports whether the weekly tier is due: a new
// calendar day since the last reset, and today is Sunday.
func ShouldResetWeekly(last, now time.Time) bool {
	return dayBefore(last, now) && now.Weekday() == time.Sunday
}

// ShouldResetMonthly reports whether the monthly tier is due: a new
// calendar day since the last reset, and today is the first of the month.
func ShouldResetMonthly(last, now time.Time) bool {
	return dayBefore(last, now) && now.Day() == 1
}

// ShouldResetYearly reports whether the yearly tier is due: a new
// calendar day since the last reset, and today is January 1st.
func ShouldResetYearly(last, now time.Time) bool {
	return dayBefore(last, now) && now.Month() == time.January && now.Day() == 1
}

// dayBefore reports whether last falls on a calendar day strictly
// before now. The zero time counts as infinitely old.
func dayBefore(last, now time.Time) bool {
	if last.IsZero() {
		return true
	}
	ly, lm, ld := last.Date()
	ny, nm, nd := now.Date()
	if ly != ny {
		return ly < ny
	}
	if lm != nm {
		return lm < nm
	}
	return ld < nd
}

// Scheduler drives the checklist reset lifecycle. It checks boundaries
// immediately on start and then hourly, and listens for item toggles to
// keep the daily completion history current.
type Scheduler struct {
	store  store.Store
	bus    *events.Bus
	stopCh chan struct{}

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler over the given store and event bus.
func NewScheduler(s store.Store, bus *events.Bus) *Scheduler {
	return &Scheduler{
		store:  s,
		bus:    bus,
		stopCh: make(chan struct{}),
	}
}

// Start launches the background loop. Calling Start on a running
// scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.run()
}

// Stop halts the background loop. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
}

func (s *Scheduler) run() {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	var eventCh <-chan events.Event
	if s.bus != nil {
		eventCh = s.bus.Subscribe()
	}

	s.checkWithTimeout()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.checkWithTimeout()
		case ev, ok := <-eventCh:
			if !ok {
				eventCh = nil
				continue
			}
			s.handleEvent(ev)
		}
	}
}

func (s *Scheduler) checkWithTimeout() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	_ = s.CheckNow(ctx, time.Now())
}

// handleEvent reacts to item toggles: a daily toggle re-snapshots
// today's completion record so the history tracks progress as it
// happens, not just at the next reset.
func (s *Scheduler) handleEvent(ev events.Event) {
	toggled, ok := ev.(events.ItemToggled)
	if !ok || toggled.Frequency != model.FrequencyDaily {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	_, _ = s.store.RecordDailyCompletion(ctx, time.Now())
}

// CheckNow evaluates every tier's boundary predicate against now and
// resets the tiers that are due, daily through yearly. The daily path
// advances the streak before clearing items, then snapshots the fresh
// day into the history.
func (s *Scheduler) CheckNow(ctx context.Context, now time.Time) error {
	ts, err := s.store.GetResetTimestamps(ctx)
	if err != nil {
		return err
	}

	if ShouldResetDaily(ts.LastDailyReset, now) {
		if err := s.resetDaily(ctx, now); err != nil {
			return err
		}
	}
	if ShouldResetWeekly(ts.LastWeeklyReset, now) {
		if err := s.resetTier(ctx, model.FrequencyWeekly, now); err != nil {
			return err
		}
	}
	if ShouldResetMonthly(ts.LastMonthlyReset, now) {
		if err := s.resetTier(ctx, model.FrequencyMonthly, now); err != nil {
			return err
		}
	}
	if ShouldResetYearly(ts.LastYearlyReset, now) {
		if err := s.resetTier(ctx, model.FrequencyYearly, now); err != nil {
			return err
		}
	}
	return nil
}

// ManualReset resets one tier on demand, outside its boundary schedule.
// The daily tier goes through the full streak-then-reset path.
func (s *Scheduler) ManualReset(ctx context.Context, frequency model.Frequency, now time.Time) error {
	if frequency == model.FrequencyDaily {
		return s.resetDaily(ctx, now)
	}
	return s.resetTier(ctx, frequency, now)
}

// resetDaily runs the daily boundary: the streak must be evaluated
// while today's completions are still visible, then items clear, then
// the new day starts its history record at zero.
func (s *Scheduler) resetDaily(ctx context.Context, now time.Time) error {
	if _, err := s.store.UpdateChecklistStreak(ctx, now); err != nil {
		return err
	}
	if err := s.store.ResetChecklistTier(ctx, model.FrequencyDaily, now); err != nil {
		return err
	}
	if _, err := s.store.RecordDailyCompletion(ctx, now); err != nil {
		return err
	}
	s.publishReset(model.FrequencyDaily)
	return nil
}

func (s *Scheduler) resetTier(ctx context.Context, frequency model.Frequency, now time.Time) error {
	if err := s.store.ResetChecklistTier(ctx, frequency, now); err != nil {
		return err
	}
	s.publishReset(frequency)
	return nil
}

func (s *Scheduler) publishReset(frequency model.Frequency) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.TierReset{Frequency: frequency})
}
