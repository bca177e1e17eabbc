package services

import (
	"context"
	"errors"
	"testing"
	"time"

	notifplatform "lifeSpheresAPI/internal/notification"
	"lifeSpheresAPI/internal/storage"
	"lifeSpheresAPI/internal/types/notification"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) advanceDays(n int) {
	c.now = c.now.AddDate(0, 0, n)
}

func newTestService(start time.Time) (*StreakService, *testClock, *notifplatform.MemoryPlatform, *storage.MemoryStore) {
	kv := storage.NewMemoryStore()
	clock := &testClock{now: start}

	notificationService := NewNotificationService(kv)
	platform := notifplatform.NewMemoryPlatform()
	notificationService.SetPlatform(platform)
	notificationService.now = clock.Now

	streakService := NewStreakService(NewStreakStore(kv), notificationService)
	streakService.now = clock.Now

	return streakService, clock, platform, kv
}

func localDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.Local)
}

func TestRecordActivityFirstTime(t *testing.T) {
	svc, _, _, _ := newTestService(localDay(2024, time.January, 1))
	ctx := context.Background()

	result := svc.RecordActivity(ctx)

	if !result.IsFirstActivity {
		t.Errorf("Expected first activity")
	}
	if result.Record.CurrentStreak != 1 || result.Record.LongestStreak != 1 {
		t.Errorf("Expected streak 1/1, got %d/%d", result.Record.CurrentStreak, result.Record.LongestStreak)
	}
	if result.Record.CurrentBadge != "spark" {
		t.Errorf("Expected spark badge, got %q", result.Record.CurrentBadge)
	}
	if !result.StreakIncreased {
		t.Errorf("Expected streak increase")
	}
	if len(result.NewBadges) != 1 || result.NewBadges[0] != "spark" {
		t.Errorf("Expected new badge spark, got %v", result.NewBadges)
	}
	if len(result.NewMilestones) != 1 || result.NewMilestones[0] != 1 {
		t.Errorf("Expected milestone 1, got %v", result.NewMilestones)
	}
	if result.Record.StreakStartDate != "2024-01-01" || result.Record.LastLoggedDate != "2024-01-01" {
		t.Errorf("Expected dates set to 2024-01-01, got %+v", result.Record)
	}
	if result.Record.TotalDaysLogged != 1 {
		t.Errorf("Expected total days 1, got %d", result.Record.TotalDaysLogged)
	}
}

func TestRecordActivityIdempotentSameDay(t *testing.T) {
	svc, _, _, _ := newTestService(localDay(2024, time.January, 1))
	ctx := context.Background()

	first := svc.RecordActivity(ctx)
	second := svc.RecordActivity(ctx)

	if second.StreakIncreased || second.IsFirstActivity {
		t.Errorf("Duplicate trigger must report no change: %+v", second)
	}
	if len(second.NewBadges) != 0 || len(second.NewMilestones) != 0 {
		t.Errorf("Duplicate trigger must report empty deltas: %+v", second)
	}
	if second.Record.TotalDaysLogged != first.Record.TotalDaysLogged {
		t.Errorf("Duplicate trigger must not count a day")
	}
	if second.Record.CurrentStreak != first.Record.CurrentStreak {
		t.Errorf("Duplicate trigger changed the streak")
	}
}

func TestThreeDayScenario(t *testing.T) {
	svc, clock, _, _ := newTestService(localDay(2024, time.January, 1))
	ctx := context.Background()

	day1 := svc.RecordActivity(ctx)
	if day1.Record.CurrentStreak != 1 || day1.Record.CurrentBadge != "spark" {
		t.Fatalf("Day 1: got streak %d badge %q", day1.Record.CurrentStreak, day1.Record.CurrentBadge)
	}

	clock.advanceDays(1)
	day2 := svc.RecordActivity(ctx)
	if day2.Record.CurrentStreak != 2 || day2.Record.CurrentBadge != "spark" {
		t.Fatalf("Day 2: got streak %d badge %q", day2.Record.CurrentStreak, day2.Record.CurrentBadge)
	}
	if len(day2.NewBadges) != 0 {
		t.Errorf("Day 2: unexpected new badges %v", day2.NewBadges)
	}

	clock.advanceDays(1)
	day3 := svc.RecordActivity(ctx)
	if day3.Record.CurrentStreak != 3 || day3.Record.CurrentBadge != "flame" {
		t.Fatalf("Day 3: got streak %d badge %q", day3.Record.CurrentStreak, day3.Record.CurrentBadge)
	}
	if len(day3.NewBadges) != 1 || day3.NewBadges[0] != "flame" {
		t.Errorf("Day 3: expected new badge flame, got %v", day3.NewBadges)
	}
}

func TestWindowNeverExceedsSevenDays(t *testing.T) {
	svc, clock, _, _ := newTestService(localDay(2024, time.March, 1))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		result := svc.RecordActivity(ctx)
		if len(result.Record.MemoryLogDates) > 7 {
			t.Fatalf("Day %d: window holds %d dates", i+1, len(result.Record.MemoryLogDates))
		}
		clock.advanceDays(1)
	}

	record := svc.GetStreakData(ctx)
	if record.CurrentStreak != 7 {
		t.Errorf("Current streak is window-capped at 7, got %d", record.CurrentStreak)
	}
	if record.TotalDaysLogged != 10 {
		t.Errorf("Expected 10 days logged, got %d", record.TotalDaysLogged)
	}
}

func TestMonotonicity(t *testing.T) {
	svc, clock, _, _ := newTestService(localDay(2024, time.June, 1))
	ctx := context.Background()

	prevLongest, prevTotal, prevEarned := 0, 0, 0

	check := func(label string) {
		record := svc.GetStreakData(ctx)
		if record.LongestStreak < prevLongest {
			t.Errorf("%s: longest streak decreased %d -> %d", label, prevLongest, record.LongestStreak)
		}
		if record.TotalDaysLogged < prevTotal {
			t.Errorf("%s: total days decreased %d -> %d", label, prevTotal, record.TotalDaysLogged)
		}
		if len(record.EarnedBadges) < prevEarned {
			t.Errorf("%s: earned badges shrank %d -> %d", label, prevEarned, len(record.EarnedBadges))
		}
		prevLongest, prevTotal, prevEarned = record.LongestStreak, record.TotalDaysLogged, len(record.EarnedBadges)
	}

	// Five-day run, a two-day gap that kills the streak, then a fresh start.
	for i := 0; i < 5; i++ {
		svc.RecordActivity(ctx)
		check("activity")
		clock.advanceDays(1)
	}
	clock.advanceDays(2)
	svc.Recalculate(ctx)
	check("recalculate after gap")
	svc.RecordActivity(ctx)
	check("fresh start")

	record := svc.GetStreakData(ctx)
	if record.CurrentStreak != 1 {
		t.Errorf("Expected fresh streak 1, got %d", record.CurrentStreak)
	}
	if record.LongestStreak != 5 {
		t.Errorf("Expected longest streak 5, got %d", record.LongestStreak)
	}
}

func TestConsecutivenessAcrossGap(t *testing.T) {
	svc, clock, _, _ := newTestService(localDay(2024, time.July, 1))
	ctx := context.Background()

	// Activity on D-2, D-1, D with nothing on D-3.
	svc.RecordActivity(ctx)
	clock.advanceDays(1)
	svc.RecordActivity(ctx)
	clock.advanceDays(1)
	result := svc.RecordActivity(ctx)
	if result.Record.CurrentStreak != 3 {
		t.Errorf("Expected streak 3, got %d", result.Record.CurrentStreak)
	}

	// Same shape but D-1 missing: D-2 logged, D-1 skipped, D logged.
	svc2, clock2, _, _ := newTestService(localDay(2024, time.July, 1))
	svc2.RecordActivity(ctx)
	clock2.advanceDays(2)
	result2 := svc2.RecordActivity(ctx)
	if result2.Record.CurrentStreak != 1 {
		t.Errorf("Expected streak 1 after gap, got %d", result2.Record.CurrentStreak)
	}
	if result2.StreakIncreased {
		t.Errorf("Restarting at 1 after a gap is not an increase")
	}
}

func TestDecayViaRecalculate(t *testing.T) {
	svc, clock, platform, _ := newTestService(localDay(2024, time.August, 1))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		svc.RecordActivity(ctx)
		if i < 4 {
			clock.advanceDays(1)
		}
	}
	if got := svc.GetStreakData(ctx).CurrentStreak; got != 5 {
		t.Fatalf("Setup expected streak 5, got %d", got)
	}

	// Two days pass with no activity; opening the app re-evaluates truth.
	clock.advanceDays(2)
	record := svc.Recalculate(ctx)

	if record.CurrentStreak != 0 {
		t.Errorf("Expected decayed streak 0, got %d", record.CurrentStreak)
	}
	if record.CurrentBadge != "" {
		t.Errorf("Expected no current badge, got %q", record.CurrentBadge)
	}
	if record.StreakStartDate != "" {
		t.Errorf("Expected streak start cleared on decay, got %q", record.StreakStartDate)
	}
	if record.LongestStreak != 5 {
		t.Errorf("Longest streak must survive decay, got %d", record.LongestStreak)
	}
	if len(record.EarnedBadges) == 0 {
		t.Errorf("Earned badges must survive decay")
	}

	lost := false
	for _, sent := range platform.Sent() {
		if sent.Type == notification.TypeStreakLost {
			lost = true
		}
	}
	if !lost {
		t.Errorf("Expected a streak-lost push for a 5-day streak")
	}
}

func TestStreakLostPushSuppressedForShortStreaks(t *testing.T) {
	svc, clock, platform, _ := newTestService(localDay(2024, time.August, 1))
	ctx := context.Background()

	svc.RecordActivity(ctx)
	clock.advanceDays(2)
	svc.Recalculate(ctx)

	for _, sent := range platform.Sent() {
		if sent.Type == notification.TypeStreakLost {
			t.Errorf("Loss push must be suppressed for a 1-day streak")
		}
	}
}

func TestRecalculateIsStableWhenNothingChanged(t *testing.T) {
	svc, _, _, kv := newTestService(localDay(2024, time.September, 1))
	ctx := context.Background()

	svc.RecordActivity(ctx)
	before, _ := kv.Get(ctx, StreakStorageKey)

	svc.Recalculate(ctx)
	after, _ := kv.Get(ctx, StreakStorageKey)

	if before != after {
		t.Errorf("Recalculate with no elapsed time must not rewrite the record")
	}
}

func TestRiskStatus(t *testing.T) {
	svc, clock, _, _ := newTestService(localDay(2024, time.October, 1))
	ctx := context.Background()

	if svc.IsAtRisk(ctx) || svc.DaysUntilLost(ctx) != 0 {
		t.Errorf("No streak yet: expected no risk")
	}

	svc.RecordActivity(ctx)
	if svc.IsAtRisk(ctx) {
		t.Errorf("Logged today: not at risk")
	}
	if got := svc.DaysUntilLost(ctx); got != 2 {
		t.Errorf("Logged today: expected 2 days until lost, got %d", got)
	}

	clock.advanceDays(1)
	if !svc.IsAtRisk(ctx) {
		t.Errorf("Next day with no activity: at risk")
	}
	if got := svc.DaysUntilLost(ctx); got != 1 {
		t.Errorf("At risk: expected 1 day until lost, got %d", got)
	}
}

func TestResetStreakData(t *testing.T) {
	svc, _, platform, _ := newTestService(localDay(2024, time.November, 1))
	ctx := context.Background()

	svc.RecordActivity(ctx)
	if err := svc.ResetStreakData(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	record := svc.GetStreakData(ctx)
	if record.CurrentStreak != 0 || record.TotalDaysLogged != 0 || len(record.EarnedBadges) != 0 {
		t.Errorf("Expected zero record after reset, got %+v", record)
	}

	scheduled, _ := platform.ListScheduled(ctx)
	if len(scheduled) != 0 {
		t.Errorf("Expected reminders cleared after reset, got %d", len(scheduled))
	}
}

func TestPlatformFailureDoesNotBreakActivityWrite(t *testing.T) {
	svc, _, platform, kv := newTestService(localDay(2024, time.December, 1))
	ctx := context.Background()

	platform.FailWith(errors.New("permission denied"))

	result := svc.RecordActivity(ctx)
	if result.Record.CurrentStreak != 1 {
		t.Errorf("Expected streak 1 despite platform failure, got %d", result.Record.CurrentStreak)
	}

	if _, err := kv.Get(ctx, StreakStorageKey); err != nil {
		t.Errorf("Expected record persisted despite platform failure: %v", err)
	}
}

func TestGetNextBadgeAndEarnedBadges(t *testing.T) {
	svc, clock, _, _ := newTestService(localDay(2024, time.April, 1))
	ctx := context.Background()

	if b := svc.GetNextBadge(ctx); b == nil || b.ID != "spark" {
		t.Errorf("Fresh install: next badge should be spark")
	}

	for i := 0; i < 3; i++ {
		svc.RecordActivity(ctx)
		clock.advanceDays(1)
	}

	if b := svc.GetNextBadge(ctx); b == nil || b.ID != "keeper" {
		t.Errorf("Streak 3: next badge should be keeper")
	}
	if b := svc.GetCurrentBadge(ctx); b == nil || b.ID != "flame" {
		t.Errorf("Streak 3: current badge should be flame")
	}

	earned := svc.GetEarnedBadges(ctx)
	if len(earned) != 2 || earned[0].ID != "spark" || earned[1].ID != "flame" {
		t.Errorf("Streak 3: expected earned [spark flame], got %v", earned)
	}
}

func TestGetWeeklyStats(t *testing.T) {
	// Wednesday; Monday and Tuesday logged too.
	svc, clock, _, _ := newTestService(localDay(2024, time.May, 6)) // a Monday
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.RecordActivity(ctx)
		if i < 2 {
			clock.advanceDays(1)
		}
	}

	stat := svc.GetWeeklyStats(ctx)
	if stat.DaysActive != 3 {
		t.Errorf("Expected 3 active days this week, got %d", stat.DaysActive)
	}
	if stat.Period != "week" || stat.TotalDays != 7 {
		t.Errorf("Unexpected stat shape: %+v", stat)
	}
}
