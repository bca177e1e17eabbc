package services

import (
	"context"
	"log"
	"sync"
	"time"

	"lifeSpheresAPI/internal/stats"
	"lifeSpheresAPI/internal/types/badge"
	"lifeSpheresAPI/internal/types/streak"
	"lifeSpheresAPI/utils"
)

// StreakService is the streak engine. It is the only writer of the
// persisted record; a mutex serializes RecordActivity and Recalculate so
// two overlapping triggers cannot both see "not logged today" and lose a
// write.
type StreakService struct {
	mu            sync.Mutex
	store         *StreakStore
	notifications *NotificationService
	now           func() time.Time
}

func NewStreakService(store *StreakStore, notifications *NotificationService) *StreakService {
	return &StreakService{
		store:         store,
		notifications: notifications,
		now:           time.Now,
	}
}

// RecordActivity registers that an activity (a saved memory) happened
// today. Calling it again on the same calendar day is a no-op: the record
// comes back unmodified with every delta empty.
func (s *StreakService) RecordActivity(ctx context.Context) *streak.ActivityResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := utils.LocalDateString(now)
	record := s.store.Load(ctx)

	for _, d := range record.MemoryLogDates {
		if d == today {
			return &streak.ActivityResult{
				Record:        record,
				NewBadges:     []string{},
				NewMilestones: []int{},
			}
		}
	}

	isFirstActivity := len(record.MemoryLogDates) == 0
	previousStreak := record.CurrentStreak

	// Old entries silently fall out of the window; consecutiveness is
	// always recomputed from the filtered window, never tracked
	// incrementally.
	record.MemoryLogDates = utils.FilterToLastSevenDays(
		append(record.MemoryLogDates, today), now)

	newStreak := utils.ConsecutiveDaysEndingToday(record.MemoryLogDates, now)

	newBadges := []string{}
	previousBadge := badge.ForStreak(previousStreak)
	currentBadge := badge.ForStreak(newStreak)
	if currentBadge != nil && (previousBadge == nil || currentBadge.DaysRequired > previousBadge.DaysRequired) {
		newBadges = append(newBadges, currentBadge.ID)
	}

	newMilestones := []int{}
	crossed := make(map[int]bool, len(record.Milestones))
	for _, m := range record.Milestones {
		crossed[m] = true
	}
	for _, m := range badge.MilestonesForStreak(newStreak) {
		if !crossed[m] {
			crossed[m] = true
			newMilestones = append(newMilestones, m)
		}
	}
	record.Milestones = sortedMilestones(crossed)

	record.CurrentStreak = newStreak
	if newStreak > record.LongestStreak {
		record.LongestStreak = newStreak
	}
	record.CurrentBadge = badgeID(currentBadge)
	record.EarnedBadges = unionEarnedBadges(record.EarnedBadges, record.LongestStreak)
	record.TotalDaysLogged++
	record.LastLoggedDate = today
	if record.StreakStartDate == "" {
		record.StreakStartDate = today
	}

	if err := s.store.Save(ctx, record); err != nil {
		log.Printf("StreakService: dropping activity write: %v", err)
	}

	result := &streak.ActivityResult{
		Record:          record,
		StreakIncreased: newStreak > previousStreak,
		NewBadges:       newBadges,
		NewMilestones:   newMilestones,
		IsFirstActivity: isFirstActivity,
	}

	if s.notifications != nil {
		s.notifications.NotifyActivity(ctx, result)
		s.notifications.RefreshSchedules(ctx, record, now)
	}

	return result
}

// Recalculate re-derives streak state from stored history without new
// activity. Run on app foreground and on a timer: dates may have aged out
// of the window since the last write, so a missed day silently decays the
// streak to zero the next time the app looks.
func (s *StreakService) Recalculate(ctx context.Context) *streak.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	record := s.store.Load(ctx)
	previousStreak := record.CurrentStreak

	filtered := utils.FilterToLastSevenDays(record.MemoryLogDates, now)
	newStreak := utils.ConsecutiveDaysEndingToday(filtered, now)
	newBadge := badgeID(badge.ForStreak(newStreak))
	earned := unionEarnedBadges(record.EarnedBadges, record.LongestStreak)

	changed := newStreak != record.CurrentStreak ||
		newBadge != record.CurrentBadge ||
		len(filtered) != len(record.MemoryLogDates) ||
		len(earned) != len(record.EarnedBadges)

	record.MemoryLogDates = filtered
	record.CurrentStreak = newStreak
	record.CurrentBadge = newBadge
	record.EarnedBadges = earned
	if newStreak == 0 && record.StreakStartDate != "" {
		// The streak is gone; the start date would otherwise point at a
		// run that no longer exists. The next activity re-seeds it.
		record.StreakStartDate = ""
		changed = true
	}

	if changed {
		if err := s.store.Save(ctx, record); err != nil {
			log.Printf("StreakService: dropping recalculation write: %v", err)
		}
	}

	if s.notifications != nil {
		if previousStreak > 0 && newStreak == 0 {
			s.notifications.NotifyStreakLost(ctx, previousStreak)
		}
		s.notifications.RefreshSchedules(ctx, record, now)
	}

	return record
}

// GetStreakData returns the persisted record as-is.
func (s *StreakService) GetStreakData(ctx context.Context) *streak.Record {
	return s.store.Load(ctx)
}

func (s *StreakService) GetCurrentBadge(ctx context.Context) *badge.Badge {
	record := s.store.Load(ctx)
	return badge.ByID(record.CurrentBadge)
}

func (s *StreakService) GetNextBadge(ctx context.Context) *badge.Badge {
	record := s.store.Load(ctx)
	return badge.Next(record.CurrentStreak)
}

func (s *StreakService) GetEarnedBadges(ctx context.Context) []badge.Badge {
	record := s.store.Load(ctx)

	earned := make([]badge.Badge, 0, len(record.EarnedBadges))
	for _, id := range record.EarnedBadges {
		if b := badge.ByID(id); b != nil {
			earned = append(earned, *b)
		}
	}
	return earned
}

// IsAtRisk reports whether the streak dies at midnight unless an activity
// is logged today.
func (s *StreakService) IsAtRisk(ctx context.Context) bool {
	record := s.store.Load(ctx)
	return atRisk(record, s.now())
}

// DaysUntilLost counts the days from today until the streak breaks with no
// further activity: 2 when today is already logged, 1 when at risk, 0 when
// there is no streak to lose.
func (s *StreakService) DaysUntilLost(ctx context.Context) int {
	record := s.store.Load(ctx)
	if record.CurrentStreak == 0 {
		return 0
	}
	if record.LastLoggedDate == utils.LocalDateString(s.now()) {
		return 2
	}
	return 1
}

// RiskStatus bundles the two risk reads for the API surface.
func (s *StreakService) RiskStatus(ctx context.Context) *streak.RiskStatus {
	return &streak.RiskStatus{
		AtRisk:        s.IsAtRisk(ctx),
		DaysUntilLost: s.DaysUntilLost(ctx),
	}
}

// ResetStreakData restores the zero default record and clears any pending
// streak reminders.
func (s *StreakService) ResetStreakData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	if s.notifications != nil {
		s.notifications.CancelAll(ctx)
	}
	return nil
}

// RefreshNotifications re-derives the reminder schedule from current state.
func (s *StreakService) RefreshNotifications(ctx context.Context) {
	if s.notifications == nil {
		return
	}
	record := s.store.Load(ctx)
	s.notifications.RefreshSchedules(ctx, record, s.now())
}

// GetWeeklyStats counts activity days in the current ISO week from the
// rolling window.
func (s *StreakService) GetWeeklyStats(ctx context.Context) *stats.DaysStat {
	record := s.store.Load(ctx)
	now := s.now()

	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday closes the week
	}
	weekStart := utils.LocalDateString(utils.SubtractDays(now, weekday-1))

	daysActive := 0
	for _, d := range record.MemoryLogDates {
		if d >= weekStart {
			daysActive++
		}
	}

	return &stats.DaysStat{Period: "week", DaysActive: daysActive, TotalDays: 7}
}

func atRisk(record *streak.Record, now time.Time) bool {
	return record.CurrentStreak > 0 && record.LastLoggedDate != utils.LocalDateString(now)
}

func badgeID(b *badge.Badge) string {
	if b == nil {
		return ""
	}
	return b.ID
}

// unionEarnedBadges merges previously earned badges with everything the
// longest streak qualifies for, in catalog order. Earned badges accumulate
// from the all-time high-water mark and are never revoked.
func unionEarnedBadges(previous []string, longestStreak int) []string {
	set := make(map[string]bool, len(previous))
	for _, id := range previous {
		set[id] = true
	}
	for _, id := range badge.IDsForStreak(longestStreak) {
		set[id] = true
	}

	earned := make([]string, 0, len(set))
	for i := range badge.Catalog {
		if set[badge.Catalog[i].ID] {
			earned = append(earned, badge.Catalog[i].ID)
		}
	}
	return earned
}

func sortedMilestones(crossed map[int]bool) []int {
	milestones := make([]int, 0, len(crossed))
	for _, m := range badge.Milestones {
		if crossed[m] {
			milestones = append(milestones, m)
		}
	}
	return milestones
}
