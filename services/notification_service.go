package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	platform "lifeSpheresAPI/internal/notification"
	"lifeSpheresAPI/internal/storage"
	"lifeSpheresAPI/internal/types/notification"
	"lifeSpheresAPI/internal/types/streak"
)

const (
	// Fixed scheduling identifiers. Re-running the scheduler replaces the
	// existing entry instead of stacking a second one.
	ReminderID = "streak-reminder"
	WarningID  = "streak-warning"

	reminderHour = 20
	warningHour  = 22

	// Streaks shorter than this lose silently; a loss push for a one-day
	// attempt punishes more than it motivates.
	minStreakForLossNotice = 3

	deviceTokensKey = "notification_device_tokens"
)

// NotificationService turns streak state into local reminders and
// immediate pushes. It keeps no state of its own beyond registered device
// tokens; everything is derived from the record plus wall-clock now.
// Platform failures are logged and swallowed: notifications are a side
// effect of streak state, never a precondition for it.
type NotificationService struct {
	kv       storage.KeyValueStore
	platform platform.Platform
	now      func() time.Time
}

func NewNotificationService(kv storage.KeyValueStore) *NotificationService {
	return &NotificationService{kv: kv, now: time.Now}
}

// SetPlatform injects the delivery provider. The service stays inert (and
// harmless) without one.
func (s *NotificationService) SetPlatform(p platform.Platform) {
	s.platform = p
}

// RefreshSchedules re-derives the at-risk reminder and warning for today.
// Both slots are cleared first so at most one instance of each exists.
func (s *NotificationService) RefreshSchedules(ctx context.Context, record *streak.Record, now time.Time) {
	if s.platform == nil {
		return
	}

	s.cancel(ctx, ReminderID)
	s.cancel(ctx, WarningID)

	if !atRisk(record, now) {
		return
	}

	s.scheduleAt(ctx, ReminderID, now, reminderHour, notification.Content{
		Type:  notification.TypeStreakReminder,
		Title: "Your streak is waiting",
		Body:  fmt.Sprintf("Log a memory today to keep your %d-day streak alive.", record.CurrentStreak),
	})
	s.scheduleAt(ctx, WarningID, now, warningHour, notification.Content{
		Type:  notification.TypeStreakWarning,
		Title: "Last chance tonight",
		Body:  fmt.Sprintf("Your %d-day streak ends at midnight.", record.CurrentStreak),
	})
}

// NotifyActivity fires at most one celebratory push for an activity:
// a new badge outranks a bare milestone, which outranks a plain increment.
func (s *NotificationService) NotifyActivity(ctx context.Context, result *streak.ActivityResult) {
	if s.platform == nil {
		return
	}

	switch {
	case len(result.NewBadges) > 0:
		b := result.NewBadges[len(result.NewBadges)-1]
		s.sendNow(ctx, notification.Content{
			Type:  notification.TypeBadgeEarned,
			Title: "New badge earned",
			Body:  fmt.Sprintf("You unlocked the %s badge. Streak: %d days.", b, result.Record.CurrentStreak),
			Data:  map[string]string{"badge": b},
		})
	case len(result.NewMilestones) > 0:
		m := result.NewMilestones[len(result.NewMilestones)-1]
		s.sendNow(ctx, notification.Content{
			Type:  notification.TypeStreakMilestone,
			Title: "Milestone reached",
			Body:  fmt.Sprintf("%d days of journaling. Keep going.", m),
			Data:  map[string]string{"days": fmt.Sprintf("%d", m)},
		})
	case result.StreakIncreased:
		s.sendNow(ctx, notification.Content{
			Type:  notification.TypeStreakIncreased,
			Title: "Streak extended",
			Body:  fmt.Sprintf("%d days in a row.", result.Record.CurrentStreak),
		})
	}
}

// NotifyStreakLost fires the loss push, suppressed for short streaks.
func (s *NotificationService) NotifyStreakLost(ctx context.Context, lostStreak int) {
	if s.platform == nil || lostStreak < minStreakForLossNotice {
		return
	}

	s.sendNow(ctx, notification.Content{
		Type:  notification.TypeStreakLost,
		Title: "Streak lost",
		Body:  fmt.Sprintf("Your %d-day streak ended. Start a new one today.", lostStreak),
	})
}

// CancelAll clears both fixed reminder slots. Used on logout and reset.
func (s *NotificationService) CancelAll(ctx context.Context) {
	if s.platform == nil {
		return
	}
	s.cancel(ctx, ReminderID)
	s.cancel(ctx, WarningID)
}

// RegisterDevice stores a push target, replacing any prior registration of
// the same token.
func (s *NotificationService) RegisterDevice(ctx context.Context, req *notification.RegisterDeviceRequest) (*notification.DeviceToken, error) {
	if req.Token == "" {
		return nil, fmt.Errorf("device token is required")
	}

	tokens, err := s.DeviceTokens(ctx)
	if err != nil {
		return nil, err
	}

	kept := make([]notification.DeviceToken, 0, len(tokens)+1)
	for _, t := range tokens {
		if t.Token != req.Token {
			kept = append(kept, t)
		}
	}

	registered := notification.DeviceToken{
		ID:           uuid.New(),
		Token:        req.Token,
		Platform:     req.Platform,
		RegisteredAt: s.now(),
	}
	kept = append(kept, registered)

	data, err := json.Marshal(kept)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize device tokens: %w", err)
	}
	if err := s.kv.Set(ctx, deviceTokensKey, string(data)); err != nil {
		return nil, fmt.Errorf("failed to persist device tokens: %w", err)
	}

	return &registered, nil
}

// DeviceTokens loads the registered push targets. It also satisfies the
// platform's TokenSource.
func (s *NotificationService) DeviceTokens(ctx context.Context) ([]notification.DeviceToken, error) {
	raw, err := s.kv.Get(ctx, deviceTokensKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []notification.DeviceToken{}, nil
		}
		return nil, fmt.Errorf("failed to load device tokens: %w", err)
	}

	var tokens []notification.DeviceToken
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		log.Printf("NotificationService: malformed device token list, discarding: %v", err)
		return []notification.DeviceToken{}, nil
	}
	return tokens, nil
}

func (s *NotificationService) scheduleAt(ctx context.Context, id string, now time.Time, hour int, content notification.Content) {
	fireAt := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !fireAt.After(now) {
		return
	}

	trigger := notification.Trigger{FireAt: fireAt}
	if err := s.platform.Schedule(ctx, id, content, trigger); err != nil {
		log.Printf("NotificationService: failed to schedule %s: %v", id, err)
	}
}

func (s *NotificationService) sendNow(ctx context.Context, content notification.Content) {
	id := uuid.New().String()
	if err := s.platform.Schedule(ctx, id, content, notification.Trigger{}); err != nil {
		log.Printf("NotificationService: failed to send %s: %v", content.Type, err)
	}
}

func (s *NotificationService) cancel(ctx context.Context, id string) {
	if err := s.platform.Cancel(ctx, id); err != nil {
		log.Printf("NotificationService: failed to cancel %s: %v", id, err)
	}
}
