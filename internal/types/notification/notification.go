package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeStreakReminder  NotificationType = "streak_reminder"
	TypeStreakWarning   NotificationType = "streak_warning"
	TypeStreakMilestone NotificationType = "streak_milestone"
	TypeBadgeEarned     NotificationType = "badge_earned"
	TypeStreakIncreased NotificationType = "streak_increased"
	TypeStreakLost      NotificationType = "streak_lost"
)

type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

// Content is the user-visible payload of a push.
type Content struct {
	Type  NotificationType  `json:"type"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Trigger says when a scheduled notification fires. A zero FireAt means
// deliver immediately.
type Trigger struct {
	FireAt time.Time `json:"fire_at"`
}

// Scheduled is a pending notification held by the platform under its
// caller-chosen identifier.
type Scheduled struct {
	ID      string  `json:"id"`
	Content Content `json:"content"`
	Trigger Trigger `json:"trigger"`
}

// Delivered is the log entry kept for every push actually sent.
type Delivered struct {
	ID     uuid.UUID        `json:"id"`
	Type   NotificationType `json:"type"`
	Title  string           `json:"title"`
	Body   string           `json:"body"`
	SentAt time.Time        `json:"sent_at"`
}

// DeviceToken is a registered push target for the account.
type DeviceToken struct {
	ID           uuid.UUID `json:"id"`
	Token        string    `json:"token"`
	Platform     string    `json:"platform"`
	RegisteredAt time.Time `json:"registered_at"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
