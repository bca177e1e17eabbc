package notification

import (
	"context"

	"lifeSpheresAPI/internal/types/notification"
)

// Platform is the external notification delivery surface. Scheduling under
// an identifier replaces any notification previously scheduled under the
// same identifier, so re-running a scheduler is idempotent.
type Platform interface {
	Schedule(ctx context.Context, id string, content notification.Content, trigger notification.Trigger) error
	Cancel(ctx context.Context, id string) error
	ListScheduled(ctx context.Context) ([]notification.Scheduled, error)
	PermissionStatus(ctx context.Context) (notification.PermissionStatus, error)
	RequestPermission(ctx context.Context) (notification.PermissionStatus, error)
}

// TokenSource supplies the device tokens a push should fan out to.
type TokenSource interface {
	DeviceTokens(ctx context.Context) ([]notification.DeviceToken, error)
}
