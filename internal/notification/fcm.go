package notification

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"lifeSpheresAPI/internal/types/notification"
)

// FCMPlatform implements Platform on top of Firebase Cloud Messaging. FCM
// itself is send-only, so future triggers are held in-process on timers
// until they fire.
type FCMPlatform struct {
	client *messaging.Client
	tokens TokenSource

	mu      sync.Mutex
	pending map[string]*pendingPush
}

type pendingPush struct {
	scheduled notification.Scheduled
	timer     *time.Timer
}

// NewFCMPlatform initializes the FCM client. Credentials come from the
// FCM_SERVICE_ACCOUNT_JSON environment variable (Base64 encoded) when set,
// falling back to a local service account key file.
func NewFCMPlatform(localFilePath string, tokens TokenSource) (*FCMPlatform, error) {
	var opt option.ClientOption

	encodedCreds := os.Getenv("FCM_SERVICE_ACCOUNT_JSON")
	if encodedCreds != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials from FCM_SERVICE_ACCOUNT_JSON: %v", err)
		}
		opt = option.WithCredentialsJSON(decoded)
		log.Println("FCM Platform: Initializing from FCM_SERVICE_ACCOUNT_JSON environment variable.")
	} else {
		if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
			return nil, fmt.Errorf("local firebase file not found: %s, and FCM_SERVICE_ACCOUNT_JSON environment variable is not set", localFilePath)
		}
		opt = option.WithCredentialsFile(localFilePath)
		log.Printf("FCM Platform: Initializing from local file: %s.", localFilePath)
	}

	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %v", err)
	}

	return &FCMPlatform{
		client:  client,
		tokens:  tokens,
		pending: make(map[string]*pendingPush),
	}, nil
}

// Schedule registers content to fire at the trigger time, replacing any
// notification previously scheduled under the same id. A zero or past
// trigger sends immediately.
func (p *FCMPlatform) Schedule(ctx context.Context, id string, content notification.Content, trigger notification.Trigger) error {
	p.cancelPending(id)

	delay := time.Until(trigger.FireAt)
	if trigger.FireAt.IsZero() || delay <= 0 {
		return p.send(ctx, content)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	entry := &pendingPush{
		scheduled: notification.Scheduled{ID: id, Content: content, Trigger: trigger},
	}
	entry.timer = time.AfterFunc(delay, func() {
		p.mu.Lock()
		delete(p.pending, id)
		p.mu.Unlock()

		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := p.send(sendCtx, content); err != nil {
			log.Printf("FCM: failed to deliver scheduled notification %s: %v", id, err)
		}
	})
	p.pending[id] = entry

	return nil
}

func (p *FCMPlatform) Cancel(ctx context.Context, id string) error {
	p.cancelPending(id)
	return nil
}

func (p *FCMPlatform) ListScheduled(ctx context.Context) ([]notification.Scheduled, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	scheduled := make([]notification.Scheduled, 0, len(p.pending))
	for _, entry := range p.pending {
		scheduled = append(scheduled, entry.scheduled)
	}
	return scheduled, nil
}

// PermissionStatus on the server side reflects whether the messaging client
// initialized; per-device permission lives with the mobile client.
func (p *FCMPlatform) PermissionStatus(ctx context.Context) (notification.PermissionStatus, error) {
	if p.client == nil {
		return notification.PermissionUndetermined, nil
	}
	return notification.PermissionGranted, nil
}

func (p *FCMPlatform) RequestPermission(ctx context.Context) (notification.PermissionStatus, error) {
	return p.PermissionStatus(ctx)
}

func (p *FCMPlatform) cancelPending(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.pending[id]; ok {
		entry.timer.Stop()
		delete(p.pending, id)
	}
}

func (p *FCMPlatform) send(ctx context.Context, content notification.Content) error {
	tokens, err := p.tokens.DeviceTokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to load device tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	data := map[string]string{"type": string(content.Type)}
	for k, v := range content.Data {
		data[k] = v
	}

	// Send one by one; the /batch endpoint 404s on current FCM projects.
	successCount := 0
	failureCount := 0

	for _, t := range tokens {
		message := &messaging.Message{
			Token: t.Token,
			Notification: &messaging.Notification{
				Title: content.Title,
				Body:  content.Body,
			},
			Data: data,
			Android: &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					Sound: "default",
				},
			},
		}

		if _, err := p.client.Send(ctx, message); err != nil {
			log.Printf("FCM: Failed to send to token %s: %v", t.Token, err)
			failureCount++
		} else {
			successCount++
		}
	}

	log.Printf("FCM: Sent %d messages, %d failed", successCount, failureCount)

	if successCount == 0 && failureCount > 0 {
		return fmt.Errorf("all push notifications failed")
	}
	return nil
}
