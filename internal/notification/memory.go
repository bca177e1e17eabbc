package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"lifeSpheresAPI/internal/types/notification"
)

// MemoryPlatform is an in-process Platform used by tests. Immediate sends
// are appended to Sent; future triggers stay in the scheduled map until
// cancelled or replaced (they never fire on their own, tests inspect them).
type MemoryPlatform struct {
	mu        sync.Mutex
	scheduled map[string]notification.Scheduled
	sent      []notification.Delivered
	failWith  error
}

func NewMemoryPlatform() *MemoryPlatform {
	return &MemoryPlatform{scheduled: make(map[string]notification.Scheduled)}
}

// FailWith makes every subsequent platform call return err. Used to test
// that platform failures never reach the streak write path.
func (p *MemoryPlatform) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failWith = err
}

func (p *MemoryPlatform) Schedule(ctx context.Context, id string, content notification.Content, trigger notification.Trigger) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failWith != nil {
		return p.failWith
	}

	if trigger.FireAt.IsZero() {
		p.sent = append(p.sent, notification.Delivered{
			ID:     uuid.New(),
			Type:   content.Type,
			Title:  content.Title,
			Body:   content.Body,
			SentAt: time.Now(),
		})
		return nil
	}

	p.scheduled[id] = notification.Scheduled{ID: id, Content: content, Trigger: trigger}
	return nil
}

func (p *MemoryPlatform) Cancel(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failWith != nil {
		return p.failWith
	}
	delete(p.scheduled, id)
	return nil
}

func (p *MemoryPlatform) ListScheduled(ctx context.Context) ([]notification.Scheduled, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	scheduled := make([]notification.Scheduled, 0, len(p.scheduled))
	for _, s := range p.scheduled {
		scheduled = append(scheduled, s)
	}
	return scheduled, nil
}

func (p *MemoryPlatform) PermissionStatus(ctx context.Context) (notification.PermissionStatus, error) {
	return notification.PermissionGranted, nil
}

func (p *MemoryPlatform) RequestPermission(ctx context.Context) (notification.PermissionStatus, error) {
	return notification.PermissionGranted, nil
}

// Sent returns a copy of everything delivered immediately.
func (p *MemoryPlatform) Sent() []notification.Delivered {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]notification.Delivered, len(p.sent))
	copy(out, p.sent)
	return out
}
