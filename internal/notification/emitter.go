package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/google/uuid"
)

// Emitter turns a request into a delivered notification.
type Emitter interface {
	Emit(ctx context.Context, req domain.NotificationRequest) (*domain.Notification, error)
}

// Publisher delivers an already stamped notification over one channel.
type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

type dispatcher struct {
	publisher Publisher
	now       func() time.Time
}

// NewEmitter validates requests, assigns an ID and timestamp, and hands the
// result to every publisher.
func NewEmitter(publishers ...Publisher) Emitter {
	return &dispatcher{
		publisher: Multi(publishers...),
		now:       time.Now,
	}
}

func (d *dispatcher) Emit(ctx context.Context, req domain.NotificationRequest) (*domain.Notification, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	n := domain.Notification{
		ID:                  uuid.NewString(),
		NotificationRequest: req,
		CreatedAt:           d.now().UTC(),
	}

	if err := d.publisher.Publish(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to publish notification %s: %w", n.ID, err)
	}
	return &n, nil
}

func validate(req domain.NotificationRequest) error {
	switch req.Type {
	case domain.NotificationLowStock, domain.NotificationOrderUpdate, domain.NotificationSystem:
	default:
		return fmt.Errorf("%w: unknown notification type %q", domain.ErrValidation, req.Type)
	}
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: notification title is required", domain.ErrValidation)
	}
	if len(req.RecipientIDs) == 0 {
		return fmt.Errorf("%w: notification needs at least one recipient", domain.ErrValidation)
	}
	return nil
}

type multiPublisher []Publisher

// Multi fans a notification out to every publisher. All publishers are tried;
// their errors are joined.
func Multi(publishers ...Publisher) Publisher {
	out := make(multiPublisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (m multiPublisher) Publish(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(ctx context.Context, n domain.Notification) error {
	return nil
}
