// Package notifier is the fire-and-forget notification entry point. A
// notification is handed to the task queue when one is configured and is
// otherwise stored and pushed right away.
package notifier

import (
	"context"
	"strings"

	"wedding_crm_backend/internal/notification/inapp"
	"wedding_crm_backend/platform/apperr"
	"wedding_crm_backend/platform/dispatch"
	"wedding_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// RoleStaff is the recipient role of pipeline staff.
const RoleStaff = "staff"

const effectSend = "notification.send"

// Notification is a message for one recipient. It doubles as the queued task payload.
type Notification struct {
	Message       string    `json:"message"`
	Type          string    `json:"type"`
	RecipientID   uuid.UUID `json:"recipientId"`
	RecipientRole string    `json:"recipientRole"`
}

// Validate reports whether n can be delivered.
func (n Notification) Validate() error {
	if n.RecipientID == uuid.Nil {
		return apperr.Validation("recipientId is required")
	}
	if strings.TrimSpace(n.Message) == "" || strings.TrimSpace(n.Type) == "" {
		return apperr.Validation("type and message are required")
	}
	return nil
}

// Enqueuer hands a notification to the background worker.
type Enqueuer interface {
	EnqueueNotification(ctx context.Context, n Notification) error
}

// Persister stores a notification and pushes it to the recipient.
type Persister interface {
	Send(ctx context.Context, p inapp.SendParams) (inapp.Notification, error)
}

// Service sends notifications without ever failing its caller.
type Service struct {
	persister  Persister
	enqueuer   Enqueuer
	dispatcher *dispatch.Dispatcher
	log        *logger.Logger
}

// New creates a notifier. Without an enqueuer every notification is delivered in-process.
func New(persister Persister, dispatcher *dispatch.Dispatcher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if dispatcher == nil {
		dispatcher = dispatch.New(log, nil, 0)
	}
	return &Service{persister: persister, dispatcher: dispatcher, log: log}
}

func (s *Service) SetEnqueuer(e Enqueuer) { s.enqueuer = e }

// SendNotification queues or delivers n in the background. Failures are
// logged and dropped. The returned channel closes once the attempt is over.
func (s *Service) SendNotification(ctx context.Context, n Notification) <-chan struct{} {
	if n.RecipientRole == "" {
		n.RecipientRole = RoleStaff
	}
	return s.dispatcher.Go(ctx, effectSend, func(ctx context.Context) error {
		if err := n.Validate(); err != nil {
			return err
		}
		if s.enqueuer != nil {
			err := s.enqueuer.EnqueueNotification(ctx, n)
			if err == nil {
				return nil
			}
			s.log.Warn("notification enqueue failed, delivering inline",
				"recipientId", n.RecipientID, "type", n.Type, "error", err)
		}
		return s.Deliver(ctx, n)
	}, "recipientId", n.RecipientID, "type", n.Type)
}

// Deliver stores n and pushes it over SSE. The queue worker calls it for
// every dequeued task.
func (s *Service) Deliver(ctx context.Context, n Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	_, err := s.persister.Send(ctx, inapp.SendParams{
		RecipientID:   n.RecipientID,
		RecipientRole: n.RecipientRole,
		Type:          n.Type,
		Message:       n.Message,
	})
	return err
}
