package inapp

import (
	"context"

	"wedding_crm_backend/internal/notification/sse"
	"wedding_crm_backend/platform/apperr"
	"wedding_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence the in-app service depends on.
type Store interface {
	Create(ctx context.Context, p CreateParams) (Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, int, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

type Service struct {
	repo Store
	sse  *sse.Service
	log  *logger.Logger
}

func NewService(repo Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		log:  log,
	}
}

// SetSSE injects the SSE service (circular dependency avoidance).
func (s *Service) SetSSE(sseSvc *sse.Service) {
	s.sse = sseSvc
}

type SendParams struct {
	RecipientID   uuid.UUID
	RecipientRole string
	Type          string
	Message       string
}

// Send persists the notification and pushes it via SSE if the user is online.
func (s *Service) Send(ctx context.Context, p SendParams) (Notification, error) {
	if s == nil || s.repo == nil {
		return Notification{}, apperr.Internal("in-app notification service not configured")
	}

	notif, err := s.repo.Create(ctx, CreateParams{
		RecipientID:   p.RecipientID,
		RecipientRole: p.RecipientRole,
		Type:          p.Type,
		Message:       p.Message,
	})
	if err != nil {
		s.log.Error("failed to persist in-app notification", "error", err, "recipientId", p.RecipientID)
		return Notification{}, err
	}

	if s.sse != nil {
		s.sse.Publish(p.RecipientID, sse.Event{
			Type: sse.EventInAppNotification,
			Data: notif,
		})
	}

	return notif, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, int, error) {
	page = max(page, 1)
	if pageSize < 1 {
		pageSize = 20
	}
	pageSize = min(pageSize, 100)

	offset := (page - 1) * pageSize
	return s.repo.List(ctx, userID, pageSize, offset)
}

func (s *Service) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}
