package inapp

import (
	"context"
	"time"

	"wedding_crm_backend/platform/apperr"
	"wedding_crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreate      = "notification.inapp.repository.create"
	opList        = "notification.inapp.repository.list"
	opCountUnread = "notification.inapp.repository.count_unread"
	opMarkRead    = "notification.inapp.repository.mark_read"
	opMarkAllRead = "notification.inapp.repository.mark_all_read"
	opLeadOwner   = "notification.inapp.repository.lead_owner"

	errRepoNotConfigured = "in-app notification repository not configured"
	errUserIDRequired    = "userId is required"
)

type Notification struct {
	ID            uuid.UUID `json:"id"`
	RecipientID   uuid.UUID `json:"recipientId"`
	RecipientRole string    `json:"recipientRole"`
	Type          string    `json:"type"`
	Message       string    `json:"message"`
	IsRead        bool      `json:"isRead"`
	CreatedAt     time.Time `json:"createdAt"`
}

type CreateParams struct {
	RecipientID   uuid.UUID
	RecipientRole string
	Type          string
	Message       string
}

// LeadOwner is the staff user who created a lead, with the couple's names.
type LeadOwner struct {
	LeadID         uuid.UUID
	OwnerID        *uuid.UUID
	PartnerOneName string
	PartnerTwoName string
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (Notification, error) {
	if r == nil || r.pool == nil {
		return Notification{}, apperr.Internal(errRepoNotConfigured).WithOp(opCreate)
	}
	if p.RecipientID == uuid.Nil {
		return Notification{}, apperr.Validation("recipientId is required").WithOp(opCreate)
	}
	if p.Type == "" || p.Message == "" {
		return Notification{}, apperr.Validation("type and message are required").WithOp(opCreate)
	}

	var n Notification
	err := r.pool.QueryRow(ctx, `
		INSERT INTO in_app_notifications (id, recipient_id, recipient_role, type, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, recipient_id, recipient_role, type, message, is_read, created_at
	`, uuid.New(), p.RecipientID, p.RecipientRole, p.Type, p.Message).Scan(
		&n.ID, &n.RecipientID, &n.RecipientRole, &n.Type, &n.Message, &n.IsRead, &n.CreatedAt,
	)
	if err != nil {
		return Notification{}, db.MapError(opCreate, err, "")
	}

	return n, nil
}

func (r *Repository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, apperr.Internal(errRepoNotConfigured).WithOp(opList)
	}
	if userID == uuid.Nil {
		return nil, 0, apperr.Validation(errUserIDRequired).WithOp(opList)
	}

	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM in_app_notifications WHERE recipient_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, db.MapError(opList, err, "")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, recipient_id, recipient_role, type, message, is_read, created_at
		FROM in_app_notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, db.MapError(opList, err, "")
	}
	defer rows.Close()

	items := make([]Notification, 0, limit)
	for rows.Next() {
		var n Notification
		if scanErr := rows.Scan(&n.ID, &n.RecipientID, &n.RecipientRole, &n.Type, &n.Message, &n.IsRead, &n.CreatedAt); scanErr != nil {
			return nil, 0, db.MapError(opList, scanErr, "")
		}
		items = append(items, n)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, db.MapError(opList, rowsErr, "")
	}

	return items, total, nil
}

func (r *Repository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	if r == nil || r.pool == nil {
		return 0, apperr.Internal(errRepoNotConfigured).WithOp(opCountUnread)
	}
	if userID == uuid.Nil {
		return 0, apperr.Validation(errUserIDRequired).WithOp(opCountUnread)
	}

	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM in_app_notifications
		WHERE recipient_id = $1 AND is_read = FALSE
	`, userID).Scan(&count)
	if err != nil {
		return 0, db.MapError(opCountUnread, err, "")
	}

	return count, nil
}

func (r *Repository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opMarkRead)
	}
	if userID == uuid.Nil || notificationID == uuid.Nil {
		return apperr.Validation("userId and notificationId are required").WithOp(opMarkRead)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE in_app_notifications
		SET is_read = TRUE
		WHERE id = $1 AND recipient_id = $2
	`, notificationID, userID)
	if err != nil {
		return db.MapError(opMarkRead, err, "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("notification not found")
	}

	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opMarkAllRead)
	}
	if userID == uuid.Nil {
		return apperr.Validation(errUserIDRequired).WithOp(opMarkAllRead)
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE in_app_notifications
		SET is_read = TRUE
		WHERE recipient_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return db.MapError(opMarkAllRead, err, "")
	}

	return nil
}

// LeadOwner resolves who should hear about changes to a lead.
func (r *Repository) LeadOwner(ctx context.Context, leadID uuid.UUID) (LeadOwner, error) {
	if r == nil || r.pool == nil {
		return LeadOwner{}, apperr.Internal(errRepoNotConfigured).WithOp(opLeadOwner)
	}

	owner := LeadOwner{LeadID: leadID}
	err := r.pool.QueryRow(ctx, `
		SELECT created_by, partner_one_name, partner_two_name FROM leads WHERE id = $1
	`, leadID).Scan(&owner.OwnerID, &owner.PartnerOneName, &owner.PartnerTwoName)
	if err != nil {
		return LeadOwner{}, db.MapError(opLeadOwner, err, "lead not found")
	}

	return owner, nil
}
