package repository

import (
	"context"
	"errors"
	"time"

	"wedding_crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const serviceNotFoundMsg = "wedding plan service not found"

// PlanService is one vendor-service line item of a wedding plan.
type PlanService struct {
	ID              uuid.UUID
	WeddingPlanID   uuid.UUID
	VendorServiceID uuid.UUID
	Status          string
	Reason          *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PlanServiceDetail is a line item with its vendor service, vendor and lead.
type PlanServiceDetail struct {
	PlanService
	VendorServiceName  string
	VendorServicePrice int64
	VendorID           uuid.UUID
	VendorName         string
	VendorEmail        string
	LeadID             *uuid.UUID
	PartnerOneName     *string
	PartnerTwoName     *string
	LeadStatus         *string
	LeadStage          *string
	WeddingDate        *time.Time
}

// Repository provides database operations for wedding plans and proposals.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new wedding plans repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpdateServiceStatus records a decision on one line item. An empty reason is
// stored as NULL.
func (r *Repository) UpdateServiceStatus(ctx context.Context, id uuid.UUID, status, reason string) (PlanService, error) {
	var reasonArg *string
	if reason != "" {
		reasonArg = &reason
	}

	var s PlanService
	err := r.pool.QueryRow(ctx, `
		UPDATE wedding_plan_services
		SET status = $2, reason = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, wedding_plan_id, vendor_service_id, status, reason, created_at, updated_at`,
		id, status, reasonArg,
	).Scan(&s.ID, &s.WeddingPlanID, &s.VendorServiceID, &s.Status, &s.Reason, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return PlanService{}, db.MapError("update wedding plan service", err, serviceNotFoundMsg)
	}
	return s, nil
}

// GetPlanLeadID returns the lead a wedding plan was created for, or nil when
// the plan has none.
func (r *Repository) GetPlanLeadID(ctx context.Context, planID uuid.UUID) (*uuid.UUID, error) {
	var leadID *uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT lead_id FROM wedding_plans WHERE id = $1`, planID).Scan(&leadID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, db.MapError("get wedding plan lead", err, "")
	}
	return leadID, nil
}

// GetCurrentProposalID returns the lead's most recently created proposal, or
// nil when there is none.
func (r *Repository) GetCurrentProposalID(ctx context.Context, leadID uuid.UUID) (*uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT id FROM proposals
		WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, leadID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, db.MapError("get current proposal", err, "")
	}
	return &id, nil
}

// UpdateManyByProposalAndVendorService sets status on every proposal line
// item for vendorServiceID and returns how many rows changed.
func (r *Repository) UpdateManyByProposalAndVendorService(ctx context.Context, proposalID, vendorServiceID uuid.UUID, status string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE proposal_services
		SET status = $3, updated_at = now()
		WHERE proposal_id = $1 AND vendor_service_id = $2`,
		proposalID, vendorServiceID, status)
	if err != nil {
		return 0, db.MapError("mirror proposal service status", err, "")
	}
	return tag.RowsAffected(), nil
}

// GetServiceDetail loads a line item with its vendor service, vendor and lead.
func (r *Repository) GetServiceDetail(ctx context.Context, id uuid.UUID) (PlanServiceDetail, error) {
	var d PlanServiceDetail
	err := r.pool.QueryRow(ctx, `
		SELECT wps.id, wps.wedding_plan_id, wps.vendor_service_id, wps.status, wps.reason,
			wps.created_at, wps.updated_at,
			vs.name, vs.price, v.id, v.name, v.email,
			l.id, l.partner_one_name, l.partner_two_name, l.status, l.stage, l.wedding_date
		FROM wedding_plan_services wps
		JOIN vendor_services vs ON vs.id = wps.vendor_service_id
		JOIN vendors v ON v.id = vs.vendor_id
		JOIN wedding_plans wp ON wp.id = wps.wedding_plan_id
		LEFT JOIN leads l ON l.id = wp.lead_id
		WHERE wps.id = $1`, id).Scan(
		&d.ID, &d.WeddingPlanID, &d.VendorServiceID, &d.Status, &d.Reason,
		&d.CreatedAt, &d.UpdatedAt,
		&d.VendorServiceName, &d.VendorServicePrice, &d.VendorID, &d.VendorName, &d.VendorEmail,
		&d.LeadID, &d.PartnerOneName, &d.PartnerTwoName, &d.LeadStatus, &d.LeadStage, &d.WeddingDate,
	)
	if err != nil {
		return PlanServiceDetail{}, db.MapError("get wedding plan service", err, serviceNotFoundMsg)
	}
	return d, nil
}
