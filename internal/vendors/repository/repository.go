package repository

import (
	"context"
	"strings"
	"time"

	"wedding_crm_backend/platform/apperr"
	"wedding_crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	vendorNotFoundMsg = "vendor not found"
	leadNotFoundMsg   = "lead not found"
)

// Repository provides database operations for vendors.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new vendors repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Vendor struct {
	ID            uuid.UUID
	Name          string
	Email         string
	ContactNo     string
	ServiceTypes  string
	MinimumAmount int64
	MaximumAmount int64
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type TeamMember struct {
	ID       uuid.UUID
	VendorID uuid.UUID
	Name     string
	Email    string
}

// LeadBudget is the part of a lead the matcher needs.
type LeadBudget struct {
	LeadID       uuid.UUID
	BudgetMin    int64
	BudgetMax    int64
	Budget       *int64
	ServiceTypes []string
}

// OverlapQuery selects active vendors whose range intersects [Min, Max].
type OverlapQuery struct {
	Min         int64
	Max         int64
	ServiceType *string
	Limit       int
}

const vendorColumns = `id, name, email, contact_no, service_types, minimum_amount, maximum_amount, is_active, created_at, updated_at`

// ListActiveByBudgetOverlap is the matcher prefilter. Rows come back in
// creation order so equal scores rank the same way on every call.
func (r *Repository) ListActiveByBudgetOverlap(ctx context.Context, q OverlapQuery) ([]Vendor, error) {
	query := `
		SELECT ` + vendorColumns + `
		FROM vendors
		WHERE is_active = TRUE
			AND minimum_amount <= $1
			AND maximum_amount >= $2
			AND (
				$3::text IS NULL
				OR lower($3::text) = ANY(regexp_split_to_array(lower(service_types), '\s*,\s*'))
			)
		ORDER BY created_at ASC, id ASC
		LIMIT $4`

	var serviceType *string
	if q.ServiceType != nil {
		trimmed := strings.TrimSpace(*q.ServiceType)
		if trimmed != "" {
			serviceType = &trimmed
		}
	}

	rows, err := r.pool.Query(ctx, query, q.Max, q.Min, serviceType, q.Limit)
	if err != nil {
		return nil, apperr.Persistence("list vendors by budget overlap", err)
	}
	defer rows.Close()

	vendors := make([]Vendor, 0)
	for rows.Next() {
		var v Vendor
		if err := rows.Scan(
			&v.ID, &v.Name, &v.Email, &v.ContactNo, &v.ServiceTypes,
			&v.MinimumAmount, &v.MaximumAmount, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, apperr.Persistence("scan vendor", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("iterate vendors", err)
	}
	return vendors, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Vendor, error) {
	var v Vendor
	err := r.pool.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id).Scan(
		&v.ID, &v.Name, &v.Email, &v.ContactNo, &v.ServiceTypes,
		&v.MinimumAmount, &v.MaximumAmount, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
	)
	if db.IsNoRows(err) {
		return Vendor{}, apperr.NotFound(vendorNotFoundMsg)
	}
	if err != nil {
		return Vendor{}, apperr.Persistence("get vendor", err)
	}
	return v, nil
}

func (r *Repository) ListTeamMembers(ctx context.Context, vendorID uuid.UUID) ([]TeamMember, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, vendor_id, name, email
		FROM vendor_team_members
		WHERE vendor_id = $1
		ORDER BY name ASC, id ASC`, vendorID)
	if err != nil {
		return nil, apperr.Persistence("list team members", err)
	}
	defer rows.Close()

	members := make([]TeamMember, 0)
	for rows.Next() {
		var m TeamMember
		if err := rows.Scan(&m.ID, &m.VendorID, &m.Name, &m.Email); err != nil {
			return nil, apperr.Persistence("scan team member", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("iterate team members", err)
	}
	return members, nil
}

// GetLeadBudget reads the budget fields of a lead, archived or not.
func (r *Repository) GetLeadBudget(ctx context.Context, leadID uuid.UUID) (LeadBudget, error) {
	b := LeadBudget{LeadID: leadID}
	err := r.pool.QueryRow(ctx, `
		SELECT budget_min, budget_max, budget, service_types
		FROM leads
		WHERE id = $1`, leadID).Scan(&b.BudgetMin, &b.BudgetMax, &b.Budget, &b.ServiceTypes)
	if db.IsNoRows(err) {
		return LeadBudget{}, apperr.NotFound(leadNotFoundMsg)
	}
	if err != nil {
		return LeadBudget{}, apperr.Persistence("get lead budget", err)
	}
	return b, nil
}
