package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wedding_crm_backend/internal/leads/domain"
	"wedding_crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	leadNotFoundMsg = "lead not found"
	cardNotFoundMsg = "card not found"
)

// Repository provides database operations for leads.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `
	l.id, l.partner_one_name, l.partner_two_name, l.email, l.phone, l.wedding_date,
	l.budget_min, l.budget_max, l.budget, l.guest_count_min, l.guest_count_max,
	l.preferred_locations, l.service_types, l.status, l.stage, l.save_status,
	l.created_by, su.name, l.created_at, l.updated_at`

const leadFrom = `FROM leads l LEFT JOIN staff_users su ON su.id = l.created_by`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.PartnerOneName, &l.PartnerTwoName, &l.Email, &l.Phone, &l.WeddingDate,
		&l.BudgetMin, &l.BudgetMax, &l.Budget, &l.GuestCountMin, &l.GuestCountMax,
		&l.PreferredLocations, &l.ServiceTypes, &l.Status, &l.Stage, &l.SaveStatus,
		&l.CreatedBy, &l.AssigneeName, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` `+leadFrom+` WHERE l.id = $1`, id))
	if err != nil {
		return Lead{}, db.MapError("get lead", err, leadNotFoundMsg)
	}
	return lead, nil
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	now := time.Now().UTC()
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leads (
			id, partner_one_name, partner_two_name, email, phone, wedding_date,
			budget_min, budget_max, budget, guest_count_min, guest_count_max,
			preferred_locations, service_types, status, stage, save_status,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $18)`,
		id, params.PartnerOneName, params.PartnerTwoName, params.Email, params.Phone, params.WeddingDate,
		params.BudgetMin, params.BudgetMax, params.Budget, params.GuestCountMin, params.GuestCountMax,
		nonNil(params.PreferredLocations), nonNil(params.ServiceTypes), params.Status, params.Stage, params.SaveStatus,
		params.CreatedBy, now,
	)
	if err != nil {
		return Lead{}, db.MapError("create lead", err, "")
	}
	return r.GetByID(ctx, id)
}

// Update applies the non-nil fields of patch and resets updated_at.
// A missing row is reported as NotFound.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, patch LeadPatch) (Lead, error) {
	set := newSetBuilder(id)
	set.add("partner_one_name", patch.PartnerOneName)
	set.add("partner_two_name", patch.PartnerTwoName)
	set.add("email", patch.Email)
	set.add("phone", patch.Phone)
	if patch.ClearWeddingDate {
		set.addValue("wedding_date", nil)
	} else {
		set.add("wedding_date", patch.WeddingDate)
	}
	set.add("budget_min", patch.BudgetMin)
	set.add("budget_max", patch.BudgetMax)
	if patch.ClearBudget {
		set.addValue("budget", nil)
	} else {
		set.add("budget", patch.Budget)
	}
	set.add("guest_count_min", patch.GuestCountMin)
	set.add("guest_count_max", patch.GuestCountMax)
	set.add("preferred_locations", patch.PreferredLocations)
	set.add("service_types", patch.ServiceTypes)
	set.add("status", patch.Status)
	set.add("stage", patch.Stage)
	set.add("save_status", patch.SaveStatus)

	return r.exec(ctx, "update lead", set)
}

// UpdateStatus moves a lead to status/stage and restarts its time in stage.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status, stage string) (Lead, error) {
	set := newSetBuilder(id)
	set.addValue("status", status)
	set.addValue("stage", stage)
	return r.exec(ctx, "update lead status", set)
}

// SetSaveStatus changes only the save status (archive axis).
func (r *Repository) SetSaveStatus(ctx context.Context, id uuid.UUID, saveStatus string) (Lead, error) {
	set := newSetBuilder(id)
	set.addValue("save_status", saveStatus)
	return r.exec(ctx, "set lead save status", set)
}

func (r *Repository) exec(ctx context.Context, op string, set *setBuilder) (Lead, error) {
	query, args := set.build()
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return Lead{}, db.MapError(op, err, "")
	}
	if tag.RowsAffected() == 0 {
		return Lead{}, db.MapError(op, pgx.ErrNoRows, leadNotFoundMsg)
	}
	return r.GetByID(ctx, set.id)
}

var sortColumns = map[string]string{
	SortUpdatedAt:   "l.updated_at",
	SortWeddingDate: "l.wedding_date",
	SortCreatedAt:   "l.created_at",
}

// List returns one page of leads matching filter.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, error) {
	where, args := buildWhere(params.Filter)

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = sortColumns[SortUpdatedAt]
	}
	order := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		order = "ASC"
	}

	limit := params.PageSize
	offset := (params.Page - 1) * params.PageSize
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY %s %s NULLS LAST, l.id ASC LIMIT $%d OFFSET $%d`,
		leadColumns, leadFrom, where, column, order, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.MapError("list leads", err, "")
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, db.MapError("scan lead", err, "")
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError("iterate leads", err, "")
	}
	return leads, nil
}

// Count returns how many leads match filter.
func (r *Repository) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := buildWhere(filter)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) `+leadFrom+` `+where, args...).Scan(&total); err != nil {
		return 0, db.MapError("count leads", err, "")
	}
	return total, nil
}

// GetCardSummary resolves a Kanban card to its vendor and originating lead.
func (r *Repository) GetCardSummary(ctx context.Context, cardID uuid.UUID) (CardSummary, error) {
	var c CardSummary
	err := r.pool.QueryRow(ctx, `
		SELECT c.id, c.vendor_id, v.name, c.original_lead_id, c.created_at, c.updated_at
		FROM cards c
		JOIN vendors v ON v.id = c.vendor_id
		WHERE c.id = $1`, cardID).Scan(&c.ID, &c.VendorID, &c.VendorName, &c.OriginalLeadID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return CardSummary{}, db.MapError("get card summary", err, cardNotFoundMsg)
	}
	return c, nil
}

func buildWhere(filter ListFilter) (string, []interface{}) {
	clauses := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)

	if !filter.IncludeArchived {
		args = append(args, domain.SaveStatusArchived)
		clauses = append(clauses, fmt.Sprintf("l.save_status <> $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("l.status = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(l.partner_one_name ILIKE $%d OR l.partner_two_name ILIKE $%d OR l.email ILIKE $%d)", n, n, n))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

type setBuilder struct {
	id      uuid.UUID
	columns []string
	args    []interface{}
}

func newSetBuilder(id uuid.UUID) *setBuilder {
	return &setBuilder{id: id, args: []interface{}{id}}
}

func (b *setBuilder) addValue(column string, value interface{}) {
	b.args = append(b.args, value)
	b.columns = append(b.columns, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *setBuilder) add(column string, value interface{}) {
	switch v := value.(type) {
	case *string:
		if v != nil {
			b.addValue(column, *v)
		}
	case *int64:
		if v != nil {
			b.addValue(column, *v)
		}
	case *int:
		if v != nil {
			b.addValue(column, *v)
		}
	case *time.Time:
		if v != nil {
			b.addValue(column, *v)
		}
	case *[]string:
		if v != nil {
			b.addValue(column, nonNil(*v))
		}
	}
}

func (b *setBuilder) build() (string, []interface{}) {
	args := append(b.args, time.Now().UTC())
	columns := append(b.columns, fmt.Sprintf("updated_at = $%d", len(args)))
	return `UPDATE leads SET ` + strings.Join(columns, ", ") + ` WHERE id = $1`, args
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
