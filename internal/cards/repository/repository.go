package repository

import (
	"context"
	"fmt"
	"time"

	"wedding_crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cardNotFoundMsg = "card not found"

// Repository provides database operations for Kanban cards and their team links.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new cards repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Card is a vendor's projection of a lead, with its current team links.
type Card struct {
	ID             uuid.UUID
	VendorID       uuid.UUID
	OriginalLeadID uuid.UUID
	TeamMemberIDs  []uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CardDetail is a card joined with the vendor and lead summaries shown on the board.
type CardDetail struct {
	Card
	VendorName     string
	VendorEmail    string
	PartnerOneName string
	PartnerTwoName string
	LeadStatus     string
	LeadStage      string
	WeddingDate    *time.Time
}

// ListByLead returns every card of a lead with its team links.
func (r *Repository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]Card, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.vendor_id, c.original_lead_id, c.created_at, c.updated_at,
			COALESCE(array_agg(ct.team_member_id ORDER BY ct.created_at, ct.id)
				FILTER (WHERE ct.team_member_id IS NOT NULL), '{}') AS team_member_ids
		FROM cards c
		LEFT JOIN card_teams ct ON ct.card_id = c.id
		WHERE c.original_lead_id = $1
		GROUP BY c.id
		ORDER BY c.created_at ASC, c.id ASC`, leadID)
	if err != nil {
		return nil, db.MapError("list cards by lead", err, "")
	}
	defer rows.Close()

	cards := make([]Card, 0)
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.ID, &c.VendorID, &c.OriginalLeadID, &c.CreatedAt, &c.UpdatedAt, &c.TeamMemberIDs); err != nil {
			return nil, db.MapError("scan card", err, "")
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError("iterate cards", err, "")
	}
	return cards, nil
}

// GetByID returns a single card with its team links.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Card, error) {
	var c Card
	err := r.pool.QueryRow(ctx, `
		SELECT c.id, c.vendor_id, c.original_lead_id, c.created_at, c.updated_at,
			COALESCE(array_agg(ct.team_member_id ORDER BY ct.created_at, ct.id)
				FILTER (WHERE ct.team_member_id IS NOT NULL), '{}')
		FROM cards c
		LEFT JOIN card_teams ct ON ct.card_id = c.id
		WHERE c.id = $1
		GROUP BY c.id`, id).Scan(&c.ID, &c.VendorID, &c.OriginalLeadID, &c.CreatedAt, &c.UpdatedAt, &c.TeamMemberIDs)
	if err != nil {
		return Card{}, db.MapError("get card", err, cardNotFoundMsg)
	}
	return c, nil
}

// GetDetail returns a card joined with its vendor and originating lead.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (CardDetail, error) {
	card, err := r.GetByID(ctx, id)
	if err != nil {
		return CardDetail{}, err
	}

	d := CardDetail{Card: card}
	err = r.pool.QueryRow(ctx, `
		SELECT v.name, v.email, l.partner_one_name, l.partner_two_name, l.status, l.stage, l.wedding_date
		FROM cards c
		JOIN vendors v ON v.id = c.vendor_id
		JOIN leads l ON l.id = c.original_lead_id
		WHERE c.id = $1`, id).Scan(
		&d.VendorName, &d.VendorEmail, &d.PartnerOneName, &d.PartnerTwoName, &d.LeadStatus, &d.LeadStage, &d.WeddingDate,
	)
	if err != nil {
		return CardDetail{}, db.MapError("get card detail", err, cardNotFoundMsg)
	}
	return d, nil
}

// Create inserts a card for (lead, vendor). A concurrent insert of the same
// pair resolves to the existing row.
func (r *Repository) Create(ctx context.Context, leadID, vendorID uuid.UUID) (Card, error) {
	now := time.Now().UTC()
	c := Card{OriginalLeadID: leadID, VendorID: vendorID}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO cards (id, vendor_id, original_lead_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (original_lead_id, vendor_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`,
		uuid.New(), vendorID, leadID, now,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Card{}, db.MapError("create card", err, "")
	}
	return c, nil
}

// DeleteMany removes cards and their team links in one transaction, links first.
func (r *Repository) DeleteMany(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.MapError("begin delete cards", err, "")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM card_teams WHERE card_id = ANY($1)`, ids); err != nil {
		return db.MapError("delete card team links", err, "")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cards WHERE id = ANY($1)`, ids); err != nil {
		return db.MapError("delete cards", err, "")
	}

	if err := tx.Commit(ctx); err != nil {
		return db.MapError("commit delete cards", err, "")
	}
	return nil
}

// ReplaceTeam makes the card's team links exactly memberIDs: all current
// links are deleted, then one link per member is inserted, in one transaction.
func (r *Repository) ReplaceTeam(ctx context.Context, cardID uuid.UUID, memberIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.MapError("begin replace card team", err, "")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE cards SET updated_at = $2 WHERE id = $1`, cardID, time.Now().UTC())
	if err != nil {
		return db.MapError("touch card", err, "")
	}
	if tag.RowsAffected() == 0 {
		return db.MapError("touch card", pgx.ErrNoRows, cardNotFoundMsg)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM card_teams WHERE card_id = $1`, cardID); err != nil {
		return db.MapError("delete card team links", err, "")
	}

	if len(memberIDs) > 0 {
		batch := &pgx.Batch{}
		now := time.Now().UTC()
		for _, memberID := range memberIDs {
			batch.Queue(`
				INSERT INTO card_teams (id, card_id, team_member_id, created_at)
				VALUES ($1, $2, $3, $4)`, uuid.New(), cardID, memberID, now)
		}
		results := tx.SendBatch(ctx, batch)
		for range memberIDs {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return db.MapError(fmt.Sprintf("insert card team link for card %s", cardID), err, "")
			}
		}
		if err := results.Close(); err != nil {
			return db.MapError("close card team batch", err, "")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return db.MapError("commit replace card team", err, "")
	}
	return nil
}
