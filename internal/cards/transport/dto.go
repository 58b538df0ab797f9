package transport

import (
	"time"

	"github.com/google/uuid"
)

// VendorAssignment is one vendor with the team members working the lead.
type VendorAssignment struct {
	VendorID      uuid.UUID   `json:"vendorId" validate:"required"`
	TeamMemberIDs []uuid.UUID `json:"teamMemberIds" validate:"omitempty,dive,required"`
}

// ReconcileCardsRequest is the desired vendor assignment for a lead.
// Listing a vendor twice merges its team members.
type ReconcileCardsRequest struct {
	Assignments []VendorAssignment `json:"assignments" validate:"omitempty,dive"`
}

// ReplaceTeamRequest sets the complete team of one card.
type ReplaceTeamRequest struct {
	TeamMemberIDs []uuid.UUID `json:"teamMemberIds" validate:"omitempty,dive,required"`
}

type CardResponse struct {
	ID             uuid.UUID   `json:"id"`
	VendorID       uuid.UUID   `json:"vendorId"`
	OriginalLeadID uuid.UUID   `json:"originalLeadId"`
	TeamMemberIDs  []uuid.UUID `json:"teamMemberIds"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

type ReconcileCardsResponse struct {
	LeadID   uuid.UUID      `json:"leadId"`
	Created  []uuid.UUID    `json:"created"`
	Retained []uuid.UUID    `json:"retained"`
	Deleted  []uuid.UUID    `json:"deleted"`
	Cards    []CardResponse `json:"cards"`
}

type VendorSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type LeadSummary struct {
	ID          uuid.UUID  `json:"id"`
	Couple      string     `json:"couple"`
	Status      string     `json:"status"`
	Stage       string     `json:"stage"`
	WeddingDate *time.Time `json:"weddingDate,omitempty"`
}

// KanbanCardResponse is a card with the vendor and lead it links.
type KanbanCardResponse struct {
	CardResponse
	Vendor       VendorSummary `json:"vendor"`
	OriginalLead LeadSummary   `json:"originalLead"`
}

// Desired folds assignments into the vendor -> team map the reconciler takes.
func (r ReconcileCardsRequest) Desired() map[uuid.UUID][]uuid.UUID {
	desired := make(map[uuid.UUID][]uuid.UUID, len(r.Assignments))
	for _, a := range r.Assignments {
		desired[a.VendorID] = append(desired[a.VendorID], a.TeamMemberIDs...)
	}
	return desired
}
