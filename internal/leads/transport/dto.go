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

// Desired folds assignments into the vendor -> team map the reconciler takes.
// A vendor listed twice gets the union of its members.
func Desired(assignments []VendorAssignment) map[uuid.UUID][]uuid.UUID {
	desired := make(map[uuid.UUID][]uuid.UUID, len(assignments))
	for _, a := range assignments {
		desired[a.VendorID] = append(desired[a.VendorID], a.TeamMemberIDs...)
	}
	return desired
}

// CreateLeadRequest is an inquiry intake. Without vendorAssignments the best
// matching vendors are assigned automatically.
type CreateLeadRequest struct {
	PartnerOneName     string             `json:"partnerOneName" validate:"required,max=120"`
	PartnerTwoName     string             `json:"partnerTwoName" validate:"omitempty,max=120"`
	Email              string             `json:"email" validate:"required,email"`
	Phone              string             `json:"phone" validate:"omitempty,max=32"`
	WeddingDate        *time.Time         `json:"weddingDate,omitempty"`
	BudgetMin          int64              `json:"budgetMin" validate:"gte=0"`
	BudgetMax          int64              `json:"budgetMax" validate:"gtefield=BudgetMin"`
	Budget             *int64             `json:"budget,omitempty" validate:"omitempty,gte=0"`
	GuestCountMin      int                `json:"guestCountMin" validate:"gte=0"`
	GuestCountMax      int                `json:"guestCountMax" validate:"gtefield=GuestCountMin"`
	PreferredLocations []string           `json:"preferredLocations" validate:"omitempty,dive,max=120"`
	ServiceTypes       []string           `json:"serviceTypes" validate:"omitempty,dive,max=60"`
	SaveStatus         string             `json:"saveStatus" validate:"omitempty,oneof=DRAFT SUBMITTED"`
	VendorAssignments  []VendorAssignment `json:"vendorAssignments,omitempty" validate:"omitempty,dive"`
}

// UpdatePipelineLeadRequest patches a lead; omitted fields stay unchanged.
type UpdatePipelineLeadRequest struct {
	PartnerOneName     *string            `json:"partnerOneName,omitempty" validate:"omitempty,min=1,max=120"`
	PartnerTwoName     *string            `json:"partnerTwoName,omitempty" validate:"omitempty,max=120"`
	Email              *string            `json:"email,omitempty" validate:"omitempty,email"`
	Phone              *string            `json:"phone,omitempty" validate:"omitempty,max=32"`
	WeddingDate        *time.Time         `json:"weddingDate,omitempty"`
	ClearWeddingDate   bool               `json:"clearWeddingDate,omitempty"`
	BudgetMin          *int64             `json:"budgetMin,omitempty" validate:"omitempty,gte=0"`
	BudgetMax          *int64             `json:"budgetMax,omitempty" validate:"omitempty,gte=0"`
	Budget             *int64             `json:"budget,omitempty" validate:"omitempty,gte=0"`
	ClearBudget        bool               `json:"clearBudget,omitempty"`
	GuestCountMin      *int               `json:"guestCountMin,omitempty" validate:"omitempty,gte=0"`
	GuestCountMax      *int               `json:"guestCountMax,omitempty" validate:"omitempty,gte=0"`
	PreferredLocations *[]string          `json:"preferredLocations,omitempty"`
	ServiceTypes       *[]string          `json:"serviceTypes,omitempty"`
	KanbanBoardID      *string            `json:"kanbanBoardId,omitempty"`
	VendorAssignments  []VendorAssignment `json:"vendorAssignments,omitempty" validate:"omitempty,dive"`
}

// UpdateStatusRequest moves a lead or card to another board.
type UpdateStatusRequest struct {
	KanbanBoardID string `json:"kanbanBoardId" validate:"required"`
}

type ListLeadsRequest struct {
	Status          string `form:"status" validate:"omitempty,oneof=INQUIRY PROPOSAL BOOKED COMPLETED"`
	Search          string `form:"search" validate:"omitempty,max=100"`
	IncludeArchived bool   `form:"includeArchived"`
	SortBy          string `form:"sortBy" validate:"omitempty,oneof=updatedAt weddingDate createdAt"`
	SortOrder       string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page            int    `form:"page" validate:"omitempty,min=1"`
	PageSize        int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type Assignee struct {
	Name string `json:"name"`
}

// PipelineLeadView is the board projection of a lead. Budget is the single
// override when set, otherwise the top of the range.
type PipelineLeadView struct {
	ID          uuid.UUID  `json:"id"`
	Couple      string     `json:"couple"`
	WeddingDate *time.Time `json:"weddingDate"`
	Budget      int64      `json:"budget"`
	Stage       string     `json:"stage"`
	DateInStage time.Time  `json:"dateInStage"`
	Assignee    *Assignee  `json:"assignee,omitempty"`
	Archived    bool       `json:"archived"`
}

type LeadResponse struct {
	ID                 uuid.UUID  `json:"id"`
	PartnerOneName     string     `json:"partnerOneName"`
	PartnerTwoName     string     `json:"partnerTwoName"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	WeddingDate        *time.Time `json:"weddingDate,omitempty"`
	BudgetMin          int64      `json:"budgetMin"`
	BudgetMax          int64      `json:"budgetMax"`
	Budget             *int64     `json:"budget,omitempty"`
	GuestCountMin      int        `json:"guestCountMin"`
	GuestCountMax      int        `json:"guestCountMax"`
	PreferredLocations []string   `json:"preferredLocations"`
	ServiceTypes       []string   `json:"serviceTypes"`
	Status             string     `json:"status"`
	Stage              string     `json:"stage"`
	SaveStatus         string     `json:"saveStatus"`
	CreatedBy          *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// PipelineLeadResponse is a lead together with its board projection.
type PipelineLeadResponse struct {
	LeadResponse
	View PipelineLeadView `json:"view"`
}

type LeadListResponse struct {
	Items      []PipelineLeadView `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}

type StageCount struct {
	BoardID string `json:"kanbanBoardId"`
	Status  string `json:"status"`
	Stage   string `json:"stage"`
	Count   int    `json:"count"`
}

type PipelineSummaryResponse struct {
	Stages []StageCount `json:"stages"`
	Total  int          `json:"total"`
}

type CardVendor struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// KanbanCardStatusResponse is returned after a card was dragged to a board.
type KanbanCardStatusResponse struct {
	ID           uuid.UUID        `json:"id"`
	Vendor       CardVendor       `json:"vendor"`
	OriginalLead PipelineLeadView `json:"originalLead"`
	Status       string           `json:"status"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}
