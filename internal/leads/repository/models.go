package repository

import (
	"time"

	"github.com/google/uuid"
)

type Lead struct {
	ID                 uuid.UUID
	PartnerOneName     string
	PartnerTwoName     string
	Email              string
	Phone              string
	WeddingDate        *time.Time
	BudgetMin          int64
	BudgetMax          int64
	Budget             *int64
	GuestCountMin      int
	GuestCountMax      int
	PreferredLocations []string
	ServiceTypes       []string
	Status             string
	Stage              string
	SaveStatus         string
	CreatedBy          *uuid.UUID
	AssigneeName       *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type CreateLeadParams struct {
	PartnerOneName     string
	PartnerTwoName     string
	Email              string
	Phone              string
	WeddingDate        *time.Time
	BudgetMin          int64
	BudgetMax          int64
	Budget             *int64
	GuestCountMin      int
	GuestCountMax      int
	PreferredLocations []string
	ServiceTypes       []string
	Status             string
	Stage              string
	SaveStatus         string
	CreatedBy          *uuid.UUID
}

// LeadPatch lists the fields to change; nil means unchanged.
type LeadPatch struct {
	PartnerOneName     *string
	PartnerTwoName     *string
	Email              *string
	Phone              *string
	WeddingDate        *time.Time
	ClearWeddingDate   bool
	BudgetMin          *int64
	BudgetMax          *int64
	Budget             *int64
	ClearBudget        bool
	GuestCountMin      *int
	GuestCountMax      *int
	PreferredLocations *[]string
	ServiceTypes       *[]string
	Status             *string
	Stage              *string
	SaveStatus         *string
}

const (
	SortUpdatedAt   = "updatedAt"
	SortWeddingDate = "weddingDate"
	SortCreatedAt   = "createdAt"
)

type ListFilter struct {
	IncludeArchived bool
	Status          string
	Search          string
}

type ListParams struct {
	Filter    ListFilter
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// CardSummary is a card with the name of its vendor.
type CardSummary struct {
	ID             uuid.UUID
	VendorID       uuid.UUID
	VendorName     string
	OriginalLeadID uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
