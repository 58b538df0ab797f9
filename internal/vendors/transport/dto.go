package transport

import (
	"github.com/google/uuid"
)

// MatchVendorsRequest is the query of GET /vendors/matches.
type MatchVendorsRequest struct {
	Min         int64   `form:"min" validate:"gte=0"`
	Max         int64   `form:"max" validate:"gte=0"`
	ServiceType *string `form:"serviceType" validate:"omitempty,max=80"`
}

// LeadMatchRequest is the query of GET /pipeline/leads/:id/vendor-matches.
type LeadMatchRequest struct {
	ServiceType *string `form:"serviceType" validate:"omitempty,max=80"`
	AnyService  bool    `form:"anyService"`
}

// VendorMatch is one ranked vendor summary.
type VendorMatch struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	ContactNo     string    `json:"contactNo"`
	ServiceTypes  []string  `json:"serviceTypes"`
	MinimumAmount int64     `json:"minimumAmount"`
	MaximumAmount int64     `json:"maximumAmount"`
	MatchScore    int       `json:"matchScore"`
}

// MatchVendorsResponse wraps a ranked match list with the range it was scored against.
type MatchVendorsResponse struct {
	BudgetMin int64         `json:"budgetMin"`
	BudgetMax int64         `json:"budgetMax"`
	Items     []VendorMatch `json:"items"`
}

type TeamMemberResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type VendorResponse struct {
	ID            uuid.UUID            `json:"id"`
	Name          string               `json:"name"`
	Email         string               `json:"email"`
	ContactNo     string               `json:"contactNo"`
	ServiceTypes  []string             `json:"serviceTypes"`
	MinimumAmount int64                `json:"minimumAmount"`
	MaximumAmount int64                `json:"maximumAmount"`
	IsActive      bool                 `json:"isActive"`
	TeamMembers   []TeamMemberResponse `json:"teamMembers"`
}
