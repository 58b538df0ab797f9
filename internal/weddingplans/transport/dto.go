package transport

import (
	"time"

	"github.com/google/uuid"
)

// UpdateServiceStatusRequest records a decision on a wedding plan service.
// Status is checked by the service so an unknown value is reported by name.
type UpdateServiceStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"max=1000"`
}

type VendorSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type VendorServiceSummary struct {
	ID     uuid.UUID     `json:"id"`
	Name   string        `json:"name"`
	Price  int64         `json:"price"`
	Vendor VendorSummary `json:"vendor"`
}

type LeadSummary struct {
	ID          uuid.UUID  `json:"id"`
	Couple      string     `json:"couple"`
	Status      string     `json:"status"`
	Stage       string     `json:"stage"`
	WeddingDate *time.Time `json:"weddingDate,omitempty"`
}

// WeddingPlanServiceResponse is a line item with its vendor service and,
// when the plan belongs to a lead, a lead summary.
type WeddingPlanServiceResponse struct {
	ID            uuid.UUID            `json:"id"`
	WeddingPlanID uuid.UUID            `json:"weddingPlanId"`
	Status        string               `json:"status"`
	Reason        *string              `json:"reason"`
	VendorService VendorServiceSummary `json:"vendorService"`
	Lead          *LeadSummary         `json:"lead,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}
