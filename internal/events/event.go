// Package events defines the domain events exchanged between the pipeline
// modules. Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"wedding_crm_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published after an inquiry has been stored.
type LeadCreated struct {
	BaseEvent
	LeadID    uuid.UUID  `json:"leadId"`
	Couple    string     `json:"couple"`
	CreatedBy *uuid.UUID `json:"createdBy,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadStatusUpdated is published when a lead moves to another pipeline stage.
type LeadStatusUpdated struct {
	BaseEvent
	LeadID    uuid.UUID  `json:"leadId"`
	Couple    string     `json:"couple"`
	OldStatus string     `json:"oldStatus"`
	NewStatus string     `json:"newStatus"`
	Stage     string     `json:"stage"`
	CreatedBy *uuid.UUID `json:"createdBy,omitempty"`
}

func (e LeadStatusUpdated) EventName() string { return "leads.status.updated" }

// LeadArchived is published when a lead is taken off the pipeline board.
type LeadArchived struct {
	BaseEvent
	LeadID    uuid.UUID  `json:"leadId"`
	Couple    string     `json:"couple"`
	CreatedBy *uuid.UUID `json:"createdBy,omitempty"`
}

func (e LeadArchived) EventName() string { return "leads.archived" }

// =============================================================================
// Cards Domain Events
// =============================================================================

// CardsReconciled is published after a lead's cards match the desired assignment.
type CardsReconciled struct {
	BaseEvent
	LeadID    uuid.UUID   `json:"leadId"`
	VendorIDs []uuid.UUID `json:"vendorIds"`
	Created   int         `json:"created"`
	Retained  int         `json:"retained"`
	Deleted   int         `json:"deleted"`
}

func (e CardsReconciled) EventName() string { return "cards.reconciled" }

// =============================================================================
// Wedding Plan Domain Events
// =============================================================================

// WeddingPlanServiceStatusChanged is published after a vendor-service decision
// has been recorded on a wedding plan.
type WeddingPlanServiceStatusChanged struct {
	BaseEvent
	WeddingPlanServiceID uuid.UUID  `json:"weddingPlanServiceId"`
	LeadID               *uuid.UUID `json:"leadId,omitempty"`
	VendorServiceID      uuid.UUID  `json:"vendorServiceId"`
	Status               string     `json:"status"`
	Mirrored             int64      `json:"mirrored"`
	CreatedBy            *uuid.UUID `json:"createdBy,omitempty"`
}

func (e WeddingPlanServiceStatusChanged) EventName() string {
	return "weddingplans.service.status_changed"
}
