// Package ports defines the interfaces the leads module needs from other
// modules. Implementations live in internal/adapters so leads never imports
// cards, vendors or notification directly.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// Broadcaster pushes a realtime event to every client in a room.
type Broadcaster interface {
	PublishToRoom(room, event string, payload any) error
}

// CardReconciler brings a lead's Kanban cards in line with a vendor assignment.
// desired maps vendor id to the team member ids working the lead.
type CardReconciler interface {
	ReconcileCardsForLead(ctx context.Context, leadID uuid.UUID, desired map[uuid.UUID][]uuid.UUID) error
}

// VendorMatcher returns the ids of the best ranked vendors for a lead.
type VendorMatcher interface {
	TopVendorsForLead(ctx context.Context, leadID uuid.UUID, limit int) ([]uuid.UUID, error)
}
