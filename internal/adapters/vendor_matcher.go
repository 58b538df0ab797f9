package adapters

import (
	"context"

	"wedding_crm_backend/internal/leads/ports"
	"wedding_crm_backend/internal/vendors/transport"

	"github.com/google/uuid"
)

// LeadVendorMatcher is the part of the vendors service used for auto-assignment.
type LeadVendorMatcher interface {
	MatchForLead(ctx context.Context, leadID uuid.UUID, serviceType *string, anyService bool) (transport.MatchVendorsResponse, error)
}

// VendorMatcher picks the best scoring vendors for a new lead.
type VendorMatcher struct {
	matcher LeadVendorMatcher
}

func NewVendorMatcher(matcher LeadVendorMatcher) *VendorMatcher {
	return &VendorMatcher{matcher: matcher}
}

// TopVendorsForLead returns up to limit vendor ids in rank order. Vendors that
// only touch the lead's range without scoring are left out.
func (a *VendorMatcher) TopVendorsForLead(ctx context.Context, leadID uuid.UUID, limit int) ([]uuid.UUID, error) {
	matches, err := a.matcher.MatchForLead(ctx, leadID, nil, false)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, min(limit, len(matches.Items)))
	for _, m := range matches.Items {
		if len(ids) == limit {
			break
		}
		if m.MatchScore > 0 {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

var _ ports.VendorMatcher = (*VendorMatcher)(nil)
