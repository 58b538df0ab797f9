package adapters

import (
	"context"
	"errors"
	"testing"

	"wedding_crm_backend/internal/vendors/transport"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMatcher struct {
	resp transport.MatchVendorsResponse
	err  error
}

func (s stubMatcher) MatchForLead(context.Context, uuid.UUID, *string, bool) (transport.MatchVendorsResponse, error) {
	return s.resp, s.err
}

func TestTopVendorsForLeadKeepsRankAndLimit(t *testing.T) {
	a, b, c, zero := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	matcher := NewVendorMatcher(stubMatcher{resp: transport.MatchVendorsResponse{Items: []transport.VendorMatch{
		{ID: a, MatchScore: 60},
		{ID: zero, MatchScore: 0},
		{ID: b, MatchScore: 50},
		{ID: c, MatchScore: 10},
	}}})

	ids, err := matcher.TopVendorsForLead(context.Background(), uuid.New(), 2)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)
}

func TestTopVendorsForLeadPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewVendorMatcher(stubMatcher{err: boom}).TopVendorsForLead(context.Background(), uuid.New(), 3)
	assert.ErrorIs(t, err, boom)
}
