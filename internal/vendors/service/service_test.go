package service

import (
	"context"
	"errors"
	"testing"

	"wedding_crm_backend/internal/vendors/repository"
	"wedding_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVendorRepo struct {
	vendors   []repository.Vendor
	members   map[uuid.UUID][]repository.TeamMember
	budgets   map[uuid.UUID]repository.LeadBudget
	listErr   error
	lastQuery repository.OverlapQuery
}

func (f *fakeVendorRepo) ListActiveByBudgetOverlap(_ context.Context, q repository.OverlapQuery) ([]repository.Vendor, error) {
	f.lastQuery = q
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]repository.Vendor, 0)
	for _, v := range f.vendors {
		if v.IsActive && v.MinimumAmount <= q.Max && v.MaximumAmount >= q.Min {
			out = append(out, v)
		}
		if len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeVendorRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Vendor, error) {
	for _, v := range f.vendors {
		if v.ID == id {
			return v, nil
		}
	}
	return repository.Vendor{}, apperr.NotFound("vendor not found")
}

func (f *fakeVendorRepo) ListTeamMembers(_ context.Context, vendorID uuid.UUID) ([]repository.TeamMember, error) {
	return f.members[vendorID], nil
}

func (f *fakeVendorRepo) GetLeadBudget(_ context.Context, leadID uuid.UUID) (repository.LeadBudget, error) {
	b, ok := f.budgets[leadID]
	if !ok {
		return repository.LeadBudget{}, apperr.NotFound("lead not found")
	}
	return b, nil
}

type matcherCfg struct{ rowCap int }

func (c matcherCfg) GetVendorMatchRowCap() int    { return c.rowCap }
func (c matcherCfg) GetAutoAssignTopVendors() int { return 0 }

func vendor(name string, min, max int64) repository.Vendor {
	return repository.Vendor{
		ID:            uuid.New(),
		Name:          name,
		ServiceTypes:  "photography, video",
		MinimumAmount: min,
		MaximumAmount: max,
		IsActive:      true,
	}
}

func TestFindMatchingVendorsRanksByScore(t *testing.T) {
	a := vendor("A", 1_000_000, 3_000_000)
	b := vendor("B", 2_500_000, 4_500_000)
	repo := &fakeVendorRepo{vendors: []repository.Vendor{a, b}}
	svc := New(repo, matcherCfg{rowCap: 50}, nil)

	got, err := svc.FindMatchingVendors(context.Background(), 2_000_000, 5_000_000, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, 50, got[0].MatchScore)
	assert.Equal(t, a.ID, got[1].ID)
	assert.Equal(t, 10, got[1].MatchScore)
	assert.Equal(t, []string{"photography", "video"}, got[0].ServiceTypes)
	assert.Equal(t, 50, repo.lastQuery.Limit)
}

func TestFindMatchingVendorsIsDeterministicForTies(t *testing.T) {
	vendors := []repository.Vendor{
		vendor("first", 0, 1000),
		vendor("second", 0, 1000),
		vendor("low", 900, 1000),
		vendor("third", 0, 1000),
	}
	svc := New(&fakeVendorRepo{vendors: vendors}, nil, nil)

	first, err := svc.FindMatchingVendors(context.Background(), 100, 500, nil)
	require.NoError(t, err)
	second, err := svc.FindMatchingVendors(context.Background(), 100, 500, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	names := make([]string, len(first))
	for i, m := range first {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"first", "second", "third"}, names, "equal scores keep query order; non-overlapping vendor excluded")
}

func TestFindMatchingVendorsPropagatesRepositoryError(t *testing.T) {
	repoErr := apperr.Persistence("list vendors by budget overlap", errors.New("connection reset"))
	svc := New(&fakeVendorRepo{listErr: repoErr}, nil, nil)

	got, err := svc.FindMatchingVendors(context.Background(), 0, 100, nil)
	assert.Nil(t, got)
	assert.Same(t, repoErr, err)
}

func TestFindMatchingVendorsEmptyIsNotAnError(t *testing.T) {
	svc := New(&fakeVendorRepo{}, nil, nil)

	got, err := svc.FindMatchingVendors(context.Background(), 0, 100, nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindMatchingVendorsRejectsInvertedRange(t *testing.T) {
	svc := New(&fakeVendorRepo{}, nil, nil)

	_, err := svc.FindMatchingVendors(context.Background(), 500, 100, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestMatchForLeadUsesBudgetOverride(t *testing.T) {
	leadID := uuid.New()
	override := int64(3_000_000)
	inside := vendor("inside", 2_000_000, 4_000_000)
	outside := vendor("outside", 4_000_000, 6_000_000)
	repo := &fakeVendorRepo{
		vendors: []repository.Vendor{inside, outside},
		budgets: map[uuid.UUID]repository.LeadBudget{
			leadID: {LeadID: leadID, BudgetMin: 1_000_000, BudgetMax: 9_000_000, Budget: &override, ServiceTypes: []string{"photography"}},
		},
	}
	svc := New(repo, nil, nil)

	res, err := svc.MatchForLead(context.Background(), leadID, nil, false)
	require.NoError(t, err)

	assert.Equal(t, override, res.BudgetMin)
	assert.Equal(t, override, res.BudgetMax)
	require.Len(t, res.Items, 1)
	assert.Equal(t, inside.ID, res.Items[0].ID)
	assert.Equal(t, 60, res.Items[0].MatchScore)
	require.NotNil(t, repo.lastQuery.ServiceType)
	assert.Equal(t, "photography", *repo.lastQuery.ServiceType)
}

func TestMatchForLeadAnyServiceSkipsFilter(t *testing.T) {
	leadID := uuid.New()
	repo := &fakeVendorRepo{
		budgets: map[uuid.UUID]repository.LeadBudget{
			leadID: {LeadID: leadID, BudgetMin: 0, BudgetMax: 10, ServiceTypes: []string{"catering"}},
		},
	}
	svc := New(repo, nil, nil)

	_, err := svc.MatchForLead(context.Background(), leadID, nil, true)
	require.NoError(t, err)
	assert.Nil(t, repo.lastQuery.ServiceType)
}

func TestMatchForLeadMissingLead(t *testing.T) {
	svc := New(&fakeVendorRepo{}, nil, nil)

	_, err := svc.MatchForLead(context.Background(), uuid.New(), nil, false)
	assert.True(t, apperr.IsNotFound(err))
}

func TestGetVendorIncludesTeam(t *testing.T) {
	v := vendor("Studio", 0, 100)
	member := repository.TeamMember{ID: uuid.New(), VendorID: v.ID, Name: "Sam"}
	svc := New(&fakeVendorRepo{
		vendors: []repository.Vendor{v},
		members: map[uuid.UUID][]repository.TeamMember{v.ID: {member}},
	}, nil, nil)

	got, err := svc.GetVendor(context.Background(), v.ID)
	require.NoError(t, err)
	require.Len(t, got.TeamMembers, 1)
	assert.Equal(t, "Sam", got.TeamMembers[0].Name)

	_, err = svc.GetVendor(context.Background(), uuid.New())
	assert.True(t, apperr.IsNotFound(err))
}
