package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"wedding_crm_backend/internal/cards/repository"
	"wedding_crm_backend/platform/apperr"
	"wedding_crm_backend/platform/events"
	"wedding_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory CardStore enforcing the same link-before-card
// ordering a foreign key would.
type memStore struct {
	mu         sync.Mutex
	cards      map[uuid.UUID]repository.Card
	links      map[uuid.UUID][]uuid.UUID
	createErr  error
	replaceErr error
	deletes    int
}

func newMemStore() *memStore {
	return &memStore{
		cards: make(map[uuid.UUID]repository.Card),
		links: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *memStore) seed(leadID, vendorID uuid.UUID, members ...uuid.UUID) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.cards[id] = repository.Card{ID: id, VendorID: vendorID, OriginalLeadID: leadID, CreatedAt: time.Now()}
	m.links[id] = append([]uuid.UUID(nil), members...)
	return id
}

func (m *memStore) ListByLead(_ context.Context, leadID uuid.UUID) ([]repository.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]repository.Card, 0)
	for id, c := range m.cards {
		if c.OriginalLeadID == leadID {
			c.TeamMemberIDs = append([]uuid.UUID(nil), m.links[id]...)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (repository.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[id]
	if !ok {
		return repository.Card{}, apperr.NotFound("card not found")
	}
	c.TeamMemberIDs = append([]uuid.UUID(nil), m.links[id]...)
	return c, nil
}

func (m *memStore) GetDetail(ctx context.Context, id uuid.UUID) (repository.CardDetail, error) {
	c, err := m.GetByID(ctx, id)
	if err != nil {
		return repository.CardDetail{}, err
	}
	return repository.CardDetail{
		Card:           c,
		VendorName:     "Vendor " + c.VendorID.String()[:4],
		PartnerOneName: "Anna",
		PartnerTwoName: "Ben",
		LeadStatus:     "INQUIRY",
		LeadStage:      "Inquiry",
	}, nil
}

func (m *memStore) Create(_ context.Context, leadID, vendorID uuid.UUID) (repository.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return repository.Card{}, m.createErr
	}
	for _, c := range m.cards {
		if c.OriginalLeadID == leadID && c.VendorID == vendorID {
			return repository.Card{}, apperr.Conflict("record already exists")
		}
	}
	c := repository.Card{ID: uuid.New(), VendorID: vendorID, OriginalLeadID: leadID, CreatedAt: time.Now()}
	m.cards[c.ID] = c
	return c, nil
}

func (m *memStore) DeleteMany(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	for _, id := range ids {
		delete(m.links, id)
	}
	for _, id := range ids {
		if _, linked := m.links[id]; linked {
			return errors.New("card still has team links")
		}
		delete(m.cards, id)
	}
	return nil
}

func (m *memStore) ReplaceTeam(_ context.Context, cardID uuid.UUID, memberIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	if _, ok := m.cards[cardID]; !ok {
		return apperr.NotFound("card not found")
	}
	m.links[cardID] = append([]uuid.UUID(nil), memberIDs...)
	return nil
}

// assignment flattens a lead's stored cards into vendor -> sorted team.
func (m *memStore) assignment(t *testing.T, leadID uuid.UUID) map[uuid.UUID][]uuid.UUID {
	t.Helper()
	cards, err := m.ListByLead(context.Background(), leadID)
	require.NoError(t, err)
	out := make(map[uuid.UUID][]uuid.UUID, len(cards))
	for _, c := range cards {
		_, dup := out[c.VendorID]
		require.False(t, dup, "vendor %s has more than one card", c.VendorID)
		out[c.VendorID] = sorted(c.TeamMemberIDs)
	}
	return out
}

func sorted(ids []uuid.UUID) []uuid.UUID {
	out := append([]uuid.UUID{}, ids...)
	slices.SortFunc(out, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) })
	return out
}

func normalize(desired map[uuid.UUID][]uuid.UUID) map[uuid.UUID][]uuid.UUID {
	out := make(map[uuid.UUID][]uuid.UUID, len(desired))
	for k, v := range desired {
		out[k] = sorted(dedupe(v))
	}
	return out
}

func newTestService(store CardStore) *Service {
	return New(store, nil, nil, logger.Nop(), nil)
}

func TestReconcileReplacesUnrelatedVendor(t *testing.T) {
	store := newMemStore()
	lead := uuid.New()
	vendorX, vendorY := uuid.New(), uuid.New()
	tm1, tm2, tmOld := uuid.New(), uuid.New(), uuid.New()
	oldCard := store.seed(lead, vendorY, tmOld)

	svc := newTestService(store)
	res, err := svc.ReconcileCardsForLead(context.Background(), lead, map[uuid.UUID][]uuid.UUID{
		vendorX: {tm1, tm2},
	})
	require.NoError(t, err)

	_, stillThere := store.cards[oldCard]
	assert.False(t, stillThere, "stale card must be deleted")
	_, linksLeft := store.links[oldCard]
	assert.False(t, linksLeft, "stale card links must be deleted")

	require.Len(t, res.Cards, 1)
	assert.Equal(t, vendorX, res.Cards[0].VendorID)
	assert.ElementsMatch(t, []uuid.UUID{tm1, tm2}, res.Cards[0].TeamMemberIDs)
	assert.Equal(t, []uuid.UUID{vendorX}, res.Created)
	assert.Equal(t, []uuid.UUID{vendorY}, res.Deleted)
	assert.Empty(t, res.Retained)
}

func TestReconcileMatchesDesiredExactly(t *testing.T) {
	store := newMemStore()
	lead := uuid.New()
	keep, drop, add := uuid.New(), uuid.New(), uuid.New()
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	store.seed(lead, keep, a, b)
	store.seed(lead, drop, c)
	otherLead := uuid.New()
	otherCard := store.seed(otherLead, drop, c)

	desired := map[uuid.UUID][]uuid.UUID{
		keep: {b, d, d},
		add:  {},
	}

	svc := newTestService(store)
	res, err := svc.ReconcileCardsForLead(context.Background(), lead, desired)
	require.NoError(t, err)

	assert.Equal(t, normalize(desired), store.assignment(t, lead))
	assert.Equal(t, []uuid.UUID{keep}, res.Retained)
	_, untouched := store.cards[otherCard]
	assert.True(t, untouched, "other leads' cards are not touched")
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := newMemStore()
	lead := uuid.New()
	v1, v2 := uuid.New(), uuid.New()
	desired := map[uuid.UUID][]uuid.UUID{
		v1: {uuid.New(), uuid.New()},
		v2: {uuid.New()},
	}
	store.seed(lead, uuid.New(), uuid.New())

	svc := newTestService(store)
	_, err := svc.ReconcileCardsForLead(context.Background(), lead, desired)
	require.NoError(t, err)
	first := store.assignment(t, lead)
	firstIDs := cardIDs(t, store, lead)

	res, err := svc.ReconcileCardsForLead(context.Background(), lead, desired)
	require.NoError(t, err)

	assert.Equal(t, first, store.assignment(t, lead))
	assert.Equal(t, firstIDs, cardIDs(t, store, lead), "second call must keep the same cards")
	assert.Empty(t, res.Created)
	assert.Empty(t, res.Deleted)
	assert.Len(t, res.Retained, 2)
}

func cardIDs(t *testing.T, store *memStore, lead uuid.UUID) []uuid.UUID {
	t.Helper()
	cards, err := store.ListByLead(context.Background(), lead)
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return sorted(ids)
}

func TestReconcileEmptyDesiredRemovesAllCards(t *testing.T) {
	store := newMemStore()
	lead := uuid.New()
	store.seed(lead, uuid.New(), uuid.New())
	store.seed(lead, uuid.New())

	_, err := newTestService(store).ReconcileCardsForLead(context.Background(), lead, nil)
	require.NoError(t, err)
	assert.Empty(t, store.assignment(t, lead))
	assert.Equal(t, 1, store.deletes, "stale cards are deleted in one batch")
}

func TestReconcileRemovesDuplicateCardsForOneVendor(t *testing.T) {
	store := newMemStore()
	lead, vendor := uuid.New(), uuid.New()
	member := uuid.New()
	store.seed(lead, vendor)
	store.seed(lead, vendor)

	_, err := newTestService(store).ReconcileCardsForLead(context.Background(), lead, map[uuid.UUID][]uuid.UUID{
		vendor: {member},
	})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID][]uuid.UUID{vendor: {member}}, store.assignment(t, lead))
}

func TestReconcileReturnsStoreError(t *testing.T) {
	store := newMemStore()
	store.createErr = apperr.Persistence("create card", errors.New("disk full"))

	_, err := newTestService(store).ReconcileCardsForLead(context.Background(), uuid.New(), map[uuid.UUID][]uuid.UUID{
		uuid.New(): {uuid.New()},
	})
	assert.True(t, apperr.Is(err, apperr.KindPersistence))
}

func TestReconcilePublishesEvent(t *testing.T) {
	store := newMemStore()
	bus := events.NewInMemoryBus(logger.Nop())
	got := make(chan events.Event, 1)
	bus.Subscribe("cards.reconciled", events.HandlerFunc(func(_ context.Context, e events.Event) error {
		got <- e
		return nil
	}))

	svc := New(store, nil, bus, logger.Nop(), nil)
	_, err := svc.ReconcileCardsForLead(context.Background(), uuid.New(), map[uuid.UUID][]uuid.UUID{uuid.New(): nil})
	require.NoError(t, err)

	select {
	case e := <-got:
		assert.Equal(t, "cards.reconciled", e.EventName())
	case <-time.After(time.Second):
		t.Fatal("expected cards.reconciled event")
	}
}

func TestConcurrentReconcileForOneLeadConverges(t *testing.T) {
	store := newMemStore()
	lead := uuid.New()
	vendors := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	svc := newTestService(store)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ReconcileCardsForLead(context.Background(), lead, map[uuid.UUID][]uuid.UUID{
				vendors[0]: {},
				vendors[1+i%2]: {},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	final := store.assignment(t, lead)
	assert.Len(t, final, 2, "serialized runs leave exactly one desired set in place")
	assert.Contains(t, final, vendors[0])
}

func TestReplaceCardTeam(t *testing.T) {
	store := newMemStore()
	lead, vendor := uuid.New(), uuid.New()
	oldMember, m1, m2 := uuid.New(), uuid.New(), uuid.New()
	cardID := store.seed(lead, vendor, oldMember)

	res, err := newTestService(store).ReplaceCardTeam(context.Background(), cardID, []uuid.UUID{m1, m2, m1})
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{m1, m2}, res.TeamMemberIDs)
	assert.Equal(t, vendor, res.Vendor.ID)
	assert.Equal(t, lead, res.OriginalLead.ID)
	assert.Equal(t, "Anna & Ben", res.OriginalLead.Couple)
}

func TestReplaceCardTeamMissingCard(t *testing.T) {
	_, err := newTestService(newMemStore()).ReplaceCardTeam(context.Background(), uuid.New(), nil)
	assert.True(t, apperr.IsNotFound(err))
}

func TestPlanReconcilePartitions(t *testing.T) {
	lead := uuid.New()
	keep, drop, add := uuid.New(), uuid.New(), uuid.New()
	existing := []repository.Card{
		{ID: uuid.New(), VendorID: keep, OriginalLeadID: lead},
		{ID: uuid.New(), VendorID: drop, OriginalLeadID: lead},
	}

	plan := planReconcile(existing, map[uuid.UUID][]uuid.UUID{keep: nil, add: nil})

	require.Len(t, plan.retained, 1)
	require.Len(t, plan.stale, 1)
	assert.Equal(t, keep, plan.retained[0].VendorID)
	assert.Equal(t, drop, plan.stale[0].VendorID)
	assert.Equal(t, []uuid.UUID{add}, plan.missing)
}
