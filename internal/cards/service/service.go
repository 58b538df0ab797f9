// Package service keeps a lead's Kanban cards in line with its vendor assignment.
package service

import (
	"context"
	"time"

	"wedding_crm_backend/internal/cards/repository"
	"wedding_crm_backend/internal/cards/transport"
	"wedding_crm_backend/internal/events"
	"wedding_crm_backend/internal/leads/domain"
	"wedding_crm_backend/platform/lock"
	"wedding_crm_backend/platform/logger"
	"wedding_crm_backend/platform/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxCardWriters bounds how many cards of one lead are written at once.
const maxCardWriters = 8

// CardStore is the storage the reconciler depends on.
type CardStore interface {
	ListByLead(ctx context.Context, leadID uuid.UUID) ([]repository.Card, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Card, error)
	GetDetail(ctx context.Context, id uuid.UUID) (repository.CardDetail, error)
	Create(ctx context.Context, leadID, vendorID uuid.UUID) (repository.Card, error)
	DeleteMany(ctx context.Context, ids []uuid.UUID) error
	ReplaceTeam(ctx context.Context, cardID uuid.UUID, memberIDs []uuid.UUID) error
}

// Service reconciles cards and edits card teams.
type Service struct {
	store    CardStore
	locker   lock.Locker
	eventBus events.Bus
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// New creates a cards service. A nil locker falls back to an in-process keyed mutex.
func New(store CardStore, locker lock.Locker, eventBus events.Bus, log *logger.Logger, m *metrics.Metrics) *Service {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: store, locker: locker, eventBus: eventBus, log: log, metrics: m}
}

func leadLockKey(leadID uuid.UUID) string {
	return "cards:lead:" + leadID.String()
}

// ReconcileCardsForLead makes the lead's cards match desired exactly: one card
// per vendor key, each with exactly the listed team members. Cards of vendors
// no longer desired are removed with their team links. Retained cards get
// their team replaced wholesale, never diffed. Distinct cards are written
// concurrently. Calls for the same lead are serialized.
func (s *Service) ReconcileCardsForLead(ctx context.Context, leadID uuid.UUID, desired map[uuid.UUID][]uuid.UUID) (transport.ReconcileCardsResponse, error) {
	start := time.Now()
	result, err := s.reconcile(ctx, leadID, desired)
	if err != nil {
		s.metrics.ObserveReconcile(metrics.OutcomeFailure, time.Since(start))
		return transport.ReconcileCardsResponse{}, err
	}
	s.metrics.ObserveReconcile(metrics.OutcomeSuccess, time.Since(start))

	if s.eventBus != nil {
		vendorIDs := make([]uuid.UUID, 0, len(desired))
		for vendorID := range desired {
			vendorIDs = append(vendorIDs, vendorID)
		}
		s.eventBus.Publish(ctx, events.CardsReconciled{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    leadID,
			VendorIDs: vendorIDs,
			Created:   len(result.Created),
			Retained:  len(result.Retained),
			Deleted:   len(result.Deleted),
		})
	}
	return result, nil
}

func (s *Service) reconcile(ctx context.Context, leadID uuid.UUID, desired map[uuid.UUID][]uuid.UUID) (transport.ReconcileCardsResponse, error) {
	release, err := s.locker.Acquire(ctx, leadLockKey(leadID))
	if err != nil {
		return transport.ReconcileCardsResponse{}, err
	}
	defer release()

	existing, err := s.store.ListByLead(ctx, leadID)
	if err != nil {
		return transport.ReconcileCardsResponse{}, err
	}

	plan := planReconcile(existing, desired)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxCardWriters)

	if len(plan.stale) > 0 {
		staleIDs := make([]uuid.UUID, len(plan.stale))
		for i, c := range plan.stale {
			staleIDs[i] = c.ID
		}
		g.Go(func() error {
			return s.store.DeleteMany(gctx, staleIDs)
		})
	}

	for _, card := range plan.retained {
		members := dedupe(desired[card.VendorID])
		g.Go(func() error {
			return s.store.ReplaceTeam(gctx, card.ID, members)
		})
	}

	for _, vendorID := range plan.missing {
		members := dedupe(desired[vendorID])
		g.Go(func() error {
			card, err := s.store.Create(gctx, leadID, vendorID)
			if err != nil {
				return err
			}
			return s.store.ReplaceTeam(gctx, card.ID, members)
		})
	}

	if err := g.Wait(); err != nil {
		s.log.WithContext(ctx).Error("card reconciliation failed", "leadId", leadID, "error", err)
		return transport.ReconcileCardsResponse{}, err
	}

	cards, err := s.store.ListByLead(ctx, leadID)
	if err != nil {
		return transport.ReconcileCardsResponse{}, err
	}

	resp := transport.ReconcileCardsResponse{
		LeadID:   leadID,
		Created:  plan.missing,
		Retained: vendorIDsOf(plan.retained),
		Deleted:  vendorIDsOf(plan.stale),
		Cards:    toCardResponses(cards),
	}
	s.log.WithContext(ctx).Info("cards reconciled",
		"leadId", leadID,
		"created", len(resp.Created),
		"retained", len(resp.Retained),
		"deleted", len(resp.Deleted),
	)
	return resp, nil
}

// ReplaceCardTeam sets the complete team of one card and returns the card
// with its vendor and lead.
func (s *Service) ReplaceCardTeam(ctx context.Context, cardID uuid.UUID, memberIDs []uuid.UUID) (transport.KanbanCardResponse, error) {
	card, err := s.store.GetByID(ctx, cardID)
	if err != nil {
		return transport.KanbanCardResponse{}, err
	}

	release, err := s.locker.Acquire(ctx, leadLockKey(card.OriginalLeadID))
	if err != nil {
		return transport.KanbanCardResponse{}, err
	}
	defer release()

	if err := s.store.ReplaceTeam(ctx, cardID, dedupe(memberIDs)); err != nil {
		return transport.KanbanCardResponse{}, err
	}
	return s.GetKanbanCard(ctx, cardID)
}

// GetKanbanCard returns a card with its vendor and lead summaries.
func (s *Service) GetKanbanCard(ctx context.Context, cardID uuid.UUID) (transport.KanbanCardResponse, error) {
	detail, err := s.store.GetDetail(ctx, cardID)
	if err != nil {
		return transport.KanbanCardResponse{}, err
	}
	return toKanbanCard(detail), nil
}

// ListCardsForLead returns the lead's cards with their team links.
func (s *Service) ListCardsForLead(ctx context.Context, leadID uuid.UUID) ([]transport.CardResponse, error) {
	cards, err := s.store.ListByLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	return toCardResponses(cards), nil
}

type reconcilePlan struct {
	stale    []repository.Card
	retained []repository.Card
	missing  []uuid.UUID
}

// planReconcile partitions existing cards against the desired vendor set.
// Should storage ever hold two cards for one vendor, the extras are stale.
func planReconcile(existing []repository.Card, desired map[uuid.UUID][]uuid.UUID) reconcilePlan {
	var plan reconcilePlan
	seen := make(map[uuid.UUID]bool, len(existing))

	for _, card := range existing {
		_, wanted := desired[card.VendorID]
		if !wanted || seen[card.VendorID] {
			plan.stale = append(plan.stale, card)
			continue
		}
		seen[card.VendorID] = true
		plan.retained = append(plan.retained, card)
	}

	plan.missing = make([]uuid.UUID, 0)
	for vendorID := range desired {
		if !seen[vendorID] {
			plan.missing = append(plan.missing, vendorID)
		}
	}
	return plan
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func vendorIDsOf(cards []repository.Card) []uuid.UUID {
	ids := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		ids[i] = c.VendorID
	}
	return ids
}

func toCardResponses(cards []repository.Card) []transport.CardResponse {
	out := make([]transport.CardResponse, len(cards))
	for i, c := range cards {
		out[i] = toCardResponse(c)
	}
	return out
}

func toCardResponse(c repository.Card) transport.CardResponse {
	members := c.TeamMemberIDs
	if members == nil {
		members = []uuid.UUID{}
	}
	return transport.CardResponse{
		ID:             c.ID,
		VendorID:       c.VendorID,
		OriginalLeadID: c.OriginalLeadID,
		TeamMemberIDs:  members,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toKanbanCard(d repository.CardDetail) transport.KanbanCardResponse {
	return transport.KanbanCardResponse{
		CardResponse: toCardResponse(d.Card),
		Vendor: transport.VendorSummary{
			ID:    d.VendorID,
			Name:  d.VendorName,
			Email: d.VendorEmail,
		},
		OriginalLead: transport.LeadSummary{
			ID:          d.OriginalLeadID,
			Couple:      domain.Couple(d.PartnerOneName, d.PartnerTwoName),
			Status:      d.LeadStatus,
			Stage:       d.LeadStage,
			WeddingDate: d.WeddingDate,
		},
	}
}
