package adapters

import (
	"context"

	cardsservice "wedding_crm_backend/internal/cards/service"
	"wedding_crm_backend/internal/leads/ports"

	"github.com/google/uuid"
)

// CardReconciler adapts the cards service for lead edits and intake.
type CardReconciler struct {
	svc *cardsservice.Service
}

func NewCardReconciler(svc *cardsservice.Service) *CardReconciler {
	return &CardReconciler{svc: svc}
}

func (a *CardReconciler) ReconcileCardsForLead(ctx context.Context, leadID uuid.UUID, desired map[uuid.UUID][]uuid.UUID) error {
	_, err := a.svc.ReconcileCardsForLead(ctx, leadID, desired)
	return err
}

var _ ports.CardReconciler = (*CardReconciler)(nil)
