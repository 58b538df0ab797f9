// Package service records vendor-service decisions on wedding plans and
// mirrors them onto the lead's current proposal.
package service

import (
	"context"
	"fmt"
	"strings"

	"wedding_crm_backend/internal/events"
	"wedding_crm_backend/internal/leads/domain"
	"wedding_crm_backend/internal/weddingplans/repository"
	"wedding_crm_backend/internal/weddingplans/transport"
	"wedding_crm_backend/platform/apperr"
	"wedding_crm_backend/platform/dispatch"
	"wedding_crm_backend/platform/logger"
	"wedding_crm_backend/platform/metrics"

	"github.com/google/uuid"
)

// Service statuses, shared by wedding plan and proposal line items.
const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
	StatusAssigned = "ASSIGNED"
)

// EventServiceUpdated is the realtime event sent after a decision is recorded.
const EventServiceUpdated = "wedding-plan-service-updated"

const effectMirror = "proposal.mirror_status"

// IsValidStatus reports whether status is a service status.
func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusAccepted, StatusRejected, StatusAssigned:
		return true
	}
	return false
}

// PlanStore is the storage the propagator depends on.
type PlanStore interface {
	UpdateServiceStatus(ctx context.Context, id uuid.UUID, status, reason string) (repository.PlanService, error)
	GetPlanLeadID(ctx context.Context, planID uuid.UUID) (*uuid.UUID, error)
	GetCurrentProposalID(ctx context.Context, leadID uuid.UUID) (*uuid.UUID, error)
	UpdateManyByProposalAndVendorService(ctx context.Context, proposalID, vendorServiceID uuid.UUID, status string) (int64, error)
	GetServiceDetail(ctx context.Context, id uuid.UUID) (repository.PlanServiceDetail, error)
}

// Broadcaster pushes a realtime event to every client in a room.
type Broadcaster interface {
	PublishToRoom(room, event string, payload any) error
}

// Config is the subset of configuration the propagator reads.
type Config interface {
	GetPipelineRoom() string
}

// Service records wedding plan service decisions.
type Service struct {
	store       PlanStore
	eventBus    events.Bus
	dispatcher  *dispatch.Dispatcher
	broadcaster Broadcaster
	log         *logger.Logger
	metrics     *metrics.Metrics
	room        string
}

// New creates a wedding plans service.
func New(store PlanStore, eventBus events.Bus, dispatcher *dispatch.Dispatcher, cfg Config, log *logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if dispatcher == nil {
		dispatcher = dispatch.New(log, m, 0)
	}
	room := "pipeline"
	if cfg != nil && strings.TrimSpace(cfg.GetPipelineRoom()) != "" {
		room = strings.TrimSpace(cfg.GetPipelineRoom())
	}
	return &Service{store: store, eventBus: eventBus, dispatcher: dispatcher, log: log, metrics: m, room: room}
}

func (s *Service) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

// UpdateServiceStatus records status on a wedding plan service and mirrors it
// onto the matching line items of the lead's current proposal. The recorded
// decision stands even when mirroring fails.
func (s *Service) UpdateServiceStatus(ctx context.Context, id uuid.UUID, status, reason string) (transport.WeddingPlanServiceResponse, error) {
	if !IsValidStatus(status) {
		return transport.WeddingPlanServiceResponse{}, apperr.BadRequest(fmt.Sprintf("invalid status: %q", status)).
			WithDetails(map[string]string{"field": "status", "value": status})
	}

	updated, err := s.store.UpdateServiceStatus(ctx, id, status, strings.TrimSpace(reason))
	if err != nil {
		return transport.WeddingPlanServiceResponse{}, err
	}

	var (
		leadID   *uuid.UUID
		mirrored int64
	)
	s.dispatcher.BestEffort(ctx, effectMirror, func(ctx context.Context) error {
		var err error
		leadID, mirrored, err = s.mirror(ctx, updated)
		if err != nil {
			s.metrics.IncPropagation(metrics.OutcomeFailure)
			return apperr.Propagation(effectMirror, err)
		}
		return nil
	}, "weddingPlanServiceId", id, "status", status)

	detail, err := s.store.GetServiceDetail(ctx, id)
	if err != nil {
		return transport.WeddingPlanServiceResponse{}, err
	}
	resp := toResponse(detail)

	if s.broadcaster != nil {
		room := s.room
		s.dispatcher.Go(ctx, "broadcast."+EventServiceUpdated, func(context.Context) error {
			return s.broadcaster.PublishToRoom(room, EventServiceUpdated, resp)
		}, "weddingPlanServiceId", id)
	}
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.WeddingPlanServiceStatusChanged{
			BaseEvent:            events.NewBaseEvent(),
			WeddingPlanServiceID: id,
			LeadID:               leadID,
			VendorServiceID:      updated.VendorServiceID,
			Status:               updated.Status,
			Mirrored:             mirrored,
		})
	}
	return resp, nil
}

// mirror copies the status onto the current proposal. A plan without a lead,
// or a lead without a proposal, has nothing to mirror.
func (s *Service) mirror(ctx context.Context, svc repository.PlanService) (*uuid.UUID, int64, error) {
	leadID, err := s.store.GetPlanLeadID(ctx, svc.WeddingPlanID)
	if err != nil {
		return nil, 0, err
	}
	if leadID == nil {
		s.metrics.IncPropagation(metrics.OutcomeSkipped)
		return nil, 0, nil
	}

	proposalID, err := s.store.GetCurrentProposalID(ctx, *leadID)
	if err != nil {
		return leadID, 0, err
	}
	if proposalID == nil {
		s.metrics.IncPropagation(metrics.OutcomeSkipped)
		return leadID, 0, nil
	}

	n, err := s.store.UpdateManyByProposalAndVendorService(ctx, *proposalID, svc.VendorServiceID, svc.Status)
	if err != nil {
		return leadID, 0, err
	}
	s.metrics.IncPropagation(metrics.OutcomeSuccess)
	s.log.WithContext(ctx).Debug("proposal services mirrored",
		"proposalId", *proposalID, "vendorServiceId", svc.VendorServiceID, "rows", n)
	return leadID, n, nil
}

// GetWeddingPlanService returns a line item with its vendor service and lead.
func (s *Service) GetWeddingPlanService(ctx context.Context, id uuid.UUID) (transport.WeddingPlanServiceResponse, error) {
	detail, err := s.store.GetServiceDetail(ctx, id)
	if err != nil {
		return transport.WeddingPlanServiceResponse{}, err
	}
	return toResponse(detail), nil
}

func toResponse(d repository.PlanServiceDetail) transport.WeddingPlanServiceResponse {
	resp := transport.WeddingPlanServiceResponse{
		ID:            d.ID,
		WeddingPlanID: d.WeddingPlanID,
		Status:        d.Status,
		Reason:        d.Reason,
		VendorService: transport.VendorServiceSummary{
			ID:    d.VendorServiceID,
			Name:  d.VendorServiceName,
			Price: d.VendorServicePrice,
			Vendor: transport.VendorSummary{
				ID:    d.VendorID,
				Name:  d.VendorName,
				Email: d.VendorEmail,
			},
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.LeadID != nil {
		resp.Lead = &transport.LeadSummary{
			ID:          *d.LeadID,
			Couple:      domain.Couple(deref(d.PartnerOneName), deref(d.PartnerTwoName)),
			Status:      deref(d.LeadStatus),
			Stage:       deref(d.LeadStage),
			WeddingDate: d.WeddingDate,
		}
	}
	return resp
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
