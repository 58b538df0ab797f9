// Package service implements the pipeline stage machine: moving leads between
// Kanban boards, archiving, editing and intake of new inquiries.
package service

import (
	"context"
	"strings"

	"wedding_crm_backend/internal/events"
	"wedding_crm_backend/internal/leads/domain"
	"wedding_crm_backend/internal/leads/ports"
	"wedding_crm_backend/internal/leads/repository"
	"wedding_crm_backend/internal/leads/transport"
	"wedding_crm_backend/platform/apperr"
	"wedding_crm_backend/platform/dispatch"
	"wedding_crm_backend/platform/logger"
	"wedding_crm_backend/platform/metrics"
	"wedding_crm_backend/platform/phone"
	"wedding_crm_backend/platform/sanitize"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Realtime event names sent to the pipeline room.
const (
	EventLeadStatusUpdated = "lead-status-updated"
	EventLeadArchived      = "lead-archived"
	EventLeadUpdated       = "lead-updated"
	EventLeadCreated       = "lead-created"
)

const (
	defaultPipelineRoom = "pipeline"
	defaultPageSize     = 20
)

// LeadStore is the storage the stage machine depends on.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	Update(ctx context.Context, id uuid.UUID, patch repository.LeadPatch) (repository.Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status, stage string) (repository.Lead, error)
	SetSaveStatus(ctx context.Context, id uuid.UUID, saveStatus string) (repository.Lead, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Lead, error)
	Count(ctx context.Context, filter repository.ListFilter) (int, error)
	GetCardSummary(ctx context.Context, cardID uuid.UUID) (repository.CardSummary, error)
}

// Config is the subset of configuration the stage machine reads.
type Config interface {
	GetPipelineRoom() string
	GetAutoAssignTopVendors() int
}

// Service encapsulates pipeline business logic.
type Service struct {
	repo        LeadStore
	eventBus    events.Bus
	dispatcher  *dispatch.Dispatcher
	log         *logger.Logger
	metrics     *metrics.Metrics
	room        string
	autoAssign  int
	broadcaster ports.Broadcaster
	reconciler  ports.CardReconciler
	matcher     ports.VendorMatcher
}

// New creates a leads service. Cross-module ports are attached afterwards
// with the Set* methods; an unset port turns its side effect into a no-op.
func New(repo LeadStore, eventBus events.Bus, dispatcher *dispatch.Dispatcher, cfg Config, log *logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if dispatcher == nil {
		dispatcher = dispatch.New(log, m, 0)
	}
	s := &Service{
		repo:       repo,
		eventBus:   eventBus,
		dispatcher: dispatcher,
		log:        log,
		metrics:    m,
		room:       defaultPipelineRoom,
	}
	if cfg != nil {
		if room := strings.TrimSpace(cfg.GetPipelineRoom()); room != "" {
			s.room = room
		}
		s.autoAssign = max(cfg.GetAutoAssignTopVendors(), 0)
	}
	return s
}

func (s *Service) SetBroadcaster(b ports.Broadcaster) { s.broadcaster = b }

func (s *Service) SetCardReconciler(r ports.CardReconciler) { s.reconciler = r }

func (s *Service) SetVendorMatcher(m ports.VendorMatcher) { s.matcher = m }

// UpdateCardStatus moves the lead behind a Kanban card to the board
// kanbanBoardID. An unknown board id is rejected before anything is read or
// written.
func (s *Service) UpdateCardStatus(ctx context.Context, cardID uuid.UUID, kanbanBoardID string) (transport.KanbanCardStatusResponse, error) {
	stage, err := resolveBoard(kanbanBoardID)
	if err != nil {
		return transport.KanbanCardStatusResponse{}, err
	}

	card, err := s.repo.GetCardSummary(ctx, cardID)
	if err != nil {
		return transport.KanbanCardStatusResponse{}, err
	}

	lead, err := s.transition(ctx, card.OriginalLeadID, stage)
	if err != nil {
		return transport.KanbanCardStatusResponse{}, err
	}

	return transport.KanbanCardStatusResponse{
		ID:           card.ID,
		Vendor:       transport.CardVendor{ID: card.VendorID, Name: card.VendorName},
		OriginalLead: toPipelineView(lead),
		Status:       lead.Status,
		UpdatedAt:    lead.UpdatedAt,
	}, nil
}

// UpdateLeadStatus is UpdateCardStatus addressed by lead id.
func (s *Service) UpdateLeadStatus(ctx context.Context, leadID uuid.UUID, kanbanBoardID string) (transport.PipelineLeadResponse, error) {
	stage, err := resolveBoard(kanbanBoardID)
	if err != nil {
		return transport.PipelineLeadResponse{}, err
	}

	lead, err := s.transition(ctx, leadID, stage)
	if err != nil {
		return transport.PipelineLeadResponse{}, err
	}
	return toPipelineResponse(lead), nil
}

// transition sets status and stage together and restarts the time in stage.
// The move is broadcast even when the lead was already on the target board.
func (s *Service) transition(ctx context.Context, leadID uuid.UUID, stage domain.Stage) (repository.Lead, error) {
	current, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return repository.Lead{}, err
	}

	lead, err := s.repo.UpdateStatus(ctx, leadID, stage.Status, stage.Label)
	if err != nil {
		return repository.Lead{}, err
	}

	s.metrics.IncStageTransition(stage.Status)
	s.log.WithContext(ctx).Info("lead stage changed",
		"leadId", leadID, "from", current.Status, "to", stage.Status)

	view := toPipelineView(lead)
	view.Archived = false
	s.broadcast(ctx, EventLeadStatusUpdated, leadID, view)
	s.publish(ctx, events.LeadStatusUpdated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Couple:    view.Couple,
		OldStatus: current.Status,
		NewStatus: lead.Status,
		Stage:     lead.Stage,
		CreatedBy: lead.CreatedBy,
	})
	return lead, nil
}

// ArchivePipelineLead takes a lead off the board without touching its stage.
func (s *Service) ArchivePipelineLead(ctx context.Context, leadID uuid.UUID) (transport.PipelineLeadResponse, error) {
	lead, err := s.repo.SetSaveStatus(ctx, leadID, domain.SaveStatusArchived)
	if err != nil {
		return transport.PipelineLeadResponse{}, err
	}

	resp := toPipelineResponse(lead)
	s.broadcast(ctx, EventLeadArchived, leadID, resp.View)
	s.publish(ctx, events.LeadArchived{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Couple:    resp.View.Couple,
		CreatedBy: lead.CreatedBy,
	})
	return resp, nil
}

// UpdatePipelineLead applies a field patch. A board id in the patch moves the
// lead like UpdateLeadStatus; vendorAssignments trigger a best-effort card
// reconciliation.
func (s *Service) UpdatePipelineLead(ctx context.Context, leadID uuid.UUID, req transport.UpdatePipelineLeadRequest) (transport.PipelineLeadResponse, error) {
	var stage *domain.Stage
	if req.KanbanBoardID != nil {
		resolved, err := resolveBoard(*req.KanbanBoardID)
		if err != nil {
			return transport.PipelineLeadResponse{}, err
		}
		stage = &resolved
	}
	if req.BudgetMin != nil && req.BudgetMax != nil && *req.BudgetMin > *req.BudgetMax {
		return transport.PipelineLeadResponse{}, apperr.Validation("budgetMin must not exceed budgetMax")
	}
	if req.GuestCountMin != nil && req.GuestCountMax != nil && *req.GuestCountMin > *req.GuestCountMax {
		return transport.PipelineLeadResponse{}, apperr.Validation("guestCountMin must not exceed guestCountMax")
	}

	var oldStatus string
	if stage != nil {
		current, err := s.repo.GetByID(ctx, leadID)
		if err != nil {
			return transport.PipelineLeadResponse{}, err
		}
		oldStatus = current.Status
	}

	lead, err := s.repo.Update(ctx, leadID, toPatch(req, stage))
	if err != nil {
		return transport.PipelineLeadResponse{}, err
	}
	resp := toPipelineResponse(lead)

	if stage != nil && oldStatus != lead.Status {
		s.metrics.IncStageTransition(lead.Status)
		s.publish(ctx, events.LeadStatusUpdated{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			Couple:    resp.View.Couple,
			OldStatus: oldStatus,
			NewStatus: lead.Status,
			Stage:     lead.Stage,
			CreatedBy: lead.CreatedBy,
		})
	}

	if req.VendorAssignments != nil {
		s.reconcileCards(ctx, leadID, transport.Desired(req.VendorAssignments))
	}

	s.broadcast(ctx, EventLeadUpdated, leadID, resp.View)
	return resp, nil
}

// GetPipelineLead returns a lead, archived or not.
func (s *Service) GetPipelineLead(ctx context.Context, leadID uuid.UUID) (transport.PipelineLeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return transport.PipelineLeadResponse{}, err
	}
	return toPipelineResponse(lead), nil
}

// ListPipelineLeads returns one page of the board. Archived leads are left
// out unless the request asks for them.
func (s *Service) ListPipelineLeads(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page := max(req.Page, 1)
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	filter := repository.ListFilter{
		IncludeArchived: req.IncludeArchived,
		Status:          req.Status,
		Search:          req.Search,
	}

	var (
		leads []repository.Lead
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leads, err = s.repo.List(gctx, repository.ListParams{
			Filter:    filter,
			SortBy:    req.SortBy,
			SortOrder: req.SortOrder,
			Page:      page,
			PageSize:  pageSize,
		})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.PipelineLeadView, len(leads))
	for i, lead := range leads {
		items[i] = toPipelineView(lead)
	}

	return transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// PipelineSummary counts the non-archived leads on each board.
func (s *Service) PipelineSummary(ctx context.Context) (transport.PipelineSummaryResponse, error) {
	counts := make([]transport.StageCount, len(domain.Stages))
	g, gctx := errgroup.WithContext(ctx)
	for i, stage := range domain.Stages {
		g.Go(func() error {
			n, err := s.repo.Count(gctx, repository.ListFilter{Status: stage.Status})
			if err != nil {
				return err
			}
			counts[i] = transport.StageCount{
				BoardID: stage.BoardID,
				Status:  stage.Status,
				Stage:   stage.Label,
				Count:   n,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return transport.PipelineSummaryResponse{}, err
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return transport.PipelineSummaryResponse{Stages: counts, Total: total}, nil
}

// CreateLead stores a new inquiry on the Inquiry board. Explicit vendor
// assignments are reconciled into cards; a submitted lead without any gets
// the top matching vendors. Neither step can fail the intake.
func (s *Service) CreateLead(ctx context.Context, req transport.CreateLeadRequest, createdBy *uuid.UUID) (transport.PipelineLeadResponse, error) {
	if req.BudgetMin < 0 || req.BudgetMin > req.BudgetMax {
		return transport.PipelineLeadResponse{}, apperr.Validation("budgetMin must not exceed budgetMax")
	}
	if req.GuestCountMin > req.GuestCountMax {
		return transport.PipelineLeadResponse{}, apperr.Validation("guestCountMin must not exceed guestCountMax")
	}

	saveStatus := req.SaveStatus
	if saveStatus == "" {
		saveStatus = domain.SaveStatusSubmitted
	}
	if saveStatus == domain.SaveStatusArchived || !domain.IsValidSaveStatus(saveStatus) {
		return transport.PipelineLeadResponse{}, apperr.InvalidValue("saveStatus", saveStatus)
	}

	inquiry, _ := domain.StageForBoard(domain.BoardInquiry)
	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		PartnerOneName:     sanitize.Text(req.PartnerOneName),
		PartnerTwoName:     sanitize.Text(req.PartnerTwoName),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:              phone.NormalizeE164(req.Phone),
		WeddingDate:        req.WeddingDate,
		BudgetMin:          req.BudgetMin,
		BudgetMax:          req.BudgetMax,
		Budget:             req.Budget,
		GuestCountMin:      req.GuestCountMin,
		GuestCountMax:      req.GuestCountMax,
		PreferredLocations: sanitize.Texts(req.PreferredLocations),
		ServiceTypes:       sanitize.Texts(req.ServiceTypes),
		Status:             inquiry.Status,
		Stage:              inquiry.Label,
		SaveStatus:         saveStatus,
		CreatedBy:          createdBy,
	})
	if err != nil {
		return transport.PipelineLeadResponse{}, err
	}

	switch {
	case len(req.VendorAssignments) > 0:
		s.reconcileCards(ctx, lead.ID, transport.Desired(req.VendorAssignments))
	case saveStatus == domain.SaveStatusSubmitted:
		s.autoAssignVendors(ctx, lead.ID)
	}

	resp := toPipelineResponse(lead)
	s.broadcast(ctx, EventLeadCreated, lead.ID, resp.View)
	s.publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Couple:    resp.View.Couple,
		CreatedBy: lead.CreatedBy,
	})
	return resp, nil
}

func (s *Service) reconcileCards(ctx context.Context, leadID uuid.UUID, desired map[uuid.UUID][]uuid.UUID) {
	if s.reconciler == nil {
		return
	}
	s.dispatcher.BestEffort(ctx, "cards.reconcile", func(ctx context.Context) error {
		return s.reconciler.ReconcileCardsForLead(ctx, leadID, desired)
	}, "leadId", leadID)
}

func (s *Service) autoAssignVendors(ctx context.Context, leadID uuid.UUID) {
	if s.matcher == nil || s.reconciler == nil || s.autoAssign == 0 {
		return
	}
	s.dispatcher.BestEffort(ctx, "cards.auto_assign", func(ctx context.Context) error {
		vendorIDs, err := s.matcher.TopVendorsForLead(ctx, leadID, s.autoAssign)
		if err != nil || len(vendorIDs) == 0 {
			return err
		}
		desired := make(map[uuid.UUID][]uuid.UUID, len(vendorIDs))
		for _, id := range vendorIDs {
			desired[id] = nil
		}
		return s.reconciler.ReconcileCardsForLead(ctx, leadID, desired)
	}, "leadId", leadID)
}

func (s *Service) broadcast(ctx context.Context, event string, leadID uuid.UUID, payload any) {
	if s.broadcaster == nil {
		return
	}
	room := s.room
	s.dispatcher.Go(ctx, "broadcast."+event, func(context.Context) error {
		return s.broadcaster.PublishToRoom(room, event, payload)
	}, "leadId", leadID, "room", room)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, event)
	}
}

func resolveBoard(kanbanBoardID string) (domain.Stage, error) {
	stage, ok := domain.StageForBoard(kanbanBoardID)
	if !ok {
		return domain.Stage{}, apperr.InvalidValue("kanbanBoardId", kanbanBoardID)
	}
	return stage, nil
}
