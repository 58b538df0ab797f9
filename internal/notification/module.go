// Package notification provides event handlers that tell lead owners about
// pipeline changes, the in-app notification inbox and the realtime SSE hub.
// Domain modules publish events and never call into this package.
package notification

import (
	"context"
	"fmt"
	"strings"

	"wedding_crm_backend/internal/events"
	apphttp "wedding_crm_backend/internal/http"
	"wedding_crm_backend/internal/leads/domain"
	notifhandler "wedding_crm_backend/internal/notification/handler"
	"wedding_crm_backend/internal/notification/inapp"
	"wedding_crm_backend/internal/notification/notifier"
	"wedding_crm_backend/internal/notification/sse"
	"wedding_crm_backend/platform/dispatch"
	"wedding_crm_backend/platform/httpkit"
	"wedding_crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Notification types stored with each in-app notification.
const (
	TypeLeadStatusUpdated    = "lead_status_updated"
	TypeLeadArchived         = "lead_archived"
	TypeCardsReconciled      = "cards_reconciled"
	TypeServiceStatusChanged = "wedding_plan_service_status_changed"
)

// OwnerResolver finds the staff owner of a lead.
type OwnerResolver interface {
	LeadOwner(ctx context.Context, leadID uuid.UUID) (inapp.LeadOwner, error)
}

// Module wires the inbox, the SSE hub and the event subscriptions.
type Module struct {
	sse          *sse.Service
	inAppService *inapp.Service
	inAppHandler *notifhandler.HTTPHandler
	notifier     *notifier.Service
	owners       OwnerResolver
	log          *logger.Logger
}

// New creates the notification module.
func New(pool *pgxpool.Pool, dispatcher *dispatch.Dispatcher, log *logger.Logger) *Module {
	if log == nil {
		log = logger.Nop()
	}
	repo := inapp.NewRepository(pool)
	inAppSvc := inapp.NewService(repo, log)

	return &Module{
		inAppService: inAppSvc,
		inAppHandler: notifhandler.NewHTTPHandler(inAppSvc),
		notifier:     notifier.New(inAppSvc, dispatcher, log),
		owners:       repo,
		log:          log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// RegisterRoutes registers the inbox API and the SSE stream.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if m.inAppHandler != nil {
		m.inAppHandler.RegisterRoutes(ctx.Protected.Group("/notifications"))
	}
	if m.sse != nil {
		ctx.Protected.GET("/events", m.sse.Handler(sseUserID))
	}
}

func sseUserID(c *gin.Context) (uuid.UUID, bool) {
	id := httpkit.GetIdentity(c)
	return id.UserID(), id.IsAuthenticated()
}

// SetSSE attaches the realtime hub used for room broadcasts and inbox pushes.
func (m *Module) SetSSE(s *sse.Service) {
	m.sse = s
	if m.inAppService != nil {
		m.inAppService.SetSSE(s)
	}
}

// SetEnqueuer routes notifications through the task queue.
func (m *Module) SetEnqueuer(e notifier.Enqueuer) {
	m.notifier.SetEnqueuer(e)
}

// Notifier exposes the notification sender to the queue worker.
func (m *Module) Notifier() *notifier.Service { return m.notifier }

// RegisterHandlers subscribes the module to the pipeline events it reports on.
func (m *Module) RegisterHandlers(bus events.Bus) {
	// Leads domain events
	bus.Subscribe(events.LeadStatusUpdated{}.EventName(), m)
	bus.Subscribe(events.LeadArchived{}.EventName(), m)

	// Cards domain events
	bus.Subscribe(events.CardsReconciled{}.EventName(), m)

	// Wedding plan domain events
	bus.Subscribe(events.WeddingPlanServiceStatusChanged{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the specific handler methods.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadStatusUpdated:
		return m.handleLeadStatusUpdated(ctx, e)
	case events.LeadArchived:
		return m.handleLeadArchived(ctx, e)
	case events.CardsReconciled:
		return m.handleCardsReconciled(ctx, e)
	case events.WeddingPlanServiceStatusChanged:
		return m.handleServiceStatusChanged(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleLeadStatusUpdated(ctx context.Context, e events.LeadStatusUpdated) error {
	if e.CreatedBy == nil || e.OldStatus == e.NewStatus {
		return nil
	}
	from := e.OldStatus
	if stage, ok := domain.StageForStatus(e.OldStatus); ok {
		from = stage.Label
	}
	m.notify(ctx, *e.CreatedBy, TypeLeadStatusUpdated,
		fmt.Sprintf("%s moved from %s to %s", coupleOrDefault(e.Couple), from, e.Stage))
	return nil
}

func (m *Module) handleLeadArchived(ctx context.Context, e events.LeadArchived) error {
	if e.CreatedBy == nil {
		return nil
	}
	m.notify(ctx, *e.CreatedBy, TypeLeadArchived,
		fmt.Sprintf("%s was archived", coupleOrDefault(e.Couple)))
	return nil
}

func (m *Module) handleCardsReconciled(ctx context.Context, e events.CardsReconciled) error {
	if e.Created == 0 && e.Deleted == 0 {
		return nil
	}
	owner, err := m.owners.LeadOwner(ctx, e.LeadID)
	if err != nil {
		return err
	}
	if owner.OwnerID == nil {
		return nil
	}
	m.notify(ctx, *owner.OwnerID, TypeCardsReconciled,
		fmt.Sprintf("Vendor cards for %s updated: %d added, %d removed",
			coupleOrDefault(domain.Couple(owner.PartnerOneName, owner.PartnerTwoName)), e.Created, e.Deleted))
	return nil
}

func (m *Module) handleServiceStatusChanged(ctx context.Context, e events.WeddingPlanServiceStatusChanged) error {
	if e.LeadID == nil {
		return nil
	}
	owner, err := m.owners.LeadOwner(ctx, *e.LeadID)
	if err != nil {
		return err
	}
	if owner.OwnerID == nil {
		return nil
	}
	m.notify(ctx, *owner.OwnerID, TypeServiceStatusChanged,
		fmt.Sprintf("A vendor service for %s is now %s",
			coupleOrDefault(domain.Couple(owner.PartnerOneName, owner.PartnerTwoName)), strings.ToLower(e.Status)))
	return nil
}

func (m *Module) notify(ctx context.Context, recipient uuid.UUID, kind, message string) {
	m.notifier.SendNotification(ctx, notifier.Notification{
		Message:       message,
		Type:          kind,
		RecipientID:   recipient,
		RecipientRole: notifier.RoleStaff,
	})
}

func coupleOrDefault(couple string) string {
	if strings.TrimSpace(couple) == "" {
		return "A lead"
	}
	return couple
}

var _ apphttp.Module = (*Module)(nil)
