// Package leads provides the lead pipeline bounded context: the Kanban stage
// machine, archiving, editing and inquiry intake.
package leads

import (
	"wedding_crm_backend/internal/events"
	apphttp "wedding_crm_backend/internal/http"
	"wedding_crm_backend/internal/leads/handler"
	"wedding_crm_backend/internal/leads/repository"
	"wedding_crm_backend/internal/leads/service"
	"wedding_crm_backend/platform/dispatch"
	"wedding_crm_backend/platform/logger"
	"wedding_crm_backend/platform/metrics"
	"wedding_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	eventBus events.Bus,
	dispatcher *dispatch.Dispatcher,
	cfg service.Config,
	log *logger.Logger,
	m *metrics.Metrics,
	val *validator.Validator,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, dispatcher, cfg, log, m)
	return &Module{handler: handler.New(svc, val), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the leads service so ports can be attached after construction.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts pipeline routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/pipeline/leads"))
	m.handler.RegisterCardRoutes(ctx.Protected.Group("/kanban/cards"))
}

var _ apphttp.Module = (*Module)(nil)
