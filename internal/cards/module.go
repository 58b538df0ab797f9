// Package cards provides the Kanban cards bounded context: per-vendor
// projections of a lead and their team assignments.
package cards

import (
	"wedding_crm_backend/internal/cards/handler"
	"wedding_crm_backend/internal/cards/repository"
	"wedding_crm_backend/internal/cards/service"
	"wedding_crm_backend/internal/events"
	apphttp "wedding_crm_backend/internal/http"
	"wedding_crm_backend/platform/lock"
	"wedding_crm_backend/platform/logger"
	"wedding_crm_backend/platform/metrics"
	"wedding_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the cards bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the cards module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	locker lock.Locker,
	eventBus events.Bus,
	log *logger.Logger,
	m *metrics.Metrics,
	val *validator.Validator,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, locker, eventBus, log, m)
	return &Module{handler: handler.New(svc, val), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "cards"
}

// Service returns the reconciler for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts card routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterLeadRoutes(ctx.Protected.Group("/pipeline/leads"))
	m.handler.RegisterCardRoutes(ctx.Protected.Group("/kanban/cards"))
}

var _ apphttp.Module = (*Module)(nil)
