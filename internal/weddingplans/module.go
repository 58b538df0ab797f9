// Package weddingplans provides the wedding plan bounded context: vendor
// service decisions and their propagation to proposals.
package weddingplans

import (
	"wedding_crm_backend/internal/events"
	apphttp "wedding_crm_backend/internal/http"
	"wedding_crm_backend/internal/weddingplans/handler"
	"wedding_crm_backend/internal/weddingplans/repository"
	"wedding_crm_backend/internal/weddingplans/service"
	"wedding_crm_backend/platform/dispatch"
	"wedding_crm_backend/platform/logger"
	"wedding_crm_backend/platform/metrics"
	"wedding_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the wedding plans bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the wedding plans module.
func NewModule(
	pool *pgxpool.Pool,
	eventBus events.Bus,
	dispatcher *dispatch.Dispatcher,
	cfg service.Config,
	log *logger.Logger,
	m *metrics.Metrics,
	val *validator.Validator,
) *Module {
	svc := service.New(repository.New(pool), eventBus, dispatcher, cfg, log, m)
	return &Module{handler: handler.New(svc, val), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "weddingplans"
}

// Service returns the wedding plans service.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts wedding plan service routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/wedding-plan-services"))
}

var _ apphttp.Module = (*Module)(nil)
