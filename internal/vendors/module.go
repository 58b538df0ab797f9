// Package vendors provides the vendors bounded context module: budget-based
// vendor matching and vendor lookup.
package vendors

import (
	apphttp "wedding_crm_backend/internal/http"
	"wedding_crm_backend/internal/vendors/handler"
	"wedding_crm_backend/internal/vendors/repository"
	"wedding_crm_backend/internal/vendors/service"
	"wedding_crm_backend/platform/config"
	"wedding_crm_backend/platform/metrics"
	"wedding_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the vendors bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the vendors module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.MatcherConfig, m *metrics.Metrics, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, m)
	return &Module{handler: handler.New(svc, val), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "vendors"
}

// Service returns the matcher for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts vendor routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/vendors"))
	m.handler.RegisterLeadRoutes(ctx.Protected.Group("/pipeline/leads"))
}

var _ apphttp.Module = (*Module)(nil)
