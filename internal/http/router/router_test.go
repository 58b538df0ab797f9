package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "wedding_crm_backend/internal/http"
	"wedding_crm_backend/platform/logger"
	"wedding_crm_backend/platform/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testConfig struct{}

func (testConfig) GetHTTPAddr() string      { return ":0" }
func (testConfig) GetCORSAllowAll() bool    { return false }
func (testConfig) GetCORSOrigins() []string { return []string{"http://localhost:3000"} }
func (testConfig) GetCORSAllowCreds() bool  { return true }
func (testConfig) GetJWTAccessSecret() string {
	return "secret"
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
}

func newApp(health apphttp.HealthChecker) *apphttp.App {
	reg := prometheus.NewRegistry()
	metrics.New(reg).IncStageTransition("BOOKED")
	return &apphttp.App{
		Config:  testConfig{},
		Logger:  logger.Nop(),
		Health:  health,
		Metrics: reg,
		Modules: []apphttp.Module{pingModule{}},
	}
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(New(newApp(pinger{})), http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(New(newApp(pinger{err: errors.New("down")})), http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestModuleRoutesRequireAuth(t *testing.T) {
	rec := serve(New(newApp(pinger{})), http.MethodGet, "/api/v1/ping")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(New(newApp(pinger{})), http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lead_stage_transitions_total")
}
