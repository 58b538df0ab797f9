// Package router assembles the gin engine: global middleware, health and
// metrics endpoints, and the versioned route groups every module mounts on.
package router

import (
	"context"
	"net/http"
	"time"

	apphttp "wedding_crm_backend/internal/http"
	"wedding_crm_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const (
	globalRatePerSecond = 20
	globalRateBurst     = 40
	healthTimeout       = 2 * time.Second
)

// New builds the HTTP engine for app.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app.Config)))

	limiter := httpkit.NewIPRateLimiter(rate.Limit(globalRatePerSecond), globalRateBurst, app.Logger)

	engine.GET("/api/health", healthHandler(app.Health))
	if app.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(app.Metrics, promhttp.HandlerOpts{})))
	}

	v1 := engine.Group("/api/v1")
	v1.Use(limiter.RateLimit())

	authMiddleware := httpkit.AuthRequired(app.Config)
	protected := v1.Group("")
	protected.Use(authMiddleware)

	ctx := &apphttp.RouterContext{
		Engine:         engine,
		V1:             v1,
		Protected:      protected,
		Config:         app.Config,
		AuthMiddleware: authMiddleware,
	}
	for _, module := range app.Modules {
		module.RegisterRoutes(ctx)
		if app.Logger != nil {
			app.Logger.Debug("module routes registered", "module", module.Name())
		}
	}

	return engine
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", httpkit.RequestIDHeader},
		ExposeHeaders:    []string{httpkit.RequestIDHeader},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	// cors.New panics when no origin is allowed at all.
	if cfg.GetCORSAllowAll() || len(cfg.GetCORSOrigins()) == 0 {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = cfg.GetCORSOrigins()
	}
	return c
}

func healthHandler(health apphttp.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := health.Ping(ctx); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
