package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wedding_crm_backend/internal/adapters"
	"wedding_crm_backend/internal/cards"
	apphttp "wedding_crm_backend/internal/http"
	"wedding_crm_backend/internal/http/router"
	"wedding_crm_backend/internal/leads"
	"wedding_crm_backend/internal/notification"
	"wedding_crm_backend/internal/notification/sse"
	"wedding_crm_backend/internal/scheduler"
	"wedding_crm_backend/internal/vendors"
	"wedding_crm_backend/internal/weddingplans"
	"wedding_crm_backend/platform/config"
	"wedding_crm_backend/platform/db"
	"wedding_crm_backend/platform/dispatch"
	"wedding_crm_backend/platform/events"
	"wedding_crm_backend/platform/lock"
	"wedding_crm_backend/platform/logger"
	"wedding_crm_backend/platform/metrics"
	"wedding_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if cfg.MigrationsOnBoot {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, cfg)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	dispatcher := dispatch.New(log, m, cfg.GetBroadcastTimeout())

	locker, closeLocker := initLocker(cfg, log)
	defer closeLocker()

	// Shared validator instance for dependency injection
	val := validator.New()

	realtime := sse.New(log)
	defer realtime.Close()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	notificationModule := notification.New(pool, dispatcher, log)
	notificationModule.SetSSE(realtime)
	if closeEnqueuer := initEnqueuer(cfg, log, notificationModule); closeEnqueuer != nil {
		defer closeEnqueuer()
	}
	notificationModule.RegisterHandlers(eventBus)

	vendorsModule := vendors.NewModule(pool, cfg, m, val)
	cardsModule := cards.NewModule(pool, locker, eventBus, log, m, val)
	leadsModule := leads.NewModule(pool, eventBus, dispatcher, cfg, log, m, val)
	weddingPlansModule := weddingplans.NewModule(pool, eventBus, dispatcher, cfg, log, m, val)

	// Ports are attached after construction so leads never imports cards or vendors.
	leadsModule.Service().SetBroadcaster(realtime)
	leadsModule.Service().SetCardReconciler(adapters.NewCardReconciler(cardsModule.Service()))
	leadsModule.Service().SetVendorMatcher(adapters.NewVendorMatcher(vendorsModule.Service()))
	weddingPlansModule.Service().SetBroadcaster(realtime)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  db.NewPoolAdapter(pool),
		Metrics: registry,
		Modules: []apphttp.Module{
			leadsModule,
			cardsModule,
			vendorsModule,
			weddingPlansModule,
			notificationModule,
		},
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initLocker prefers a Redis lock so reconciliation is serialized across
// replicas, and falls back to an in-process mutex.
func initLocker(cfg *config.Config, log *logger.Logger) (lock.Locker, func()) {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; card reconciliation locks are process-local")
		return lock.NewKeyedMutex(), func() {}
	}

	client, err := lock.ParseRedisURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("failed to initialize redis locker, using process-local locks", "error", err)
		return lock.NewKeyedMutex(), func() {}
	}
	return lock.NewRedisLocker(client, cfg.GetReconcileLockTTL()), func() {
		_ = client.Close()
	}
}

func initEnqueuer(cfg *config.Config, log *logger.Logger, module *notification.Module) func() {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; notifications are delivered inline")
		return nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize notification queue client", "error", err)
		return nil
	}
	module.SetEnqueuer(client)

	return func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
