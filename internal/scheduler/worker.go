package scheduler

import (
	"context"
	"fmt"

	"wedding_crm_backend/internal/notification/notifier"
	"wedding_crm_backend/platform/config"
	"wedding_crm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Deliverer stores and pushes one notification.
type Deliverer interface {
	Deliver(ctx context.Context, n notifier.Notification) error
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	deliverer Deliverer
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, deliverer Deliverer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = defaultQueue
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := &Worker{
		server:    server,
		mux:       newMux(deliverer, log),
		deliverer: deliverer,
		log:       log,
	}
	return w, nil
}

func newMux(deliverer Deliverer, log *logger.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskNotificationDeliver, notificationHandler(deliverer, log))
	return mux
}

func notificationHandler(deliverer Deliverer, log *logger.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		payload, err := ParseNotificationDeliverPayload(task)
		if err != nil {
			log.Warn("dropping notification task", "error", err)
			return err
		}
		return deliverer.Deliver(ctx, payload)
	}
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
