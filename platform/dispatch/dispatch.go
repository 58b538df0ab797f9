// Package dispatch runs best-effort side effects: broadcasts, notifications,
// card reconciliation and proposal mirroring. A side effect never fails the
// operation that triggered it; its error is logged, counted and discarded.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"wedding_crm_backend/platform/logger"
	"wedding_crm_backend/platform/metrics"
)

// Dispatcher executes side effects under the best-effort contract.
type Dispatcher struct {
	log     *logger.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

// New creates a dispatcher. timeout bounds detached side effects started with Go.
func New(log *logger.Logger, m *metrics.Metrics, timeout time.Duration) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{log: log, metrics: m, timeout: timeout}
}

// BestEffort runs fn inline and reports whether it succeeded.
func (d *Dispatcher) BestEffort(ctx context.Context, effect string, fn func(context.Context) error, attrs ...any) bool {
	if err := d.run(ctx, effect, fn); err != nil {
		d.log.SideEffectFailed(effect, err, attrs...)
		d.metrics.IncSideEffectFailure(effect)
		return false
	}
	return true
}

// Go runs fn on a detached goroutine so the caller never waits on it.
// The returned channel closes when fn has finished; callers may ignore it.
func (d *Dispatcher) Go(ctx context.Context, effect string, fn func(context.Context) error, attrs ...any) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		d.BestEffort(dctx, effect, fn, attrs...)
	}()
	return done
}

func (d *Dispatcher) run(ctx context.Context, effect string, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", effect, r)
		}
	}()
	return fn(ctx)
}
