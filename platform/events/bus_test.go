package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"wedding_crm_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.Nop())
	calls := 0
	bus.Subscribe("lead.updated", HandlerFunc(func(context.Context, Event) error {
		calls++
		return errors.New("first")
	}))
	bus.Subscribe("lead.updated", HandlerFunc(func(context.Context, Event) error {
		calls++
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "lead.updated"})
	if err == nil {
		t.Fatal("expected joined error")
	}
	if calls != 2 {
		t.Fatalf("expected both handlers to run, got %d", calls)
	}
}

func TestPublishRecoversPanicsAndRunsOtherHandlers(t *testing.T) {
	bus := NewInMemoryBus(logger.Nop())
	var ran atomic.Int32
	bus.Subscribe("card.reconciled", HandlerFunc(func(context.Context, Event) error {
		panic("boom")
	}))
	bus.Subscribe("card.reconciled", HandlerFunc(func(context.Context, Event) error {
		ran.Add(1)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, testEvent{BaseEvent: NewBaseEvent(), name: "card.reconciled"})
	cancel()
	bus.Wait()

	if ran.Load() != 1 {
		t.Fatalf("expected healthy handler to run once, got %d", ran.Load())
	}
}

func TestPublishIgnoresUnsubscribedEvents(t *testing.T) {
	bus := NewInMemoryBus(nil)
	if err := bus.PublishSync(context.Background(), testEvent{name: "nobody.listens"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
