package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wedding_crm_backend/internal/notification/inapp"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPersister struct {
	mu   sync.Mutex
	sent []inapp.SendParams
	err  error
}

func (p *recordingPersister) Send(_ context.Context, params inapp.SendParams) (inapp.Notification, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return inapp.Notification{}, p.err
	}
	p.sent = append(p.sent, params)
	return inapp.Notification{ID: uuid.New(), RecipientID: params.RecipientID}, nil
}

func (p *recordingPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

type fakeEnqueuer struct {
	queued []Notification
	err    error
}

func (e *fakeEnqueuer) EnqueueNotification(_ context.Context, n Notification) error {
	if e.err != nil {
		return e.err
	}
	e.queued = append(e.queued, n)
	return nil
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notification was not handled in time")
	}
}

func sample() Notification {
	return Notification{Message: "Anna & Ben moved to Booked", Type: "lead_status_updated", RecipientID: uuid.New()}
}

func TestSendNotificationPersistsWithoutQueue(t *testing.T) {
	p := &recordingPersister{}
	s := New(p, nil, nil)

	wait(t, s.SendNotification(context.Background(), sample()))

	require.Equal(t, 1, p.count())
	assert.Equal(t, RoleStaff, p.sent[0].RecipientRole)
}

func TestSendNotificationPrefersQueue(t *testing.T) {
	p := &recordingPersister{}
	q := &fakeEnqueuer{}
	s := New(p, nil, nil)
	s.SetEnqueuer(q)

	wait(t, s.SendNotification(context.Background(), sample()))

	assert.Len(t, q.queued, 1)
	assert.Zero(t, p.count())
}

func TestSendNotificationFallsBackWhenQueueFails(t *testing.T) {
	p := &recordingPersister{}
	s := New(p, nil, nil)
	s.SetEnqueuer(&fakeEnqueuer{err: errors.New("redis down")})

	wait(t, s.SendNotification(context.Background(), sample()))
	assert.Equal(t, 1, p.count())
}

func TestSendNotificationSwallowsFailures(t *testing.T) {
	s := New(&recordingPersister{err: errors.New("db down")}, nil, nil)
	wait(t, s.SendNotification(context.Background(), sample()))

	invalid := sample()
	invalid.RecipientID = uuid.Nil
	wait(t, s.SendNotification(context.Background(), invalid))
}

func TestDeliverRejectsIncompleteNotification(t *testing.T) {
	s := New(&recordingPersister{}, nil, nil)
	assert.Error(t, s.Deliver(context.Background(), Notification{RecipientID: uuid.New()}))
}
