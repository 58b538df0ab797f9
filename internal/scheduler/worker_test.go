package scheduler

import (
	"context"
	"errors"
	"testing"

	"wedding_crm_backend/internal/notification/notifier"
	"wedding_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDeliverer struct {
	got []notifier.Notification
	err error
}

func (d *recordingDeliverer) Deliver(_ context.Context, n notifier.Notification) error {
	d.got = append(d.got, n)
	return d.err
}

func TestNotificationTaskIsDelivered(t *testing.T) {
	d := &recordingDeliverer{}
	n := notifier.Notification{Message: "Anna & Ben was archived", Type: "lead_archived", RecipientID: uuid.New(), RecipientRole: notifier.RoleStaff}

	task, err := NewNotificationDeliverTask(n)
	require.NoError(t, err)
	assert.Equal(t, TaskNotificationDeliver, task.Type())

	require.NoError(t, newMux(d, logger.Nop()).ProcessTask(context.Background(), task))
	require.Len(t, d.got, 1)
	assert.Equal(t, n, d.got[0])
}

func TestDeliveryErrorIsRetried(t *testing.T) {
	d := &recordingDeliverer{err: errors.New("db down")}
	task, err := NewNotificationDeliverTask(notifier.Notification{Message: "m", Type: "t", RecipientID: uuid.New()})
	require.NoError(t, err)

	err = newMux(d, logger.Nop()).ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestMalformedNotificationSkipsRetry(t *testing.T) {
	d := &recordingDeliverer{}

	for _, payload := range [][]byte{[]byte("{"), []byte(`{"message":"m","type":"t"}`)} {
		err := newMux(d, logger.Nop()).ProcessTask(context.Background(), asynq.NewTask(TaskNotificationDeliver, payload))
		require.Error(t, err)
		assert.True(t, errors.Is(err, asynq.SkipRetry))
	}
	assert.Empty(t, d.got)
}
