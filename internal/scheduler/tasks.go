package scheduler

import (
	"encoding/json"
	"fmt"

	"wedding_crm_backend/internal/notification/notifier"

	"github.com/hibiken/asynq"
)

const TaskNotificationDeliver = "notification.deliver"

func NewNotificationDeliverTask(payload notifier.Notification) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDeliver, data), nil
}

// ParseNotificationDeliverPayload decodes a queued notification. A payload
// that can never be delivered is marked to skip retries.
func ParseNotificationDeliverPayload(task *asynq.Task) (notifier.Notification, error) {
	var payload notifier.Notification
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return notifier.Notification{}, fmt.Errorf("decode %s: %v: %w", TaskNotificationDeliver, err, asynq.SkipRetry)
	}
	if err := payload.Validate(); err != nil {
		return notifier.Notification{}, fmt.Errorf("invalid %s: %v: %w", TaskNotificationDeliver, err, asynq.SkipRetry)
	}
	return payload, nil
}
