package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"restaurant-pos/internal/core/domain"

	"github.com/hibiken/asynq"
)

// Post-payment task types.
const (
	TypeReceiptEmail    = "payment:receipt_email"
	TypeInventoryAdjust = "payment:inventory_adjust"
	TypeKitchenNotify   = "payment:kitchen_notify"
	TypeAnalyticsUpdate = "payment:analytics_update"
)

// PaymentEffects lists every task fired when an order is paid.
var PaymentEffects = []string{
	TypeReceiptEmail,
	TypeInventoryAdjust,
	TypeKitchenNotify,
	TypeAnalyticsUpdate,
}

// kitchenRetryIntervals paces kitchen display redelivery.
var kitchenRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// NewPaymentTask wraps the event as the payload of a task of the given type.
func NewPaymentTask(taskType string, event domain.PaymentEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	return asynq.NewTask(taskType, payload), nil
}

// TaskID deduplicates a task per order and effect at the queue.
func TaskID(taskType string, event domain.PaymentEvent) string {
	return taskType + ":" + event.OrderID.String()
}

// RetryDelay uses fixed intervals for kitchen deliveries and asynq's default
// back-off for everything else.
func RetryDelay(n int, err error, task *asynq.Task) time.Duration {
	if task.Type() == TypeKitchenNotify {
		if n >= len(kitchenRetryIntervals) {
			return kitchenRetryIntervals[len(kitchenRetryIntervals)-1]
		}
		return kitchenRetryIntervals[n]
	}
	return asynq.DefaultRetryDelayFunc(n, err, task)
}

func decodeEvent(task *asynq.Task) (domain.PaymentEvent, error) {
	var event domain.PaymentEvent
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		return event, fmt.Errorf("unmarshal %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	return event, nil
}
