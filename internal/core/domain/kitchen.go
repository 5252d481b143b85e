package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus represents the state of a kitchen display delivery.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	DeliveryStatusFailed    DeliveryStatus = "FAILED"
)

// KitchenDeliveryLog records each attempt to push a paid order to the kitchen display.
type KitchenDeliveryLog struct {
	ID         uuid.UUID      `json:"id"`
	OrderID    uuid.UUID      `json:"order_id"`
	StoreID    uuid.UUID      `json:"store_id"`
	TargetURL  string         `json:"target_url"`
	Payload    string         `json:"payload"`
	HTTPStatus *int           `json:"http_status"`
	Attempt    int            `json:"attempt"`
	Status     DeliveryStatus `json:"status"`
	LastError  *string        `json:"last_error"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
