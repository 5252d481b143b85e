package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the payment lifecycle of a POS order.
type OrderStatus string

const (
	OrderStatusOpen            OrderStatus = "OPEN"
	OrderStatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	OrderStatusPaid            OrderStatus = "PAID"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
)

// Order is a table order settled through the hosted payment page.
// PaymentReference is sent as m_payment_id and echoed back in notifications.
type Order struct {
	ID               uuid.UUID       `json:"id"`
	StoreID          uuid.UUID       `json:"store_id"`
	TableID          string          `json:"table_id,omitempty"`
	PaymentReference string          `json:"payment_reference"`
	Total            decimal.Decimal `json:"total"`
	Status           OrderStatus     `json:"status"`
	CustomerEmail    string          `json:"customer_email,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsPayable returns true if a checkout can still be started for the order.
func (o *Order) IsPayable() bool {
	return o.Status == OrderStatusOpen || o.Status == OrderStatusAwaitingPayment
}

// IsTerminal returns true once the order has been paid or cancelled.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusPaid || o.Status == OrderStatusCancelled
}
