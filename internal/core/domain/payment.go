package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	GatewayPayFast = "payfast"
	MethodPayFast  = "payfast"
)

// PaymentRecord is the settlement metadata stored when an order is marked paid.
type PaymentRecord struct {
	ID               uuid.UUID       `json:"id"`
	OrderID          uuid.UUID       `json:"order_id"`
	StoreID          uuid.UUID       `json:"store_id"`
	Gateway          string          `json:"gateway"`
	GatewayReference string          `json:"gateway_reference"` // pf_payment_id
	AmountGross      decimal.Decimal `json:"amount_gross"`
	AmountFee        decimal.Decimal `json:"amount_fee"`
	AmountNet        decimal.Decimal `json:"amount_net"`
	Method           string          `json:"method"`
	CustomFields     CustomFields    `json:"custom_fields"`
	PayerEmailEnc    string          `json:"-"` // AES-256 encrypted
	PaidAt           time.Time       `json:"paid_at"`
	CreatedAt        time.Time       `json:"created_at"`
}

// PaymentStats summarises settled payments for a store over a period.
type PaymentStats struct {
	TotalCount  int64           `json:"total_count"`
	GrossVolume decimal.Decimal `json:"gross_volume"`
	FeeVolume   decimal.Decimal `json:"fee_volume"`
	NetVolume   decimal.Decimal `json:"net_volume"`
}

// PaymentEvent is the payload handed to post-payment side effects.
type PaymentEvent struct {
	OrderID          uuid.UUID       `json:"order_id"`
	StoreID          uuid.UUID       `json:"store_id"`
	TableID          string          `json:"table_id,omitempty"`
	PaymentReference string          `json:"payment_reference"`
	GatewayReference string          `json:"gateway_reference"`
	AmountGross      decimal.Decimal `json:"amount_gross"`
	AmountNet        decimal.Decimal `json:"amount_net"`
	PayerName        string          `json:"payer_name,omitempty"`
	PayerEmail       string          `json:"payer_email,omitempty"`
	PaidAt           time.Time       `json:"paid_at"`
}
