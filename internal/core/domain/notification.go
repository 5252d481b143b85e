package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationLog is the append-only record of every received notification,
// accepted or not.
type NotificationLog struct {
	ID               uuid.UUID `json:"id"`
	PaymentReference string    `json:"payment_reference"`
	GatewayReference string    `json:"gateway_reference"`
	PaymentStatus    string    `json:"payment_status"`
	Payload          []byte    `json:"payload"` // redacted parameters, JSON
	Accepted         bool      `json:"accepted"`
	RejectCode       string    `json:"reject_code,omitempty"`
	Applied          bool      `json:"applied"`
	RemoteAddr       string    `json:"remote_addr"`
	ReceivedAt       time.Time `json:"received_at"`
}

// BuildNotificationKey identifies one gateway status report for one payment.
func BuildNotificationKey(paymentReference string, status PaymentStatus) string {
	return paymentReference + ":" + string(status)
}
