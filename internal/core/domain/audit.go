package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionLogin        AuditAction = "LOGIN"
	AuditActionCheckout     AuditAction = "CHECKOUT"
	AuditActionNotification AuditAction = "PAYMENT_NOTIFICATION"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	StoreID      *uuid.UUID  `json:"store_id,omitempty"`
	StaffID      *uuid.UUID  `json:"staff_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
