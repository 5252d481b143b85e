package postgres

import (
	"context"
	"fmt"

	"restaurant-pos/internal/core/domain"
)

// NotificationLogRepo implements ports.NotificationLogRepository.
// Rows are append-only.
type NotificationLogRepo struct {
	pool Pool
}

// NewNotificationLogRepo creates a new NotificationLogRepo.
func NewNotificationLogRepo(pool Pool) *NotificationLogRepo {
	return &NotificationLogRepo{pool: pool}
}

// Create stores one received notification.
func (r *NotificationLogRepo) Create(ctx context.Context, l *domain.NotificationLog) error {
	query := `INSERT INTO notification_logs (id, payment_reference, gateway_reference, payment_status,
		payload, accepted, reject_code, applied, remote_addr, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		l.ID, l.PaymentReference, l.GatewayReference, l.PaymentStatus,
		l.Payload, l.Accepted, l.RejectCode, l.Applied, l.RemoteAddr, l.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification log: %w", err)
	}
	return nil
}
