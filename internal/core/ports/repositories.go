package ports

import (
	"context"
	"time"

	"restaurant-pos/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// OrderRepository defines persistence operations for POS orders.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByPaymentReference(ctx context.Context, reference string) (*domain.Order, error)
	GetByPaymentReferenceForUpdate(ctx context.Context, tx pgx.Tx, reference string) (*domain.Order, error)
	MarkAwaitingPayment(ctx context.Context, id uuid.UUID) error
	MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, paidAt time.Time) error
	MarkCancelled(ctx context.Context, tx pgx.Tx, id uuid.UUID, cancelledAt time.Time) error
}

// PaymentRepository defines persistence operations for settled payments.
type PaymentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payment *domain.PaymentRecord) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.PaymentRecord, error)
	// Reporting queries
	List(ctx context.Context, params PaymentListParams) ([]domain.PaymentRecord, int64, error)
	GetStats(ctx context.Context, storeID uuid.UUID, since *time.Time) (*domain.PaymentStats, error)
}

// PaymentListParams holds filter + pagination for listing payments.
type PaymentListParams struct {
	StoreID  uuid.UUID
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// NotificationLogRepository stores every received gateway notification.
type NotificationLogRepository interface {
	Create(ctx context.Context, log *domain.NotificationLog) error
}

// StaffRepository defines persistence operations for POS staff.
type StaffRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Staff, error)
	GetByUsername(ctx context.Context, username string) (*domain.Staff, error)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// KitchenDeliveryRepository records kitchen display delivery attempts.
type KitchenDeliveryRepository interface {
	Create(ctx context.Context, log *domain.KitchenDeliveryLog) error
	Update(ctx context.Context, log *domain.KitchenDeliveryLog) error
}

// InventoryRepository applies stock movements for paid orders.
type InventoryRepository interface {
	// DeductForOrder subtracts the order's items from stock once per order.
	// It returns the number of stock rows touched, zero when already applied.
	DeductForOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}

// SalesAnalyticsRepository maintains per-store daily sales aggregates.
type SalesAnalyticsRepository interface {
	// RecordSale adds one paid order to the store's daily totals once per order.
	RecordSale(ctx context.Context, orderID, storeID uuid.UUID, day time.Time, gross, net decimal.Decimal) (bool, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
