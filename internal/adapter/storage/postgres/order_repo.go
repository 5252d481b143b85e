package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant-pos/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, store_id, table_id, payment_reference, total, status,
		customer_email, paid_at, cancelled_at, created_at, updated_at`

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// GetByID fetches an order by UUID. Returns nil when absent.
func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.pool.QueryRow(ctx, query, id))
}

// GetByPaymentReference fetches an order by its m_payment_id (non-locking read).
func (r *OrderRepo) GetByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_reference = $1`
	return scanOrder(r.pool.QueryRow(ctx, query, reference))
}

// GetByPaymentReferenceForUpdate locks the order row until tx ends.
// This MUST be called within a transaction.
func (r *OrderRepo) GetByPaymentReferenceForUpdate(ctx context.Context, tx pgx.Tx, reference string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_reference = $1 FOR UPDATE`
	return scanOrder(tx.QueryRow(ctx, query, reference))
}

// MarkAwaitingPayment moves an OPEN order to AWAITING_PAYMENT. Orders in any
// other state are left alone.
func (r *OrderRepo) MarkAwaitingPayment(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	_, err := r.pool.Exec(ctx, query,
		domain.OrderStatusAwaitingPayment, time.Now().UTC(), id, domain.OrderStatusOpen)
	if err != nil {
		return fmt.Errorf("mark order awaiting payment: %w", err)
	}
	return nil
}

// MarkPaid sets the order PAID within a database transaction.
func (r *OrderRepo) MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, paidAt time.Time) error {
	query := `UPDATE orders SET status = $1, paid_at = $2, updated_at = $2 WHERE id = $3`

	tag, err := tx.Exec(ctx, query, domain.OrderStatusPaid, paidAt, id)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", id)
	}
	return nil
}

// MarkCancelled sets the order CANCELLED within a database transaction.
func (r *OrderRepo) MarkCancelled(ctx context.Context, tx pgx.Tx, id uuid.UUID, cancelledAt time.Time) error {
	query := `UPDATE orders SET status = $1, cancelled_at = $2, updated_at = $2 WHERE id = $3`

	tag, err := tx.Exec(ctx, query, domain.OrderStatusCancelled, cancelledAt, id)
	if err != nil {
		return fmt.Errorf("mark order cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", id)
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID, &o.StoreID, &o.TableID, &o.PaymentReference, &o.Total, &o.Status,
		&o.CustomerEmail, &o.PaidAt, &o.CancelledAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return o, nil
}
