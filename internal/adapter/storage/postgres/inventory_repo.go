package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// InventoryRepo implements ports.InventoryRepository.
type InventoryRepo struct {
	pool Pool
}

// NewInventoryRepo creates a new InventoryRepo.
func NewInventoryRepo(pool Pool) *InventoryRepo {
	return &InventoryRepo{pool: pool}
}

// DeductForOrder claims the order in inventory_adjustments and subtracts its
// item quantities in one statement. A second call for the same order claims
// nothing and touches no stock.
func (r *InventoryRepo) DeductForOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	query := `WITH claim AS (
			INSERT INTO inventory_adjustments (order_id, applied_at)
			VALUES ($1, NOW())
			ON CONFLICT (order_id) DO NOTHING
			RETURNING order_id
		), items AS (
			SELECT oi.product_id, o.store_id, SUM(oi.quantity) AS qty
			FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			JOIN claim c ON c.order_id = oi.order_id
			GROUP BY oi.product_id, o.store_id
		)
		UPDATE stock_levels s
		SET quantity = s.quantity - items.qty, updated_at = NOW()
		FROM items
		WHERE s.product_id = items.product_id AND s.store_id = items.store_id`

	tag, err := r.pool.Exec(ctx, query, orderID)
	if err != nil {
		return 0, fmt.Errorf("deduct inventory: %w", err)
	}
	return tag.RowsAffected(), nil
}
