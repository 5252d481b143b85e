package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnalyticsRepo implements ports.SalesAnalyticsRepository.
type AnalyticsRepo struct {
	pool Pool
}

// NewAnalyticsRepo creates a new AnalyticsRepo.
func NewAnalyticsRepo(pool Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// RecordSale adds the order to the store's totals for the UTC day of day.
// It reports false when the order was already counted.
func (r *AnalyticsRepo) RecordSale(ctx context.Context, orderID, storeID uuid.UUID, day time.Time, gross, net decimal.Decimal) (bool, error) {
	d := day.UTC()
	date := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

	query := `WITH claim AS (
			INSERT INTO sales_recorded (order_id, recorded_at)
			VALUES ($1, NOW())
			ON CONFLICT (order_id) DO NOTHING
			RETURNING order_id
		)
		INSERT INTO daily_sales (store_id, day, order_count, gross, net)
		SELECT $2, $3, 1, $4, $5 FROM claim
		ON CONFLICT (store_id, day) DO UPDATE
		SET order_count = daily_sales.order_count + 1,
			gross = daily_sales.gross + EXCLUDED.gross,
			net = daily_sales.net + EXCLUDED.net`

	tag, err := r.pool.Exec(ctx, query, orderID, storeID, date, gross, net)
	if err != nil {
		return false, fmt.Errorf("record sale: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
