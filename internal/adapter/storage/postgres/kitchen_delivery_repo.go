package postgres

import (
	"context"
	"time"

	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"
)

type kitchenDeliveryRepo struct {
	pool Pool
}

// NewKitchenDeliveryRepository creates a PostgreSQL-backed KitchenDeliveryRepository.
func NewKitchenDeliveryRepository(pool Pool) ports.KitchenDeliveryRepository {
	return &kitchenDeliveryRepo{pool: pool}
}

func (r *kitchenDeliveryRepo) Create(ctx context.Context, log *domain.KitchenDeliveryLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO kitchen_deliveries
		(id, order_id, store_id, target_url, payload, http_status, attempt, status, last_error, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		log.ID, log.OrderID, log.StoreID, log.TargetURL,
		log.Payload, log.HTTPStatus, log.Attempt, string(log.Status),
		log.LastError, log.CreatedAt, log.UpdatedAt,
	)
	return err
}

func (r *kitchenDeliveryRepo) Update(ctx context.Context, log *domain.KitchenDeliveryLog) error {
	log.UpdatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx,
		`UPDATE kitchen_deliveries
		 SET http_status=$1, status=$2, last_error=$3, updated_at=$4
		 WHERE id=$5`,
		log.HTTPStatus, string(log.Status), log.LastError, log.UpdatedAt, log.ID,
	)
	return err
}
