package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `id, order_id, store_id, gateway, gateway_reference, amount_gross, amount_fee,
		amount_net, method, custom_fields, payer_email_enc, paid_at, created_at`

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// Create inserts a payment record within a database transaction. The unique
// order_id constraint rejects a second record for the same order.
func (r *PaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.PaymentRecord) error {
	custom, err := json.Marshal(p.CustomFields)
	if err != nil {
		return fmt.Errorf("marshal custom fields: %w", err)
	}

	query := `INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = tx.Exec(ctx, query,
		p.ID, p.OrderID, p.StoreID, p.Gateway, p.GatewayReference,
		p.AmountGross, p.AmountFee, p.AmountNet, p.Method, custom,
		p.PayerEmailEnc, p.PaidAt, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByOrderID fetches the payment recorded for an order. Returns nil when absent.
func (r *PaymentRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get payment by order: %w", err)
	}
	return p, nil
}

// List fetches a store's payments with optional paid_at bounds, newest first.
func (r *PaymentRepo) List(ctx context.Context, params ports.PaymentListParams) ([]domain.PaymentRecord, int64, error) {
	where, args := paymentFilter(params.StoreID, params.From, params.To)

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM payments "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	n := len(args)
	dataQuery := fmt.Sprintf(`SELECT %s FROM payments %s ORDER BY paid_at DESC LIMIT $%d OFFSET $%d`,
		paymentColumns, where, n+1, n+2)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.PaymentRecord
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate payment rows: %w", err)
	}
	return payments, total, nil
}

// GetStats aggregates a store's payments paid at or after since.
func (r *PaymentRepo) GetStats(ctx context.Context, storeID uuid.UUID, since *time.Time) (*domain.PaymentStats, error) {
	where, args := paymentFilter(storeID, since, nil)

	query := `SELECT
		COUNT(*) AS total,
		COALESCE(SUM(amount_gross), 0) AS gross,
		COALESCE(SUM(amount_fee), 0) AS fee,
		COALESCE(SUM(amount_net), 0) AS net
		FROM payments ` + where

	stats := &domain.PaymentStats{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.TotalCount, &stats.GrossVolume, &stats.FeeVolume, &stats.NetVolume,
	)
	if err != nil {
		return nil, fmt.Errorf("get payment stats: %w", err)
	}
	return stats, nil
}

func paymentFilter(storeID uuid.UUID, from, to *time.Time) (string, []any) {
	conditions := []string{"store_id = $1"}
	args := []any{storeID}

	if from != nil {
		args = append(args, *from)
		conditions = append(conditions, fmt.Sprintf("paid_at >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conditions = append(conditions, fmt.Sprintf("paid_at <= $%d", len(args)))
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func scanPayment(row pgx.Row) (*domain.PaymentRecord, error) {
	p := &domain.PaymentRecord{}
	var custom []byte
	err := row.Scan(
		&p.ID, &p.OrderID, &p.StoreID, &p.Gateway, &p.GatewayReference,
		&p.AmountGross, &p.AmountFee, &p.AmountNet, &p.Method, &custom,
		&p.PayerEmailEnc, &p.PaidAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(custom) > 0 {
		if err := json.Unmarshal(custom, &p.CustomFields); err != nil {
			return nil, fmt.Errorf("decode custom fields: %w", err)
		}
	}
	return p, nil
}
