package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"restaurant-pos/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder() *domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Order{
		ID:               uuid.New(),
		StoreID:          uuid.New(),
		TableID:          "T4",
		PaymentReference: "ORD-1001",
		Total:            decimal.RequireFromString("149.99"),
		Status:           domain.OrderStatusAwaitingPayment,
		CustomerEmail:    "regular@example.com",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func orderColumnNames() []string {
	return []string{"id", "store_id", "table_id", "payment_reference", "total", "status",
		"customer_email", "paid_at", "cancelled_at", "created_at", "updated_at"}
}

func orderRow(o *domain.Order) *pgxmock.Rows {
	return pgxmock.NewRows(orderColumnNames()).AddRow(
		o.ID, o.StoreID, o.TableID, o.PaymentReference, o.Total, string(o.Status),
		o.CustomerEmail, o.PaidAt, o.CancelledAt, o.CreatedAt, o.UpdatedAt,
	)
}

func TestOrderRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	order := newTestOrder()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
		WithArgs(order.ID).
		WillReturnRows(orderRow(order))

	got, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, domain.OrderStatusAwaitingPayment, got.Status)
	assert.True(t, order.Total.Equal(got.Total))
	assert.Nil(t, got.PaidAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_GetByPaymentReference_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE payment_reference").
		WithArgs("ORD-404").
		WillReturnRows(pgxmock.NewRows(orderColumnNames()))

	got, err := repo.GetByPaymentReference(context.Background(), "ORD-404")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_GetByPaymentReferenceForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	order := newTestOrder()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM orders WHERE payment_reference = \\$1 FOR UPDATE").
		WithArgs(order.PaymentReference).
		WillReturnRows(orderRow(order))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	got, err := repo.GetByPaymentReferenceForUpdate(context.Background(), tx, order.PaymentReference)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentReference, got.PaymentReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_GetByID_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WillReturnError(errors.New("connection reset"))

	_, err = repo.GetByID(context.Background(), uuid.New())
	assert.ErrorContains(t, err, "scan order")
}

func TestOrderRepo_MarkAwaitingPayment(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(domain.OrderStatusAwaitingPayment, pgxmock.AnyArg(), id, domain.OrderStatusOpen).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.NoError(t, repo.MarkAwaitingPayment(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_MarkPaid(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	id := uuid.New()
	paidAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status = \\$1, paid_at").
		WithArgs(domain.OrderStatusPaid, paidAt, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.MarkPaid(context.Background(), tx, id, paidAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_MarkCancelled_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status = \\$1, cancelled_at").
		WithArgs(domain.OrderStatusCancelled, pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.MarkCancelled(context.Background(), tx, id, time.Now())
	assert.ErrorContains(t, err, "order not found")
}
