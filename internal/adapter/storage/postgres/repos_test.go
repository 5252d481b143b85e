package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"restaurant-pos/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditRepository(mock)
	storeID, staffID := uuid.New(), uuid.New()
	entry := &domain.AuditLog{
		ID:           uuid.New(),
		StoreID:      &storeID,
		StaffID:      &staffID,
		Action:       domain.AuditActionCheckout,
		ResourceType: "order",
		ResourceID:   "ORD-1001",
		Details:      `{"status":200}`,
		IPAddress:    "10.0.0.8",
		CreatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(entry.ID, entry.StoreID, entry.StaffID, "CHECKOUT", "order",
			"ORD-1001", entry.Details, "10.0.0.8", entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKitchenDeliveryRepo_CreateThenUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewKitchenDeliveryRepository(mock)
	now := time.Now().UTC()
	entry := &domain.KitchenDeliveryLog{
		ID:        uuid.New(),
		OrderID:   uuid.New(),
		StoreID:   uuid.New(),
		TargetURL: "http://kds.local/tickets",
		Payload:   `{"event_type":"ORDER_PAID"}`,
		Attempt:   2,
		Status:    domain.DeliveryStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec("INSERT INTO kitchen_deliveries").
		WithArgs(entry.ID, entry.OrderID, entry.StoreID, entry.TargetURL, entry.Payload,
			entry.HTTPStatus, 2, "PENDING", entry.LastError, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Create(context.Background(), entry))

	code := 200
	entry.HTTPStatus = &code
	entry.Status = domain.DeliveryStatusDelivered

	mock.ExpectExec("UPDATE kitchen_deliveries").
		WithArgs(&code, "DELIVERED", entry.LastError, pgxmock.AnyArg(), entry.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.Update(context.Background(), entry))

	assert.False(t, entry.UpdatedAt.Before(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationLogRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationLogRepo(mock)
	entry := &domain.NotificationLog{
		ID:               uuid.New(),
		PaymentReference: "ORD-1001",
		GatewayReference: "1089250",
		PaymentStatus:    "COMPLETE",
		Payload:          []byte(`{"m_payment_id":"ORD-1001"}`),
		Accepted:         false,
		RejectCode:       "ITN_002",
		RemoteAddr:       "197.97.145.144",
		ReceivedAt:       time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO notification_logs").
		WithArgs(entry.ID, "ORD-1001", "1089250", "COMPLETE", entry.Payload,
			false, "ITN_002", false, "197.97.145.144", entry.ReceivedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationLogRepo_Create_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationLogRepo(mock)
	mock.ExpectExec("INSERT INTO notification_logs").WillReturnError(errors.New("disk full"))

	err = repo.Create(context.Background(), &domain.NotificationLog{ID: uuid.New()})
	assert.ErrorContains(t, err, "insert notification log")
}

func staffRows(s *domain.Staff) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "store_id", "username", "display_name", "pin_hash", "active", "created_at", "updated_at"}).
		AddRow(s.ID, s.StoreID, s.Username, s.DisplayName, s.PINHash, s.Active, s.CreatedAt, s.UpdatedAt)
}

func TestStaffRepo_GetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewStaffRepo(mock)
	now := time.Now().UTC()
	s := &domain.Staff{
		ID: uuid.New(), StoreID: uuid.New(), Username: "thandi", DisplayName: "Thandi M",
		PINHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA", Active: true, CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery("SELECT (.+) FROM staff WHERE username").
		WithArgs("thandi").
		WillReturnRows(staffRows(s))

	got, err := repo.GetByUsername(context.Background(), "thandi")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, s.PINHash, got.PINHash)
	assert.True(t, got.Active)
}

func TestStaffRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewStaffRepo(mock)
	staffID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM staff WHERE id").
		WithArgs(staffID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	got, err := repo.GetByID(context.Background(), staffID)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryRepo_DeductForOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInventoryRepo(mock)
	orderID := uuid.New()

	mock.ExpectExec("INSERT INTO inventory_adjustments(.+)UPDATE stock_levels").
		WithArgs(orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	mock.ExpectExec("INSERT INTO inventory_adjustments").
		WithArgs(orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	n, err := repo.DeductForOrder(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repo.DeductForOrder(context.Background(), orderID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepo_RecordSale(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAnalyticsRepo(mock)
	orderID, storeID := uuid.New(), uuid.New()
	gross := decimal.RequireFromString("149.99")
	net := decimal.RequireFromString("146.54")
	// 23:30 in Johannesburg is 21:30 UTC on the same date.
	paidAt := time.Date(2026, 3, 14, 23, 30, 0, 0, time.FixedZone("SAST", 2*60*60))
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO sales_recorded(.+)INSERT INTO daily_sales").
		WithArgs(orderID, storeID, day, gross, net).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO sales_recorded").
		WithArgs(orderID, storeID, day, gross, net).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	recorded, err := repo.RecordSale(context.Background(), orderID, storeID, paidAt, gross, net)
	require.NoError(t, err)
	assert.True(t, recorded)

	recorded, err = repo.RecordSale(context.Background(), orderID, storeID, paidAt, gross, net)
	require.NoError(t, err)
	assert.False(t, recorded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_Begin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	readCommitted := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

	mock.ExpectBeginTx(readCommitted)
	tx, err := NewTransactor(mock).Begin(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tx)

	mock.ExpectBeginTx(readCommitted).WillReturnError(errors.New("too many connections"))
	_, err = NewTransactor(mock).Begin(context.Background())
	assert.ErrorContains(t, err, "begin transaction")
}

func TestHealthCheck_Ping(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	hc := NewHealthCheck(mock)
	assert.Equal(t, "postgresql", hc.Name())

	mock.ExpectQuery("SELECT 1").WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	assert.NoError(t, hc.Ping(context.Background()))

	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("connection refused"))
	assert.ErrorContains(t, hc.Ping(context.Background()), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}
