package service

import (
	"context"
	"errors"
	"testing"

	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"
	"restaurant-pos/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type checkoutTestDeps struct {
	svc     *CheckoutServiceImpl
	orders  *mocks.MockOrderRepository
	metrics *PaymentMetrics
}

// setupCheckoutService wires the real builder and codec so the signed output
// can be checked end to end.
func setupCheckoutService(t *testing.T) *checkoutTestDeps {
	ctrl := gomock.NewController(t)
	d := &checkoutTestDeps{
		orders:  mocks.NewMockOrderRepository(ctrl),
		metrics: NewPaymentMetrics(prometheus.NewRegistry()),
	}
	builder := NewPayFastBuilder(testPayFastConfig(), NewMD5SignatureCodec())
	d.svc = NewCheckoutService(d.orders, builder, d.metrics, zerolog.Nop())
	return d
}

func openOrder() *domain.Order {
	o := awaitingOrder()
	o.Status = domain.OrderStatusOpen
	o.CustomerEmail = "regular@example.com"
	return o
}

func TestCheckoutService_StartCheckout_OpenOrder(t *testing.T) {
	d := setupCheckoutService(t)
	ctx := context.Background()
	order := openOrder()

	d.orders.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.orders.EXPECT().MarkAwaitingPayment(ctx, order.ID).Return(nil)

	result, err := d.svc.StartCheckout(ctx, ports.CheckoutRequest{OrderID: order.ID, StoreID: order.StoreID})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusAwaitingPayment, result.Order.Status)
	p := result.Payment.Params
	assert.Equal(t, "149.99", p["amount"])
	assert.Equal(t, testReference, p["m_payment_id"])
	assert.Equal(t, "Table T4 - Order ORD-1001", p["item_name"])
	assert.Equal(t, "regular@example.com", p["email_address"])
	assert.Equal(t, order.StoreID.String(), p["custom_str1"])
	assert.Equal(t, "T4", p["custom_str2"])
	assert.Equal(t, order.ID.String(), p["custom_str3"])

	ok, err := NewMD5SignatureCodec().Verify(p, testPassphrase)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.checkouts.WithLabelValues("built")))
}

func TestCheckoutService_StartCheckout_AwaitingOrderIsResigned(t *testing.T) {
	d := setupCheckoutService(t)
	ctx := context.Background()
	order := awaitingOrder()

	d.orders.EXPECT().GetByID(ctx, order.ID).Return(order, nil)

	result, err := d.svc.StartCheckout(ctx, ports.CheckoutRequest{
		OrderID:  order.ID,
		StoreID:  order.StoreID,
		ItemName: "Dinner for two",
		Customer: domain.Customer{FirstName: "Thandi", Email: "thandi@example.com"},
		Custom:   domain.CustomFields{Str: [domain.CustomSlots]string{"", "patio"}},
	})
	require.NoError(t, err)

	p := result.Payment.Params
	assert.Equal(t, "Dinner for two", p["item_name"])
	assert.Equal(t, "Thandi", p["name_first"])
	assert.Equal(t, DefaultLastName, p["name_last"])
	assert.Equal(t, "patio", p["custom_str2"])
	assert.Equal(t, order.StoreID.String(), p["custom_str1"])
}

func TestCheckoutService_StartCheckout_Errors(t *testing.T) {
	storeID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name     string
		order    *domain.Order
		repoErr  error
		storeID  uuid.UUID
		wantCode string
	}{
		{name: "not found", wantCode: "ORD_000", storeID: storeID},
		{name: "lookup failure", repoErr: errors.New("timeout"), wantCode: "SYS_001", storeID: storeID},
		{name: "other store", order: openOrder(), storeID: uuid.New(), wantCode: "ORD_002"},
		{
			name: "already paid",
			order: func() *domain.Order {
				o := openOrder()
				o.Status = domain.OrderStatusPaid
				return o
			}(),
			storeID:  storeID,
			wantCode: "ORD_001",
		},
		{
			name: "zero total",
			order: func() *domain.Order {
				o := openOrder()
				o.Total = decimal.RequireFromString("0.004")
				return o
			}(),
			storeID:  storeID,
			wantCode: "PF_001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupCheckoutService(t)
			ctx := context.Background()
			orderID := uuid.New()

			d.orders.EXPECT().GetByID(ctx, orderID).Return(tt.order, tt.repoErr)

			result, err := d.svc.StartCheckout(ctx, ports.CheckoutRequest{OrderID: orderID, StoreID: tt.storeID})
			assert.Nil(t, result)
			assertAppError(t, err, tt.wantCode)
		})
	}
}

func TestCheckoutService_StartCheckout_MarkAwaitingFails(t *testing.T) {
	d := setupCheckoutService(t)
	ctx := context.Background()
	order := openOrder()

	d.orders.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.orders.EXPECT().MarkAwaitingPayment(ctx, order.ID).Return(errors.New("db down"))

	_, err := d.svc.StartCheckout(ctx, ports.CheckoutRequest{OrderID: order.ID, StoreID: order.StoreID})
	assertAppError(t, err, "SYS_001")
}
