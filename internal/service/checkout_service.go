package service

import (
	"context"
	"fmt"
	"strings"

	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"
	"restaurant-pos/pkg/apperror"

	"github.com/rs/zerolog"
)

// Custom passthrough slots filled from the order when the caller leaves them blank.
const (
	customSlotStore = 0
	customSlotTable = 1
	customSlotOrder = 2
)

// CheckoutServiceImpl implements ports.CheckoutService.
type CheckoutServiceImpl struct {
	orders  ports.OrderRepository
	builder ports.PaymentRequestBuilder
	metrics *PaymentMetrics
	log     zerolog.Logger
}

// NewCheckoutService creates a new CheckoutServiceImpl.
func NewCheckoutService(
	orders ports.OrderRepository,
	builder ports.PaymentRequestBuilder,
	metrics *PaymentMetrics,
	log zerolog.Logger,
) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		orders:  orders,
		builder: builder,
		metrics: metrics,
		log:     log,
	}
}

// StartCheckout signs a payment request for the full order total and moves
// an open order to AWAITING_PAYMENT.
func (s *CheckoutServiceImpl) StartCheckout(ctx context.Context, req ports.CheckoutRequest) (*ports.CheckoutResult, error) {
	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("order")
	}
	if order.StoreID != req.StoreID {
		return nil, apperror.ErrOrderOutsideStore()
	}
	if !order.IsPayable() {
		return nil, apperror.ErrOrderNotPayable(string(order.Status))
	}

	customer := req.Customer
	if strings.TrimSpace(customer.Email) == "" {
		customer.Email = order.CustomerEmail
	}

	custom := req.Custom
	fillBlank(&custom.Str[customSlotStore], order.StoreID.String())
	fillBlank(&custom.Str[customSlotTable], order.TableID)
	fillBlank(&custom.Str[customSlotOrder], order.ID.String())

	signed, err := s.builder.Build(domain.PaymentRequest{
		PaymentReference:    order.PaymentReference,
		Amount:              order.Total,
		ItemName:            orDefault(req.ItemName, defaultItemName(order)),
		ItemDescription:     req.ItemDescription,
		Customer:            customer,
		Custom:              custom,
		ConfirmationAddress: req.ConfirmationAddress,
	})
	if err != nil {
		s.metrics.checkout("rejected")
		return nil, err
	}

	if order.Status == domain.OrderStatusOpen {
		if err := s.orders.MarkAwaitingPayment(ctx, order.ID); err != nil {
			s.metrics.checkout("error")
			return nil, apperror.InternalError(fmt.Errorf("mark awaiting payment: %w", err))
		}
		order.Status = domain.OrderStatusAwaitingPayment
	}

	s.metrics.checkout("built")
	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("store_id", order.StoreID.String()).
		Str("payment_reference", order.PaymentReference).
		Str("amount", signed.Params[domain.FieldAmount]).
		Msg("checkout started")

	return &ports.CheckoutResult{Order: order, Payment: signed}, nil
}

func defaultItemName(order *domain.Order) string {
	if order.TableID != "" {
		return fmt.Sprintf("Table %s - Order %s", order.TableID, order.PaymentReference)
	}
	return "Order " + order.PaymentReference
}

func fillBlank(slot *string, value string) {
	if strings.TrimSpace(*slot) == "" {
		*slot = value
	}
}
