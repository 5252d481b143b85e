package queue

import (
	"context"
	"fmt"

	"restaurant-pos/internal/core/ports"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Handlers processes post-payment tasks in the worker.
type Handlers struct {
	mailer    ports.ReceiptMailer
	inventory ports.InventoryRepository
	kitchen   ports.KitchenNotifier
	analytics ports.SalesAnalyticsRepository
	log       zerolog.Logger
}

// NewHandlers creates the worker task handlers.
func NewHandlers(
	mailer ports.ReceiptMailer,
	inventory ports.InventoryRepository,
	kitchen ports.KitchenNotifier,
	analytics ports.SalesAnalyticsRepository,
	log zerolog.Logger,
) *Handlers {
	return &Handlers{
		mailer:    mailer,
		inventory: inventory,
		kitchen:   kitchen,
		analytics: analytics,
		log:       log,
	}
}

// Register wires every payment task type into mux.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeReceiptEmail, h.ReceiptEmail)
	mux.HandleFunc(TypeInventoryAdjust, h.InventoryAdjust)
	mux.HandleFunc(TypeKitchenNotify, h.KitchenNotify)
	mux.HandleFunc(TypeAnalyticsUpdate, h.AnalyticsUpdate)
}

func (h *Handlers) ReceiptEmail(ctx context.Context, task *asynq.Task) error {
	event, err := decodeEvent(task)
	if err != nil {
		return err
	}
	if event.PayerEmail == "" {
		h.log.Info().Str("order_id", event.OrderID.String()).Msg("no payer email, receipt skipped")
		return nil
	}

	if err := h.mailer.SendReceipt(ctx, event); err != nil {
		return fmt.Errorf("send receipt: %w", err)
	}
	h.log.Info().Str("order_id", event.OrderID.String()).Msg("payment receipt sent")
	return nil
}

func (h *Handlers) InventoryAdjust(ctx context.Context, task *asynq.Task) error {
	event, err := decodeEvent(task)
	if err != nil {
		return err
	}

	rows, err := h.inventory.DeductForOrder(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("deduct inventory: %w", err)
	}
	h.log.Info().
		Str("order_id", event.OrderID.String()).
		Int64("stock_rows", rows).
		Msg("inventory adjusted for paid order")
	return nil
}

func (h *Handlers) KitchenNotify(ctx context.Context, task *asynq.Task) error {
	event, err := decodeEvent(task)
	if err != nil {
		return err
	}

	retried, _ := asynq.GetRetryCount(ctx)
	return h.kitchen.Notify(ctx, event, retried+1)
}

func (h *Handlers) AnalyticsUpdate(ctx context.Context, task *asynq.Task) error {
	event, err := decodeEvent(task)
	if err != nil {
		return err
	}

	recorded, err := h.analytics.RecordSale(ctx, event.OrderID, event.StoreID, event.PaidAt, event.AmountGross, event.AmountNet)
	if err != nil {
		return fmt.Errorf("record sale: %w", err)
	}
	if !recorded {
		h.log.Debug().Str("order_id", event.OrderID.String()).Msg("sale already recorded")
	}
	return nil
}
