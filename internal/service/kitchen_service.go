package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"restaurant-pos/config"
	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Kitchen display event types.
const (
	EventOrderPaid = "ORDER_PAID"
)

// Headers set on every kitchen display delivery.
const (
	HeaderKitchenSignature = "X-POS-Signature"
	HeaderKitchenTimestamp = "X-POS-Timestamp"
)

// KitchenTicket is the JSON body pushed to the kitchen display.
type KitchenTicket struct {
	EventType string            `json:"event_type"`
	Data      KitchenTicketData `json:"data"`
}

// KitchenTicketData holds the paid order details.
type KitchenTicketData struct {
	OrderID          string `json:"order_id"`
	StoreID          string `json:"store_id"`
	TableID          string `json:"table_id,omitempty"`
	PaymentReference string `json:"payment_reference"`
	Amount           string `json:"amount"`
	PaidAt           int64  `json:"paid_at"`
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// KitchenService implements ports.KitchenNotifier. Each call is a single
// delivery attempt; retries are scheduled by the task queue.
type KitchenService struct {
	cfg        config.KitchenConfig
	deliveries ports.KitchenDeliveryRepository
	signer     ports.PayloadSigner
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewKitchenService creates a new kitchen display notifier.
func NewKitchenService(
	cfg config.KitchenConfig,
	deliveries ports.KitchenDeliveryRepository,
	signer ports.PayloadSigner,
	httpClient HTTPClient,
	log zerolog.Logger,
) *KitchenService {
	return &KitchenService{
		cfg:        cfg,
		deliveries: deliveries,
		signer:     signer,
		httpClient: httpClient,
		log:        log,
	}
}

// Notify pushes the paid order to the kitchen display. A non-2xx response
// or transport failure is returned so the caller can retry.
func (s *KitchenService) Notify(ctx context.Context, event domain.PaymentEvent, attempt int) error {
	if s.cfg.WebhookURL == "" {
		s.log.Debug().Str("order_id", event.OrderID.String()).Msg("kitchen: no display URL configured, skipping")
		return nil
	}

	ticket := KitchenTicket{
		EventType: EventOrderPaid,
		Data: KitchenTicketData{
			OrderID:          event.OrderID.String(),
			StoreID:          event.StoreID.String(),
			TableID:          event.TableID,
			PaymentReference: event.PaymentReference,
			Amount:           event.AmountGross.StringFixed(2),
			PaidAt:           event.PaidAt.Unix(),
		},
	}
	body, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("marshal kitchen ticket: %w", err)
	}

	ts := time.Now().Unix()
	signature := s.signer.Sign(s.cfg.Secret, TimestampedPayload(ts, string(body)))

	now := time.Now().UTC()
	entry := &domain.KitchenDeliveryLog{
		ID:        uuid.New(),
		OrderID:   event.OrderID,
		StoreID:   event.StoreID,
		TargetURL: s.cfg.WebhookURL,
		Payload:   string(body),
		Attempt:   attempt,
		Status:    domain.DeliveryStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.deliveries.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("order_id", event.OrderID.String()).Msg("kitchen: failed to record delivery attempt")
		entry = nil
	}

	status, deliveryErr := s.deliver(ctx, body, ts, signature)
	s.finish(ctx, entry, status, deliveryErr)

	logEvent := s.log.Info()
	if deliveryErr != nil {
		logEvent = s.log.Warn().Err(deliveryErr)
	}
	logEvent.
		Str("order_id", event.OrderID.String()).
		Int("attempt", attempt).
		Int("status", status).
		Msg("kitchen: delivery attempt finished")

	return deliveryErr
}

func (s *KitchenService) deliver(ctx context.Context, body []byte, ts int64, signature string) (int, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create kitchen request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderKitchenSignature, signature)
	req.Header.Set(HeaderKitchenTimestamp, strconv.FormatInt(ts, 10))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("kitchen delivery: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("kitchen delivery: unexpected status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

func (s *KitchenService) finish(ctx context.Context, entry *domain.KitchenDeliveryLog, status int, deliveryErr error) {
	if entry == nil {
		return
	}
	if status != 0 {
		entry.HTTPStatus = &status
	}
	entry.Status = domain.DeliveryStatusDelivered
	if deliveryErr != nil {
		msg := deliveryErr.Error()
		entry.LastError = &msg
		entry.Status = domain.DeliveryStatusFailed
	}
	entry.UpdatedAt = time.Now().UTC()

	if err := s.deliveries.Update(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("delivery_id", entry.ID.String()).Msg("kitchen: failed to update delivery log")
	}
}
