package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"
	"restaurant-pos/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	receiptTTL     = 72 * time.Hour
	effectsTimeout = 5 * time.Second
)

// NotificationServiceImpl implements ports.NotificationService.
type NotificationServiceImpl struct {
	gates      []Gate
	orders     ports.OrderRepository
	payments   ports.PaymentRepository
	notifLogs  ports.NotificationLogRepository
	receipts   ports.ReceiptCache
	encSvc     ports.EncryptionService
	transactor ports.DBTransactor
	effects    ports.EffectDispatcher
	metrics    *PaymentMetrics
	log        zerolog.Logger
}

// NewNotificationService creates a new NotificationServiceImpl.
func NewNotificationService(
	gates []Gate,
	orders ports.OrderRepository,
	payments ports.PaymentRepository,
	notifLogs ports.NotificationLogRepository,
	receipts ports.ReceiptCache,
	encSvc ports.EncryptionService,
	transactor ports.DBTransactor,
	effects ports.EffectDispatcher,
	metrics *PaymentMetrics,
	log zerolog.Logger,
) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		gates:      gates,
		orders:     orders,
		payments:   payments,
		notifLogs:  notifLogs,
		receipts:   receipts,
		encSvc:     encSvc,
		transactor: transactor,
		effects:    effects,
		metrics:    metrics,
		log:        log,
	}
}

// Handle runs the gates, then applies the notification to its order exactly
// once. Side effects fire only for the call that marked the order paid.
func (s *NotificationServiceImpl) Handle(ctx context.Context, in ports.InboundNotification) (*ports.NotificationOutcome, error) {
	check := &NotificationCheck{Inbound: in}

	for _, gate := range s.gates {
		if err := gate.Check(ctx, check); err != nil {
			return nil, s.reject(ctx, check, gate.Name, err)
		}
	}

	if check.Notification == nil {
		n, err := domain.ParseNotification(in.Params)
		if err != nil {
			return nil, s.reject(ctx, check, "parse", apperror.ErrMalformedNotification(err.Error()))
		}
		check.Notification = n
	}
	n := check.Notification
	key := "itn:" + domain.BuildNotificationKey(n.PaymentReference, n.Status)

	// Layer 1: Redis receipt check
	cached, err := s.receipts.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis receipt check failed, falling through to DB")
	}
	if cached != nil {
		var outcome ports.NotificationOutcome
		if err := json.Unmarshal(cached, &outcome); err == nil {
			outcome.Applied = false
			outcome.Duplicate = true
			s.record(ctx, check, true, "", false)
			s.metrics.notification("duplicate", "")
			return &outcome, nil
		}
	}

	// Layer 2: order row lock + status check
	outcome, event, err := s.apply(ctx, n)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.HTTPStatus < 500 {
			return nil, s.reject(ctx, check, "apply", err)
		}
		s.metrics.notification("error", "apply")
		s.log.Error().Err(err).
			Str("payment_reference", n.PaymentReference).
			Str("payment_status", string(n.Status)).
			Msg("failed to apply payment notification")
		s.record(ctx, check, true, errorCode(err), false)
		return nil, err
	}

	if data, err := json.Marshal(outcome); err == nil {
		if err := s.receipts.Set(ctx, key, data, receiptTTL); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to cache notification receipt in redis")
		}
	}

	s.record(ctx, check, true, "", outcome.Applied)

	if event != nil {
		effectsCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), effectsTimeout)
		s.effects.PaymentCompleted(effectsCtx, *event)
		cancel()
	}

	result := "accepted"
	if outcome.Duplicate {
		result = "duplicate"
	}
	s.metrics.notification(result, "")

	s.log.Info().
		Str("order_id", outcome.OrderID.String()).
		Str("payment_reference", n.PaymentReference).
		Str("gateway_reference", n.GatewayReference).
		Str("payment_status", string(n.Status)).
		Bool("applied", outcome.Applied).
		Bool("duplicate", outcome.Duplicate).
		Msg("payment notification processed")

	return outcome, nil
}

// apply transitions the order inside one transaction. The returned event is
// non-nil only when this call marked the order paid.
func (s *NotificationServiceImpl) apply(ctx context.Context, n *domain.Notification) (*ports.NotificationOutcome, *domain.PaymentEvent, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	order, err := s.orders.GetByPaymentReferenceForUpdate(ctx, dbTx, n.PaymentReference)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock order: %w", err))
	}
	if order == nil {
		return nil, nil, apperror.ErrUnknownPaymentReference()
	}

	outcome := &ports.NotificationOutcome{
		OrderID:          order.ID,
		StoreID:          order.StoreID,
		PaymentReference: n.PaymentReference,
		Status:           n.Status,
	}
	now := time.Now().UTC()
	var event *domain.PaymentEvent

	switch n.Status {
	case domain.PaymentStatusComplete:
		if order.Status == domain.OrderStatusPaid {
			outcome.Duplicate = true
			return outcome, nil, nil
		}
		if order.Status == domain.OrderStatusCancelled {
			s.log.Warn().Str("order_id", order.ID.String()).Msg("payment completed for a cancelled order, marking paid")
		}

		if err := s.orders.MarkPaid(ctx, dbTx, order.ID, now); err != nil {
			return nil, nil, apperror.InternalError(fmt.Errorf("mark paid: %w", err))
		}

		record, err := s.paymentRecord(order, n, now)
		if err != nil {
			return nil, nil, err
		}
		if err := s.payments.Create(ctx, dbTx, record); err != nil {
			return nil, nil, apperror.InternalError(fmt.Errorf("create payment record: %w", err))
		}

		event = &domain.PaymentEvent{
			OrderID:          order.ID,
			StoreID:          order.StoreID,
			TableID:          order.TableID,
			PaymentReference: n.PaymentReference,
			GatewayReference: n.GatewayReference,
			AmountGross:      n.AmountGross,
			AmountNet:        n.AmountNet,
			PayerName:        strings.TrimSpace(n.NameFirst + " " + n.NameLast),
			PayerEmail:       n.EmailAddress,
			PaidAt:           now,
		}

	case domain.PaymentStatusCancelled:
		if order.IsTerminal() {
			outcome.Duplicate = true
			return outcome, nil, nil
		}
		if err := s.orders.MarkCancelled(ctx, dbTx, order.ID, now); err != nil {
			return nil, nil, apperror.InternalError(fmt.Errorf("mark cancelled: %w", err))
		}

	default:
		s.log.Info().
			Str("order_id", order.ID.String()).
			Str("payment_status", string(n.Status)).
			Msg("payment status requires no order transition")
		return outcome, nil, nil
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	outcome.Applied = true
	return outcome, event, nil
}

func (s *NotificationServiceImpl) paymentRecord(order *domain.Order, n *domain.Notification, now time.Time) (*domain.PaymentRecord, error) {
	var emailEnc string
	if n.EmailAddress != "" {
		enc, err := s.encSvc.Encrypt(n.EmailAddress)
		if err != nil {
			return nil, apperror.ErrEncryptionFailure(fmt.Errorf("encrypt payer email: %w", err))
		}
		emailEnc = enc
	}

	return &domain.PaymentRecord{
		ID:               uuid.New(),
		OrderID:          order.ID,
		StoreID:          order.StoreID,
		Gateway:          domain.GatewayPayFast,
		GatewayReference: n.GatewayReference,
		AmountGross:      n.AmountGross,
		AmountFee:        n.AmountFee,
		AmountNet:        n.AmountNet,
		Method:           domain.MethodPayFast,
		CustomFields:     n.Custom,
		PayerEmailEnc:    emailEnc,
		PaidAt:           now,
		CreatedAt:        now,
	}, nil
}

// reject logs a gate failure with enough context to debug signature drift.
// Non-rejection errors are returned as internal errors.
func (s *NotificationServiceImpl) reject(ctx context.Context, c *NotificationCheck, gate string, err error) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus >= 500 {
		s.metrics.notification("error", gate)
		s.log.Error().Err(err).
			Str("gate", gate).
			Str("payment_reference", c.Inbound.Params[domain.FieldPaymentReference]).
			Msg("notification gate failed unexpectedly")
		if appErr == nil {
			appErr = apperror.InternalError(err)
		}
		s.record(ctx, c, false, appErr.Code, false)
		return appErr
	}

	s.metrics.notification("rejected", gate)
	s.log.Warn().
		Str("gate", gate).
		Str("error_code", appErr.Code).
		Str("reason", appErr.Message).
		Str("payment_reference", c.Inbound.Params[domain.FieldPaymentReference]).
		Str("received_signature", c.Inbound.Params[domain.FieldSignature]).
		Str("computed_signature", c.ComputedSignature).
		Str("remote_addr", c.Inbound.RemoteAddr).
		Interface("params", redactParams(c.Inbound.Params)).
		Msg("payment notification rejected")

	s.record(ctx, c, false, appErr.Code, false)
	return appErr
}

// record writes the notification log entry; failures are only logged.
func (s *NotificationServiceImpl) record(ctx context.Context, c *NotificationCheck, accepted bool, rejectCode string, applied bool) {
	payload, err := json.Marshal(redactParams(c.Inbound.Params))
	if err != nil {
		payload = []byte("{}")
	}

	p := c.Inbound.Params
	entry := &domain.NotificationLog{
		ID:               uuid.New(),
		PaymentReference: p[domain.FieldPaymentReference],
		GatewayReference: p[domain.FieldGatewayReference],
		PaymentStatus:    p[domain.FieldPaymentStatus],
		Payload:          payload,
		Accepted:         accepted,
		RejectCode:       rejectCode,
		Applied:          applied,
		RemoteAddr:       c.Inbound.RemoteAddr,
		ReceivedAt:       c.Inbound.ReceivedAt,
	}
	if entry.ReceivedAt.IsZero() {
		entry.ReceivedAt = time.Now().UTC()
	}

	if err := s.notifLogs.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("payment_reference", entry.PaymentReference).Msg("failed to persist notification log")
	}
}

func errorCode(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// redactParams drops merchant secrets and masks the payer email.
func redactParams(p domain.ParameterSet) domain.ParameterSet {
	out := p.Without(domain.FieldMerchantKey, domain.FieldPassphrase)
	if email, ok := out[domain.FieldEmailAddress]; ok {
		out[domain.FieldEmailAddress] = maskEmail(email)
	}
	return out
}

func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
