package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"restaurant-pos/config"
	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"
	"restaurant-pos/pkg/apperror"

	"github.com/shopspring/decimal"
)

// Gate names, also used as metric and log labels.
const (
	GateSignature    = "signature"
	GateOrigin       = "origin"
	GateAmount       = "amount"
	GateConfirmation = "server_confirmation"
)

// NotificationCheck is the state gates share while one notification is verified.
type NotificationCheck struct {
	Inbound           ports.InboundNotification
	Notification      *domain.Notification
	Order             *domain.Order
	ComputedSignature string
}

// Gate is one verification step. Gates run in list order and the first
// failure rejects the notification. A gate returns an *apperror.AppError for
// a rejection and any other error for an infrastructure failure.
type Gate struct {
	Name  string
	Check func(ctx context.Context, c *NotificationCheck) error
}

// DefaultGates returns signature, origin, amount and, when enabled, server
// confirmation, in that order.
func DefaultGates(
	cfg config.PayFastConfig,
	codec ports.SignatureCodec,
	orders ports.OrderRepository,
	confirmer ports.PaymentConfirmer,
) []Gate {
	gates := []Gate{
		SignatureGate(codec, cfg.Passphrase),
		OriginGate(cfg.ValidHosts),
		AmountGate(orders, decimal.NewFromFloat(cfg.AmountTolerance)),
	}
	if cfg.ServerConfirmation {
		gates = append(gates, ConfirmationGate(confirmer))
	}
	return gates
}

// SignatureGate recomputes the signature over the received parameters.
func SignatureGate(codec ports.SignatureCodec, passphrase string) Gate {
	return Gate{
		Name: GateSignature,
		Check: func(_ context.Context, c *NotificationCheck) error {
			ok, err := codec.Verify(c.Inbound.Params, passphrase)
			if err != nil {
				return err
			}
			if !ok {
				c.ComputedSignature = codec.Sign(c.Inbound.Params, passphrase)
				return apperror.ErrSignatureMismatch()
			}
			return nil
		},
	}
}

// OriginGate accepts only notifications whose Referer (or Origin) host is in
// the allow-list. A missing header is a rejection.
func OriginGate(validHosts []string) Gate {
	allowed := make(map[string]struct{}, len(validHosts))
	for _, h := range validHosts {
		allowed[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}

	return Gate{
		Name: GateOrigin,
		Check: func(_ context.Context, c *NotificationCheck) error {
			host := originHost(c.Inbound.Referer)
			if host == "" {
				host = originHost(c.Inbound.Origin)
			}
			if host == "" {
				return apperror.ErrOriginRejected("")
			}
			if _, ok := allowed[host]; !ok {
				return apperror.ErrOriginRejected(host)
			}
			return nil
		},
	}
}

// originHost extracts a lowercase hostname from a URL or a bare host.
func originHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return strings.ToLower(u.Hostname())
	}
	if i := strings.IndexAny(raw, ":/"); i >= 0 {
		raw = raw[:i]
	}
	return strings.ToLower(raw)
}

// AmountGate parses the notification, loads the referenced order and checks
// the gross amount against the order total within tolerance.
func AmountGate(orders ports.OrderRepository, tolerance decimal.Decimal) Gate {
	return Gate{
		Name: GateAmount,
		Check: func(ctx context.Context, c *NotificationCheck) error {
			if c.Notification == nil {
				n, err := domain.ParseNotification(c.Inbound.Params)
				if err != nil {
					return apperror.ErrMalformedNotification(err.Error())
				}
				c.Notification = n
			}

			order, err := orders.GetByPaymentReference(ctx, c.Notification.PaymentReference)
			if err != nil {
				return apperror.InternalError(fmt.Errorf("load order: %w", err))
			}
			if order == nil {
				return apperror.ErrUnknownPaymentReference()
			}
			c.Order = order

			if c.Notification.AmountGross.Sub(order.Total).Abs().GreaterThan(tolerance) {
				return apperror.ErrAmountMismatch()
			}
			return nil
		},
	}
}

// ConfirmationGate asks the gateway to vouch for the notification. It fails
// closed: any error, including a timeout, rejects.
func ConfirmationGate(confirmer ports.PaymentConfirmer) Gate {
	return Gate{
		Name: GateConfirmation,
		Check: func(ctx context.Context, c *NotificationCheck) error {
			if err := confirmer.Confirm(ctx, c.Inbound.Params); err != nil {
				return apperror.ErrUpstreamConfirmationFailed(err)
			}
			return nil
		},
	}
}
