package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"restaurant-pos/config"
	"restaurant-pos/internal/core/domain"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer implements ports.ReceiptMailer over plain SMTP.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
	send SendFunc
}

// NewSMTPMailer creates a mailer. Auth is used only when a username is set.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	m := &SMTPMailer{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from: cfg.From,
		send: smtp.SendMail,
	}
	if cfg.Username != "" {
		m.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return m
}

// WithSendFunc replaces the transport, for tests.
func (m *SMTPMailer) WithSendFunc(fn SendFunc) *SMTPMailer {
	m.send = fn
	return m
}

// SendReceipt emails the payer a confirmation of the settled order.
func (m *SMTPMailer) SendReceipt(ctx context.Context, event domain.PaymentEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(event.PayerEmail, "\r\n") {
		return errors.New("invalid recipient address")
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		m.from, event.PayerEmail, receiptSubject(event), receiptBody(event)))

	if err := m.send(m.addr, m.auth, m.from, []string{event.PayerEmail}, msg); err != nil {
		return fmt.Errorf("failed to send receipt email: %w", err)
	}
	return nil
}

func receiptSubject(event domain.PaymentEvent) string {
	return "Payment received for order " + event.PaymentReference
}

func receiptBody(event domain.PaymentEvent) string {
	name := event.PayerName
	if name == "" {
		name = "there"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", name)
	fmt.Fprintf(&b, "Thank you, we received your payment of R %s.\r\n\r\n", event.AmountGross.StringFixed(2))
	fmt.Fprintf(&b, "Order reference: %s\r\n", event.PaymentReference)
	if event.TableID != "" {
		fmt.Fprintf(&b, "Table: %s\r\n", event.TableID)
	}
	if event.GatewayReference != "" {
		fmt.Fprintf(&b, "PayFast reference: %s\r\n", event.GatewayReference)
	}
	fmt.Fprintf(&b, "Paid at: %s\r\n", event.PaidAt.Format("2006-01-02 15:04 MST"))
	return b.String()
}
