package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"restaurant-pos/config"
	"restaurant-pos/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiptEvent() domain.PaymentEvent {
	return domain.PaymentEvent{
		TableID:          "T4",
		PaymentReference: "ORD-1001",
		GatewayReference: "1089250",
		AmountGross:      decimal.RequireFromString("149.9"),
		PayerName:        "Thandi Nkosi",
		PayerEmail:       "thandi@example.com",
		PaidAt:           time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC),
	}
}

func TestSMTPMailer_SendReceipt(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string

	m := NewSMTPMailer(config.SMTPConfig{Host: "localhost", Port: 1025, From: "receipts@pos.example.com"}).
		WithSendFunc(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			assert.Nil(t, a)
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
			return nil
		})

	require.NoError(t, m.SendReceipt(context.Background(), receiptEvent()))
	assert.Equal(t, "localhost:1025", gotAddr)
	assert.Equal(t, "receipts@pos.example.com", gotFrom)
	assert.Equal(t, []string{"thandi@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Payment received for order ORD-1001\r\n")
	assert.Contains(t, gotMsg, "Hi Thandi Nkosi,")
	assert.Contains(t, gotMsg, "R 149.90")
	assert.Contains(t, gotMsg, "Table: T4")
	assert.Contains(t, gotMsg, "PayFast reference: 1089250")
}

func TestSMTPMailer_UsesAuthWhenConfigured(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "pos", Password: "pw"}).
		WithSendFunc(func(_ string, a smtp.Auth, _ string, _ []string, _ []byte) error {
			assert.NotNil(t, a)
			return nil
		})

	require.NoError(t, m.SendReceipt(context.Background(), receiptEvent()))
}

func TestSMTPMailer_SendError(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "localhost", Port: 1025}).
		WithSendFunc(func(string, smtp.Auth, string, []string, []byte) error {
			return errors.New("connection refused")
		})

	err := m.SendReceipt(context.Background(), receiptEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSMTPMailer_RejectsHeaderInjection(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "localhost", Port: 1025}).
		WithSendFunc(func(string, smtp.Auth, string, []string, []byte) error {
			t.Fatal("send must not be called")
			return nil
		})

	event := receiptEvent()
	event.PayerEmail = "a@example.com\r\nBcc: victim@example.com"
	assert.Error(t, m.SendReceipt(context.Background(), event))
}
