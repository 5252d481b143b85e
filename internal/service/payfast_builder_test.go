package service

import (
	"strings"
	"testing"

	"restaurant-pos/config"
	"restaurant-pos/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(cfg config.PayFastConfig) *PayFastBuilder {
	return NewPayFastBuilder(cfg, NewMD5SignatureCodec())
}

func TestPayFastBuilder_Build_SignsDinnerOrder(t *testing.T) {
	b := newTestBuilder(testPayFastConfig())

	signed, err := b.Build(domain.PaymentRequest{
		PaymentReference: "ORD-1001",
		Amount:           decimal.RequireFromString("149.99"),
		ItemName:         "Table 4 - Dinner",
	})
	require.NoError(t, err)

	p := signed.Params
	assert.Equal(t, "https://sandbox.payfast.co.za/eng/process", signed.ActionURL)
	assert.Equal(t, "149.99", p["amount"])
	assert.Equal(t, "10000100", p["merchant_id"])
	assert.Equal(t, "46f0cd694581a", p["merchant_key"])
	assert.Equal(t, "ORD-1001", p["m_payment_id"])
	assert.Equal(t, "https://pos.example.com/payment/success", p["return_url"])
	assert.Equal(t, "https://pos.example.com/payment/cancel", p["cancel_url"])
	assert.Equal(t, "https://pos.example.com/api/v1/payfast/notify", p["notify_url"])

	assert.Equal(t, DefaultFirstName, p["name_first"])
	assert.Equal(t, DefaultLastName, p["name_last"])
	assert.Equal(t, DefaultEmail, p["email_address"])
	assert.NotContains(t, p, "cell_number")
	assert.NotContains(t, p, "item_description")

	codec := NewMD5SignatureCodec()
	assert.Equal(t, codec.Sign(p.Without("signature"), testPassphrase), p["signature"])
	ok, err := codec.Verify(p, testPassphrase)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPayFastBuilder_Build_NoPassphrase(t *testing.T) {
	cfg := testPayFastConfig()
	cfg.Passphrase = ""
	b := newTestBuilder(cfg)

	signed, err := b.Build(domain.PaymentRequest{
		Amount:   decimal.RequireFromString("149.99"),
		ItemName: "Order #42",
		Customer: domain.Customer{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
	})
	require.NoError(t, err)

	p := signed.Params
	assert.Equal(t, "149.99", p["amount"])
	assert.Equal(t, "Jane", p["name_first"])
	assert.Equal(t, "jane@example.com", p["email_address"])
	assert.NotContains(t, p, "m_payment_id")

	codec := NewMD5SignatureCodec()
	assert.NotContains(t, codec.Canonicalize(p, ""), "passphrase=")
	ok, err := codec.Verify(p, "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPayFastBuilder_Build_AmountFormatting(t *testing.T) {
	b := newTestBuilder(testPayFastConfig())

	tests := []struct {
		in   string
		want string
	}{
		{"10", "10.00"},
		{"10.5", "10.50"},
		{"0.01", "0.01"},
		{"1234.567", "1234.57"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			signed, err := b.Build(domain.PaymentRequest{Amount: decimal.RequireFromString(tt.in), ItemName: "Coffee"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, signed.Params["amount"])
		})
	}
}

func TestPayFastBuilder_Build_InvalidAmount(t *testing.T) {
	b := newTestBuilder(testPayFastConfig())

	for _, amount := range []string{"0", "-5.00", "0.001"} {
		t.Run(amount, func(t *testing.T) {
			signed, err := b.Build(domain.PaymentRequest{Amount: decimal.RequireFromString(amount), ItemName: "Coffee"})
			assert.Nil(t, signed)
			assertAppError(t, err, "PF_001")
		})
	}
}

func TestPayFastBuilder_Build_Truncation(t *testing.T) {
	b := newTestBuilder(testPayFastConfig())
	long := strings.Repeat("é", 300)

	req := domain.PaymentRequest{
		Amount:          decimal.RequireFromString("12.00"),
		ItemName:        long,
		ItemDescription: long,
	}
	req.Custom.Str[0] = long

	signed, err := b.Build(req)
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("é", 100), signed.Params["item_name"])
	assert.Equal(t, strings.Repeat("é", 255), signed.Params["item_description"])
	assert.Equal(t, strings.Repeat("é", 255), signed.Params["custom_str1"])
	assert.Equal(t, long, req.Custom.Str[0], "caller's request must not be modified")
}

func TestPayFastBuilder_Build_CustomerAndPassthrough(t *testing.T) {
	b := newTestBuilder(testPayFastConfig())
	table := int64(4)

	req := domain.PaymentRequest{
		PaymentReference: "ORD-1002",
		Amount:           decimal.RequireFromString("55.00"),
		ItemName:         "Lunch",
		Customer: domain.Customer{
			FirstName: "Thandi",
			LastName:  "Nkosi",
			Email:     "thandi@example.com",
			Phone:     "0821234567",
		},
		ConfirmationAddress: "owner@example.com",
	}
	req.Custom.Str[0] = "store-7"
	req.Custom.Int[1] = &table

	signed, err := b.Build(req)
	require.NoError(t, err)

	p := signed.Params
	assert.Equal(t, "Thandi", p["name_first"])
	assert.Equal(t, "thandi@example.com", p["email_address"])
	assert.Equal(t, "0821234567", p["cell_number"])
	assert.Equal(t, "store-7", p["custom_str1"])
	assert.Equal(t, "4", p["custom_int2"])
	assert.Equal(t, "1", p["email_confirmation"])
	assert.Equal(t, "owner@example.com", p["confirmation_address"])
}

func TestPayFastBuilder_Build_MissingRequiredField(t *testing.T) {
	tests := []struct {
		name  string
		cfg   func(c *config.PayFastConfig)
		item  string
		field string
	}{
		{"merchant id", func(c *config.PayFastConfig) { c.MerchantID = "" }, "Coffee", "merchant_id"},
		{"merchant key", func(c *config.PayFastConfig) { c.MerchantKey = " " }, "Coffee", "merchant_key"},
		{"item name", func(c *config.PayFastConfig) {}, "  ", "item_name"},
		{"first in key order", func(c *config.PayFastConfig) { c.MerchantID = ""; c.MerchantKey = "" }, "", "item_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testPayFastConfig()
			tt.cfg(&cfg)

			_, err := newTestBuilder(cfg).Build(domain.PaymentRequest{
				Amount:   decimal.RequireFromString("10.00"),
				ItemName: tt.item,
			})
			assertAppError(t, err, "PF_002")
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestPayFastBuilder_Build_LiveProcessURL(t *testing.T) {
	cfg := testPayFastConfig()
	cfg.Sandbox = false

	signed, err := newTestBuilder(cfg).Build(domain.PaymentRequest{Amount: decimal.RequireFromString("1.00"), ItemName: "Tea"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.payfast.co.za/eng/process", signed.ActionURL)
}

func TestSignedPaymentRequest_FieldsOrder(t *testing.T) {
	signed, err := newTestBuilder(testPayFastConfig()).Build(domain.PaymentRequest{
		Amount:   decimal.RequireFromString("20.00"),
		ItemName: "Dessert",
	})
	require.NoError(t, err)

	fields := signed.Fields()
	require.Len(t, fields, len(signed.Params))

	last := fields[len(fields)-1]
	assert.Equal(t, "signature", last.Name)
	for i := 1; i < len(fields)-1; i++ {
		assert.Less(t, fields[i-1].Name, fields[i].Name)
	}
}
