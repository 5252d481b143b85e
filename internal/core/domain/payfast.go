package domain

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// PayFast form field names.
const (
	FieldMerchantID          = "merchant_id"
	FieldMerchantKey         = "merchant_key"
	FieldReturnURL           = "return_url"
	FieldCancelURL           = "cancel_url"
	FieldNotifyURL           = "notify_url"
	FieldNameFirst           = "name_first"
	FieldNameLast            = "name_last"
	FieldEmailAddress        = "email_address"
	FieldCellNumber          = "cell_number"
	FieldPaymentReference    = "m_payment_id"
	FieldAmount              = "amount"
	FieldItemName            = "item_name"
	FieldItemDescription     = "item_description"
	FieldEmailConfirmation   = "email_confirmation"
	FieldConfirmationAddress = "confirmation_address"
	FieldSignature           = "signature"
	FieldPassphrase          = "passphrase"

	FieldGatewayReference = "pf_payment_id"
	FieldPaymentStatus    = "payment_status"
	FieldAmountGross      = "amount_gross"
	FieldAmountFee        = "amount_fee"
	FieldAmountNet        = "amount_net"
)

// CustomSlots is the number of custom_strN and custom_intN passthrough slots.
const CustomSlots = 5

// PaymentStatus is the gateway-reported outcome in a notification.
type PaymentStatus string

const (
	PaymentStatusComplete  PaymentStatus = "COMPLETE"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// ErrNonFiniteAmount is returned for NaN or infinite amounts.
var ErrNonFiniteAmount = errors.New("amount is not a finite number")

// AmountFromFloat converts a float amount into a decimal, rejecting NaN and ±Inf.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, ErrNonFiniteAmount
	}
	return decimal.NewFromFloat(f), nil
}

// ParameterSet is a flat name to value mapping exchanged with the gateway.
// An absent key and an empty value are treated alike when signing.
type ParameterSet map[string]string

// ParameterSetFromValues takes the first value of each form key.
func ParameterSetFromValues(values url.Values) ParameterSet {
	p := make(ParameterSet, len(values))
	for k, v := range values {
		if len(v) > 0 {
			p[k] = v[0]
		}
	}
	return p
}

// Clone returns a shallow copy.
func (p ParameterSet) Clone() ParameterSet {
	out := make(ParameterSet, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Without returns a copy with the given keys removed.
func (p ParameterSet) Without(keys ...string) ParameterSet {
	out := p.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Values converts the set into url.Values for form encoding.
func (p ParameterSet) Values() url.Values {
	v := make(url.Values, len(p))
	for k, val := range p {
		v.Set(k, val)
	}
	return v
}

// Customer identifies the payer. Empty names and email fall back to
// placeholders when the request is built.
type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// CustomFields are opaque passthrough slots echoed back in notifications.
// They carry store, table and order identifiers.
type CustomFields struct {
	Str [CustomSlots]string `json:"str"`
	Int [CustomSlots]*int64 `json:"int"`
}

// Apply writes non-empty slots into p as custom_strN / custom_intN.
func (c CustomFields) Apply(p ParameterSet) {
	for i := 0; i < CustomSlots; i++ {
		if c.Str[i] != "" {
			p[customStrKey(i)] = c.Str[i]
		}
		if c.Int[i] != nil {
			p[customIntKey(i)] = strconv.FormatInt(*c.Int[i], 10)
		}
	}
}

// CustomFieldsFrom recovers the passthrough slots from a parameter set.
// Integer slots that do not parse are left empty.
func CustomFieldsFrom(p ParameterSet) CustomFields {
	var c CustomFields
	for i := 0; i < CustomSlots; i++ {
		c.Str[i] = p[customStrKey(i)]
		if raw := strings.TrimSpace(p[customIntKey(i)]); raw != "" {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				c.Int[i] = &n
			}
		}
	}
	return c
}

func customStrKey(i int) string { return fmt.Sprintf("custom_str%d", i+1) }
func customIntKey(i int) string { return fmt.Sprintf("custom_int%d", i+1) }

// PaymentRequest is the typed input for building an outbound payment request.
type PaymentRequest struct {
	PaymentReference    string
	Amount              decimal.Decimal
	ItemName            string
	ItemDescription     string
	Customer            Customer
	Custom              CustomFields
	ConfirmationAddress string // optional merchant copy of the gateway receipt
}

// Notification is the typed view of an inbound payment notification.
type Notification struct {
	PaymentReference string
	GatewayReference string
	Status           PaymentStatus
	ItemName         string
	AmountGross      decimal.Decimal
	AmountFee        decimal.Decimal
	AmountNet        decimal.Decimal
	NameFirst        string
	NameLast         string
	EmailAddress     string
	MerchantID       string
	Signature        string
	Custom           CustomFields
	Params           ParameterSet
}

// ParseNotification extracts the typed fields. It fails when the payment
// reference is missing or an amount cannot be parsed.
func ParseNotification(p ParameterSet) (*Notification, error) {
	n := &Notification{
		PaymentReference: strings.TrimSpace(p[FieldPaymentReference]),
		GatewayReference: strings.TrimSpace(p[FieldGatewayReference]),
		Status:           PaymentStatus(strings.ToUpper(strings.TrimSpace(p[FieldPaymentStatus]))),
		ItemName:         p[FieldItemName],
		NameFirst:        p[FieldNameFirst],
		NameLast:         p[FieldNameLast],
		EmailAddress:     strings.TrimSpace(p[FieldEmailAddress]),
		MerchantID:       p[FieldMerchantID],
		Signature:        p[FieldSignature],
		Custom:           CustomFieldsFrom(p),
		Params:           p,
	}
	if n.PaymentReference == "" {
		return nil, fmt.Errorf("%s is required", FieldPaymentReference)
	}

	var err error
	if n.AmountGross, err = parseAmount(p, FieldAmountGross, true); err != nil {
		return nil, err
	}
	if n.AmountFee, err = parseAmount(p, FieldAmountFee, false); err != nil {
		return nil, err
	}
	if n.AmountNet, err = parseAmount(p, FieldAmountNet, false); err != nil {
		return nil, err
	}
	return n, nil
}

func parseAmount(p ParameterSet, key string, required bool) (decimal.Decimal, error) {
	raw := strings.TrimSpace(p[key])
	if raw == "" {
		if required {
			return decimal.Zero, fmt.Errorf("%s is required", key)
		}
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s is not a number: %w", key, err)
	}
	return d, nil
}
