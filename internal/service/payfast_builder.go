package service

import (
	"sort"
	"strings"
	"unicode/utf8"

	"restaurant-pos/config"
	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"
	"restaurant-pos/pkg/apperror"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Placeholder payer details used when the order has no customer on file.
const (
	DefaultFirstName = "Guest"
	DefaultLastName  = "Customer"
	DefaultEmail     = "guest@example.com"
)

// Gateway field length limits. Longer values are truncated silently.
const (
	maxItemNameLen        = 100
	maxItemDescriptionLen = 255
	maxNameLen            = 100
	maxEmailLen           = 100
	maxCellNumberLen      = 100
	maxReferenceLen       = 100
	maxCustomStrLen       = 255
)

// PayFastBuilder implements ports.PaymentRequestBuilder.
type PayFastBuilder struct {
	cfg   config.PayFastConfig
	codec ports.SignatureCodec
}

// NewPayFastBuilder creates a builder bound to the merchant configuration.
func NewPayFastBuilder(cfg config.PayFastConfig, codec ports.SignatureCodec) *PayFastBuilder {
	return &PayFastBuilder{cfg: cfg, codec: codec}
}

// Build assembles, validates and signs the outbound parameter set.
func (b *PayFastBuilder) Build(req domain.PaymentRequest) (*ports.SignedPaymentRequest, error) {
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	returnURL, cancelURL, notifyURL := b.cfg.Callbacks()
	cust := req.Customer

	params := domain.ParameterSet{
		domain.FieldMerchantID:   b.cfg.MerchantID,
		domain.FieldMerchantKey:  b.cfg.MerchantKey,
		domain.FieldReturnURL:    returnURL,
		domain.FieldCancelURL:    cancelURL,
		domain.FieldNotifyURL:    notifyURL,
		domain.FieldNameFirst:    truncate(orDefault(cust.FirstName, DefaultFirstName), maxNameLen),
		domain.FieldNameLast:     truncate(orDefault(cust.LastName, DefaultLastName), maxNameLen),
		domain.FieldEmailAddress: truncate(orDefault(cust.Email, DefaultEmail), maxEmailLen),
		domain.FieldAmount:       amount.StringFixed(2),
		domain.FieldItemName:     truncate(req.ItemName, maxItemNameLen),
	}
	setIfPresent(params, domain.FieldCellNumber, truncate(cust.Phone, maxCellNumberLen))
	setIfPresent(params, domain.FieldPaymentReference, truncate(req.PaymentReference, maxReferenceLen))
	setIfPresent(params, domain.FieldItemDescription, truncate(req.ItemDescription, maxItemDescriptionLen))

	custom := req.Custom
	for i := range custom.Str {
		custom.Str[i] = truncate(custom.Str[i], maxCustomStrLen)
	}
	custom.Apply(params)

	if strings.TrimSpace(req.ConfirmationAddress) != "" {
		params[domain.FieldEmailConfirmation] = "1"
		params[domain.FieldConfirmationAddress] = truncate(req.ConfirmationAddress, maxEmailLen)
	}

	if err := validateRequired(params); err != nil {
		return nil, err
	}

	params[domain.FieldSignature] = b.codec.Sign(params, b.cfg.Passphrase)

	return &ports.SignedPaymentRequest{
		ActionURL: b.cfg.ProcessURL(),
		Params:    params,
	}, nil
}

var requiredFields = []string{
	domain.FieldMerchantID,
	domain.FieldMerchantKey,
	domain.FieldAmount,
	domain.FieldItemName,
	domain.FieldReturnURL,
	domain.FieldCancelURL,
	domain.FieldNotifyURL,
}

// validateRequired reports the first missing field in key order.
func validateRequired(params domain.ParameterSet) error {
	errs := validation.Errors{}
	for _, f := range requiredFields {
		errs[f] = validation.Validate(strings.TrimSpace(params[f]), validation.Required)
	}
	if err := errs.Filter(); err != nil {
		missing := make([]string, 0, len(requiredFields))
		for f, e := range err.(validation.Errors) {
			if e != nil {
				missing = append(missing, f)
			}
		}
		sort.Strings(missing)
		return apperror.ErrMissingRequiredField(missing[0])
	}
	return nil
}

func setIfPresent(params domain.ParameterSet, key, value string) {
	if strings.TrimSpace(value) != "" {
		params[key] = value
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// truncate cuts s to at most max characters.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
