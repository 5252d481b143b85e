package payfast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"restaurant-pos/config"
	"restaurant-pos/internal/core/domain"

	"github.com/rs/zerolog"
)

const (
	validResponse   = "VALID"
	maxResponseBody = 1 << 10
	defaultTimeout  = 5 * time.Second
	defaultBackoff  = 500 * time.Millisecond
)

// ErrNotConfirmed is returned when the gateway answers but does not say VALID.
var ErrNotConfirmed = errors.New("payfast: notification not confirmed")

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Validator implements ports.PaymentConfirmer by echoing the received
// parameters to the gateway's validate endpoint.
type Validator struct {
	url     string
	client  HTTPClient
	timeout time.Duration
	retries int
	backoff time.Duration
	log     zerolog.Logger
}

// NewValidator creates a Validator for the configured environment.
func NewValidator(cfg config.PayFastConfig, client HTTPClient, log zerolog.Logger) *Validator {
	timeout := cfg.ValidateTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.ValidateRetries
	if retries < 0 {
		retries = 0
	}
	return &Validator{
		url:     cfg.ValidateURL(),
		client:  client,
		timeout: timeout,
		retries: retries,
		backoff: defaultBackoff,
		log:     log,
	}
}

// WithBackoff overrides the pause between attempts.
func (v *Validator) WithBackoff(d time.Duration) *Validator {
	v.backoff = d
	return v
}

// WithURL points the validator at another endpoint.
func (v *Validator) WithURL(url string) *Validator {
	v.url = url
	return v
}

// Confirm posts the parameters (without signature) and expects the literal
// body VALID. Transport errors and 5xx answers are retried; anything else is
// final.
func (v *Validator) Confirm(ctx context.Context, params domain.ParameterSet) error {
	body := params.Without(domain.FieldSignature).Values().Encode()

	var lastErr error
	for attempt := 0; attempt <= v.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(v.backoff * time.Duration(attempt)):
			}
		}

		retryable, err := v.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}

		v.log.Warn().Err(err).
			Int("attempt", attempt+1).
			Str("payment_reference", params[domain.FieldPaymentReference]).
			Msg("payfast: validate call failed, retrying")
	}

	return fmt.Errorf("payfast: validate retries exhausted: %w", lastErr)
}

func (v *Validator) post(ctx context.Context, body string) (retryable bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, strings.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("payfast: build validate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("payfast: validate request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return true, fmt.Errorf("payfast: read validate response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return true, fmt.Errorf("payfast: validate returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("payfast: validate returned status %d", resp.StatusCode)
	}
	if strings.TrimSpace(string(raw)) != validResponse {
		return false, ErrNotConfirmed
	}
	return false, nil
}
