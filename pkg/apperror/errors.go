package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so callers can compare against a constructor result:
// errors.Is(err, apperror.ErrSignatureMismatch()).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Outbound payment requests (PF) ----

func ErrInvalidAmount() *AppError {
	return New("PF_001", "Amount must be a positive finite number", http.StatusBadRequest)
}

func ErrMissingRequiredField(field string) *AppError {
	return New("PF_002", fmt.Sprintf("Missing required field: %s", field), http.StatusBadRequest)
}

// ---- Inbound notifications (ITN) ----
// Every gate failure is a 400 so the gateway sees a definitive rejection.

func ErrMissingSignature() *AppError {
	return New("ITN_001", "Missing signature", http.StatusBadRequest)
}

func ErrSignatureMismatch() *AppError {
	return New("ITN_002", "Signature mismatch", http.StatusBadRequest)
}

func ErrOriginRejected(host string) *AppError {
	if host == "" {
		return New("ITN_003", "Notification origin not provided", http.StatusBadRequest)
	}
	return New("ITN_003", fmt.Sprintf("Notification origin %q is not allowed", host), http.StatusBadRequest)
}

func ErrAmountMismatch() *AppError {
	return New("ITN_004", "Amount does not match order total", http.StatusBadRequest)
}

func ErrUpstreamConfirmationFailed(err error) *AppError {
	return Wrap("ITN_005", "Gateway did not confirm notification", http.StatusBadRequest, err)
}

func ErrUnknownPaymentReference() *AppError {
	return New("ITN_006", "Unknown payment reference", http.StatusBadRequest)
}

func ErrMalformedNotification(reason string) *AppError {
	return New("ITN_007", fmt.Sprintf("Malformed notification: %s", reason), http.StatusBadRequest)
}

// ---- Orders (ORD) ----

func ErrNotFound(entity string) *AppError {
	return New("ORD_000", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrOrderNotPayable(status string) *AppError {
	return New("ORD_001", fmt.Sprintf("Order in status %s cannot be paid", status), http.StatusConflict)
}

func ErrOrderOutsideStore() *AppError {
	return New("ORD_002", "Order belongs to another store", http.StatusForbidden)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrStaffInactive() *AppError {
	return New("AUTH_004", "Staff account is disabled", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// ErrDownstreamEffectFailed is logged, never returned to a caller.
func ErrDownstreamEffectFailed(effect string, err error) *AppError {
	return Wrap("SYS_004", fmt.Sprintf("Downstream effect %s failed", effect), http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("REQ_001", message, http.StatusBadRequest)
}

// ErrPayloadTooLarge rejects bodies over the configured limit.
func ErrPayloadTooLarge() *AppError {
	return New("REQ_002", "Request body too large", http.StatusRequestEntityTooLarge)
}
