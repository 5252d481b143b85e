package ports

import (
	"context"
	"sort"
	"time"

	"restaurant-pos/internal/core/domain"

	"github.com/google/uuid"
)

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureCodec produces and checks PayFast MD5 signatures.
type SignatureCodec interface {
	Canonicalize(params domain.ParameterSet, passphrase string) string
	Sign(params domain.ParameterSet, passphrase string) string
	// Verify fails with a MissingSignature error when params carry no
	// signature, and reports a mismatch as false without error.
	Verify(params domain.ParameterSet, passphrase string) (bool, error)
}

// PayloadSigner handles HMAC-SHA256 signing of outbound JSON payloads.
type PayloadSigner interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// HashService handles PIN hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(staff *domain.Staff) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	StaffID  uuid.UUID
	StoreID  uuid.UUID
	Username string
}

// ReceiptCache is the Redis fast path for notifications already applied.
type ReceiptCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // nil when absent
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// PaymentConfirmer asks the gateway to confirm a notification it claims to have sent.
type PaymentConfirmer interface {
	Confirm(ctx context.Context, params domain.ParameterSet) error
}

// --- Service Ports (Business Logic) ---

// PaymentRequestBuilder turns a typed payment request into a signed form.
type PaymentRequestBuilder interface {
	Build(req domain.PaymentRequest) (*SignedPaymentRequest, error)
}

// SignedPaymentRequest is ready to be posted to ActionURL by the buyer's browser.
type SignedPaymentRequest struct {
	ActionURL string
	Params    domain.ParameterSet // includes signature
}

// FormField is one hidden input of the payment form.
type FormField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Fields lists the parameters in key order with the signature last.
func (r *SignedPaymentRequest) Fields() []FormField {
	keys := make([]string, 0, len(r.Params))
	for k := range r.Params {
		if k != domain.FieldSignature {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	fields := make([]FormField, 0, len(r.Params))
	for _, k := range keys {
		fields = append(fields, FormField{Name: k, Value: r.Params[k]})
	}
	if sig, ok := r.Params[domain.FieldSignature]; ok {
		fields = append(fields, FormField{Name: domain.FieldSignature, Value: sig})
	}
	return fields
}

// CheckoutService starts hosted-page payments for orders.
type CheckoutService interface {
	StartCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
}

// CheckoutRequest holds validated input for starting a checkout.
type CheckoutRequest struct {
	OrderID             uuid.UUID
	StoreID             uuid.UUID // store of the authenticated staff member
	ItemName            string
	ItemDescription     string
	Customer            domain.Customer
	Custom              domain.CustomFields
	ConfirmationAddress string
}

// CheckoutResult is the order plus the signed request to hand to the browser.
type CheckoutResult struct {
	Order   *domain.Order
	Payment *SignedPaymentRequest
}

// NotificationService verifies and applies inbound payment notifications.
type NotificationService interface {
	Handle(ctx context.Context, n InboundNotification) (*NotificationOutcome, error)
}

// InboundNotification is a notification as received over HTTP.
type InboundNotification struct {
	Params     domain.ParameterSet
	Referer    string
	Origin     string
	RemoteAddr string
	ReceivedAt time.Time
}

// NotificationOutcome describes what accepting a notification did.
type NotificationOutcome struct {
	OrderID          uuid.UUID
	StoreID          uuid.UUID
	PaymentReference string
	Status           domain.PaymentStatus
	Applied          bool // order state changed in this call
	Duplicate        bool // already applied earlier
}

// EffectDispatcher fires the post-payment side effects. Failures are logged,
// never returned.
type EffectDispatcher interface {
	PaymentCompleted(ctx context.Context, event domain.PaymentEvent)
}

// ReceiptMailer emails the payment confirmation to the payer.
type ReceiptMailer interface {
	SendReceipt(ctx context.Context, event domain.PaymentEvent) error
}

// KitchenNotifier pushes a paid order to the store's kitchen display.
type KitchenNotifier interface {
	Notify(ctx context.Context, event domain.PaymentEvent, attempt int) error
}

// AuthService defines staff authentication.
type AuthService interface {
	Login(ctx context.Context, username, pin string) (string, time.Time, error) // token, expiry, error
}

// ReportingService defines store payment reporting.
type ReportingService interface {
	GetPaymentStats(ctx context.Context, storeID uuid.UUID, period string) (*domain.PaymentStats, error)
	ListPayments(ctx context.Context, params PaymentListParams) ([]domain.PaymentRecord, int64, error)
}

// AuditService records audited actions, best-effort.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
