package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"
	"restaurant-pos/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type routerMocks struct {
	auth     *mocks.MockAuthService
	checkout *mocks.MockCheckoutService
	notify   *mocks.MockNotificationService
	reports  *mocks.MockReportingService
	tokens   *mocks.MockTokenService
	audit    *mocks.MockAuditService
}

func newTestRouter(t *testing.T) (*gin.Engine, routerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := routerMocks{
		auth:     mocks.NewMockAuthService(ctrl),
		checkout: mocks.NewMockCheckoutService(ctrl),
		notify:   mocks.NewMockNotificationService(ctrl),
		reports:  mocks.NewMockReportingService(ctrl),
		tokens:   mocks.NewMockTokenService(ctrl),
		audit:    mocks.NewMockAuditService(ctrl),
	}
	reg := prometheus.NewRegistry()
	r := SetupRouter(RouterDeps{
		AuthSvc:           m.auth,
		CheckoutSvc:       m.checkout,
		NotificationSvc:   m.notify,
		ReportingSvc:      m.reports,
		TokenSvc:          m.tokens,
		AuditSvc:          m.audit,
		OpenAPISpec:       []byte("openapi: 3.0.3\n"),
		MetricsGatherer:   reg,
		MetricsRegisterer: reg,
		Mode:              gin.TestMode,
		Logger:            zerolog.Nop(),
	})
	return r, m
}

func TestRouter_StaffRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+uuid.NewString()+"/payfast/checkout", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/reports/payments", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/reports/payments/stats", nil),
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, req.URL.Path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}
}

func TestRouter_ReportsWithToken(t *testing.T) {
	r, m := newTestRouter(t)
	claims := &ports.TokenClaims{StaffID: uuid.New(), StoreID: uuid.New(), Username: "thandi"}
	m.tokens.EXPECT().Validate("staff.jwt").Return(claims, nil)
	m.reports.EXPECT().GetPaymentStats(gomock.Any(), claims.StoreID, "month").Return(&domain.PaymentStats{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/payments/stats?period=month", nil)
	req.Header.Set("Authorization", "Bearer staff.jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_NotifyIsPublicAndAudited(t *testing.T) {
	r, m := newTestRouter(t)
	storeID := uuid.New()

	m.notify.EXPECT().Handle(gomock.Any(), gomock.Any()).Return(&ports.NotificationOutcome{
		StoreID:          storeID,
		PaymentReference: "ORD-1001",
		Applied:          true,
	}, nil)
	m.audit.EXPECT().Log(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, entry *domain.AuditLog) {
		assert.Equal(t, domain.AuditActionNotification, entry.Action)
		assert.Equal(t, "ORD-1001", entry.ResourceID)
		require.NotNil(t, entry.StoreID)
		assert.Equal(t, storeID, *entry.StoreID)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payfast/notify", strings.NewReader("m_payment_id=ORD-1001"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_HealthMetricsAndDocs(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `pos_http_requests_total{method="GET",route="/health",status="200"} 1`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/spec", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_OversizedBodyRejected(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payfast/notify", strings.NewReader(strings.Repeat("a", maxBodyBytes+1)))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
