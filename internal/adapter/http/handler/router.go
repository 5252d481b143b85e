package handler

import (
	"restaurant-pos/internal/adapter/http/middleware"
	"restaurant-pos/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds every request body. Notifications are a few KB.
const maxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc         ports.AuthService
	CheckoutSvc     ports.CheckoutService
	NotificationSvc ports.NotificationService
	ReportingSvc    ports.ReportingService
	TokenSvc        ports.TokenService
	RateLimiter     middleware.Limiter // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	AuditSvc        ports.AuditService // nil = audit logging disabled
	OpenAPISpec     []byte

	// Metrics: Gatherer serves MetricsPath, Registerer receives the HTTP
	// collectors. A nil Gatherer disables both.
	MetricsGatherer   prometheus.Gatherer
	MetricsRegisterer prometheus.Registerer
	MetricsPath       string

	Mode   string // gin mode, defaults to release
	Logger zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	mode := deps.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	if deps.MetricsGatherer != nil && deps.MetricsRegisterer != nil {
		r.Use(middleware.NewHTTPMetrics(deps.MetricsRegisterer).Middleware())
	}
	r.Use(middleware.MaxBodySize(maxBodyBytes))
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	if deps.MetricsGatherer != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{})))
	}

	swagger := NewSwaggerHandler(deps.OpenAPISpec)
	docs := r.Group("/swagger")
	{
		docs.GET("", swagger.UI)
		docs.GET("/spec", swagger.Spec)
	}

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimiter == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimiter, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Public routes ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	v1.POST("/auth/login", rl("auth_login"), authHandler.Login)

	notifyHandler := NewNotifyHandler(deps.NotificationSvc)
	v1.POST("/payfast/notify", rl("notify"), notifyHandler.Notify)

	// --- Staff routes (JWT) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	checkoutHandler := NewCheckoutHandler(deps.CheckoutSvc)
	orders := v1.Group("/orders", jwtAuth)
	{
		orders.POST("/:id/payfast/checkout", rl("checkout"), checkoutHandler.StartCheckout)
	}

	reportHandler := NewReportHandler(deps.ReportingSvc)
	reports := v1.Group("/reports", jwtAuth)
	{
		reports.GET("/payments", rl("reports"), reportHandler.ListPayments)
		reports.GET("/payments/stats", rl("reports"), reportHandler.GetStats)
	}

	return r
}
