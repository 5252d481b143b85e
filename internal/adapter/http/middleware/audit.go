package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys a handler sets to name the audited resource.
const (
	CtxAuditResourceID = "audit_resource_id"
	CtxAuditStoreID    = "audit_store_id"
)

type auditRoute struct {
	action       domain.AuditAction
	resourceType string
}

var auditRoutes = map[string]auditRoute{
	"/api/v1/auth/login":                  {domain.AuditActionLogin, "session"},
	"/api/v1/orders/:id/payfast/checkout": {domain.AuditActionCheckout, "order"},
	"/api/v1/payfast/notify":              {domain.AuditActionNotification, "order"},
}

// AuditLog records successful POSTs to audited routes once the handler has
// responded. Routes are matched on their registered pattern.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 || c.Request.Method != http.MethodPost {
			return
		}
		route, ok := auditRoutes[c.FullPath()]
		if !ok {
			return
		}

		entry := &domain.AuditLog{
			ID:           uuid.New(),
			Action:       route.action,
			ResourceType: route.resourceType,
			ResourceID:   c.GetString(CtxAuditResourceID),
			IPAddress:    c.ClientIP(),
			CreatedAt:    time.Now().UTC(),
		}
		if id, ok := StaffID(c); ok {
			entry.StaffID = &id
		}
		if id, ok := StoreID(c); ok {
			entry.StoreID = &id
		} else if id, ok := uuidFromContext(c, CtxAuditStoreID); ok {
			entry.StoreID = &id
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"request_id": c.GetString(CtxRequestID),
		})
		entry.Details = string(details)

		auditSvc.Log(c.Request.Context(), entry)
	}
}
