package handler

import (
	"errors"
	"net/http"
	"time"

	"restaurant-pos/internal/adapter/http/middleware"
	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"
	"restaurant-pos/pkg/apperror"
	"restaurant-pos/pkg/response"

	"github.com/gin-gonic/gin"
)

const maxNotificationMemory = 64 << 10

// NotifyHandler receives PayFast instant transaction notifications.
type NotifyHandler struct {
	notificationSvc ports.NotificationService
}

// NewNotifyHandler creates a new NotifyHandler.
func NewNotifyHandler(notificationSvc ports.NotificationService) *NotifyHandler {
	return &NotifyHandler{notificationSvc: notificationSvc}
}

// Notify handles POST /api/v1/payfast/notify. The gateway only looks at the
// status code: 200 stops its retries, anything else schedules another attempt.
func (h *NotifyHandler) Notify(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxNotificationMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		response.Error(c, apperror.ErrMalformedNotification("unreadable form body"))
		return
	}

	params := domain.ParameterSetFromValues(c.Request.PostForm)

	outcome, err := h.notificationSvc.Handle(c.Request.Context(), ports.InboundNotification{
		Params:     params,
		Referer:    c.Request.Referer(),
		Origin:     c.GetHeader("Origin"),
		RemoteAddr: c.ClientIP(),
		ReceivedAt: time.Now().UTC(),
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError {
			response.Error(c, err)
			return
		}
		response.ErrorWithDetail(c, err, "notification not applied; retry expected")
		return
	}

	c.Set(middleware.CtxAuditResourceID, outcome.PaymentReference)
	c.Set(middleware.CtxAuditStoreID, outcome.StoreID)
	response.Acknowledge(c)
}
