package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"restaurant-pos/internal/adapter/gateway/payfast"
	"restaurant-pos/internal/adapter/http/dto"
	"restaurant-pos/internal/adapter/http/middleware"
	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"
	"restaurant-pos/pkg/apperror"
	"restaurant-pos/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CheckoutHandler starts PayFast payments for orders.
type CheckoutHandler struct {
	checkoutSvc ports.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutSvc ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutSvc: checkoutSvc}
}

// StartCheckout handles POST /api/v1/orders/:id/payfast/checkout. The body is
// optional. With ?format=form the response is the auto-submitting HTML page
// instead of JSON.
func (h *CheckoutHandler) StartCheckout(c *gin.Context) {
	storeID, ok := middleware.StoreID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid order id"))
		return
	}

	var body dto.CheckoutRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			response.Error(c, apperror.Validation(err.Error()))
			return
		}
	}
	dto.SanitizeStruct(&body)

	req := body.ToPorts()
	req.OrderID = orderID
	req.StoreID = storeID

	result, err := h.checkoutSvc.StartCheckout(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Set(middleware.CtxAuditResourceID, orderID.String())

	if c.Query("format") == "form" {
		var page bytes.Buffer
		if err := payfast.RenderForm(&page, result.Payment); err != nil {
			response.Error(c, apperror.InternalError(err))
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page.Bytes())
		return
	}

	response.OK(c, dto.CheckoutResponse{
		OrderID:          result.Order.ID.String(),
		PaymentReference: result.Order.PaymentReference,
		Amount:           result.Payment.Params[domain.FieldAmount],
		ActionURL:        result.Payment.ActionURL,
		Fields:           result.Payment.Fields(),
	})
}
