package handler

import (
	"time"

	"restaurant-pos/internal/adapter/http/dto"
	"restaurant-pos/internal/adapter/http/middleware"
	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"
	"restaurant-pos/pkg/apperror"
	"restaurant-pos/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// ReportHandler serves store payment reports.
type ReportHandler struct {
	reportingSvc ports.ReportingService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportingSvc ports.ReportingService) *ReportHandler {
	return &ReportHandler{reportingSvc: reportingSvc}
}

// GetStats handles GET /api/v1/reports/payments/stats?period=today|week|month|all.
func (h *ReportHandler) GetStats(c *gin.Context) {
	storeID, ok := middleware.StoreID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	period := c.DefaultQuery("period", "today")
	stats, err := h.reportingSvc.GetPaymentStats(c.Request.Context(), storeID, period)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PaymentStatsResponse{
		Period:      period,
		TotalCount:  stats.TotalCount,
		GrossVolume: stats.GrossVolume.StringFixed(2),
		FeeVolume:   stats.FeeVolume.StringFixed(2),
		NetVolume:   stats.NetVolume.StringFixed(2),
	})
}

// ListPayments handles GET /api/v1/reports/payments. from and to are
// inclusive calendar days in UTC.
func (h *ReportHandler) ListPayments(c *gin.Context) {
	storeID, ok := middleware.StoreID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var q dto.PaymentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if q.Page == 0 {
		q.Page = defaultPage
	}
	if q.PageSize == 0 {
		q.PageSize = defaultPageSize
	}

	params := ports.PaymentListParams{
		StoreID:  storeID,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.From != "" {
		from, _ := time.Parse(time.DateOnly, q.From)
		params.From = &from
	}
	if q.To != "" {
		day, _ := time.Parse(time.DateOnly, q.To)
		to := day.Add(24*time.Hour - time.Nanosecond)
		params.To = &to
	}

	payments, total, err := h.reportingSvc.ListPayments(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, toPaymentResponse(&payments[i]))
	}

	response.OK(c, dto.PaymentListResponse{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: response.TotalPages(total, q.PageSize),
	})
}

func toPaymentResponse(p *domain.PaymentRecord) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:               p.ID.String(),
		OrderID:          p.OrderID.String(),
		GatewayReference: p.GatewayReference,
		AmountGross:      p.AmountGross.StringFixed(2),
		AmountFee:        p.AmountFee.StringFixed(2),
		AmountNet:        p.AmountNet.StringFixed(2),
		Method:           p.Method,
		CustomFields:     p.CustomFields,
		PaidAt:           p.PaidAt.UTC().Format(time.RFC3339),
	}
}
