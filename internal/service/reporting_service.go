package service

import (
	"context"
	"time"

	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"
	"restaurant-pos/pkg/apperror"

	"github.com/google/uuid"
)

// Reporting periods accepted by GetPaymentStats.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ReportingServiceImpl implements ports.ReportingService.
type ReportingServiceImpl struct {
	payments ports.PaymentRepository
	now      func() time.Time
}

// NewReportingService creates a new reporting service.
func NewReportingService(payments ports.PaymentRepository) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		payments: payments,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetPaymentStats returns settled payment totals for the store. "today"
// starts at midnight UTC; week and month are rolling windows.
func (s *ReportingServiceImpl) GetPaymentStats(ctx context.Context, storeID uuid.UUID, period string) (*domain.PaymentStats, error) {
	now := s.now()
	var since *time.Time

	switch period {
	case PeriodToday:
		t := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		since = &t
	case PeriodWeek:
		t := now.AddDate(0, 0, -7)
		since = &t
	case PeriodMonth:
		t := now.AddDate(0, -1, 0)
		since = &t
	case PeriodAll, "":
		// No time filter
	default:
		return nil, apperror.Validation("invalid period: must be today, week, month, or all")
	}

	stats, err := s.payments.GetStats(ctx, storeID, since)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return stats, nil
}

// ListPayments returns a page of the store's payments, newest first.
func (s *ReportingServiceImpl) ListPayments(ctx context.Context, params ports.PaymentListParams) ([]domain.PaymentRecord, int64, error) {
	if params.From != nil && params.To != nil && params.From.After(*params.To) {
		return nil, 0, apperror.Validation("from must not be after to")
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	records, total, err := s.payments.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return records, total, nil
}
