package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics counts checkout and notification outcomes. A nil
// *PaymentMetrics records nothing.
type PaymentMetrics struct {
	notifications *prometheus.CounterVec
	checkouts     *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment counters on reg.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	m := &PaymentMetrics{
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "payfast",
			Name:      "notifications_total",
			Help:      "Inbound payment notifications by outcome and gate.",
		}, []string{"outcome", "gate"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "payfast",
			Name:      "checkouts_total",
			Help:      "Signed payment requests built, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.notifications, m.checkouts)
	return m
}

func (m *PaymentMetrics) notification(outcome, gate string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome, gate).Inc()
}

func (m *PaymentMetrics) checkout(result string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(result).Inc()
}
