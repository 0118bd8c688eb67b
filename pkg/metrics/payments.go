package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records webhook processing and order confirmation outcomes.
type PaymentMetrics struct {
	webhookEvents  *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
	confirmations  *prometheus.CounterVec
	transitions    *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Payment provider webhook notifications by topic and outcome.",
	}, []string{"topic", "outcome"})
	webhookLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_webhook_duration_seconds",
		Help:    "Duration of webhook processing in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})
	confirmations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_confirmations_total",
		Help: "Order confirmation attempts by outcome.",
	}, []string{"outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Manual order status transitions by target status.",
	}, []string{"status"})
	reg.MustRegister(webhookEvents, webhookLatency, confirmations, transitions)
	return &PaymentMetrics{
		webhookEvents:  webhookEvents,
		webhookLatency: webhookLatency,
		confirmations:  confirmations,
		transitions:    transitions,
	}
}

// IncWebhookEvent increments the webhook counter for the given topic/outcome.
func (p *PaymentMetrics) IncWebhookEvent(topic, outcome string) {
	if p == nil || p.webhookEvents == nil {
		return
	}
	p.webhookEvents.WithLabelValues(normalizeLabel(topic), normalizeLabel(outcome)).Inc()
}

// ObserveWebhookDuration records webhook processing time for the topic.
func (p *PaymentMetrics) ObserveWebhookDuration(topic string, duration time.Duration) {
	if p == nil || p.webhookLatency == nil {
		return
	}
	p.webhookLatency.WithLabelValues(normalizeLabel(topic)).Observe(duration.Seconds())
}

// IncConfirmation increments the confirmation counter for the outcome.
func (p *PaymentMetrics) IncConfirmation(outcome string) {
	if p == nil || p.confirmations == nil {
		return
	}
	p.confirmations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncTransition increments the manual transition counter for the new status.
func (p *PaymentMetrics) IncTransition(status string) {
	if p == nil || p.transitions == nil {
		return
	}
	p.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
