package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPaymentMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPaymentMetrics(reg)

	metrics.IncWebhookEvent("payment", "confirmed")
	metrics.IncWebhookEvent("payment", "duplicate")
	metrics.ObserveWebhookDuration("payment", 120*time.Millisecond)
	metrics.IncConfirmation("confirmed")
	metrics.IncTransition("shipped")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "payment_webhook_events_total", "outcome", "confirmed"); err != nil {
		t.Fatalf("fetch webhook events: %v", err)
	} else if got != 1 {
		t.Fatalf("expected confirmed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "payment_webhook_events_total", "outcome", "duplicate"); err != nil {
		t.Fatalf("fetch webhook events: %v", err)
	} else if got != 1 {
		t.Fatalf("expected duplicate=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "payment_webhook_duration_seconds", "topic", "payment"); err != nil {
		t.Fatalf("fetch webhook duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_confirmations_total", "outcome", "confirmed"); err != nil {
		t.Fatalf("fetch confirmations: %v", err)
	} else if got != 1 {
		t.Fatalf("expected confirmations=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_status_transitions_total", "status", "shipped"); err != nil {
		t.Fatalf("fetch transitions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected transitions=1, got %f", got)
	}
}

func TestPaymentMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewPaymentMetrics(nil)
	metrics.IncWebhookEvent("payment", "confirmed")
	metrics.ObserveWebhookDuration("payment", time.Millisecond)
	metrics.IncConfirmation("confirmed")
	metrics.IncTransition("shipped")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
