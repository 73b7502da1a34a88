package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestPricingMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPricingMetrics(reg)
	m.ObserveQuote("ok", 40*time.Millisecond)
	m.AddApplied("product", 2)
	m.AddApplied("bundle", 0)
	m.IncSkipped("category")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "pricing_rules_applied_total", "level", "product"); err != nil {
		t.Fatalf("fetch applied: %v", err)
	} else if got != 2 {
		t.Fatalf("expected applied=2, got %f", got)
	}
	if _, err := fetchCounterValue(mfs, "pricing_rules_applied_total", "level", "bundle"); err == nil {
		t.Fatalf("zero adds should not create a series")
	}
	if got, err := fetchCounterValue(mfs, "pricing_rules_skipped_total", "level", "category"); err != nil {
		t.Fatalf("fetch skipped: %v", err)
	} else if got != 1 {
		t.Fatalf("expected skipped=1, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "pricing_quote_duration_seconds", "outcome", "ok"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestEntitlementMetricsCountsCacheResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEntitlementMetrics(reg)
	m.IncCache(CacheHit)
	m.IncCache(CacheHit)
	m.IncCache(CacheMiss)
	m.IncIssue("")

	if got := testutil.ToFloat64(m.cache.WithLabelValues(CacheHit)); got != 2 {
		t.Fatalf("expected 2 hits, got %f", got)
	}
	if got := testutil.ToFloat64(m.issues.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected empty reason normalized to unknown, got %f", got)
	}
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("POST", "/api/v1/pricing/quote", 200, 10*time.Millisecond)

	if n := testutil.CollectAndCount(m.duration, "http_request_duration_seconds"); n != 1 {
		t.Fatalf("expected one series, got %d", n)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	var nilPricing *PricingMetrics
	nilPricing.IncSkipped("product")
	NewPricingMetrics(nil).ObserveQuote("ok", time.Second)
	NewEntitlementMetrics(nil).IncCache(CacheMiss)
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Second)
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
