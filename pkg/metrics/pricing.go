package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics records promo evaluation outcomes.
type PricingMetrics struct {
	duration *prometheus.HistogramVec
	applied  *prometheus.CounterVec
	skipped  *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_quote_duration_seconds",
		Help:    "Duration of cart quote evaluations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_rules_applied_total",
		Help: "Promo rules applied to cart lines or bundles.",
	}, []string{"level"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_rules_skipped_total",
		Help: "Promo rules skipped because they were malformed.",
	}, []string{"level"})
	reg.MustRegister(duration, applied, skipped)
	return &PricingMetrics{
		duration: duration,
		applied:  applied,
		skipped:  skipped,
	}
}

// ObserveQuote records a quote evaluation duration.
func (p *PricingMetrics) ObserveQuote(outcome string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// AddApplied increments the applied counter for a rule level.
func (p *PricingMetrics) AddApplied(level string, n int) {
	if p == nil || p.applied == nil || n <= 0 {
		return
	}
	p.applied.WithLabelValues(normalizeLabel(level)).Add(float64(n))
}

// IncSkipped increments the skipped counter for a rule level.
func (p *PricingMetrics) IncSkipped(level string) {
	if p == nil || p.skipped == nil {
		return
	}
	p.skipped.WithLabelValues(normalizeLabel(level)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
