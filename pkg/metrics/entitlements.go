package metrics

import "github.com/prometheus/client_golang/prometheus"

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// EntitlementMetrics records module resolution behaviour.
type EntitlementMetrics struct {
	cache  *prometheus.CounterVec
	issues *prometheus.CounterVec
}

// NewEntitlementMetrics registers the entitlement metrics on the provided registerer.
func NewEntitlementMetrics(reg prometheus.Registerer) *EntitlementMetrics {
	if reg == nil {
		return &EntitlementMetrics{}
	}
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "entitlements_cache_lookups_total",
		Help: "Resolved module cache lookups by result.",
	}, []string{"result"})
	issues := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "entitlements_override_issues_total",
		Help: "Tenant module overrides ignored during resolution.",
	}, []string{"reason"})
	reg.MustRegister(cache, issues)
	return &EntitlementMetrics{cache: cache, issues: issues}
}

// IncCache increments the cache counter for result.
func (e *EntitlementMetrics) IncCache(result string) {
	if e == nil || e.cache == nil {
		return
	}
	e.cache.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncIssue increments the ignored-override counter for reason.
func (e *EntitlementMetrics) IncIssue(reason string) {
	if e == nil || e.issues == nil {
		return
	}
	e.issues.WithLabelValues(normalizeLabel(reason)).Inc()
}
