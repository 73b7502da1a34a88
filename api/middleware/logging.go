package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/tillpoint/pkg/logger"
)

// health checks and scrapes log at debug level
var quietPrefixes = []string{"/health", "/metrics"}

// Logging writes request.start and request.complete. The completion entry
// carries the tenant and role that Auth resolved further down the chain.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logg == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			scope := scopeFrom(ctx)
			if scope == nil {
				scope = &requestScope{}
				ctx = withScope(ctx, scope)
			}
			ctx = logg.WithFields(ctx, map[string]any{
				"method":    r.Method,
				"path":      r.URL.Path,
				"client_ip": clientIP(r),
			})
			quiet := isQuiet(r.URL.Path)

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			if !quiet {
				logg.Info(ctx, "request.start")
			}

			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			fields := map[string]any{
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if rctx := chi.RouteContext(ctx); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					fields["route"] = pattern
				}
			}
			if scope.tenantID != "" {
				fields["tenant_id"] = scope.tenantID
			}
			if scope.role != "" {
				fields["role"] = scope.role
			}
			if scope.userID != "" {
				fields["user_id"] = scope.userID
			}

			ctx = logg.WithFields(ctx, fields)
			if quiet {
				logg.Debug(ctx, "request.complete")
				return
			}
			logg.Info(ctx, "request.complete")
		})
	}
}

func isQuiet(path string) bool {
	for _, prefix := range quietPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
