package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/tillpoint/api/responses"
	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
	"github.com/angelmondragon/tillpoint/pkg/logger"
)

// ModuleChecker answers whether a tenant has a module enabled.
type ModuleChecker interface {
	HasModule(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
}

// RequireModule rejects requests from tenants that do not have code enabled.
func RequireModule(checker ModuleChecker, code string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if checker == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entitlements unavailable"))
				return
			}

			tenantID, err := uuid.Parse(TenantIDFromContext(ctx))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "tenant context missing"))
				return
			}

			ok, err := checker.HasModule(ctx, tenantID, code)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "module not enabled").WithDetails(map[string]any{"module": code}))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
