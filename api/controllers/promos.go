package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/angelmondragon/tillpoint/api/responses"
	"github.com/angelmondragon/tillpoint/api/validators"
	"github.com/angelmondragon/tillpoint/internal/promos"
	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
	"github.com/angelmondragon/tillpoint/pkg/logger"
	"github.com/angelmondragon/tillpoint/pkg/pagination"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PromosList returns a page of the tenant's promos, newest first.
func PromosList(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promo service unavailable"))
			return
		}

		tenantID, err := tenantIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cursor, err := validators.ParseQueryToken(r, "cursor", pagination.MaxCursorLength)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), promos.ListParams{
			TenantID: tenantID,
			Params: pagination.Params{
				Limit:  limit,
				Cursor: cursor,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// PromosExport streams the tenant's active rule set as an xlsx workbook.
func PromosExport(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promo service unavailable"))
			return
		}

		tenantID, err := tenantIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// buffered so a failure can still be reported as a JSON error
		var buf bytes.Buffer
		if err := svc.Export(r.Context(), tenantID, &buf); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="promos-%s.xlsx"`, tenantID))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil && logg != nil {
			logg.Error(r.Context(), "promos.export_write_failed", err)
		}
	}
}
