package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/tillpoint/api/responses"
	"github.com/angelmondragon/tillpoint/api/validators"
	"github.com/angelmondragon/tillpoint/internal/entitlements"
	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
	"github.com/angelmondragon/tillpoint/pkg/logger"
)

const maxModuleCodeLength = 64

// ModulesList returns the caller tenant's effective modules.
func ModulesList(svc entitlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entitlements service unavailable"))
			return
		}

		tenantID, err := tenantIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolution, err := svc.Resolve(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resolution)
	}
}

type moduleOverrideRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// ModuleOverrideSet enables or disables one module for the caller tenant.
func ModuleOverrideSet(svc entitlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entitlements service unavailable"))
			return
		}

		tenantID, err := tenantIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code, err := moduleCodeParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body moduleOverrideRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolution, err := svc.SetOverride(r.Context(), entitlements.OverrideInput{
			TenantID:   tenantID,
			ModuleCode: code,
			Enabled:    *body.Enabled,
			Role:       roleFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resolution)
	}
}

// ModuleOverrideClear drops the caller tenant's override so the default applies.
func ModuleOverrideClear(svc entitlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entitlements service unavailable"))
			return
		}

		tenantID, err := tenantIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code, err := moduleCodeParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolution, err := svc.ClearOverride(r.Context(), entitlements.ClearOverrideInput{
			TenantID:   tenantID,
			ModuleCode: code,
			Role:       roleFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resolution)
	}
}

type moduleCodeInput struct {
	Code string `json:"code" validate:"required,max=64,module_code"`
}

func moduleCodeParam(r *http.Request) (string, error) {
	input := moduleCodeInput{Code: validators.SanitizeCode(chi.URLParam(r, "code"), maxModuleCodeLength+1)}
	if err := validators.ValidateStruct(input); err != nil {
		return "", err
	}
	return input.Code, nil
}
