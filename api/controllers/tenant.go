package controllers

import (
	"net/http"

	"github.com/angelmondragon/tillpoint/api/responses"
	"github.com/angelmondragon/tillpoint/api/validators"
	"github.com/angelmondragon/tillpoint/internal/tenants"
	"github.com/angelmondragon/tillpoint/pkg/enums"
	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
	"github.com/angelmondragon/tillpoint/pkg/logger"
)

// TenantProfile returns the caller tenant's profile using the tenant-scoped JWT.
func TenantProfile(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenant service unavailable"))
			return
		}

		tenantID, err := tenantIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Get(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// onboardingRequest moves the tenant to step, or to the next step when empty.
type onboardingRequest struct {
	Step string `json:"step,omitempty" validate:"omitempty,max=32"`
}

// TenantAdvanceOnboarding advances the caller tenant's onboarding progress.
func TenantAdvanceOnboarding(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenant service unavailable"))
			return
		}

		tenantID, err := tenantIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body onboardingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := tenants.AdvanceOnboardingInput{TenantID: tenantID}
		if raw := validators.SanitizeString(body.Step, 32); raw != "" {
			step, err := enums.ParseOnboardingStep(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid onboarding step").WithDetails(map[string]any{"field": "step"}))
				return
			}
			input.Step = &step
		}

		profile, err := svc.AdvanceOnboarding(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}
