package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/tillpoint/api/middleware"
	"github.com/angelmondragon/tillpoint/internal/entitlements"
	"github.com/angelmondragon/tillpoint/internal/promos"
	"github.com/angelmondragon/tillpoint/internal/tenants"
	"github.com/angelmondragon/tillpoint/pkg/enums"
)

type stubEntitlements struct {
	resolution *entitlements.Resolution
	err        error
	setInput   entitlements.OverrideInput
	clearInput entitlements.ClearOverrideInput
}

func (s *stubEntitlements) Resolve(ctx context.Context, tenantID uuid.UUID) (*entitlements.Resolution, error) {
	return s.resolution, s.err
}

func (s *stubEntitlements) HasModule(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.resolution != nil && s.resolution.Has(code), nil
}

func (s *stubEntitlements) SetOverride(ctx context.Context, input entitlements.OverrideInput) (*entitlements.Resolution, error) {
	s.setInput = input
	return s.resolution, s.err
}

func (s *stubEntitlements) ClearOverride(ctx context.Context, input entitlements.ClearOverrideInput) (*entitlements.Resolution, error) {
	s.clearInput = input
	return s.resolution, s.err
}

type stubTenants struct {
	dto   *tenants.TenantDTO
	err   error
	input tenants.AdvanceOnboardingInput
}

func (s *stubTenants) Get(ctx context.Context, id uuid.UUID) (*tenants.TenantDTO, error) {
	return s.dto, s.err
}

func (s *stubTenants) AdvanceOnboarding(ctx context.Context, input tenants.AdvanceOnboardingInput) (*tenants.TenantDTO, error) {
	s.input = input
	return s.dto, s.err
}

type stubPromos struct {
	quote      *promos.Quote
	list       *promos.ListResult
	workbook   []byte
	err        error
	quoteInput promos.QuoteInput
	listParams promos.ListParams
}

func (s *stubPromos) Quote(ctx context.Context, input promos.QuoteInput) (*promos.Quote, error) {
	s.quoteInput = input
	return s.quote, s.err
}

func (s *stubPromos) List(ctx context.Context, params promos.ListParams) (*promos.ListResult, error) {
	s.listParams = params
	return s.list, s.err
}

func (s *stubPromos) Export(ctx context.Context, tenantID uuid.UUID, w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	_, err := w.Write(s.workbook)
	return err
}

// evaluatingPromos prices carts for real against an empty rule set.
type evaluatingPromos struct{}

func (evaluatingPromos) Quote(ctx context.Context, input promos.QuoteInput) (*promos.Quote, error) {
	return &promos.Quote{PricingResult: promos.Evaluate(input.Lines, promos.RuleSet{}), Currency: "IDR"}, nil
}

func (evaluatingPromos) List(ctx context.Context, params promos.ListParams) (*promos.ListResult, error) {
	return &promos.ListResult{Items: []promos.ListItem{}}, nil
}

func (evaluatingPromos) Export(ctx context.Context, tenantID uuid.UUID, w io.Writer) error {
	return nil
}

func withTenant(req *http.Request, tenantID uuid.UUID, role enums.MemberRole) *http.Request {
	ctx := middleware.WithTenantID(req.Context(), tenantID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return payload.Error.Code
}
