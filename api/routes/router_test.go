package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/tillpoint/internal/entitlements"
	"github.com/angelmondragon/tillpoint/internal/promos"
	"github.com/angelmondragon/tillpoint/internal/tenants"
	pkgAuth "github.com/angelmondragon/tillpoint/pkg/auth"
	"github.com/angelmondragon/tillpoint/pkg/config"
	"github.com/angelmondragon/tillpoint/pkg/enums"
	"github.com/angelmondragon/tillpoint/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubEntitlements struct {
	modules map[string]bool
}

func (s stubEntitlements) Resolve(ctx context.Context, tenantID uuid.UUID) (*entitlements.Resolution, error) {
	res := &entitlements.Resolution{TenantID: tenantID}
	for code := range s.modules {
		res.Modules = append(res.Modules, entitlements.ResolvedModule{Code: code})
	}
	return res, nil
}

func (s stubEntitlements) HasModule(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	return s.modules[code], nil
}

func (s stubEntitlements) SetOverride(ctx context.Context, input entitlements.OverrideInput) (*entitlements.Resolution, error) {
	return s.Resolve(ctx, input.TenantID)
}

func (s stubEntitlements) ClearOverride(ctx context.Context, input entitlements.ClearOverrideInput) (*entitlements.Resolution, error) {
	return s.Resolve(ctx, input.TenantID)
}

type stubTenants struct{}

func (stubTenants) Get(ctx context.Context, id uuid.UUID) (*tenants.TenantDTO, error) {
	return &tenants.TenantDTO{ID: id}, nil
}

func (stubTenants) AdvanceOnboarding(ctx context.Context, input tenants.AdvanceOnboardingInput) (*tenants.TenantDTO, error) {
	return &tenants.TenantDTO{ID: input.TenantID, OnboardingStep: enums.OnboardingStepCatalog}, nil
}

type stubPromos struct{}

func (stubPromos) Quote(ctx context.Context, input promos.QuoteInput) (*promos.Quote, error) {
	return &promos.Quote{Currency: "IDR"}, nil
}

func (stubPromos) List(ctx context.Context, params promos.ListParams) (*promos.ListResult, error) {
	return &promos.ListResult{Items: []promos.ListItem{}}, nil
}

func (stubPromos) Export(ctx context.Context, tenantID uuid.UUID, w io.Writer) error {
	_, err := w.Write([]byte("xlsx"))
	return err
}

type countingRateStore struct {
	counts map[string]int64
}

func (s *countingRateStore) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	s.counts[scope]++
	return s.counts[scope] <= limit, s.counts[scope], nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Env: "dev", Port: "8080"},
		JWT:       config.JWTConfig{Secret: "secret", Issuer: "tillpoint", ExpirationMinutes: 10},
		RateLimit: config.RateLimitConfig{QuoteWindow: time.Minute, QuoteLimit: 2},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func newTestRouter(t *testing.T, modules map[string]bool) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig()
	reg := prometheus.NewRegistry()
	router := NewRouter(Deps{
		Config:       cfg,
		DB:           stubPinger{},
		RateStore:    &countingRateStore{counts: map[string]int64{}},
		Gatherer:     reg,
		HTTPMetrics:  metrics.NewHTTPMetrics(reg),
		Entitlements: stubEntitlements{modules: modules},
		Tenants:      stubTenants{},
		Promos:       stubPromos{},
	})
	return router, cfg
}

func bearer(t *testing.T, cfg *config.Config, role enums.MemberRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Role:     role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func serve(router http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutesArePublic(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	for _, path := range []string{"/health/live", "/health/ready"} {
		if rec := serve(router, http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
	}
}

func TestMetricsEndpointExposesHTTPHistogram(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	serve(router, http.MethodGet, "/health/live", "", "")

	rec := serve(router, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_request_duration_seconds") {
		t.Fatal("expected http histogram in metrics output")
	}
}

func TestAPIRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	if rec := serve(router, http.MethodGet, "/api/v1/modules", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestModulesRoutes(t *testing.T) {
	router, cfg := newTestRouter(t, map[string]bool{"dashboard": true})

	if rec := serve(router, http.MethodGet, "/api/v1/modules", bearer(t, cfg, enums.MemberRoleCashier), ""); rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200 got %d", rec.Code)
	}
	if rec := serve(router, http.MethodPut, "/api/v1/modules/inventory", bearer(t, cfg, enums.MemberRoleCashier), `{"enabled":true}`); rec.Code != http.StatusForbidden {
		t.Fatalf("cashier override: expected 403 got %d", rec.Code)
	}
	if rec := serve(router, http.MethodPut, "/api/v1/modules/inventory", bearer(t, cfg, enums.MemberRoleOwner), `{"enabled":true}`); rec.Code != http.StatusOK {
		t.Fatalf("owner override: expected 200 got %d", rec.Code)
	}
	if rec := serve(router, http.MethodDelete, "/api/v1/modules/inventory", bearer(t, cfg, enums.MemberRoleAdmin), ""); rec.Code != http.StatusOK {
		t.Fatalf("admin clear: expected 200 got %d", rec.Code)
	}
}

func TestTenantRoutes(t *testing.T) {
	router, cfg := newTestRouter(t, nil)

	if rec := serve(router, http.MethodGet, "/api/v1/tenant", bearer(t, cfg, enums.MemberRoleCashier), ""); rec.Code != http.StatusOK {
		t.Fatalf("profile: expected 200 got %d", rec.Code)
	}
	if rec := serve(router, http.MethodPatch, "/api/v1/tenant/onboarding", bearer(t, cfg, enums.MemberRoleManager), `{}`); rec.Code != http.StatusForbidden {
		t.Fatalf("manager onboarding: expected 403 got %d", rec.Code)
	}
	if rec := serve(router, http.MethodPatch, "/api/v1/tenant/onboarding", bearer(t, cfg, enums.MemberRoleOwner), `{}`); rec.Code != http.StatusOK {
		t.Fatalf("owner onboarding: expected 200 got %d", rec.Code)
	}
}

func TestPricingRoutesRequirePromotionsModule(t *testing.T) {
	router, cfg := newTestRouter(t, map[string]bool{"dashboard": true})
	token := bearer(t, cfg, enums.MemberRoleCashier)

	if rec := serve(router, http.MethodPost, "/api/v1/pricing/quote", token, `{"lines":[]}`); rec.Code != http.StatusForbidden {
		t.Fatalf("quote: expected 403 got %d", rec.Code)
	}
	if rec := serve(router, http.MethodGet, "/api/v1/promos", token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("list: expected 403 got %d", rec.Code)
	}
}

func TestPricingRoutesWithPromotions(t *testing.T) {
	router, cfg := newTestRouter(t, map[string]bool{PromotionsModule: true})
	token := bearer(t, cfg, enums.MemberRoleCashier)

	if rec := serve(router, http.MethodGet, "/api/v1/promos", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200 got %d", rec.Code)
	}
	if rec := serve(router, http.MethodGet, "/api/v1/promos/export", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("export: expected 200 got %d", rec.Code)
	}

	for i := 0; i < 2; i++ {
		if rec := serve(router, http.MethodPost, "/api/v1/pricing/quote", token, `{"lines":[]}`); rec.Code != http.StatusOK {
			t.Fatalf("quote %d: expected 200 got %d", i, rec.Code)
		}
	}
	if rec := serve(router, http.MethodPost, "/api/v1/pricing/quote", token, `{"lines":[]}`); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("quote over limit: expected 429 got %d", rec.Code)
	}
}
