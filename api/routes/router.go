package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/tillpoint/api/controllers"
	"github.com/angelmondragon/tillpoint/api/middleware"
	"github.com/angelmondragon/tillpoint/internal/entitlements"
	"github.com/angelmondragon/tillpoint/internal/promos"
	"github.com/angelmondragon/tillpoint/internal/tenants"
	"github.com/angelmondragon/tillpoint/pkg/config"
	"github.com/angelmondragon/tillpoint/pkg/enums"
	"github.com/angelmondragon/tillpoint/pkg/logger"
	"github.com/angelmondragon/tillpoint/pkg/metrics"
)

// PromotionsModule gates the pricing and promo endpoints.
const PromotionsModule = "promotions"

// Deps collects what the router wires into handlers.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           controllers.Pinger
	Redis        controllers.Pinger
	RateStore    middleware.RateLimitStore
	Gatherer     prometheus.Gatherer
	HTTPMetrics  *metrics.HTTPMetrics
	Entitlements entitlements.Service
	Tenants      tenants.Service
	Promos       promos.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	quotePolicy := middleware.NewRateLimitPolicy(
		"quote",
		cfg.RateLimit.QuoteWindow,
		cfg.RateLimit.QuoteLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/modules", func(r chi.Router) {
			r.Get("/", controllers.ModulesList(deps.Entitlements, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.MemberRoleOwner, enums.MemberRoleAdmin, enums.MemberRolePlatform))
				r.Put("/{code}", controllers.ModuleOverrideSet(deps.Entitlements, logg))
				r.Delete("/{code}", controllers.ModuleOverrideClear(deps.Entitlements, logg))
			})
		})

		r.Route("/tenant", func(r chi.Router) {
			r.Get("/", controllers.TenantProfile(deps.Tenants, logg))
			r.With(middleware.RequireRole(logg, enums.MemberRoleOwner, enums.MemberRoleAdmin)).
				Patch("/onboarding", controllers.TenantAdvanceOnboarding(deps.Tenants, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireModule(deps.Entitlements, PromotionsModule, logg))
			r.With(middleware.RateLimit(quotePolicy, deps.RateStore, logg)).
				Post("/pricing/quote", controllers.PricingQuote(deps.Promos, logg))
			r.Get("/promos", controllers.PromosList(deps.Promos, logg))
			r.Get("/promos/export", controllers.PromosExport(deps.Promos, logg))
		})
	})

	return r
}
