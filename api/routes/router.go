package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pharmaquote/pharmaquote-backend/api/controllers"
	"github.com/pharmaquote/pharmaquote-backend/api/middleware"
	"github.com/pharmaquote/pharmaquote-backend/internal/analytics"
	"github.com/pharmaquote/pharmaquote-backend/internal/brands"
	"github.com/pharmaquote/pharmaquote-backend/internal/customertypes"
	"github.com/pharmaquote/pharmaquote-backend/internal/pricing"
	"github.com/pharmaquote/pharmaquote-backend/internal/quotes"
	"github.com/pharmaquote/pharmaquote-backend/pkg/config"
	"github.com/pharmaquote/pharmaquote-backend/pkg/logger"
	"github.com/pharmaquote/pharmaquote-backend/pkg/metrics"
)

// Services bundles everything the router mounts.
type Services struct {
	Pricing       pricing.Service
	Brands        brands.Service
	CustomerTypes customertypes.Service
	Quotes        quotes.Service
	Analytics     analytics.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	pingers map[string]controllers.Pinger,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/pricing", func(r chi.Router) {
			r.Post("/calculate", controllers.CalculatePrice(svcs.Pricing, logg))
			r.Post("/check-nppa", controllers.CheckNPPACompliance(svcs.Pricing, logg))
			r.Get("/nppa-data/{brandId}", controllers.GetNPPAData(svcs.Pricing, logg))
			r.Route("/rules", func(r chi.Router) {
				r.Post("/", controllers.CreatePricingRule(svcs.Pricing, logg))
				r.Patch("/{ruleId}", controllers.UpdatePricingRule(svcs.Pricing, logg))
				r.Delete("/{ruleId}", controllers.DeletePricingRule(svcs.Pricing, logg))
				r.Get("/brand/{brandId}", controllers.ListPricingRulesForBrand(svcs.Pricing, logg))
			})
		})

		r.Route("/brands", func(r chi.Router) {
			r.Get("/", controllers.ListBrands(svcs.Brands, logg))
			r.Post("/", controllers.CreateBrand(svcs.Brands, logg))
			r.Post("/import", controllers.ImportBrands(svcs.Brands, logg))
			r.Get("/{brandId}", controllers.GetBrand(svcs.Brands, logg))
			r.Patch("/{brandId}", controllers.UpdateBrand(svcs.Brands, logg))
			r.Delete("/{brandId}", controllers.DeleteBrand(svcs.Brands, logg))
		})

		r.Route("/customer-types", func(r chi.Router) {
			r.Get("/", controllers.ListCustomerTypes(svcs.CustomerTypes, logg))
			r.Post("/", controllers.CreateCustomerType(svcs.CustomerTypes, logg))
			r.Get("/{typeId}", controllers.GetCustomerType(svcs.CustomerTypes, logg))
			r.Patch("/{typeId}", controllers.UpdateCustomerType(svcs.CustomerTypes, logg))
			r.Delete("/{typeId}", controllers.DeleteCustomerType(svcs.CustomerTypes, logg))
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", controllers.ListQuotes(svcs.Quotes, logg))
			r.Post("/", controllers.CreateQuote(svcs.Quotes, logg))
			r.Get("/{quoteId}", controllers.GetQuote(svcs.Quotes, logg))
			r.Patch("/{quoteId}/status", controllers.UpdateQuoteStatus(svcs.Quotes, logg))
			r.Delete("/{quoteId}", controllers.DeleteQuote(svcs.Quotes, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/dashboard", controllers.AnalyticsDashboard(svcs.Analytics, logg))
			r.Get("/revenue-trend", controllers.AnalyticsRevenueTrend(svcs.Analytics, logg))
			r.Get("/top-brands", controllers.AnalyticsTopBrands(svcs.Analytics, logg))
		})
	})

	return r
}
