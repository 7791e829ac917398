package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tokopos/terminal-api/api/controllers"
	"github.com/tokopos/terminal-api/api/middleware"
	authsvc "github.com/tokopos/terminal-api/internal/auth"
	cartsvc "github.com/tokopos/terminal-api/internal/cart"
	catalogsvc "github.com/tokopos/terminal-api/internal/catalog"
	checkoutsvc "github.com/tokopos/terminal-api/internal/checkout"
	"github.com/tokopos/terminal-api/internal/session"
	"github.com/tokopos/terminal-api/pkg/config"
	"github.com/tokopos/terminal-api/pkg/enums"
	"github.com/tokopos/terminal-api/pkg/logger"
	"github.com/tokopos/terminal-api/pkg/redis"
	"github.com/tokopos/terminal-api/pkg/upstream"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	upstreamClient *upstream.Client,
	sessions session.TerminalSessions,
	authService authsvc.Service,
	catalogService catalogsvc.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisClient, upstreamClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, cfg.Session.IdempotencyTTL, logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.CatalogProducts(catalogService, sessions, logg))
			r.Get("/categories", controllers.CatalogCategories(catalogService, sessions, logg))
			r.With(middleware.RequireRole(string(enums.RoleAdmin), logg)).
				Post("/refresh", controllers.CatalogRefresh(catalogService, sessions, logg))
		})

		r.Get("/tokos", controllers.TokoList(upstreamClient, sessions, logg))
		r.Get("/payment-methods", controllers.PaymentMethodList(upstreamClient, sessions, logg))

		r.Route("/session", func(r chi.Router) {
			r.Get("/preferences", controllers.SessionPreferences(sessions, logg))
			r.Put("/currency", controllers.SessionSetCurrency(sessions, logg))
			r.Get("/currency/watch", controllers.SessionWatchCurrency(sessions, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, sessions, logg))
			r.Put("/items", controllers.CartSetItem(cartService, sessions, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, sessions, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/settlement", controllers.CartSettlementPreview(cartService, sessions, logg))
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, sessions, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(upstreamClient, sessions, logg))
			r.Get("/{orderId}", controllers.OrderDetail(upstreamClient, sessions, logg))
		})
	})

	return r
}
