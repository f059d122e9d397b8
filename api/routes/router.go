package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brooklynnepley/brookskitchen-backend/api/controllers"
	"github.com/brooklynnepley/brookskitchen-backend/api/middleware"
	cartsvc "github.com/brooklynnepley/brookskitchen-backend/internal/cart"
	"github.com/brooklynnepley/brookskitchen-backend/internal/catalog"
	checkoutsvc "github.com/brooklynnepley/brookskitchen-backend/internal/checkout"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/config"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/logger"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/metrics"
)

// Deps carries everything the router mounts.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics

	Catalog  catalog.Service
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CartSession(logg, cfg.Checkout.CartTTL))

		r.Get("/products", controllers.ListProducts(deps.Catalog, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutSubmit(deps.Checkout, logg))
			r.Post("/confirm", controllers.CheckoutConfirm(deps.Checkout, logg))
		})
	})

	return r
}
