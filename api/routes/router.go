package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/api/controllers"
	ordercontrollers "github.com/MoxiumTech/EcoReactAdmin-sub001/api/controllers/orders"
	stockcontrollers "github.com/MoxiumTech/EcoReactAdmin-sub001/api/controllers/stock"
	storefrontcontrollers "github.com/MoxiumTech/EcoReactAdmin-sub001/api/controllers/storefront"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/api/middleware"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/authz"
	checkoutsvc "github.com/MoxiumTech/EcoReactAdmin-sub001/internal/checkout"
	ordersvc "github.com/MoxiumTech/EcoReactAdmin-sub001/internal/orders"
	stocksvc "github.com/MoxiumTech/EcoReactAdmin-sub001/internal/stock"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/auth/session"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/config"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/logger"
)

// Deps collects everything the router wires into handlers.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         db.Pinger
	Redis      db.Pinger
	Sessions   session.AccessSessionChecker
	Authorizer authz.Authorizer
	Orders     ordersvc.Service
	Stock      stocksvc.Service
	Checkout   checkoutsvc.Service
	Registry   *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/stores/{storeId}", func(r chi.Router) {
			r.Route("/orders/{orderId}", func(r chi.Router) {
				r.Get("/", ordercontrollers.Detail(deps.Orders, deps.Authorizer, logg))
				r.Patch("/status", ordercontrollers.Transition(deps.Orders, deps.Authorizer, logg))
				r.Get("/status-history", ordercontrollers.StatusHistory(deps.Orders, deps.Authorizer, logg))
			})
			r.Route("/stock-movements", func(r chi.Router) {
				r.Get("/", stockcontrollers.ListMovements(deps.Stock, deps.Authorizer, logg))
				r.Post("/", stockcontrollers.Adjust(deps.Stock, deps.Authorizer, logg))
			})
		})

		r.Route("/storefront/{storeId}", func(r chi.Router) {
			r.Get("/cart", storefrontcontrollers.Cart(deps.Checkout, logg))
			r.Post("/checkout", storefrontcontrollers.Checkout(deps.Checkout, logg))
			r.Get("/checkout", storefrontcontrollers.Orders(deps.Orders, logg))
		})
	})

	return r
}
