package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"propradar/internal/api/handlers"
	apimiddleware "propradar/internal/api/middleware"
	"propradar/internal/config"
	"propradar/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	redis    *redis.Client
	logger   *logger.Logger
}

// NewRouter creates a new Router instance. The redis client is nil when
// the Redis backend is not in use; rate limiting is skipped then.
func NewRouter(cfg config.Config, h *handlers.Handlers, rdb *redis.Client, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		redis:    rdb,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting
	if r.config.RateLimit.Enabled && r.redis != nil {
		router.Use(apimiddleware.RateLimiter(r.redis, r.config.RateLimit))
	}

	// Public routes
	router.Group(func(pub chi.Router) {
		pub.Get("/health", r.handlers.Health.Health)
		pub.Get("/ready", r.handlers.Health.Ready)
	})

	// API v1 routes
	router.Route("/api/v1", func(api chi.Router) {
		api.Get("/stats", r.handlers.Stats.Stats)

		// Content scans
		api.Route("/scan", func(scan chi.Router) {
			scan.Post("/listing", r.handlers.Scan.ScanListing)
			scan.Post("/seller", r.handlers.Scan.ScanSeller)
			scan.Post("/document", r.handlers.Scan.ScanDocument)
		})
		api.Get("/rules", r.handlers.Scan.Rules)

		// Property records
		api.Route("/properties", func(prop chi.Router) {
			prop.Post("/check", r.handlers.Property.Check)

			prop.Route("/{propertyID}", func(p chi.Router) {
				p.Get("/", r.handlers.Property.Get)

				p.Get("/listings", r.handlers.Property.Listings)
				p.Post("/listings", r.handlers.Property.AddListing)

				p.Get("/reports", r.handlers.Property.Reports)
				p.Post("/reports", r.handlers.Property.AddReport)
				p.Post("/reports/{reportID}/verify", r.handlers.Property.VerifyReport)

				p.Get("/alerts", r.handlers.Alerts.ByProperty)
			})
		})

		// Community alerts
		api.Route("/alerts", func(alerts chi.Router) {
			alerts.Post("/", r.handlers.Alerts.Create)
			alerts.Post("/{alertID}/vote", r.handlers.Alerts.Vote)
			alerts.Post("/{alertID}/deactivate", r.handlers.Alerts.Deactivate)
		})

		// Property watches
		api.Route("/watches", func(watches chi.Router) {
			watches.Put("/", r.handlers.Alerts.Watch)
			watches.Get("/{userID}", r.handlers.Alerts.Watches)
			watches.Delete("/{userID}/{propertyID}", r.handlers.Alerts.Unwatch)
		})
	})

	return router
}
