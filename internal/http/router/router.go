package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quotewise/intake-api/internal/auth"
	"github.com/quotewise/intake-api/internal/config"
	"github.com/quotewise/intake-api/internal/database"
	"github.com/quotewise/intake-api/internal/http/handler"
	"github.com/quotewise/intake-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/quotewise/intake-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	sessionHandler *handler.SessionHandler
	photoHandler   *handler.PhotoHandler
	catalogHandler *handler.CatalogHandler
	leadHandler    *handler.LeadHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	sessionHandler *handler.SessionHandler,
	photoHandler *handler.PhotoHandler,
	catalogHandler *handler.CatalogHandler,
	leadHandler *handler.LeadHandler,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		sessionHandler: sessionHandler,
		photoHandler:   photoHandler,
		catalogHandler: catalogHandler,
		leadHandler:    leadHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.authMiddleware.WidgetToken)
	r.Use(rt.rateLimiter.Limit)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats":   stats,
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := http.StatusOK
		overall := "healthy"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": overall,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Widget-facing routes. Widget tokens are optional; the wizard
		// requires a contractor id before any lead is created.
		r.Get("/catalog", rt.catalogHandler.List)

		r.Post("/photos", rt.photoHandler.Upload)
		r.Get("/photos/*", rt.photoHandler.Serve)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", rt.sessionHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", rt.sessionHandler.Get)
				r.Delete("/", rt.sessionHandler.Delete)
				r.Post("/photos", rt.sessionHandler.SubmitPhotos)
				r.Post("/description", rt.sessionHandler.SubmitDescription)
				r.Post("/category", rt.sessionHandler.SelectCategory)
				r.Post("/questions", rt.sessionHandler.CompleteQuestions)
				r.Post("/contact", rt.sessionHandler.SubmitContact)
				r.Post("/skip", rt.sessionHandler.Skip)
			})
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireAPIKey)

			r.Route("/leads", func(r chi.Router) {
				r.Get("/", rt.leadHandler.List)
				r.Get("/{id}", rt.leadHandler.GetByID)
			})
		})
	})

	return r
}
