package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/quotewise/intake-api/internal/config"
	"go.uber.org/zap"
)

// CORS returns a CORS middleware configured from the application config.
// The wizard widget lives on contractor sites, so cross-origin requests are
// the normal case rather than the exception.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	if len(cfg.AllowedOrigins) > 0 {
		// Check if wildcard is specified
		for _, origin := range cfg.AllowedOrigins {
			if origin == "*" {
				// Wildcard mode. Expected here: the widget is embedded on
				// arbitrary contractor domains, so the explicit list is only
				// used when a deployment pins its contractors.
				options.AllowOriginFunc = func(r *http.Request, origin string) bool {
					return origin != ""
				}
				break
			}
		}

		// If no wildcard, use the explicit list
		if options.AllowOriginFunc == nil {
			options.AllowedOrigins = cfg.AllowedOrigins
			logger.Info("CORS configured with explicit origins",
				zap.Strings("origins", cfg.AllowedOrigins))
		}
	} else {
		// No origins configured: allow any non-empty origin. Per-contractor
		// origin checks happen at the widget-token layer instead.
		options.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return origin != ""
		}
		if environment != "development" && environment != "local" && environment != "" {
			logger.Info("CORS allowing all origins; widget tokens carry per-contractor origin checks",
				zap.String("environment", environment))
		}
	}

	return cors.Handler(options)
}
