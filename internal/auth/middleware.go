package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware provides widget-token and API key authentication
type Middleware struct {
	validator   *TokenValidator
	adminAPIKey string
	logger      *zap.Logger
}

// NewMiddleware creates a new auth middleware. When widgetSecret is empty,
// widget-token validation is disabled and requests pass through without a
// widget context (the wizard then requires contractorId in the request body).
func NewMiddleware(widgetSecret string, adminAPIKey string, logger *zap.Logger) *Middleware {
	var validator *TokenValidator
	if widgetSecret != "" {
		validator = NewTokenValidator(widgetSecret)
	}
	return &Middleware{
		validator:   validator,
		adminAPIKey: adminAPIKey,
		logger:      logger,
	}
}

// WidgetToken extracts and validates an optional Bearer widget token. A
// missing token is not an error; an invalid one is rejected so a contractor
// misconfiguration is visible immediately rather than at lead creation.
func (m *Middleware) WidgetToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.validator == nil {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			http.Error(w, "invalid authorization header", http.StatusUnauthorized)
			return
		}

		wc, err := m.validator.ValidateToken(tokenString)
		if err != nil {
			m.logger.Warn("widget token rejected", zap.Error(err))
			http.Error(w, "invalid widget token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithWidgetContext(r.Context(), wc)))
	})
}

// RequireAPIKey guards admin endpoints with the x-api-key header
func (m *Middleware) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.adminAPIKey == "" {
			http.Error(w, "admin API not configured", http.StatusForbidden)
			return
		}
		if r.Header.Get("x-api-key") != m.adminAPIKey {
			http.Error(w, "invalid API key", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
