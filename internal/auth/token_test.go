package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/quotewise/intake-api/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-widget-secret"

func TestTokenValidator_ValidateToken(t *testing.T) {
	validator := auth.NewTokenValidator(testSecret)

	t.Run("issue and validate roundtrip", func(t *testing.T) {
		token, err := auth.IssueToken(testSecret, "contractor-42", "https://contractor.example.com", time.Hour)
		require.NoError(t, err)

		wc, err := validator.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "contractor-42", wc.ContractorID)
		assert.Equal(t, "https://contractor.example.com", wc.Origin)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		token, err := auth.IssueToken("some-other-secret", "contractor-42", "", time.Hour)
		require.NoError(t, err)

		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token, err := auth.IssueToken(testSecret, "contractor-42", "", -time.Minute)
		require.NoError(t, err)

		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("rejects a token without contractorId", func(t *testing.T) {
		claims := jwt.MapClaims{
			"origin": "https://contractor.example.com",
			"exp":    time.Now().Add(time.Hour).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := validator.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestMiddleware_WidgetToken(t *testing.T) {
	mw := auth.NewMiddleware(testSecret, "", zap.NewNop())

	handler := mw.WidgetToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wc, ok := auth.FromContext(r.Context()); ok {
			w.Header().Set("X-Test-Contractor", wc.ContractorID)
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no token passes through without widget context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Test-Contractor"))
	})

	t.Run("valid token attaches widget context", func(t *testing.T) {
		token, err := auth.IssueToken(testSecret, "contractor-7", "", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "contractor-7", rec.Header().Get("X-Test-Contractor"))
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed authorization header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMiddleware_RequireAPIKey(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("matching key passes", func(t *testing.T) {
		mw := auth.NewMiddleware("", "admin-key", zap.NewNop())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("x-api-key", "admin-key")
		rec := httptest.NewRecorder()
		mw.RequireAPIKey(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong key is unauthorized", func(t *testing.T) {
		mw := auth.NewMiddleware("", "admin-key", zap.NewNop())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("x-api-key", "wrong")
		rec := httptest.NewRecorder()
		mw.RequireAPIKey(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unconfigured key is forbidden", func(t *testing.T) {
		mw := auth.NewMiddleware("", "", zap.NewNop())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("x-api-key", "anything")
		rec := httptest.NewRecorder()
		mw.RequireAPIKey(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
