package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// WidgetClaims are the claims carried by a contractor widget token
type WidgetClaims struct {
	ContractorID string `json:"contractorId"`
	Origin       string `json:"origin,omitempty"`
	jwt.RegisteredClaims
}

// TokenValidator validates HS256 widget tokens issued to contractors
type TokenValidator struct {
	secret []byte
}

// NewTokenValidator creates a new widget token validator
func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

// ValidateToken validates a widget token and returns the widget context
func (v *TokenValidator) ValidateToken(tokenString string) (*WidgetContext, error) {
	claims := &WidgetClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.ContractorID == "" {
		return nil, fmt.Errorf("%w: missing contractorId claim", ErrInvalidToken)
	}

	return &WidgetContext{
		ContractorID: claims.ContractorID,
		Origin:       claims.Origin,
	}, nil
}

// IssueToken signs a widget token for a contractor. Used by provisioning
// tooling and tests; the API itself only validates.
func IssueToken(secret string, contractorID string, origin string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &WidgetClaims{
		ContractorID: contractorID,
		Origin:       origin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign widget token: %w", err)
	}
	return signed, nil
}
