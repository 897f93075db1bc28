package domain

import "errors"

// Sentinel errors shared across the orchestrator boundary
var (
	// ErrContractorRequired is returned when a lead would be created without a
	// configured contractor id. Fails fast before any network call.
	ErrContractorRequired = errors.New("contractor id is required before an estimate can be requested")
	// ErrLeadNotFound is returned when a queried lead row does not exist
	ErrLeadNotFound = errors.New("lead not found")
	// ErrSessionNotFound is returned when a wizard session id is unknown or expired
	ErrSessionNotFound = errors.New("session not found")
)

// GatewayErrorKind classifies failures normalized at the gateway boundary
type GatewayErrorKind string

const (
	GatewayErrorKindNotFound  GatewayErrorKind = "not_found"
	GatewayErrorKindTransport GatewayErrorKind = "transport"
	GatewayErrorKindBackend   GatewayErrorKind = "backend"
)

// GatewayError is the fixed shape every gateway failure is normalized into
// before it reaches the orchestrator, so orchestrator-level error handling
// never branches on ad hoc backend shapes.
type GatewayError struct {
	Kind    GatewayErrorKind
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError normalizes an underlying error into a GatewayError
func NewGatewayError(kind GatewayErrorKind, message string, err error) *GatewayError {
	return &GatewayError{Kind: kind, Message: message, Err: err}
}

// APIError represents a standardized API error with HTTP status code
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// Common error types for RFC 7807 Problem Details
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeInternal     = "internal_error"
)

// ValidationMessages provides human-readable validation error messages
// These map validator tags to user-friendly messages
var ValidationMessages = map[string]string{
	"required": "This field is required",
	"email":    "Must be a valid email address",
	"max":      "Exceeds maximum length",
	"min":      "Below minimum length",
	"url":      "Must be a valid URL",
	"uuid":     "Must be a valid UUID",
	"oneof":    "Must be one of the allowed values",
	"dive":     "One or more entries are invalid",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}
