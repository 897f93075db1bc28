package auth

import (
	"context"

	"github.com/quotewise/intake-api/internal/domain"
)

// WidgetContext holds the authenticated widget identity for a request
type WidgetContext struct {
	ContractorID string
	// Origin is the site the widget token was issued for, when present
	Origin string
}

type contextKey string

const widgetContextKey contextKey = "widgetContext"

// WithWidgetContext adds widget context to the context
func WithWidgetContext(ctx context.Context, wc *WidgetContext) context.Context {
	return context.WithValue(ctx, widgetContextKey, wc)
}

// FromContext extracts widget context from the context
func FromContext(ctx context.Context) (*WidgetContext, bool) {
	wc, ok := ctx.Value(widgetContextKey).(*WidgetContext)
	return wc, ok
}

// EstimateConfigFromContext builds the per-session estimate configuration from
// the widget context, if one is present.
func EstimateConfigFromContext(ctx context.Context) (domain.EstimateConfig, bool) {
	wc, ok := FromContext(ctx)
	if !ok || wc.ContractorID == "" {
		return domain.EstimateConfig{}, false
	}
	return domain.EstimateConfig{ContractorID: wc.ContractorID}, true
}
