package middleware

import "context"

type contextKey string

const ctxBusinessID contextKey = "business_id"

// BusinessIDFromContext returns the active business identifier, or "" when
// none was attached.
func BusinessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxBusinessID).(string); ok {
		return v
	}
	return ""
}

// WithBusinessID injects the business identifier into the context.
func WithBusinessID(ctx context.Context, businessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxBusinessID, businessID)
}
