package tenant

import "context"

type ctxKey struct{}

// WithID devuelve un contexto que transporta el tenant activo.
func WithID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, tenantID)
}

// FromContext devuelve el tenant del contexto o "" si no hay.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
