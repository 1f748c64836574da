package tenant

import (
	"context"
	"log/slog"
)

type tenantKey struct{}
type principalKey struct{}

// WithTenantID stores the resolved tenant identifier in the context.
func WithTenantID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tenantKey{}, id)
}

// TenantIDFromContext returns the tenant identifier stored by the middleware.
func TenantIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(tenantKey{}).(string)
	return id, ok && id != ""
}

// MustTenantID returns the tenant identifier or panics. Only for handlers
// mounted strictly behind the tenant middleware.
func MustTenantID(ctx context.Context) string {
	id, ok := TenantIDFromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return id
}

// WithPrincipal stores the authenticated principal in the context. Called by
// the authentication layer before tenant resolution.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// LoggerExtractor returns a logger context extractor injecting the tenant id
// into log records.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := TenantIDFromContext(ctx); ok {
			return slog.String("tenant_id", id), true
		}
		return slog.Attr{}, false
	}
}
