package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// ErrorHandler maps tenant resolution failures to HTTP responses.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	errorHandler ErrorHandler
	skipPaths    []string
	log          *slog.Logger
}

// MiddlewareOption configures the tenant middleware.
type MiddlewareOption func(*middlewareConfig)

// WithErrorHandler replaces the default error responder.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithSkipPaths exempts path prefixes (health, metrics) from tenant
// resolution.
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithMiddlewareLogger sets the logger for resolution failures.
func WithMiddlewareLogger(log *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// Middleware resolves the tenant for each request and validates it against
// the registry before the handler runs.
//
// Failure modes, all answered with 403 and a deliberately generic body so
// that probing requests cannot enumerate tenants:
//   - no source yields an identifier (ErrMissingTenant)
//   - the identifier is not registered (ErrUnknownTenant)
//   - the authenticated principal belongs to a different tenant
//     (ErrTenantMismatch)
//
// On success the tenant id is attached to the request context for handlers,
// the pool, and log records.
func Middleware(resolver Resolver, registry *Registry, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		errorHandler: defaultErrorHandler,
		log:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			id, err := resolver.Resolve(r)
			if err != nil {
				cfg.log.ErrorContext(r.Context(), "tenant resolution failed", "error", err)
				cfg.errorHandler(w, r, err)
				return
			}
			if id == "" {
				cfg.errorHandler(w, r, ErrMissingTenant)
				return
			}

			if !registry.Has(id) {
				cfg.log.WarnContext(r.Context(), "request for unknown tenant", "tenant_id", id)
				cfg.errorHandler(w, r, ErrUnknownTenant)
				return
			}

			if p, ok := PrincipalFromContext(r.Context()); ok && p.TenantID != "" && p.TenantID != id {
				cfg.log.WarnContext(r.Context(), "tenant claim mismatch",
					"resolved", id, "claimed", p.TenantID, "user_id", p.UserID)
				cfg.errorHandler(w, r, ErrTenantMismatch)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenantID(r.Context(), id)))
		})
	}
}

// RequireTenant guards routes that must only run with a tenant in context.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := TenantIDFromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// defaultErrorHandler answers every tenant resolution failure with 403 and
// no detail. Internal errors (resolver failures) map to 500.
func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrMissingTenant),
		errors.Is(err, ErrUnknownTenant),
		errors.Is(err, ErrTenantMismatch),
		errors.Is(err, ErrNoTenantInContext):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
