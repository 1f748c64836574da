package tenant_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Symple44/TopSteel-sub029/pkg/tenant"
)

func newMiddlewareHandler(t *testing.T, opts ...tenant.MiddlewareOption) (http.Handler, *string) {
	t.Helper()

	registry := tenant.NewRegistry()
	require.NoError(t, registry.Register("acme", "postgres://db/acme"))

	var resolved string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resolved, _ = tenant.TenantIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	mw := tenant.Middleware(tenant.NewDefaultResolver(), registry, opts...)
	return mw(inner), &resolved
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("header resolves registered tenant", func(t *testing.T) {
		t.Parallel()

		handler, resolved := newMiddlewareHandler(t)

		r := httptest.NewRequest(http.MethodGet, "/orders", nil)
		r.Header.Set("X-Tenant-ID", "acme")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "acme", *resolved)
	})

	t.Run("subdomain resolves registered tenant", func(t *testing.T) {
		t.Parallel()

		handler, resolved := newMiddlewareHandler(t)

		r := httptest.NewRequest(http.MethodGet, "/orders", nil)
		r.Host = "acme.topsteel.example"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "acme", *resolved)
	})

	t.Run("missing tenant rejected with 403", func(t *testing.T) {
		t.Parallel()

		handler, resolved := newMiddlewareHandler(t)

		r := httptest.NewRequest(http.MethodGet, "/orders", nil)
		r.Host = "localhost:3000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, *resolved)
	})

	t.Run("unknown tenant rejected with 403 not 500", func(t *testing.T) {
		t.Parallel()

		handler, _ := newMiddlewareHandler(t)

		r := httptest.NewRequest(http.MethodGet, "/orders", nil)
		r.Host = "ghost.topsteel.example"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
		// The body must not reveal whether the tenant exists.
		assert.NotContains(t, w.Body.String(), "ghost")
	})

	t.Run("principal mismatch rejected with 403", func(t *testing.T) {
		t.Parallel()

		handler, _ := newMiddlewareHandler(t)

		r := httptest.NewRequest(http.MethodGet, "/orders", nil)
		r.Header.Set("X-Tenant-ID", "acme")
		ctx := tenant.WithPrincipal(r.Context(), tenant.Principal{
			UserID:   uuid.New(),
			TenantID: "globex",
		})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r.WithContext(ctx))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("matching principal passes", func(t *testing.T) {
		t.Parallel()

		handler, resolved := newMiddlewareHandler(t)

		r := httptest.NewRequest(http.MethodGet, "/orders", nil)
		r.Header.Set("X-Tenant-ID", "acme")
		ctx := tenant.WithPrincipal(r.Context(), tenant.Principal{
			UserID:   uuid.New(),
			TenantID: "acme",
		})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r.WithContext(ctx))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "acme", *resolved)
	})

	t.Run("skip paths bypass resolution", func(t *testing.T) {
		t.Parallel()

		handler, resolved := newMiddlewareHandler(t, tenant.WithSkipPaths("/health"))

		r := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		r.Host = "localhost:3000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, *resolved)
	})

	t.Run("custom error handler", func(t *testing.T) {
		t.Parallel()

		handler, _ := newMiddlewareHandler(t,
			tenant.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				w.WriteHeader(http.StatusTeapot)
			}))

		r := httptest.NewRequest(http.MethodGet, "/orders", nil)
		r.Host = "localhost:3000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusTeapot, w.Code)
	})
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := tenant.RequireTenant(nil)(inner)

	t.Run("rejects without tenant in context", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("passes with tenant in context", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = r.WithContext(tenant.WithTenantID(r.Context(), "acme"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
