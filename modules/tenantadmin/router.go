// Package tenantadmin exposes the tenant catalog and connection pool over an
// internal admin API: listing tenants, registering and provisioning new
// ones, unregistering, and per-tenant connectivity health. Mount it behind
// operator authentication; unlike the public tenant guard it reports precise
// errors.
package tenantadmin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/Symple44/TopSteel-sub029/pkg/pg"
	"github.com/Symple44/TopSteel-sub029/pkg/tenant"
)

// Handler serves the tenant administration API.
type Handler struct {
	pool        *tenant.Pool
	urlTemplate string
	log         *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger for admin operations.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithURLTemplate sets the connection URL template used when a registration
// request omits database_url. A "{tenant}" placeholder is expanded with the
// tenant identifier.
func WithURLTemplate(template string) Option {
	return func(h *Handler) {
		h.urlTemplate = template
	}
}

// New creates the admin handler over a tenant pool.
func New(pool *tenant.Pool, opts ...Option) *Handler {
	h := &Handler{
		pool: pool,
		log:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle returns the admin router.
//
//	r.Mount("/admin/tenants", tenantadmin.New(pool).Handle())
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.list)
	r.Post("/", h.register)
	r.Delete("/{id}", h.unregister)
	r.Get("/{id}/health", h.health)

	return r
}

type tenantInfo struct {
	ID        string `json:"id"`
	Connected bool   `json:"connected"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ids := h.pool.Registry().List()
	slices.Sort(ids)

	infos := make([]tenantInfo, 0, len(ids))
	for _, id := range ids {
		infos = append(infos, tenantInfo{ID: id, Connected: h.pool.IsConnected(id)})
	}
	respond(w, http.StatusOK, map[string]any{"tenants": infos})
}

type registerRequest struct {
	ID          string `json:"id"`
	DatabaseURL string `json:"database_url"`
	Provision   bool   `json:"provision"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	uri := req.DatabaseURL
	if uri == "" && h.urlTemplate != "" {
		uri = tenant.ExpandTemplate(h.urlTemplate, req.ID)
	}

	if err := h.pool.Registry().Register(req.ID, uri); err != nil {
		if errors.Is(err, tenant.ErrInvalidID) {
			respondError(w, http.StatusUnprocessableEntity, "invalid tenant id")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.InfoContext(r.Context(), "tenant registered", "tenant_id", req.ID)

	provisioned := false
	if req.Provision {
		if err := h.pool.Provision(r.Context(), req.ID); err != nil {
			h.log.ErrorContext(r.Context(), "tenant provisioning failed",
				"tenant_id", req.ID, "error", err)
			// Registration stands; the operator can retry provisioning.
			respondError(w, http.StatusBadGateway, "tenant registered but provisioning failed")
			return
		}
		provisioned = true
	}

	respond(w, http.StatusCreated, map[string]any{
		"id":          req.ID,
		"provisioned": provisioned,
	})
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.pool.Registry().Has(id) {
		respondError(w, http.StatusNotFound, "unknown tenant")
		return
	}

	h.pool.Unregister(r.Context(), id)
	h.log.InfoContext(r.Context(), "tenant unregistered", "tenant_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.pool.Registry().Has(id) {
		respondError(w, http.StatusNotFound, "unknown tenant")
		return
	}

	client, err := h.pool.Client(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusBadGateway, "tenant database unreachable")
		return
	}

	if err := pg.Healthcheck(client)(r.Context()); err != nil {
		respond(w, http.StatusServiceUnavailable, map[string]any{
			"id":     id,
			"status": "unhealthy",
		})
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"id":     id,
		"status": "ok",
	})
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}
