package tenant

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config locates the tenant catalog sources.
type Config struct {
	CatalogPath string `env:"TENANT_CATALOG_PATH"` // CatalogPath is an optional YAML catalog of tenants loaded at startup.
	URLTemplate string `env:"DATABASE_URL"`        // URLTemplate is the default connection string; a "{tenant}" placeholder is expanded per tenant.
}

// envSuffix marks environment variables carrying per-tenant connection URIs,
// e.g. TENANT_ACME_DB_URL registers tenant "acme".
const (
	envPrefix = "TENANT_"
	envSuffix = "_DB_URL"
)

// Registry is the in-memory catalog of known tenants. It maps tenant
// identifiers to database connection URIs and is safe for concurrent use.
// Entries exist independently of live connections; the Pool creates clients
// lazily from registry entries.
type Registry struct {
	mu      sync.RWMutex
	tenants map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tenants: make(map[string]string)}
}

// Register inserts or overwrites the mapping for id. Last write wins.
func (r *Registry) Register(id, databaseURL string) error {
	if !ValidID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if databaseURL == "" {
		return errors.New("tenant: empty database url")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants[id] = databaseURL
	return nil
}

// Unregister removes the mapping for id. Removing an absent tenant is a
// no-op. Callers that may hold a live client should go through
// Pool.Unregister, which disconnects first.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tenants, id)
}

// Lookup returns the connection URI for id.
func (r *Registry) Lookup(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uri, ok := r.tenants[id]
	return uri, ok
}

// Has reports whether id is a known tenant.
func (r *Registry) Has(id string) bool {
	_, ok := r.Lookup(id)
	return ok
}

// List returns all known tenant identifiers in unspecified order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.tenants))
	for id := range r.tenants {
		ids = append(ids, id)
	}
	return ids
}

// catalog is the YAML shape of a tenant catalog file.
type catalog struct {
	Tenants []Record `yaml:"tenants"`
}

// LoadFile merges a YAML tenant catalog into the registry. Entries already
// registered are overwritten.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tenant: read catalog: %w", err)
	}

	var cat catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return fmt.Errorf("tenant: parse catalog: %w", err)
	}

	for _, rec := range cat.Tenants {
		if err := r.Register(rec.ID, rec.DatabaseURL); err != nil {
			return fmt.Errorf("tenant: catalog entry %q: %w", rec.ID, err)
		}
	}
	return nil
}

// LoadEnv scans the process environment for TENANT_<NAME>_DB_URL variables
// and registers each as tenant <name> (lowercased). Returns the number of
// tenants registered; malformed names are skipped.
func (r *Registry) LoadEnv() int {
	count := 0
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		if !strings.HasPrefix(key, envPrefix) || !strings.HasSuffix(key, envSuffix) {
			continue
		}

		name := strings.TrimSuffix(strings.TrimPrefix(key, envPrefix), envSuffix)
		id := strings.ToLower(strings.ReplaceAll(name, "_", "-"))
		if r.Register(id, value) == nil {
			count++
		}
	}
	return count
}

// ExpandTemplate substitutes the tenant identifier into a connection URL
// template. Used when tenants are provisioned against a shared database
// server with one database per tenant.
func ExpandTemplate(template, id string) string {
	return strings.ReplaceAll(template, "{tenant}", id)
}
