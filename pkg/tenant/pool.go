package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Symple44/TopSteel-sub029/pkg/pg"
)

// ConnectFunc opens a database client for a connection URI. Swappable in
// tests so pool semantics can be exercised without a running server.
type ConnectFunc func(ctx context.Context, uri string) (*pgxpool.Pool, error)

// Pool owns one lazily created database client per tenant. Clients are
// long-lived and shared by every request for the same tenant; requests for
// different tenants never share a client.
//
// Per-tenant lifecycle: unconnected (registry entry only) -> connected
// (client in the map) -> unconnected again after Disconnect. Concurrent
// first accesses for one tenant are collapsed into a single connect through
// singleflight, so at most one client is ever live per tenant.
type Pool struct {
	registry *Registry
	connect  ConnectFunc
	log      *slog.Logger

	mu      sync.RWMutex
	clients map[string]*pgxpool.Pool
	flight  singleflight.Group

	pgCfg pg.Config
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithPoolLogger sets the logger used for connect and disconnect events.
func WithPoolLogger(log *slog.Logger) PoolOption {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

// WithConnectFunc replaces the client factory. Intended for tests.
func WithConnectFunc(fn ConnectFunc) PoolOption {
	return func(p *Pool) {
		if fn != nil {
			p.connect = fn
		}
	}
}

// NewPool creates a pool over the given registry. No connections are opened
// until the first Client call per tenant.
func NewPool(registry *Registry, pgCfg pg.Config, opts ...PoolOption) *Pool {
	p := &Pool{
		registry: registry,
		clients:  make(map[string]*pgxpool.Pool),
		log:      slog.New(slog.DiscardHandler),
		pgCfg:    pgCfg,
	}
	p.connect = func(ctx context.Context, uri string) (*pgxpool.Pool, error) {
		return pg.Connect(ctx, uri, p.pgCfg)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Client returns the tenant's database client, connecting lazily on first
// use. Returns ErrUnknownTenant when the registry has no entry for id, and
// ErrConnect (joined with the driver error) when the connect fails.
func (p *Pool) Client(ctx context.Context, id string) (*pgxpool.Pool, error) {
	p.mu.RLock()
	client, ok := p.clients[id]
	p.mu.RUnlock()
	if ok {
		return client, nil
	}

	// Collapse concurrent first accesses into one connect per tenant.
	v, err, _ := p.flight.Do(id, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have finished
		// connecting while we queued.
		p.mu.RLock()
		client, ok := p.clients[id]
		p.mu.RUnlock()
		if ok {
			return client, nil
		}

		uri, ok := p.registry.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTenant, id)
		}

		client, err := p.connect(ctx, uri)
		if err != nil {
			p.log.ErrorContext(ctx, "tenant database connect failed",
				"tenant_id", id, "error", err)
			return nil, errors.Join(ErrConnect, err)
		}

		p.mu.Lock()
		p.clients[id] = client
		p.mu.Unlock()

		p.log.InfoContext(ctx, "tenant database connected", "tenant_id", id)
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pgxpool.Pool), nil
}

// Disconnect closes the tenant's client and removes it from the pool. A
// tenant without a live client is a no-op. Close failures are logged, never
// propagated, so shutdown sequences cannot stall on one tenant.
func (p *Pool) Disconnect(ctx context.Context, id string) {
	p.mu.Lock()
	client, ok := p.clients[id]
	delete(p.clients, id)
	p.mu.Unlock()
	if !ok {
		return
	}

	p.closeClient(ctx, id, client)
}

// DisconnectAll closes every live client concurrently. Each disconnect is
// fault-isolated; the method always returns nil so lifecycle hooks can rely
// on it completing.
func (p *Pool) DisconnectAll(ctx context.Context) error {
	p.mu.Lock()
	clients := p.clients
	p.clients = make(map[string]*pgxpool.Pool)
	p.mu.Unlock()

	var g errgroup.Group
	for id, client := range clients {
		g.Go(func() error {
			p.closeClient(ctx, id, client)
			return nil
		})
	}
	_ = g.Wait()

	p.log.InfoContext(ctx, "all tenant databases disconnected", "count", len(clients))
	return nil
}

// closeClient closes one handle, absorbing panics from misbehaving drivers.
func (p *Pool) closeClient(ctx context.Context, id string, client *pgxpool.Pool) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.ErrorContext(ctx, "tenant database disconnect failed",
				"tenant_id", id, "panic", rec)
		}
	}()
	client.Close()
	p.log.InfoContext(ctx, "tenant database disconnected", "tenant_id", id)
}

// IsConnected reports whether the tenant currently has a live client.
func (p *Pool) IsConnected(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.clients[id]
	return ok
}

// ListConnected returns the tenants with live clients, in unspecified order.
func (p *Pool) ListConnected() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.clients))
	for id := range p.clients {
		ids = append(ids, id)
	}
	return ids
}

// WithTenant acquires (or lazily creates) the tenant's client and invokes fn
// with it. The client stays pool-owned and open afterwards. Errors from fn
// are logged with tenant context and returned unchanged.
func (p *Pool) WithTenant(ctx context.Context, id string, fn func(ctx context.Context, db *pgxpool.Pool) error) error {
	client, err := p.Client(ctx, id)
	if err != nil {
		return err
	}

	if err := fn(ctx, client); err != nil {
		p.log.ErrorContext(ctx, "tenant operation failed", "tenant_id", id, "error", err)
		return err
	}
	return nil
}

// WithTenantTransaction runs fn inside a transaction on the tenant's
// database. An error from fn rolls the transaction back and propagates.
func (p *Pool) WithTenantTransaction(ctx context.Context, id string, fn func(ctx context.Context, tx pgx.Tx) error) error {
	client, err := p.Client(ctx, id)
	if err != nil {
		return err
	}

	err = pgx.BeginFunc(ctx, client, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
	if err != nil {
		p.log.ErrorContext(ctx, "tenant transaction failed", "tenant_id", id, "error", err)
		return err
	}
	return nil
}

// Unregister disconnects the tenant's client, if any, then removes its
// registry entry. Idempotent.
func (p *Pool) Unregister(ctx context.Context, id string) {
	p.Disconnect(ctx, id)
	p.registry.Unregister(id)
}

// Provision connects to the tenant's database and applies schema migrations,
// bringing a freshly created tenant up to the current schema version.
func (p *Pool) Provision(ctx context.Context, id string) error {
	client, err := p.Client(ctx, id)
	if err != nil {
		return err
	}
	return pg.Migrate(ctx, client, p.pgCfg, p.log)
}

// Registry returns the registry backing this pool.
func (p *Pool) Registry() *Registry {
	return p.registry
}

// Close disconnects every tenant. Registered as a server stop hook.
func (p *Pool) Close(ctx context.Context) error {
	return p.DisconnectAll(ctx)
}
