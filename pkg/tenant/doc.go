// Package tenant implements the multi-tenant session layer: a registry of
// known tenants, a pool of per-tenant database clients, and HTTP middleware
// that resolves and validates the tenant for each request.
//
// # Architecture
//
// Three cooperating pieces:
//
//  1. Registry — the catalog mapping tenant identifiers to database
//     connection URIs, loaded from a YAML file, TENANT_*_DB_URL environment
//     variables, or runtime registration calls.
//  2. Pool — one lazily connected pgx pool per tenant. Concurrent first
//     accesses are collapsed through singleflight so a tenant never ends up
//     with two live clients; disconnects are fault-isolated so shutdown
//     always completes.
//  3. Middleware — resolves the tenant identifier from the request (header,
//     query parameter, principal claim, then subdomain), validates it
//     against the registry, rejects principal/tenant conflicts, and attaches
//     the id to the request context.
//
// # Usage
//
//	registry := tenant.NewRegistry()
//	registry.LoadEnv()
//
//	pool := tenant.NewPool(registry, pgCfg, tenant.WithPoolLogger(log))
//
//	mux.Use(tenant.Middleware(tenant.NewDefaultResolver(), registry,
//		tenant.WithSkipPaths("/health", "/metrics"),
//	))
//
//	// In a handler:
//	err := pool.WithTenant(r.Context(), tenant.MustTenantID(r.Context()),
//		func(ctx context.Context, db *pgxpool.Pool) error {
//			// query the tenant's database
//			return nil
//		})
//
// Requests for different tenants never share a connection; isolation is
// structural (separate map entries, separate pools), not policy-based.
package tenant
