package tenant

import "errors"

var (
	// ErrMissingTenant is returned when no resolution source yields a tenant identifier.
	ErrMissingTenant = errors.New("tenant: no tenant identifier in request")

	// ErrUnknownTenant is returned when a resolved identifier has no registry entry.
	ErrUnknownTenant = errors.New("tenant: unknown tenant")

	// ErrTenantMismatch is returned when the authenticated principal's tenant
	// claim conflicts with the tenant resolved from the request. This is a
	// security boundary: a user of one tenant must never reach another
	// tenant's database by switching headers.
	ErrTenantMismatch = errors.New("tenant: principal tenant claim conflicts with resolved tenant")

	// ErrInvalidID is returned when an identifier does not satisfy ValidID.
	ErrInvalidID = errors.New("tenant: invalid tenant identifier")

	// ErrConnect is returned when the tenant's database client fails to connect.
	ErrConnect = errors.New("tenant: failed to connect tenant database")

	// ErrNoTenantInContext is returned when a handler requires a tenant but
	// the context carries none.
	ErrNoTenantInContext = errors.New("tenant: no tenant in context")
)
