// Package pg opens and maintains PostgreSQL connection pools with the pgx/v5
// driver.
//
// Unlike a typical single-database setup, this module connects to one
// database per tenant: Config carries only pool tuning and retry settings,
// and Connect takes the connection URI explicitly. The tenant package's pool
// calls Connect lazily the first time a tenant is used, and Migrate during
// tenant provisioning to bring a fresh tenant database up to the current
// schema (goose/v3).
//
// Error helpers (IsNotFound, IsDuplicateKey, IsForeignKeyViolation) classify
// driver errors so business code never matches on SQLSTATE strings directly.
package pg
