// Package redis opens go-redis/v9 clients with retry and healthcheck
// helpers.
//
// Redis is optional in this module: it backs the CSRF session store when the
// service runs with more than one replica, where the in-memory store would
// fragment sessions across processes.
package redis
