// Package httpserver wraps net/http's server with environment-driven
// configuration and graceful shutdown.
//
// Run blocks until the context is canceled or SIGINT/SIGTERM arrives, then
// drains in-flight requests within the configured shutdown timeout. Stop
// hooks registered at construction run after the listener closes; the tenant
// pool registers its DisconnectAll there so every tenant database connection
// is released before the process exits.
package httpserver
