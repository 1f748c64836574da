// Package requestid provides request correlation IDs: HTTP middleware that
// assigns one per request, context helpers to carry it, and a logger
// extractor that injects it into structured log records.
//
// Invalid or missing client-supplied IDs are silently replaced with a fresh
// UUIDv4; the package never returns errors.
package requestid
