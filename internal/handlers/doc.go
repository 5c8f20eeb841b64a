// Package handlers implements the HTTP API of the writeq service:
// health and readiness probes, version info, key-value CRUD over the
// store, and service statistics.
package handlers
