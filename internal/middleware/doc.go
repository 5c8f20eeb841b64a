// Package middleware provides HTTP middleware for the writeq service:
// request logging and Prometheus metrics collection.
package middleware
