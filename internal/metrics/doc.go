// Package metrics defines the Prometheus metrics exported by the writeq
// storage service.
//
// Metrics fall into three groups:
//   - HTTP metrics recorded by the middleware package
//   - Write dispatcher metrics recorded by the database package
//     (batch sizes, transaction outcomes, retries, queue depths)
//   - Store metrics (record counts, database file sizes)
//
// All metrics are registered with the default registry via promauto and
// exposed through promhttp. Call InitializeMetrics once at startup so
// that every label combination is present from the first scrape.
package metrics
