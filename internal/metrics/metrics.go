package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "writeq_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "writeq_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "writeq_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Write dispatcher metrics
var (
	WritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "writeq_writes_total",
			Help: "Total number of write actions executed by the dispatcher",
		},
		[]string{"status"}, // "committed", "failed"
	)

	WriteBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "writeq_write_batch_size",
			Help:    "Number of write entries grouped into one transaction",
			Buckets: []float64{1, 2, 3, 5, 8, 10},
		},
	)

	WriteTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "writeq_write_transaction_duration_seconds",
			Help:    "Write transaction duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"outcome"}, // "commit", "rollback"
	)

	WriteRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "writeq_write_retries_total",
			Help: "Total number of write entries replayed after a failed batch",
		},
	)

	WriteBatchDegraded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "writeq_write_batch_degraded",
			Help: "Whether the dispatcher has permanently degraded to single-entry batches (1 = degraded)",
		},
	)

	WriteQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "writeq_write_queue_depth",
			Help: "Number of write entries waiting for the writer goroutine",
		},
	)

	CallbackQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "writeq_callback_queue_depth",
			Help: "Number of completion notifications waiting for delivery",
		},
	)

	CallbackErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "writeq_callback_errors_total",
			Help: "Total number of completion callbacks that panicked during delivery",
		},
	)
)

// Database and store metrics
var (
	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "writeq_db_connections_open",
			Help: "Number of acquired database connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "writeq_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)

	StoreRecordsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "writeq_store_records_total",
			Help: "Number of records currently in the store",
		},
	)

	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "writeq_store_operations_total",
			Help: "Total number of store operations",
		},
		[]string{"operation", "status"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "writeq_store_operation_duration_seconds",
			Help:    "Store operation duration in seconds, including queue wait for writes",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)
