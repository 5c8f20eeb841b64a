package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Write dispatcher ---
	for _, status := range []string{"committed", "failed"} {
		WritesTotal.WithLabelValues(status)
	}
	for _, outcome := range []string{"commit", "rollback"} {
		WriteTransactionDuration.WithLabelValues(outcome)
	}
	WriteBatchDegraded.Set(0)

	// --- Database files ---
	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}

	// --- Store operations ---
	for _, op := range []string{"put", "put_many", "get", "delete", "keys", "count"} {
		StoreOperationsTotal.WithLabelValues(op, "success")
		StoreOperationsTotal.WithLabelValues(op, "error")
	}
}
