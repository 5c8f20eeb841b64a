// Package store implements a simple keyed-record store on top of the
// database package's write queue.
//
// Every mutation is submitted as a queued write action, so the store never
// touches the write connection directly and multiple goroutines can mutate
// records concurrently without lock contention. Reads go through a single
// dedicated connection acquired at construction and released at Close.
//
// Bulk upserts are chunked using the probed SQLITE_MAX_VARIABLE_NUMBER so
// one statement never exceeds the library's bound-parameter limit.
package store
