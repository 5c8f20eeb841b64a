// Package database serializes all mutating operations against an embedded
// SQLite database onto one dedicated writer goroutine.
//
// SQLite disallows concurrent writers, so every mutation flows through a
// DatabaseContext as a queued write action. The write dispatcher batches
// independent actions into shared transactions for throughput and degrades
// to single-entry batches when a transaction fails, isolating the faulty
// action without losing its batch-mates. Completion callbacks are delivered
// on a separate goroutine so slow or panicking callback code cannot stall
// the writer.
//
// Read connections are acquired and released through the same context, which
// tracks every open connection and reports leaks at Close.
package database
