// Command writeq-bench floods a writeq database with concurrent producers
// to measure write throughput through the dispatcher.
//
// Each producer goroutine submits writes through the queue and blocks on a
// SynchronousWriter for the committed outcome, mirroring how application
// code uses the storage layer. The pool size defaults to twice the CPU
// count and can be overridden with -workers or WRITEQ_WORKERS.
package main
