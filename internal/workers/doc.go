// Package workers sizes worker pools relative to the available CPUs.
//
// The write path itself is single-threaded by design, but producers of
// writes (bulk loaders, the bench tool) fan out across goroutines; this
// package picks a sensible pool size that respects container CPU limits.
package workers
