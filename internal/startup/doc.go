// Package startup handles configuration loading and startup logging for
// the writeq storage service.
//
// Configuration comes from environment variables with sensible defaults;
// build information is injected at link time via -ldflags.
package startup
