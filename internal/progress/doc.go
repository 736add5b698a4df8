// Package progress provides the event primitives, non-blocking hub, and
// emitter interfaces the pipeline uses to report batch progress. Events are
// delivered on a background goroutine and fanned out to pluggable sinks such
// as Prometheus metrics or the console.
package progress
