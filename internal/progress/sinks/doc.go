// Package sinks implements concrete progress consumers such as Prometheus,
// console output, structured logging, and an in-memory snapshot store. Each
// sink satisfies the progress.Sink interface and is safe for repeated
// Consume/Close cycles.
package sinks
