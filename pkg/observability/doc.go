// Package observability turns session lifecycle events into Prometheus metrics
// and structured log lines.
package observability
