// Package tracing integrates OpenTelemetry with the review engine. Spans are
// opened around queue ticks, verification calls and approvals; when no
// provider is initialised they are no-ops.
package tracing
