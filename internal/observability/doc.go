// Package observability builds the service's zap logger and OpenTelemetry
// tracer provider from configuration.
//
// Request spans are started by otelhttp at the router and on the pizza
// factory client. TraceFields lets log lines carry the ids of the active span.
package observability
