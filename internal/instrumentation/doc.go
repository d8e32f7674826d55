// Package instrumentation provides OpenTelemetry instrumentation for the
// tasknest MCP server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, MCP tool calls, and Trello API calls
//   - Distributed tracing for request flows and API calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - active_sessions: Gauge of active client sessions
//
// Trello API Metrics:
//   - trello_api_operations_total: Counter of Trello API operations by operation, status
//   - trello_api_operation_duration_seconds: Histogram of Trello API operation durations
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - MCP tool invocations (tool.<name>)
//   - Trello API calls (trello.<operation>)
//
// # Configuration
//
// Configuration is read from environment variables:
//   - INSTRUMENTATION_ENABLED: enable/disable all instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP collector endpoint
//   - OTEL_TRACES_SAMPLER_ARG: trace sampling rate (default: 0.1)
//
// # Audit Logging
//
// Every tool invocation is recorded through AuditLogger with a unique
// invocation ID, tool name, target board/card, duration, and outcome.
package instrumentation
