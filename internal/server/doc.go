// Package server provides the shared runtime context for the MCP server,
// health check endpoints, and a dedicated Prometheus metrics server.
//
// ServerContext carries the Trello client, the board resolver, and the
// instrumentation provider through the tool handlers. HealthChecker exposes
// /healthz and /readyz; readiness requires the configured board to have
// been resolved. MetricsServer serves /metrics on its own port so
// operational data never mixes with client traffic.
package server
