package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tasknest/tasknest/internal/instrumentation"
)

// HTTPServer exposes an MCP server over an HTTP transport, either SSE or
// streamable HTTP. Health endpoints and request metrics ride on the same
// listener.
type HTTPServer struct {
	mcpServer  *mcpserver.MCPServer
	httpServer *http.Server
	serverType string // "sse" or "streamable-http"
	health     *HealthChecker
	metrics    *instrumentation.Metrics
}

// NewHTTPServer creates an HTTP server for the given transport type.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, serverType string) (*HTTPServer, error) {
	switch serverType {
	case "sse", "streamable-http":
	default:
		return nil, fmt.Errorf("unsupported server type: %s", serverType)
	}

	return &HTTPServer{
		mcpServer:  mcpServer,
		serverType: serverType,
	}, nil
}

// SetHealthChecker registers a health checker whose endpoints are served
// alongside the MCP endpoints.
func (s *HTTPServer) SetHealthChecker(health *HealthChecker) {
	s.health = health
}

// SetMetrics enables HTTP request metrics for the MCP endpoints.
func (s *HTTPServer) SetMetrics(metrics *instrumentation.Metrics) {
	s.metrics = metrics
}

// Start starts the HTTP server on the given address. It blocks until the
// server stops.
func (s *HTTPServer) Start(addr string) error {
	mux := http.NewServeMux()

	if s.health != nil {
		s.health.RegisterHealthEndpoints(mux)
	}

	switch s.serverType {
	case "sse":
		sseServer := mcpserver.NewSSEServer(s.mcpServer,
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
		)

		mux.Handle("/sse", s.instrument("/sse", s.sessionTracked(sseServer)))
		mux.Handle("/message", s.instrument("/message", sseServer))

	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcpServer,
			mcpserver.WithEndpointPath("/mcp"),
		)

		mux.Handle("/mcp", s.instrument("/mcp", httpServer))

	default:
		return fmt.Errorf("unsupported server type: %s", s.serverType)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// SSE streams stay open for the whole client session, so a write
	// timeout would sever them mid-stream.
	if s.serverType == "streamable-http" {
		s.httpServer.WriteTimeout = 10 * time.Second
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// instrument wraps a handler with HTTP request metrics. Without metrics the
// handler is returned unchanged.
func (s *HTTPServer) instrument(path string, next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, path, recorder.status, time.Since(start))
	})
}

// sessionTracked counts the handler's in-flight requests as active sessions.
// Used for the SSE stream endpoint, where a request is a client session.
func (s *HTTPServer) sessionTracked(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveSessions(r.Context())
		defer s.metrics.DecrementActiveSessions(r.Context())
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush forwards flushes to the underlying writer so SSE streaming keeps
// working through the metrics wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
