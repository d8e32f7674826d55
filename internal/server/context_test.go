package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tasknest/tasknest/internal/board"
	"github.com/tasknest/tasknest/internal/trello"
)

func newTestContext(t *testing.T) *ServerContext {
	t.Helper()

	client, err := trello.NewClient("key", "token")
	if err != nil {
		t.Fatalf("failed to create trello client: %v", err)
	}
	resolver := board.NewResolver(client, "Work", board.DefaultListNames())

	sc, err := NewServerContext(context.Background(), Config{
		Client:   client,
		Resolver: resolver,
	})
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	return sc
}

func TestNewServerContext_RequiresDependencies(t *testing.T) {
	client, err := trello.NewClient("key", "token")
	if err != nil {
		t.Fatalf("failed to create trello client: %v", err)
	}
	resolver := board.NewResolver(client, "Work", board.DefaultListNames())

	if _, err := NewServerContext(context.Background(), Config{Resolver: resolver}); err == nil {
		t.Error("expected error for missing client")
	}

	if _, err := NewServerContext(context.Background(), Config{Client: client}); err == nil {
		t.Error("expected error for missing resolver")
	}
}

func TestServerContext_Accessors(t *testing.T) {
	sc := newTestContext(t)

	if sc.TrelloClient() == nil {
		t.Error("expected non-nil trello client")
	}
	if sc.Resolver() == nil {
		t.Error("expected non-nil resolver")
	}
	if sc.Instrumentation() == nil {
		t.Error("expected non-nil instrumentation provider")
	}
	if sc.Metrics() == nil {
		t.Error("expected non-nil metrics recorder")
	}
	if sc.AuditLogger() == nil {
		t.Error("expected non-nil audit logger")
	}
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestContext(t)

	if sc.IsShutdown() {
		t.Error("expected context not to start shut down")
	}

	if err := sc.Shutdown(); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	if !sc.IsShutdown() {
		t.Error("expected IsShutdown() to be true after Shutdown()")
	}

	select {
	case <-sc.Context().Done():
	default:
		t.Error("expected context to be cancelled after Shutdown()")
	}

	// Second shutdown is a no-op
	if err := sc.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

// newResolvedContext builds a server context whose resolver has already
// located its board against a stub API.
func newResolvedContext(t *testing.T) *ServerContext {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/members/me/boards", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]trello.Board{{ID: "b1", Name: "Work"}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := trello.NewClient("key", "token", trello.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("failed to create trello client: %v", err)
	}
	resolver := board.NewResolver(client, "Work", board.DefaultListNames())
	if _, err := resolver.BoardID(context.Background()); err != nil {
		t.Fatalf("BoardID() error = %v", err)
	}

	sc, err := NewServerContext(context.Background(), Config{
		Client:   client,
		Resolver: resolver,
	})
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	return sc
}

func TestHealthChecker_Liveness(t *testing.T) {
	h := NewHealthChecker(nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("liveness status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("liveness status field = %q, want %q", resp.Status, "ok")
	}
	if resp.Uptime == "" {
		t.Error("expected uptime to be set")
	}
}

func TestHealthChecker_Readiness(t *testing.T) {
	sc := newResolvedContext(t)
	h := NewHealthChecker(sc)

	// Not ready until the serve path marks it
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("initial readiness = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	h.SetReady(true)
	rec = httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("readiness status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Board != "Work" {
		t.Errorf("readiness board = %q, want %q", resp.Board, "Work")
	}
	if resp.Checks["board"] != "ok" {
		t.Errorf("board check = %q, want %q", resp.Checks["board"], "ok")
	}

	// Not ready after SetReady(false)
	h.SetReady(false)
	rec = httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	// Not ready after shutdown
	h.SetReady(true)
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	rec = httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness after shutdown = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHealthChecker_ReadinessUnresolvedBoard(t *testing.T) {
	sc := newTestContext(t)
	h := NewHealthChecker(sc)
	h.SetReady(true)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness with unresolved board = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Checks["board"] != "board not resolved" {
		t.Errorf("board check = %q, want %q", resp.Checks["board"], "board not resolved")
	}
}
