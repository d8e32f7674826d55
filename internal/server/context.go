package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/tasknest/tasknest/internal/board"
	"github.com/tasknest/tasknest/internal/instrumentation"
	"github.com/tasknest/tasknest/internal/trello"
)

// ServerContext holds the shared dependencies for the MCP server.
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	client   *trello.Client
	resolver *board.Resolver
	provider *instrumentation.Provider
	audit    *instrumentation.AuditLogger
	mu       sync.RWMutex
	shutdown bool
}

// Config holds the dependencies required to construct a ServerContext.
type Config struct {
	// Client is the Trello API client. Required.
	Client *trello.Client

	// Resolver resolves board and list identifiers. Required.
	Resolver *board.Resolver

	// Provider is the instrumentation provider. Optional; a disabled
	// provider is substituted when nil.
	Provider *instrumentation.Provider

	// Audit is the audit logger for tool invocations. Optional.
	Audit *instrumentation.AuditLogger
}

// NewServerContext creates a new server context with the given dependencies.
// All remote credentials must already be validated by the caller; the context
// never reads the environment itself.
func NewServerContext(ctx context.Context, config Config) (*ServerContext, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("trello client is required")
	}
	if config.Resolver == nil {
		return nil, fmt.Errorf("board resolver is required")
	}

	provider := config.Provider
	if provider == nil {
		var err error
		provider, err = instrumentation.NewProvider(ctx, instrumentation.Config{Enabled: false})
		if err != nil {
			return nil, fmt.Errorf("failed to create disabled instrumentation provider: %w", err)
		}
	}

	audit := config.Audit
	if audit == nil {
		audit = instrumentation.NewAuditLogger(nil)
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		client:   config.Client,
		resolver: config.Resolver,
		provider: provider,
		audit:    audit,
	}, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// TrelloClient returns the Trello API client.
func (sc *ServerContext) TrelloClient() *trello.Client {
	return sc.client
}

// Resolver returns the board and list resolver.
func (sc *ServerContext) Resolver() *board.Resolver {
	return sc.resolver
}

// Instrumentation returns the instrumentation provider.
func (sc *ServerContext) Instrumentation() *instrumentation.Provider {
	return sc.provider
}

// Metrics returns the metrics recorder.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.provider.Metrics()
}

// AuditLogger returns the audit logger for tool invocations.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
