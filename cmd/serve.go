package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/tasknest/tasknest/internal/board"
	"github.com/tasknest/tasknest/internal/instrumentation"
	"github.com/tasknest/tasknest/internal/logging"
	"github.com/tasknest/tasknest/internal/server"
	"github.com/tasknest/tasknest/internal/tools/task_tools"
	"github.com/tasknest/tasknest/internal/trello"
)

const (
	// DefaultHost is the bind host when neither --http-addr nor HOST is set.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the bind port when neither --http-addr nor PORT is set.
	DefaultPort = "8050"

	// DefaultTransport is used when neither --transport nor TRANSPORT is set.
	DefaultTransport = "sse"
)

// TrelloConfig holds the credentials and board identity read from the
// environment at startup.
type TrelloConfig struct {
	Key       string
	Token     string
	BoardName string
	Lists     board.ListNames
}

// MetricsConfig holds the metrics server settings.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

// loadTrelloConfig reads the required Trello settings from the environment.
// A missing variable is a configuration error; the server must not start
// without credentials and a board to operate on.
func loadTrelloConfig() (TrelloConfig, error) {
	config := TrelloConfig{
		Key:       os.Getenv("TRELLO_API_KEY"),
		Token:     os.Getenv("TRELLO_API_TOKEN"),
		BoardName: os.Getenv("TRELLO_BOARD_NAME"),
		Lists:     board.DefaultListNames(),
	}

	var missing []string
	if config.Key == "" {
		missing = append(missing, "TRELLO_API_KEY")
	}
	if config.Token == "" {
		missing = append(missing, "TRELLO_API_TOKEN")
	}
	if config.BoardName == "" {
		missing = append(missing, "TRELLO_BOARD_NAME")
	}
	if len(missing) > 0 {
		return TrelloConfig{}, fmt.Errorf("missing required environment variables: %v", missing)
	}

	return config, nil
}

// resolveHTTPAddr determines the HTTP bind address. An explicit flag value
// wins; otherwise HOST and PORT from the environment fill in, falling back
// to 127.0.0.1:8050.
func resolveHTTPAddr(flagAddr string) string {
	if flagAddr != "" {
		return flagAddr
	}

	host := os.Getenv("HOST")
	if host == "" {
		host = DefaultHost
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = DefaultPort
	}
	return net.JoinHostPort(host, port)
}

func newServeCmd() *cobra.Command {
	var (
		debugMode bool
		transport string
		httpAddr  string
		todoList  string
		wipList   string
		doneList  string
		// Metrics server configuration
		metricsEnabled bool
		metricsAddr    string
	)

	defaults := board.DefaultListNames()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Trello-backed
task management tools for AI assistants.

Supports multiple transport types:
  - sse: Server-Sent Events over HTTP (default)
  - streamable-http: Streamable HTTP transport
  - stdio: Standard input/output

Configuration:
  Required environment variables:
    TRELLO_API_KEY     Trello API key
    TRELLO_API_TOKEN   Trello API token
    TRELLO_BOARD_NAME  Name of the board to manage

  HTTP transports bind to HOST:PORT (default 127.0.0.1:8050); --http-addr
  overrides both. The transport can also be set via the TRANSPORT env var.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Environment only applies when the flag was not set explicitly
			if !cmd.Flags().Changed("transport") {
				if env := os.Getenv("TRANSPORT"); env != "" {
					transport = env
				}
			}

			lists := board.ListNames{
				Todo:       todoList,
				InProgress: wipList,
				Done:       doneList,
			}

			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}

			return runServe(transport, debugMode, resolveHTTPAddr(httpAddr), lists, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", DefaultTransport, "Transport type: sse, streamable-http or stdio. Can also use TRANSPORT env var.")
	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "HTTP server address (for sse and streamable-http transports). Defaults to HOST:PORT env vars or 127.0.0.1:8050.")
	cmd.Flags().StringVar(&todoList, "todo-list", defaults.Todo, "Name of the list holding pending tasks")
	cmd.Flags().StringVar(&wipList, "wip-list", defaults.InProgress, "Name of the list holding in-progress tasks")
	cmd.Flags().StringVar(&doneList, "done-list", defaults.Done, "Name of the list holding completed tasks")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(transport string, debugMode bool, httpAddr string, lists board.ListNames, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if debugMode {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	logger := logging.DefaultLogger()

	// Load metrics config from environment if not set via flags
	if !metricsConfig.Enabled {
		if os.Getenv("METRICS_ENABLED") == "true" {
			metricsConfig.Enabled = true
		}
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	// Configuration problems are fatal; nothing starts without credentials
	// and a board name.
	trelloConfig, err := loadTrelloConfig()
	if err != nil {
		return err
	}
	logger.Debug("loaded trello configuration",
		logging.Board(trelloConfig.BoardName),
		"api_key", logging.SanitizeToken(trelloConfig.Key),
		"api_token", logging.SanitizeToken(trelloConfig.Token))

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if transport != "stdio" {
				logger.Error("instrumentation shutdown failed", logging.Err(err))
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		// Wait for metrics server to be ready or fail
		select {
		case <-metricsReady:
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	client, err := trello.NewClient(trelloConfig.Key, trelloConfig.Token)
	if err != nil {
		return fmt.Errorf("failed to create Trello client: %w", err)
	}
	resolver := board.NewResolver(client, trelloConfig.BoardName, lists)

	// Resolve the board up front. A missing board is a configuration
	// problem and should fail startup, not the first tool call; resolving
	// here also lets the readiness endpoint report a board that was
	// actually found.
	if _, err := resolver.BoardID(shutdownCtx); err != nil {
		return fmt.Errorf("failed to resolve board %q: %w", trelloConfig.BoardName, err)
	}

	// Create server context with instrumentation and audit logging
	serverContext, err := server.NewServerContext(shutdownCtx, server.Config{
		Client:   client,
		Resolver: resolver,
		Provider: provider,
		Audit:    instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging),
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if transport != "stdio" {
				logger.Error("server context shutdown failed", logging.Err(err))
			}
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("tasknest", version,
		mcpserver.WithToolCapabilities(true),
	)

	// Register all task management tools
	if err := task_tools.RegisterTaskTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	// Start the appropriate server based on transport type
	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "sse", "streamable-http":
		return runHTTPServer(mcpSrv, serverContext, transport, httpAddr, shutdownCtx, provider, metricsConfig)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: sse, streamable-http, stdio)", transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runHTTPServer(mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, transport, addr string, ctx context.Context, provider *instrumentation.Provider, metricsConfig MetricsConfig) error {
	httpSrv, err := server.NewHTTPServer(mcpSrv, transport)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	// Set up health checker for health check endpoints
	healthChecker := server.NewHealthChecker(serverContext)
	healthChecker.SetReady(true)
	httpSrv.SetHealthChecker(healthChecker)

	// Set up HTTP instrumentation for metrics
	if provider != nil && provider.Enabled() {
		httpSrv.SetMetrics(provider.Metrics())
	}

	fmt.Printf("Starting tasknest MCP server with %s transport on %s\n", transport, addr)
	switch transport {
	case "sse":
		fmt.Printf("  SSE endpoint: /sse\n")
		fmt.Printf("  Message endpoint: /message\n")
	case "streamable-http":
		fmt.Printf("  HTTP endpoint: /mcp\n")
	}
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	if metricsConfig.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", metricsConfig.Addr)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpSrv.Start(addr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}
