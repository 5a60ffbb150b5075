package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/assistant-tools/internal/browser"
	"github.com/teemow/assistant-tools/internal/caldav"
	"github.com/teemow/assistant-tools/internal/carddav"
	"github.com/teemow/assistant-tools/internal/credentials"
	"github.com/teemow/assistant-tools/internal/instrumentation"
	"github.com/teemow/assistant-tools/internal/logging"
	"github.com/teemow/assistant-tools/internal/resources"
	"github.com/teemow/assistant-tools/internal/server"
	"github.com/teemow/assistant-tools/internal/tools/browser_tools"
	"github.com/teemow/assistant-tools/internal/tools/dav_tools"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"

	metricsStartupTimeout = 5 * time.Second
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

type serveConfig struct {
	transport        string
	httpAddr         string
	disableStreaming bool
	maxConcurrency   int
	chromePath       string
	aliasesFile      string
	metrics          MetricsConfig
}

func newServeCmd() *cobra.Command {
	var cfg serveConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server that renders web pages in a
headless Chrome and returns their main content as Markdown.

Tools:
  - fetch_url:  fetch one page with title, author, date and description
  - fetch_urls: fetch several pages concurrently with a short digest each

When Fastmail credentials are set, the calendar and contacts tools are
registered as well.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadServeEnvVars(cmd, &cfg)
			logger := newLogger(cmd)

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return runServe(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&cfg.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&cfg.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&cfg.disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().IntVar(&cfg.maxConcurrency, "max-concurrency", server.DefaultMaxConcurrency, "Maximum number of pages fetch_urls loads at once. Can also use MAX_CONCURRENCY env var.")
	cmd.Flags().StringVar(&cfg.chromePath, "chrome-path", "", "Path to the Chrome binary (default: search the usual locations). Can also use CHROME_PATH env var.")
	cmd.Flags().StringVar(&cfg.aliasesFile, "aliases", "", "Calendar aliases YAML file. Can also use CALENDAR_ALIASES_FILE env var.")

	// Metrics server flags
	cmd.Flags().BoolVar(&cfg.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port (streamable-http only). Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&cfg.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// loadServeEnvVars fills in settings from the environment for flags that
// were not set explicitly.
func loadServeEnvVars(cmd *cobra.Command, cfg *serveConfig) {
	if !cmd.Flags().Changed("max-concurrency") {
		if v := getenv("MAX_CONCURRENCY"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				cfg.maxConcurrency = n
			}
		}
	}
	if !cmd.Flags().Changed("chrome-path") {
		if v := getenv("CHROME_PATH"); v != "" {
			cfg.chromePath = v
		}
	}
	if !cmd.Flags().Changed("metrics-enabled") {
		if v := getenv("METRICS_ENABLED"); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				cfg.metrics.Enabled = enabled
			}
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if v := getenv("METRICS_ADDR"); v != "" {
			cfg.metrics.Addr = v
		}
	}
}

func runServe(ctx context.Context, cfg serveConfig, logger *slog.Logger) error {
	if cfg.transport != transportStdio && cfg.transport != transportStreamableHTTP {
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.transport)
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	adapter := logging.NewSlogAdapter(logger)
	fetcher := browser.NewChromeFetcher(
		browser.WithExecPath(cfg.chromePath),
		browser.WithLogger(adapter),
		browser.WithMetrics(provider.Metrics()),
	)

	opts := []server.Option{
		server.WithLogger(adapter),
		server.WithMaxConcurrency(cfg.maxConcurrency),
	}
	davOpts, err := davSessionOptions(cfg.aliasesFile, adapter, provider.Metrics())
	if err != nil {
		return err
	}
	opts = append(opts, davOpts...)

	serverContext, err := server.NewServerContext(ctx, fetcher, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}

	mcpSrv, err := newMCPServer(serverContext)
	if err != nil {
		return err
	}

	switch cfg.transport {
	case transportStreamableHTTP:
		return runStreamableHTTPServer(ctx, mcpSrv, serverContext, cfg, provider, logger)
	default:
		return runStdioServer(mcpSrv)
	}
}

// davSessionOptions builds the calendar and contacts sessions for which
// credentials are present. Missing credentials only disable those tools.
func davSessionOptions(aliasesFile string, logger logging.Logger, metrics *instrumentation.Metrics) ([]server.Option, error) {
	var opts []server.Option

	if creds, err := credentials.ResolveCalDAV(getenv); err == nil {
		aliases, err := caldav.LoadAliases(aliasesPath(aliasesFile))
		if err != nil {
			return nil, err
		}
		opts = append(opts, server.WithCalendar(caldav.NewSession(creds,
			caldav.WithAliases(aliases),
			caldav.WithLogger(logger),
			caldav.WithMetrics(metrics),
		)))
	} else {
		logger.Debug("CalDAV credentials not available", logging.Err(err))
	}

	if creds, err := credentials.ResolveCardDAV(getenv); err == nil {
		opts = append(opts, server.WithContacts(carddav.NewSession(creds,
			carddav.WithLogger(logger),
			carddav.WithMetrics(metrics),
		)))
	} else {
		logger.Debug("CardDAV credentials not available", logging.Err(err))
	}

	return opts, nil
}

// newMCPServer creates the MCP server with every tool group and resource
// registered against sc.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("assistant-tools", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
		mcpserver.WithRecovery(),
	)

	type registration struct {
		name     string
		register func() error
	}

	registrations := []registration{
		{name: "Browser", register: func() error { return browser_tools.RegisterBrowserTools(mcpSrv, sc) }},
		{name: "DAV", register: func() error { return dav_tools.RegisterDAVTools(mcpSrv, sc) }},
		{name: "DAV Resources", register: func() error { return resources.RegisterDAVResources(mcpSrv, sc) }},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}
	return mcpSrv, nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, cfg serveConfig, provider *instrumentation.Provider, logger *slog.Logger) error {
	metricsServer, err := startMetricsServer(cfg.metrics, provider, logger)
	if err != nil {
		return err
	}
	if metricsServer != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	httpServer, err := server.NewHTTPServer(mcpSrv, cfg.disableStreaming)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}
	httpServer.SetHealthChecker(server.NewHealthChecker(sc))
	if provider.Enabled() {
		httpServer.SetMetrics(provider.Metrics())
	}

	fmt.Printf("Streamable HTTP server starting on %s\n", cfg.httpAddr)
	fmt.Printf("  HTTP endpoint: %s\n", server.MCPEndpoint)
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	if metricsServer != nil {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", metricsServer.Addr())
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(cfg.httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}

// startMetricsServer starts the Prometheus scrape endpoint and waits until
// it listens. It returns nil when metrics are disabled or not exported to
// Prometheus.
func startMetricsServer(cfg MetricsConfig, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	if !cfg.Enabled || !provider.Enabled() {
		return nil, nil
	}
	if provider.PrometheusHandler() == nil {
		logger.Info("metrics server not started: metrics exporter is not prometheus")
		return nil, nil
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    cfg.Addr,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("metrics server started", "addr", metricsServer.Addr())
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(metricsStartupTimeout):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}
