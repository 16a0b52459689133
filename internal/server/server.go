package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hjsh200219/pilldoc-user-mcp/internal/config"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/metrics"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/pilldoc"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/tools"
)

// parseLogLevel converts a string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Server wraps the MCP server with our configuration
type Server struct {
	mcpServer      *server.MCPServer
	config         *config.Config
	deps           *tools.Deps
	metricsManager *metrics.Manager
	logger         *slog.Logger
}

// New creates a new MCP server instance
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		level := parseLogLevel(cfg.LogLevel)
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
	}

	// Shared remote client and token cache for all tool handlers
	client := pilldoc.NewClient(logger)
	deps := &tools.Deps{
		Client: client,
		Tokens: pilldoc.NewTokenProvider(client, logger),
		Config: cfg,
		Logger: logger,
	}

	var metricsManager *metrics.Manager
	if cfg.MetricsEnabled {
		metricsManager = metrics.NewManager()
	}

	s := &Server{
		config:         cfg,
		deps:           deps,
		metricsManager: metricsManager,
		logger:         logger,
	}

	mcpServer := server.NewMCPServer(
		"PillDoc Admin MCP Server",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.mcpServer = mcpServer

	// Register tools for the selected profile
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	logger.Info("PillDoc MCP server initialized",
		"profile", cfg.Profile,
		"mode", cfg.Mode,
		"base_url", cfg.BaseURL)

	return s, nil
}

// registerTools registers all tools for the configured profile
func (s *Server) registerTools() error {
	if err := tools.AddToolsToServer(s.mcpServer, s.config.Profile); err != nil {
		return err
	}

	toolNames := tools.GetToolsForProfile(s.config.Profile)
	s.logger.Info("Registered tools", "count", len(toolNames))

	return nil
}

// requestContext injects the shared services into a per-request context.
// Both serving modes run every tool handler through this.
func (s *Server) requestContext(ctx context.Context) context.Context {
	ctx = tools.WithDeps(ctx, s.deps)
	if s.metricsManager != nil {
		ctx = metrics.WithManager(ctx, s.metricsManager)
	}
	return ctx
}

// Serve starts the server in the configured mode
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting server", "mode", s.config.Mode)

	switch s.config.Mode {
	case "stdio":
		return s.serveStdio(ctx)
	case "http":
		return s.serveHTTP(ctx)
	default:
		return fmt.Errorf("unknown server mode: %s", s.config.Mode)
	}
}

// GetLogger returns the logger
func (s *Server) GetLogger() *slog.Logger {
	return s.logger
}

// Close gracefully shuts down the server and releases resources
func (s *Server) Close() error {
	s.logger.Info("Server shutdown complete")
	return nil
}
