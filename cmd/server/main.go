package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hjsh200219/pilldoc-user-mcp/internal/config"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/server"

	// Import tool packages to trigger init() registration
	_ "github.com/hjsh200219/pilldoc-user-mcp/internal/tools/accounts"
	_ "github.com/hjsh200219/pilldoc-user-mcp/internal/tools/auth"
	_ "github.com/hjsh200219/pilldoc-user-mcp/internal/tools/campaigns"
	_ "github.com/hjsh200219/pilldoc-user-mcp/internal/tools/pharmacy"
	_ "github.com/hjsh200219/pilldoc-user-mcp/internal/tools/stats"
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

func main() {
	// Load configuration first to determine log level
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger with configured level. Logs go to stderr so STDIO mode
	// keeps stdout clean for the MCP transport.
	level := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting PillDoc MCP Server",
		"mode", cfg.Mode,
		"profile", cfg.Profile,
		"base_url", cfg.BaseURL)

	// Create server
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	// Ensure cleanup happens on exit
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("Error during server cleanup", "error", err)
		}
	}()

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	// Start server
	logger.Info("Server starting...")
	if err := srv.Serve(ctx); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
