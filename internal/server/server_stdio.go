package server

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
)

// serveStdio starts the server in STDIO mode.
func (s *Server) serveStdio(ctx context.Context) error {
	s.logger.Info("Serving via STDIO")

	// WithStdioContextFunc injects our context values into every request.
	// This is how the shared client, token cache, and metrics reach the
	// tool handlers.
	contextFunc := func(reqCtx context.Context) context.Context {
		return s.requestContext(reqCtx)
	}

	return server.ServeStdio(s.mcpServer, server.WithStdioContextFunc(contextFunc))
}
