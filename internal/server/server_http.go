package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// serveHTTP starts the server in streamable HTTP mode with health and
// metrics endpoints alongside the MCP endpoint.
func (s *Server) serveHTTP(ctx context.Context) error {
	streamable := server.NewStreamableHTTPServer(s.mcpServer,
		server.WithHTTPContextFunc(func(reqCtx context.Context, r *http.Request) context.Context {
			return s.requestContext(reqCtx)
		}),
	)

	mux := http.NewServeMux()
	mux.Handle("/mcp", streamable)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"status":"ok"}`)
	})
	if s.metricsManager != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(
			s.metricsManager.Registry(),
			promhttp.HandlerOpts{},
		))
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Serving via HTTP", "port", s.config.HTTPPort, "metrics", s.metricsManager != nil)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
