package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hjsh200219/pilldoc-user-mcp/internal/config"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/metrics"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/tools"

	// Import tool packages so their init() registrations run
	_ "github.com/hjsh200219/pilldoc-user-mcp/internal/tools/accounts"
	_ "github.com/hjsh200219/pilldoc-user-mcp/internal/tools/auth"
	_ "github.com/hjsh200219/pilldoc-user-mcp/internal/tools/campaigns"
	_ "github.com/hjsh200219/pilldoc-user-mcp/internal/tools/pharmacy"
	_ "github.com/hjsh200219/pilldoc-user-mcp/internal/tools/stats"
)

func testConfig() *config.Config {
	return &config.Config{
		Mode:            "stdio",
		Profile:         "all",
		LogLevel:        "error",
		BaseURL:         "https://api.test.invalid",
		LoginURL:        "https://api.test.invalid/v1/member/sign-in",
		Timeout:         5 * time.Second,
		MetricsEnabled:  true,
		DefaultPageSize: 100,
		MaxPageSize:     500,
		MaxPages:        50,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseLogLevel(tt.input), "level %q", tt.input)
	}
}

func TestNew(t *testing.T) {
	t.Run("creates server", func(t *testing.T) {
		srv, err := New(testConfig(), quietLogger())
		require.NoError(t, err)
		assert.NotNil(t, srv.mcpServer)
		assert.NotNil(t, srv.deps)
		assert.NotNil(t, srv.deps.Client)
		assert.NotNil(t, srv.deps.Tokens)
		assert.NotNil(t, srv.metricsManager)
	})

	t.Run("nil logger gets a default", func(t *testing.T) {
		srv, err := New(testConfig(), nil)
		require.NoError(t, err)
		assert.NotNil(t, srv.GetLogger())
	})

	t.Run("metrics disabled skips the manager", func(t *testing.T) {
		cfg := testConfig()
		cfg.MetricsEnabled = false
		srv, err := New(cfg, quietLogger())
		require.NoError(t, err)
		assert.Nil(t, srv.metricsManager)
	})

	t.Run("single-profile server registers", func(t *testing.T) {
		cfg := testConfig()
		cfg.Profile = "pharmacy"
		_, err := New(cfg, quietLogger())
		require.NoError(t, err)
	})
}

func TestRequestContext(t *testing.T) {
	srv, err := New(testConfig(), quietLogger())
	require.NoError(t, err)

	ctx := srv.requestContext(context.Background())

	deps, err := tools.GetDeps(ctx)
	require.NoError(t, err)
	assert.Same(t, srv.deps, deps)
	assert.Same(t, srv.metricsManager, metrics.FromContext(ctx))

	t.Run("no manager when metrics disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.MetricsEnabled = false
		srv, err := New(cfg, quietLogger())
		require.NoError(t, err)

		ctx := srv.requestContext(context.Background())
		assert.Nil(t, metrics.FromContext(ctx))
	})
}

func TestServeUnknownMode(t *testing.T) {
	srv, err := New(testConfig(), quietLogger())
	require.NoError(t, err)
	srv.config.Mode = "carrier-pigeon"

	err = srv.Serve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown server mode")
}

func TestClose(t *testing.T) {
	srv, err := New(testConfig(), quietLogger())
	require.NoError(t, err)
	assert.NoError(t, srv.Close())
}
