package tools

import (
	"context"
	"log/slog"

	"github.com/hjsh200219/pilldoc-user-mcp/internal/config"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/pilldoc"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	// depsKey is the context key the serving layer stores shared services under
	depsKey contextKey = "pilldoc-deps"
)

// RemoteClient is the remote API surface tool handlers call. *pilldoc.Client
// implements it; tests inject a mock.
type RemoteClient interface {
	Login(ctx context.Context, creds pilldoc.Credentials) (string, error)
	Accounts(ctx context.Context, call pilldoc.Call, params pilldoc.Params) (*pilldoc.AccountsPage, error)
	User(ctx context.Context, call pilldoc.Call, id string) (map[string]interface{}, error)
	Pharm(ctx context.Context, call pilldoc.Call, bizNo string) (map[string]interface{}, error)
	AdpsRejects(ctx context.Context, call pilldoc.Call, bizNo string) (map[string]interface{}, error)
	AdpsReject(ctx context.Context, call pilldoc.Call, bizNo string, campaignID int, comment string) (map[string]interface{}, error)
	UpdateAccount(ctx context.Context, call pilldoc.Call, id string, body map[string]interface{}, contentType string) (map[string]interface{}, error)
}

// Deps bundles the shared services every tool handler needs. The serving
// layer builds one Deps per process and injects it through the context.
type Deps struct {
	Client RemoteClient
	Tokens *pilldoc.TokenProvider
	Config *config.Config
	Logger *slog.Logger
}

// WithDeps attaches the shared services to the context
func WithDeps(ctx context.Context, deps *Deps) context.Context {
	return context.WithValue(ctx, depsKey, deps)
}

// GetDeps retrieves the shared services from the context
func GetDeps(ctx context.Context) (*Deps, error) {
	deps, ok := ctx.Value(depsKey).(*Deps)
	if !ok || deps == nil {
		return nil, pilldoc.ConfigErrorf("server dependencies missing from context")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return deps, nil
}
