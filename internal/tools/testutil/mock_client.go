// Package testutil provides mock implementations shared by tool handler
// tests.
package testutil

import (
	"context"
	"io"
	"log/slog"

	"github.com/hjsh200219/pilldoc-user-mcp/internal/config"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/pilldoc"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/tools"
)

// MockClient is a RemoteClient with pluggable behavior. Unset funcs fail the
// call with a remote error so tests notice unexpected traffic.
type MockClient struct {
	LoginFunc         func(ctx context.Context, creds pilldoc.Credentials) (string, error)
	AccountsFunc      func(ctx context.Context, call pilldoc.Call, params pilldoc.Params) (*pilldoc.AccountsPage, error)
	UserFunc          func(ctx context.Context, call pilldoc.Call, id string) (map[string]interface{}, error)
	PharmFunc         func(ctx context.Context, call pilldoc.Call, bizNo string) (map[string]interface{}, error)
	AdpsRejectsFunc   func(ctx context.Context, call pilldoc.Call, bizNo string) (map[string]interface{}, error)
	AdpsRejectFunc    func(ctx context.Context, call pilldoc.Call, bizNo string, campaignID int, comment string) (map[string]interface{}, error)
	UpdateAccountFunc func(ctx context.Context, call pilldoc.Call, id string, body map[string]interface{}, contentType string) (map[string]interface{}, error)
}

func (m *MockClient) Login(ctx context.Context, creds pilldoc.Credentials) (string, error) {
	if m.LoginFunc == nil {
		return "", pilldoc.RemoteErrorf("", "unexpected Login call")
	}
	return m.LoginFunc(ctx, creds)
}

func (m *MockClient) Accounts(ctx context.Context, call pilldoc.Call, params pilldoc.Params) (*pilldoc.AccountsPage, error) {
	if m.AccountsFunc == nil {
		return nil, pilldoc.RemoteErrorf("", "unexpected Accounts call")
	}
	return m.AccountsFunc(ctx, call, params)
}

func (m *MockClient) User(ctx context.Context, call pilldoc.Call, id string) (map[string]interface{}, error) {
	if m.UserFunc == nil {
		return nil, pilldoc.RemoteErrorf("", "unexpected User call")
	}
	return m.UserFunc(ctx, call, id)
}

func (m *MockClient) Pharm(ctx context.Context, call pilldoc.Call, bizNo string) (map[string]interface{}, error) {
	if m.PharmFunc == nil {
		return nil, pilldoc.RemoteErrorf("", "unexpected Pharm call")
	}
	return m.PharmFunc(ctx, call, bizNo)
}

func (m *MockClient) AdpsRejects(ctx context.Context, call pilldoc.Call, bizNo string) (map[string]interface{}, error) {
	if m.AdpsRejectsFunc == nil {
		return nil, pilldoc.RemoteErrorf("", "unexpected AdpsRejects call")
	}
	return m.AdpsRejectsFunc(ctx, call, bizNo)
}

func (m *MockClient) AdpsReject(ctx context.Context, call pilldoc.Call, bizNo string, campaignID int, comment string) (map[string]interface{}, error) {
	if m.AdpsRejectFunc == nil {
		return nil, pilldoc.RemoteErrorf("", "unexpected AdpsReject call")
	}
	return m.AdpsRejectFunc(ctx, call, bizNo, campaignID, comment)
}

func (m *MockClient) UpdateAccount(ctx context.Context, call pilldoc.Call, id string, body map[string]interface{}, contentType string) (map[string]interface{}, error) {
	if m.UpdateAccountFunc == nil {
		return nil, pilldoc.RemoteErrorf("", "unexpected UpdateAccount call")
	}
	return m.UpdateAccountFunc(ctx, call, id, body, contentType)
}

// TestConfig returns a config suitable for handler tests: no ambient
// credentials, small page bounds.
func TestConfig() *config.Config {
	return &config.Config{
		Mode:            "stdio",
		Profile:         "all",
		LogLevel:        "error",
		BaseURL:         "https://api.test.invalid",
		LoginURL:        "https://api.test.invalid/v1/member/sign-in",
		DefaultPageSize: 100,
		MaxPageSize:     500,
		MaxPages:        50,
	}
}

// NewContext builds a handler context carrying deps wired to the mock.
func NewContext(client *MockClient, cfg *config.Config) context.Context {
	if cfg == nil {
		cfg = TestConfig()
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := &tools.Deps{
		Client: client,
		Tokens: pilldoc.NewTokenProvider(client, logger),
		Config: cfg,
		Logger: logger,
	}
	return tools.WithDeps(context.Background(), deps)
}
