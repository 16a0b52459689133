// Package auth registers the login tool. The other tools log in implicitly;
// this one exists for operators who want to verify credentials or mint a
// token to pass around explicitly.
package auth

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hjsh200219/pilldoc-user-mcp/internal/pilldoc"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/tools"
)

func init() {
	RegisterLogin()
}

// RegisterLogin registers the login tool
func RegisterLogin() {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Sign in to the EDB admin API and return a bearer token. Duplicate-session rejections retry once with a forced login."),
	}
	opts = append(opts, tools.SessionArgs()...)

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "login",
		Description: "Sign in and return a bearer token",
		Profile:     "auth",
		Schema:      mcp.NewTool("login", opts...),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			deps, err := tools.GetDeps(ctx)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			creds, err := tools.ResolveCredentials(args, deps)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}
			creds.Timeout = deps.Config.Timeout

			token, err := deps.Tokens.Token(ctx, creds)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			result := map[string]interface{}{
				"token":    token,
				"userId":   creds.UserID,
				"loginUrl": creds.LoginURL,
			}
			if exp, ok := pilldoc.TokenExpiry(token); ok {
				result["expiresAt"] = exp.UTC().Format(time.RFC3339)
			}
			return tools.SuccessResult(result), nil
		},
	})
}
