package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hjsh200219/pilldoc-user-mcp/internal/metrics"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/pilldoc"
)

// ToolHandler is the function signature for MCP tool handlers
type ToolHandler func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)

// ToolRegistration holds a tool's metadata and handler
type ToolRegistration struct {
	Name        string
	Description string
	Handler     ToolHandler
	Schema      mcp.Tool
	Profile     string
}

// Global tool registry
var registry = make(map[string]*ToolRegistration)

// Profile definitions group tools by operator task
var ProfileDefinitions = map[string][]string{
	"auth": {
		"login",
	},
	"accounts": {
		"login",
		"pilldoc_accounts",
		"pilldoc_user",
		"pilldoc_user_from_accounts",
		"pilldoc_update_account",
		"pilldoc_update_account_by_search",
	},
	"pharmacy": {
		"login",
		"pilldoc_pharm",
		"pilldoc_find_pharm",
	},
	"campaigns": {
		"login",
		"pilldoc_adps_rejects",
		"pilldoc_adps_reject",
	},
	"stats": {
		"login",
		"pilldoc_accounts_stats",
		"pilldoc_summary",
	},
}

// RegisterTool adds a tool to the registry
func RegisterTool(reg *ToolRegistration) {
	registry[reg.Name] = reg
}

// GetTool retrieves a tool from the registry
func GetTool(name string) (*ToolRegistration, bool) {
	tool, ok := registry[name]
	return tool, ok
}

// GetToolsForProfile returns all tool names for a given profile
func GetToolsForProfile(profile string) []string {
	if profile == "all" {
		// Return all tools from all profiles
		allTools := make(map[string]bool)
		for _, tools := range ProfileDefinitions {
			for _, tool := range tools {
				allTools[tool] = true
			}
		}
		result := make([]string, 0, len(allTools))
		for tool := range allTools {
			result = append(result, tool)
		}
		return result
	}

	tools, ok := ProfileDefinitions[profile]
	if !ok {
		return []string{}
	}
	return tools
}

// AddToolsToServer adds all tools for a profile to an MCP server
func AddToolsToServer(s *server.MCPServer, profile string) error {
	toolNames := GetToolsForProfile(profile)

	for _, name := range toolNames {
		reg, ok := GetTool(name)
		if !ok {
			// Tool not implemented yet - skip silently
			continue
		}

		// Wrap handler to convert between MCP request and our handler signature
		wrappedHandler := wrapHandler(reg)

		// Add tool to server
		s.AddTool(reg.Schema, wrappedHandler)
	}

	return nil
}

// wrapHandler converts our ToolHandler to mcp-go's expected signature and
// records per-tool metrics around the call
func wrapHandler(reg *ToolRegistration) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		start := time.Now()
		result, err := reg.Handler(ctx, args)

		outcome := "success"
		switch {
		case err != nil:
			outcome = "error"
		case result != nil && result.IsError:
			outcome = "error"
		}
		metrics.RecordToolCall(ctx, reg.Name, outcome, time.Since(start))

		return result, err
	}
}

// Helper functions for creating tool results

// ToJSON converts a value to JSON string without HTML escaping
func ToJSON(v interface{}) string {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false) // Korean field values must survive round-trips unescaped

	if err := encoder.Encode(v); err != nil {
		return fmt.Sprintf("{\"error\": \"failed to marshal JSON: %v\"}", err)
	}

	// encoder.Encode() adds a trailing newline, trim it
	return strings.TrimSuffix(buf.String(), "\n")
}

// SuccessResult creates a successful tool result
func SuccessResult(data interface{}) *mcp.CallToolResult {
	return mcp.NewToolResultText(ToJSON(data))
}

// ErrorResult creates an error tool result
func ErrorResult(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// ErrorResultf creates an error tool result with formatting
func ErrorResultf(format string, args ...interface{}) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...))
}

// ErrorResultFromErr renders a pipeline error as the structured error object
// tool callers branch on (kind, message, endpoint, status, body, step)
func ErrorResultFromErr(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(ToJSON(pilldoc.AsError(err).ToMap()))
}
