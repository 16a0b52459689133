// Package pharmacy registers the pharmacy detail tools: direct lookup by
// business number and the composite search-then-aggregate view.
package pharmacy

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hjsh200219/pilldoc-user-mcp/internal/pilldoc"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/tools"
)

func init() {
	RegisterPharm()
	RegisterFindPharm()
}

// RegisterPharm registers the pilldoc_pharm tool
func RegisterPharm() {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Fetch the pharmacy detail for a business registration number. Separators in the number are ignored."),
		mcp.WithString("bizNo",
			mcp.Required(),
			mcp.Description("Business registration number")),
	}
	opts = append(opts, tools.SessionArgs()...)

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "pilldoc_pharm",
		Description: "Fetch pharmacy detail by business number",
		Profile:     "pharmacy",
		Schema:      mcp.NewTool("pilldoc_pharm", opts...),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			bizNo, err := tools.RequiredStringArg(args, "bizNo")
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			session, err := tools.ResolveSession(ctx, args)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			pharm, err := session.Deps.Client.Pharm(ctx, session.Call, bizNo)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}
			return tools.SuccessResult(pharm), nil
		},
	})
}

// RegisterFindPharm registers the pilldoc_find_pharm tool
func RegisterFindPharm() {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Search the accounts listing by pharmacy name or business number and return the composite view of the match: the account record plus its user, pharmacy, and campaign-rejection details. Sections that cannot be fetched are reported as absent instead of failing the whole result."),
	}
	opts = append(opts, tools.SearchArgs()...)
	opts = append(opts, tools.SessionArgs()...)

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "pilldoc_find_pharm",
		Description: "Search accounts and return the composite pharmacy view",
		Profile:     "pharmacy",
		Schema:      mcp.NewTool("pilldoc_find_pharm", opts...),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			session, err := tools.ResolveSession(ctx, args)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			account, matchCount, err := session.FindAccount(ctx, args, false)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			composite, err := pilldoc.AggregateDetail(ctx, session.Deps.Client, session.Call, account, session.Deps.Logger)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			result := composite.ToMap()
			result["matchCount"] = matchCount
			return tools.SuccessResult(result), nil
		},
	})
}
