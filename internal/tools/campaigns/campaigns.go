// Package campaigns registers the ad-campaign rejection tools.
package campaigns

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hjsh200219/pilldoc-user-mcp/internal/pilldoc"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/tools"
)

func init() {
	RegisterAdpsRejects()
	RegisterAdpsReject()
}

// RegisterAdpsRejects registers the pilldoc_adps_rejects tool
func RegisterAdpsRejects() {
	opts := []mcp.ToolOption{
		mcp.WithDescription("List the ad campaigns a pharmacy has rejected, by business registration number."),
		mcp.WithString("bizNo",
			mcp.Required(),
			mcp.Description("Business registration number")),
	}
	opts = append(opts, tools.SessionArgs()...)

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "pilldoc_adps_rejects",
		Description: "List rejected ad campaigns for a pharmacy",
		Profile:     "campaigns",
		Schema:      mcp.NewTool("pilldoc_adps_rejects", opts...),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			bizNo, err := tools.RequiredStringArg(args, "bizNo")
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			session, err := tools.ResolveSession(ctx, args)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			rejects, err := session.Deps.Client.AdpsRejects(ctx, session.Call, bizNo)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}
			return tools.SuccessResult(rejects), nil
		},
	})
}

// RegisterAdpsReject registers the pilldoc_adps_reject tool
func RegisterAdpsReject() {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Toggle the rejection state of one ad campaign for a pharmacy. The remote flips the state: a rejected campaign becomes accepted and vice versa."),
		mcp.WithString("bizNo",
			mcp.Required(),
			mcp.Description("Business registration number")),
		mcp.WithNumber("campaignId",
			mcp.Required(),
			mcp.Description("Campaign id to toggle")),
		mcp.WithString("comment",
			mcp.Description("Operator note recorded with the change")),
	}
	opts = append(opts, tools.SessionArgs()...)

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "pilldoc_adps_reject",
		Description: "Toggle one campaign rejection for a pharmacy",
		Profile:     "campaigns",
		Schema:      mcp.NewTool("pilldoc_adps_reject", opts...),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			bizNo, err := tools.RequiredStringArg(args, "bizNo")
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}
			campaignID, ok, err := tools.IntArg(args, "campaignId")
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}
			if !ok {
				return tools.ErrorResultFromErr(
					pilldoc.ValidationErrorf("campaignId parameter is required")), nil
			}

			session, err := tools.ResolveSession(ctx, args)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			result, err := session.Deps.Client.AdpsReject(ctx, session.Call, bizNo, campaignID,
				tools.StringArg(args, "comment", ""))
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}
			return tools.SuccessResult(result), nil
		},
	})
}
