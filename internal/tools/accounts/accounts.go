// Package accounts registers the accounts-listing tools: raw page fetch,
// user detail by id, user detail by search, and the two update paths.
package accounts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hjsh200219/pilldoc-user-mcp/internal/pilldoc"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/tools"
)

func init() {
	RegisterAccounts()
	RegisterUser()
	RegisterUserFromAccounts()
	RegisterUpdateAccount()
	RegisterUpdateAccountBySearch()
}

// filterOpts are the accounts-listing filter parameters shared by the tools
// that scan the listing.
func filterOpts() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("page",
			mcp.Description("Page number, 1-based")),
		mcp.WithNumber("pageSize",
			mcp.Description("Records per page (default: DEFAULT_PAGE_SIZE)")),
		mcp.WithString("sortBy",
			mcp.Description("Server-side sort key")),
		mcp.WithArray("erpKind",
			mcp.Description("ERP vendor codes: IT3000, BIZPHARM, UPHARM, EPHARM, WITHPHARM, ETC")),
		mcp.WithBoolean("adBlocked",
			mcp.Description("Filter by ad suppression; true selects accounts whose ads are blocked. Mutually exclusive with isAdDisplay.")),
		mcp.WithNumber("isAdDisplay",
			mcp.Description("Raw ad display flag, 0 or 1. Mutually exclusive with adBlocked.")),
		mcp.WithArray("salesChannel",
			mcp.Description("Sales channel codes, 0-5")),
		mcp.WithArray("pharmChain",
			mcp.Description("Pharmacy chain names")),
		mcp.WithArray("currentSearchType",
			mcp.Description("Search type codes for searchKeyword")),
		mcp.WithString("searchKeyword",
			mcp.Description("Server-side search keyword")),
		mcp.WithString("accountType",
			mcp.Description("Account type filter")),
	}
}

// RegisterAccounts registers the pilldoc_accounts tool
func RegisterAccounts() {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Fetch one page of the pharmacy accounts listing with optional filters. Unknown filter keys pass through to the remote unchanged."),
		mcp.WithString("bizNo",
			mcp.Description("Business registration number filter (separators ignored)")),
	}
	opts = append(opts, filterOpts()...)
	opts = append(opts, tools.SessionArgs()...)

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "pilldoc_accounts",
		Description: "Fetch one page of the accounts listing",
		Profile:     "accounts",
		Schema:      mcp.NewTool("pilldoc_accounts", opts...),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			session, err := tools.ResolveSession(ctx, args)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			params, warnings, err := pilldoc.NormalizeFilters(tools.FilterArgs(args))
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			page, err := session.Deps.Client.Accounts(ctx, session.Call, params)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			result := map[string]interface{}{
				"items": page.Items,
			}
			if page.TotalCount >= 0 {
				result["totalCount"] = page.TotalCount
			}
			if page.TotalPages >= 0 {
				result["totalPage"] = page.TotalPages
			}
			if page.NowPage > 0 {
				result["nowPage"] = page.NowPage
			}
			if len(warnings) > 0 {
				result["warnings"] = warnings
			}
			return tools.SuccessResult(result), nil
		},
	})
}

// RegisterUser registers the pilldoc_user tool
func RegisterUser() {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Fetch the user detail for a known account id."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Account id")),
	}
	opts = append(opts, tools.SessionArgs()...)

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "pilldoc_user",
		Description: "Fetch user detail by account id",
		Profile:     "accounts",
		Schema:      mcp.NewTool("pilldoc_user", opts...),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			id, err := tools.RequiredStringArg(args, "id")
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			session, err := tools.ResolveSession(ctx, args)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			user, err := session.Deps.Client.User(ctx, session.Call, id)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}
			return tools.SuccessResult(user), nil
		},
	})
}

// RegisterUserFromAccounts registers the pilldoc_user_from_accounts tool
func RegisterUserFromAccounts() {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Search the accounts listing by pharmacy name or business number and fetch the matched account's user detail. Multiple matches resolve to the first in listing order unless matchIndex picks another."),
	}
	opts = append(opts, tools.SearchArgs()...)
	opts = append(opts, tools.SessionArgs()...)

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "pilldoc_user_from_accounts",
		Description: "Search accounts and fetch the matched user detail",
		Profile:     "accounts",
		Schema:      mcp.NewTool("pilldoc_user_from_accounts", opts...),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			session, err := tools.ResolveSession(ctx, args)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			account, matchCount, err := session.FindAccount(ctx, args, false)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			id := account.ID()
			if id == "" {
				return tools.ErrorResultFromErr(
					pilldoc.RemoteErrorf("", "matched account record carries no usable id")), nil
			}

			user, err := session.Deps.Client.User(ctx, session.Call, id)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			return tools.SuccessResult(map[string]interface{}{
				"matched": map[string]interface{}{
					"id":         id,
					"pharmName":  account.PharmName(),
					"bizNo":      account.BizNo(),
					"matchCount": matchCount,
				},
				"user": user,
			}), nil
		},
	})
}

// RegisterUpdateAccount registers the pilldoc_update_account tool
func RegisterUpdateAccount() {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Apply a partial update to an account by id. Fields not present in changes are left untouched."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Account id to update")),
		mcp.WithObject("changes",
			mcp.Required(),
			mcp.Description("Fields to update, sent as the PATCH body")),
		mcp.WithString("contentType",
			mcp.Description("Request content type; defaults to application/json with automatic fallback on 415")),
	}
	opts = append(opts, tools.SessionArgs()...)

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "pilldoc_update_account",
		Description: "Apply a partial update to an account by id",
		Profile:     "accounts",
		Schema:      mcp.NewTool("pilldoc_update_account", opts...),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			id, err := tools.RequiredStringArg(args, "id")
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}
			changes, err := tools.MapArg(args, "changes")
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}
			if len(changes) == 0 {
				return tools.ErrorResultFromErr(
					pilldoc.ValidationErrorf("changes must carry at least one field")), nil
			}

			session, err := tools.ResolveSession(ctx, args)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			result, err := session.Deps.Client.UpdateAccount(ctx, session.Call, id, changes,
				tools.StringArg(args, "contentType", ""))
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}
			return tools.SuccessResult(map[string]interface{}{
				"id":     id,
				"result": result,
			}), nil
		},
	})
}

// RegisterUpdateAccountBySearch registers the pilldoc_update_account_by_search tool
func RegisterUpdateAccountBySearch() {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Search the accounts listing and apply a partial update to the single matched account. Multiple matches abort without writing unless matchIndex disambiguates. dryRun reports the match without patching."),
		mcp.WithObject("changes",
			mcp.Required(),
			mcp.Description("Fields to update, sent as the PATCH body")),
		mcp.WithBoolean("dryRun",
			mcp.Description("Resolve the match and report it without writing (default: false)")),
		mcp.WithString("contentType",
			mcp.Description("Request content type; defaults to application/json with automatic fallback on 415")),
	}
	opts = append(opts, tools.SearchArgs()...)
	opts = append(opts, tools.SessionArgs()...)

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "pilldoc_update_account_by_search",
		Description: "Search accounts and update the single match",
		Profile:     "accounts",
		Schema:      mcp.NewTool("pilldoc_update_account_by_search", opts...),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			changes, err := tools.MapArg(args, "changes")
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			session, err := tools.ResolveSession(ctx, args)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			idx, hasIdx, err := tools.IntArg(args, "matchIndex")
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}
			pageSize, _, err := tools.IntArg(args, "pageSize")
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}
			maxPages, hasMaxPages, err := tools.IntArg(args, "maxPages")
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}
			if !hasMaxPages {
				maxPages = session.Deps.Config.MaxPages
			}

			req := pilldoc.UpdateRequest{
				PharmName:   tools.StringArg(args, "pharmName", ""),
				BizNo:       tools.StringArg(args, "bizNo", ""),
				ExactMatch:  tools.BoolArg(args, "exactMatch", false),
				Index:       idx,
				HasIndex:    hasIdx,
				Changes:     changes,
				ContentType: tools.StringArg(args, "contentType", ""),
				DryRun:      tools.BoolArg(args, "dryRun", false),
				PageSize:    pageSize,
				MaxPages:    maxPages,
			}

			result, err := pilldoc.UpdateBySearch(ctx, session.Deps.Client, session.Call, req,
				session.Deps.Tokens, session.Creds, session.Deps.Logger)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}
			return tools.SuccessResult(result), nil
		},
	})
}
