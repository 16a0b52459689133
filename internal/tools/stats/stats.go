// Package stats registers the aggregation tools that scan the full accounts
// listing and return grouped counts.
package stats

import (
	"context"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hjsh200219/pilldoc-user-mcp/internal/pilldoc"
	"github.com/hjsh200219/pilldoc-user-mcp/internal/tools"
)

func init() {
	RegisterAccountsStats()
	RegisterSummary()
}

// scan paginates the filtered listing and folds every record into a fresh
// accumulator.
func scan(ctx context.Context, session *tools.Session, args map[string]interface{}) (*pilldoc.Stats, pilldoc.Summary, []string, error) {
	params, warnings, err := pilldoc.NormalizeFilters(tools.FilterArgs(args))
	if err != nil {
		return nil, pilldoc.Summary{}, nil, err
	}

	lister, err := session.NewLister(args, params)
	if err != nil {
		return nil, pilldoc.Summary{}, nil, err
	}

	acc := pilldoc.NewStats()
	summary, err := lister.Run(ctx, func(rec pilldoc.Record) error {
		acc.Add(rec)
		return nil
	})
	if err != nil {
		return nil, summary, nil, err
	}
	return acc, summary, warnings, nil
}

// RegisterAccountsStats registers the pilldoc_accounts_stats tool
func RegisterAccountsStats() {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Scan the filtered accounts listing and return grouped counts: monthly signups, region, ERP vendor, and ad-block state. The scan walks every page up to maxPages; truncated=true in the result means the cap cut it short."),
		mcp.WithArray("erpKind",
			mcp.Description("ERP vendor codes to filter by")),
		mcp.WithBoolean("adBlocked",
			mcp.Description("Filter by ad suppression before counting. Mutually exclusive with isAdDisplay.")),
		mcp.WithNumber("isAdDisplay",
			mcp.Description("Raw ad display flag filter, 0 or 1. Mutually exclusive with adBlocked.")),
		mcp.WithArray("salesChannel",
			mcp.Description("Sales channel codes, 0-5")),
		mcp.WithArray("pharmChain",
			mcp.Description("Pharmacy chain names")),
		mcp.WithString("searchKeyword",
			mcp.Description("Server-side search keyword")),
		mcp.WithArray("currentSearchType",
			mcp.Description("Search type codes for searchKeyword")),
		mcp.WithNumber("pageSize",
			mcp.Description("Scan page size (default: DEFAULT_PAGE_SIZE)")),
		mcp.WithNumber("maxPages",
			mcp.Description("Page cap for the scan, 0 = unbounded (default: MAX_PAGES)")),
	}
	opts = append(opts, tools.SessionArgs()...)

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "pilldoc_accounts_stats",
		Description: "Grouped counts over the filtered accounts listing",
		Profile:     "stats",
		Schema:      mcp.NewTool("pilldoc_accounts_stats", opts...),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			session, err := tools.ResolveSession(ctx, args)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			acc, summary, warnings, err := scan(ctx, session, args)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			result := acc.ToMap(summary)
			if len(warnings) > 0 {
				result["warnings"] = warnings
			}
			return tools.SuccessResult(result), nil
		},
	})
}

// RegisterSummary registers the pilldoc_summary tool
func RegisterSummary() {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Condensed health snapshot of the filtered accounts listing: totals, ad-block split, and the top regions and ERP vendors."),
		mcp.WithNumber("top",
			mcp.Description("How many region/ERP buckets to include (default: 5)")),
		mcp.WithNumber("pageSize",
			mcp.Description("Scan page size (default: DEFAULT_PAGE_SIZE)")),
		mcp.WithNumber("maxPages",
			mcp.Description("Page cap for the scan, 0 = unbounded (default: MAX_PAGES)")),
	}
	opts = append(opts, tools.SessionArgs()...)

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "pilldoc_summary",
		Description: "Condensed accounts snapshot",
		Profile:     "stats",
		Schema:      mcp.NewTool("pilldoc_summary", opts...),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			session, err := tools.ResolveSession(ctx, args)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			topN := 5
			if n, ok, err := tools.IntArg(args, "top"); err != nil {
				return tools.ErrorResultFromErr(err), nil
			} else if ok && n > 0 {
				topN = n
			}

			// "top" is presentation-only; keep it out of the remote filter body.
			scanArgs := make(map[string]interface{}, len(args))
			for k, v := range args {
				if k != "top" {
					scanArgs[k] = v
				}
			}

			acc, summary, _, err := scan(ctx, session, scanArgs)
			if err != nil {
				return tools.ErrorResultFromErr(err), nil
			}

			full := acc.ToMap(summary)
			result := map[string]interface{}{
				"total": acc.Total,
				"adBlocked": map[string]interface{}{
					"blocked":    acc.AdBlocked,
					"notBlocked": acc.AdNotBlocked,
					"unknown":    acc.AdUnknown,
				},
				"topRegions":   topBuckets(acc.Region, topN),
				"topErpCodes":  topBuckets(acc.ERP, topN),
				"pagesFetched": summary.PagesFetched,
				"truncated":    summary.Truncated,
			}
			if period, ok := full["period"]; ok {
				result["period"] = period
			}
			if summary.TotalCount >= 0 {
				result["totalCountReported"] = summary.TotalCount
			}
			return tools.SuccessResult(result), nil
		},
	})
}

// topBuckets returns the n largest buckets, ties broken by key so output is
// stable across runs.
func topBuckets(counts map[string]int, n int) []map[string]interface{} {
	type bucket struct {
		key   string
		count int
	}
	all := make([]bucket, 0, len(counts))
	for k, c := range counts {
		all = append(all, bucket{k, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].key < all[j].key
	})
	if len(all) > n {
		all = all[:n]
	}
	out := make([]map[string]interface{}, 0, len(all))
	for _, b := range all {
		out = append(out, map[string]interface{}{"key": b.key, "count": b.count})
	}
	return out
}
