package pilldoc

import (
	"context"
	"log/slog"
)

const (
	// DefaultPageSize is used when a tool caller does not pick one.
	DefaultPageSize = 100
	// DefaultMaxPages caps aggregation runs unless the caller overrides it.
	DefaultMaxPages = 50
)

// accountsClient is the slice of Client the paginator needs.
type accountsClient interface {
	Accounts(ctx context.Context, call Call, params Params) (*AccountsPage, error)
}

// Lister walks the accounts listing page by page. Pages are fetched strictly
// sequentially; records within a page are visited in listing order.
type Lister struct {
	Client accountsClient
	Call   Call
	Params Params

	PageSize int
	MaxPages int // 0 means unbounded

	// Tokens+Creds enable the single mid-run token refresh. When either is
	// absent an auth failure aborts the run immediately.
	Tokens *TokenProvider
	Creds  *Credentials

	Logger *slog.Logger
}

// Summary describes a completed pagination run.
type Summary struct {
	PagesFetched int
	RecordsSeen  int
	TotalCount   int // as reported by the remote, -1 when never reported
	TotalPages   int // as reported by the remote, -1 when never reported
	Truncated    bool
}

// Run visits every record until the listing is exhausted or a stop condition
// fires: an empty page, a short page, the remote's own totalPage bound, or
// MaxPages. A visit error aborts the run and is returned as-is.
func (l *Lister) Run(ctx context.Context, visit func(Record) error) (Summary, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pageSize := l.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	summary := Summary{TotalCount: -1, TotalPages: -1}
	call := l.Call
	refreshed := false

	for pageNo := 1; ; pageNo++ {
		if l.MaxPages > 0 && pageNo > l.MaxPages {
			summary.Truncated = true
			logger.Debug("pagination stopped at page cap", "max_pages", l.MaxPages)
			return summary, nil
		}
		if err := ctx.Err(); err != nil {
			return summary, RemoteErrorf("", "pagination canceled: %v", err)
		}

		params := l.Params.Clone()
		params[keyPage] = pageNo
		params[keyPageSize] = pageSize

		page, err := l.Client.Accounts(ctx, call, params)
		if err != nil {
			// One refresh per run: a second auth failure means the
			// credentials themselves are bad, not the token.
			if IsAuth(err) && !refreshed && l.Tokens != nil && l.Creds != nil {
				refreshed = true
				logger.Info("token rejected mid-run, refreshing", "page", pageNo)
				tok, rerr := l.Tokens.Refresh(ctx, *l.Creds)
				if rerr != nil {
					return summary, rerr
				}
				call.Token = tok
				page, err = l.Client.Accounts(ctx, call, params)
			}
			if err != nil {
				return summary, AsError(err).WithStep("accounts")
			}
		}

		summary.PagesFetched++
		if page.TotalCount >= 0 {
			summary.TotalCount = page.TotalCount
		}
		if page.TotalPages >= 0 {
			summary.TotalPages = page.TotalPages
		}

		if len(page.Items) == 0 {
			return summary, nil
		}
		for _, rec := range page.Items {
			if err := visit(rec); err != nil {
				return summary, err
			}
			summary.RecordsSeen++
		}
		if len(page.Items) < pageSize {
			return summary, nil
		}
		if page.TotalPages > 0 && pageNo >= page.TotalPages {
			return summary, nil
		}
	}
}
