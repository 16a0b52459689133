package pilldoc

import (
	"context"
	"log/slog"
)

// updateClient is the slice of Client the orchestrator needs.
type updateClient interface {
	accountsClient
	UpdateAccount(ctx context.Context, call Call, id string, body map[string]interface{}, contentType string) (map[string]interface{}, error)
}

// UpdateRequest is a search-then-update order: find exactly one account and
// apply the changes to it.
type UpdateRequest struct {
	PharmName  string
	BizNo      string
	ExactMatch bool
	Index      int
	HasIndex   bool

	Changes     map[string]interface{}
	ContentType string
	DryRun      bool

	PageSize int
	MaxPages int
}

// UpdateBySearch resolves the search to exactly one account and patches it.
// All validation happens before any remote write: an ambiguous or failed
// match leaves the remote untouched. DryRun stops after the match and
// reports what would have been patched.
func UpdateBySearch(ctx context.Context, client updateClient, call Call, req UpdateRequest, tokens *TokenProvider, creds *Credentials, logger *slog.Logger) (map[string]interface{}, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(req.Changes) == 0 {
		return nil, ValidationErrorf("no update fields supplied")
	}

	sel, err := DeriveSelection(req.PharmName, req.BizNo, req.ExactMatch, req.Index, req.HasIndex, true)
	if err != nil {
		return nil, err
	}

	// Seed the server-side search so the scan stays small; the local matcher
	// remains the authority on what counts as a hit.
	params := Params{
		keySearchKeyword: sel.Value,
	}
	if sel.Field == "bizNo" {
		params[keyCurrentSearchType] = []interface{}{"b"}
	} else {
		params[keyCurrentSearchType] = []interface{}{"s"}
	}

	lister := &Lister{
		Client:   client,
		Call:     call,
		Params:   params,
		PageSize: req.PageSize,
		MaxPages: req.MaxPages,
		Tokens:   tokens,
		Creds:    creds,
		Logger:   logger,
	}

	var candidates []Record
	summary, err := lister.Run(ctx, func(rec Record) error {
		if sel.Matches(rec) {
			candidates = append(candidates, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	target, err := sel.Choose(candidates)
	if err != nil {
		return nil, err
	}
	id := target.ID()
	if id == "" {
		return nil, RemoteErrorf("", "matched account record carries no usable id")
	}

	matched := map[string]interface{}{
		"id":         id,
		"pharmName":  target.PharmName(),
		"bizNo":      target.BizNo(),
		"matchCount": len(candidates),
	}

	if req.DryRun {
		logger.Info("dry run, skipping update", "id", id)
		return map[string]interface{}{
			"dryRun":  true,
			"matched": matched,
			"changes": req.Changes,
		}, nil
	}

	logger.Info("updating account", "id", id, "pharm_name", target.PharmName(), "pages_scanned", summary.PagesFetched)
	result, err := client.UpdateAccount(ctx, call, id, req.Changes, req.ContentType)
	if err != nil {
		return nil, AsError(err).WithStep("update")
	}

	return map[string]interface{}{
		"matched": matched,
		"result":  result,
	}, nil
}
