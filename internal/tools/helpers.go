package tools

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hjsh200219/pilldoc-user-mcp/internal/pilldoc"
)

// SessionArgs are the schema options shared by every remote-calling tool:
// token/credential resolution and call tuning.
func SessionArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("token",
			mcp.Description("Pre-issued bearer token; skips login when set")),
		mcp.WithString("userId",
			mcp.Description("Login user id (default: EDB_USER_ID)")),
		mcp.WithString("password",
			mcp.Description("Login password (default: EDB_PASSWORD)")),
		mcp.WithString("loginUrl",
			mcp.Description("Sign-in endpoint URL (default: EDB_LOGIN_URL)")),
		mcp.WithBoolean("isForceLogin",
			mcp.Description("Take over an existing session on first attempt (default: EDB_FORCE_LOGIN)")),
		mcp.WithString("baseUrl",
			mcp.Description("Admin API base URL (default: EDB_BASE_URL)")),
		mcp.WithString("accept",
			mcp.Description("Accept header for remote calls (default: application/json)")),
		mcp.WithNumber("timeoutSeconds",
			mcp.Description("Per-request timeout in seconds (default: EDB_TIMEOUT)")),
	}
}

// SearchArgs are the schema options shared by the search-then-act tools.
func SearchArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("pharmName",
			mcp.Description("Pharmacy name to search for (substring match unless exactMatch)")),
		mcp.WithString("bizNo",
			mcp.Description("Business registration number to search for (exact match, separators ignored)")),
		mcp.WithBoolean("exactMatch",
			mcp.Description("Require the full pharmacy name to match (default: false)")),
		mcp.WithNumber("matchIndex",
			mcp.Description("Zero-based pick when several accounts match, in listing order")),
		mcp.WithNumber("pageSize",
			mcp.Description("Listing page size for the scan (default: DEFAULT_PAGE_SIZE)")),
		mcp.WithNumber("maxPages",
			mcp.Description("Page cap for the scan, 0 = unbounded (default: MAX_PAGES)")),
	}
}

// Session is a resolved remote-call context: where to call, with which
// token, and (when the token came from a login) the credentials the
// paginator may re-login with mid-run.
type Session struct {
	Deps  *Deps
	Call  pilldoc.Call
	Creds *pilldoc.Credentials // nil when a pre-issued token was supplied
}

// ResolveSession merges tool arguments with configured defaults into a ready
// Call. Token resolution order: explicit token argument, configured token,
// login with explicit or configured credentials. When none of those can
// produce a token the caller gets a CONFIG_ERROR naming what to set.
func ResolveSession(ctx context.Context, args map[string]interface{}) (*Session, error) {
	deps, err := GetDeps(ctx)
	if err != nil {
		return nil, err
	}
	cfg := deps.Config

	call := pilldoc.Call{
		BaseURL: strings.TrimRight(StringArg(args, "baseUrl", cfg.BaseURL), "/"),
		Accept:  StringArg(args, "accept", "application/json"),
		Timeout: cfg.Timeout,
	}
	if secs, ok, err := IntArg(args, "timeoutSeconds"); err != nil {
		return nil, err
	} else if ok && secs > 0 {
		call.Timeout = time.Duration(secs) * time.Second
	}
	if call.BaseURL == "" {
		return nil, pilldoc.ConfigErrorf("base URL unresolved; pass baseUrl or set EDB_BASE_URL")
	}

	// Pre-issued tokens short-circuit the login path entirely.
	if tok := StringArg(args, "token", ""); tok != "" {
		call.Token = tok
		return &Session{Deps: deps, Call: call}, nil
	}
	if cfg.Token != "" && StringArg(args, "userId", "") == "" {
		call.Token = cfg.Token
		return &Session{Deps: deps, Call: call}, nil
	}

	creds, err := ResolveCredentials(args, deps)
	if err != nil {
		return nil, err
	}
	creds.Timeout = call.Timeout

	tok, err := deps.Tokens.Token(ctx, creds)
	if err != nil {
		return nil, err
	}
	call.Token = tok
	return &Session{Deps: deps, Call: call, Creds: &creds}, nil
}

// ResolveCredentials merges credential arguments with configured defaults.
func ResolveCredentials(args map[string]interface{}, deps *Deps) (pilldoc.Credentials, error) {
	cfg := deps.Config
	creds := pilldoc.Credentials{
		UserID:   StringArg(args, "userId", cfg.UserID),
		Password: StringArg(args, "password", cfg.Password),
		LoginURL: StringArg(args, "loginUrl", cfg.LoginURL),
		Force:    BoolArg(args, "isForceLogin", cfg.ForceLogin),
	}
	if creds.UserID == "" || creds.Password == "" {
		return creds, pilldoc.ConfigErrorf("no token and no credentials; pass token or userId/password, or set EDB_TOKEN or EDB_USER_ID/EDB_PASSWORD")
	}
	return creds, nil
}

// NewLister builds a paginator over the session with page bounds taken from
// arguments and clamped to configured limits.
func (s *Session) NewLister(args map[string]interface{}, params pilldoc.Params) (*pilldoc.Lister, error) {
	cfg := s.Deps.Config

	pageSize := cfg.DefaultPageSize
	if n, ok, err := IntArg(args, "pageSize"); err != nil {
		return nil, err
	} else if ok {
		if n < 1 {
			return nil, pilldoc.ValidationErrorf("pageSize must be >= 1, got %d", n)
		}
		pageSize = n
	}
	if pageSize > cfg.MaxPageSize {
		pageSize = cfg.MaxPageSize
	}

	maxPages := cfg.MaxPages
	if n, ok, err := IntArg(args, "maxPages"); err != nil {
		return nil, err
	} else if ok {
		if n < 0 {
			return nil, pilldoc.ValidationErrorf("maxPages must be >= 0, got %d", n)
		}
		maxPages = n
	}

	return &pilldoc.Lister{
		Client:   s.Deps.Client,
		Call:     s.Call,
		Params:   params,
		PageSize: pageSize,
		MaxPages: maxPages,
		Tokens:   s.Deps.Tokens,
		Creds:    s.Creds,
		Logger:   s.Deps.Logger,
	}, nil
}

// FindAccount scans the accounts listing for the record the search arguments
// describe. requireUnique controls whether multiple matches without a
// matchIndex are an error (writes) or resolve to the first match (reads).
// Returns the chosen record and how many records matched in total.
func (s *Session) FindAccount(ctx context.Context, args map[string]interface{}, requireUnique bool) (pilldoc.Record, int, error) {
	idx, hasIdx, err := IntArg(args, "matchIndex")
	if err != nil {
		return nil, 0, err
	}
	sel, err := pilldoc.DeriveSelection(
		StringArg(args, "pharmName", ""),
		StringArg(args, "bizNo", ""),
		BoolArg(args, "exactMatch", false),
		idx, hasIdx, requireUnique)
	if err != nil {
		return nil, 0, err
	}

	// Seed the server-side search to keep the scan small; the selection is
	// still the authority on matching.
	params := pilldoc.Params{"searchKeyword": sel.Value}
	if sel.Field == "bizNo" {
		params["currentSearchType"] = []interface{}{"b"}
	} else {
		params["currentSearchType"] = []interface{}{"s"}
	}

	lister, err := s.NewLister(args, params)
	if err != nil {
		return nil, 0, err
	}
	var candidates []pilldoc.Record
	if _, err := lister.Run(ctx, func(rec pilldoc.Record) error {
		if sel.Matches(rec) {
			candidates = append(candidates, rec)
		}
		return nil
	}); err != nil {
		return nil, 0, err
	}

	chosen, err := sel.Choose(candidates)
	if err != nil {
		return nil, 0, err
	}
	return chosen, len(candidates), nil
}

// StringArg reads an optional string argument with a default
func StringArg(args map[string]interface{}, key, defaultValue string) string {
	if val, ok := args[key].(string); ok && strings.TrimSpace(val) != "" {
		return strings.TrimSpace(val)
	}
	return defaultValue
}

// RequiredStringArg reads a mandatory string argument
func RequiredStringArg(args map[string]interface{}, key string) (string, error) {
	val := StringArg(args, key, "")
	if val == "" {
		return "", pilldoc.ValidationErrorf("%s parameter is required", key)
	}
	return val, nil
}

// IntArg reads an optional integer argument. JSON numbers arrive as float64;
// strings are tolerated for clients that quote everything.
func IntArg(args map[string]interface{}, key string) (int, bool, error) {
	val, ok := args[key]
	if !ok || val == nil {
		return 0, false, nil
	}
	switch v := val.(type) {
	case float64:
		return int(v), true, nil
	case int:
		return v, true, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false, pilldoc.ValidationErrorf("%s must be an integer, got %q", key, v)
		}
		return n, true, nil
	default:
		return 0, false, pilldoc.ValidationErrorf("%s must be an integer, got %T", key, val)
	}
}

// BoolArg reads an optional boolean argument with a default
func BoolArg(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	if val, ok := args[key].(string); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultValue
}

// MapArg reads an optional object argument
func MapArg(args map[string]interface{}, key string) (map[string]interface{}, error) {
	val, ok := args[key]
	if !ok || val == nil {
		return nil, nil
	}
	m, ok := val.(map[string]interface{})
	if !ok {
		return nil, pilldoc.ValidationErrorf("%s must be an object, got %T", key, val)
	}
	return m, nil
}

// FilterArgs collects the accounts-listing filter keys out of the full
// argument map, leaving session arguments (token, credentials, paging)
// behind.
func FilterArgs(args map[string]interface{}) map[string]interface{} {
	sessionKeys := map[string]bool{
		"token": true, "userId": true, "password": true, "loginUrl": true,
		"isForceLogin": true, "baseUrl": true, "accept": true,
		"timeoutSeconds": true, "maxPages": true,
	}
	out := make(map[string]interface{})
	for k, v := range args {
		if !sessionKeys[k] {
			out[k] = v
		}
	}
	return out
}
