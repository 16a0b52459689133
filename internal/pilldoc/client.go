package pilldoc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hjsh200219/pilldoc-user-mcp/internal/metrics"
)

// DefaultTimeout applies when a call does not specify one.
const DefaultTimeout = 15 * time.Second

// Call carries the per-invocation parameters shared by every remote request.
type Call struct {
	BaseURL string
	Token   string
	Accept  string
	Timeout time.Duration
}

func (c Call) accept() string {
	if c.Accept == "" {
		return "application/json"
	}
	return c.Accept
}

func (c Call) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Client is the EDB admin API client. All methods are blocking, honor the
// caller's context, and return *Error on failure.
type Client struct {
	hc     *http.Client
	logger *slog.Logger
}

// NewClient creates a remote API client. The http.Client carries no global
// timeout; each call derives its own deadline from Call.Timeout.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		hc:     &http.Client{},
		logger: logger,
	}
}

// AccountsPage is one page of the accounts listing.
type AccountsPage struct {
	Items      []Record
	TotalCount int // -1 when the remote omitted it
	TotalPages int // -1 when the remote omitted it
	NowPage    int
	Raw        map[string]interface{}
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// do executes one remote request and decodes the JSON response. A non-JSON
// body is wrapped as {"text": ...} to match the remote's occasional plain
// text responses.
func (c *Client) do(ctx context.Context, call Call, method, endpoint string, contentType string, body io.Reader) (map[string]interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, call.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, endpoint, body)
	if err != nil {
		return nil, RemoteErrorf(endpoint, "build request: %v", err)
	}
	req.Header.Set("accept", call.accept())
	if call.Token != "" {
		req.Header.Set("Authorization", "Bearer "+call.Token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	reqID := uuid.NewString()
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.Debug("remote request failed", "req_id", reqID, "method", method, "endpoint", endpoint, "error", err)
		metrics.RecordRemote(ctx, endpoint, 0)
		return nil, RemoteErrorf(endpoint, "%s %s: %v", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordRemote(ctx, endpoint, resp.StatusCode)
		return nil, RemoteErrorf(endpoint, "read response: %v", err)
	}

	c.logger.Debug("remote request",
		"req_id", reqID,
		"method", method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start))
	metrics.RecordRemote(ctx, endpoint, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, remoteError(endpoint, resp.StatusCode, string(raw),
			fmt.Sprintf("%s %s returned %d", method, endpoint, resp.StatusCode))
	}

	return parseBody(raw), nil
}

func parseBody(raw []byte) map[string]interface{} {
	var parsed interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return map[string]interface{}{"text": string(raw)}
	}
	if m, ok := parsed.(map[string]interface{}); ok {
		return m
	}
	// top-level arrays and scalars are wrapped so callers always get a map
	return map[string]interface{}{"data": parsed}
}

func (c *Client) doJSON(ctx context.Context, call Call, method, endpoint string, payload interface{}) (map[string]interface{}, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, ValidationErrorf("encode request body: %v", err)
	}
	return c.do(ctx, call, method, endpoint, "application/json", bytes.NewReader(buf))
}

// Accounts fetches one page of the accounts listing. The filter map is sent
// as the JSON request body.
func (c *Client) Accounts(ctx context.Context, call Call, params Params) (*AccountsPage, error) {
	endpoint := joinURL(call.BaseURL, "/v1/pilldoc/accounts")
	if params == nil {
		params = Params{}
	}
	resp, err := c.doJSON(ctx, call, http.MethodPost, endpoint, params)
	if err != nil {
		return nil, err
	}
	return pageFromResponse(resp), nil
}

func pageFromResponse(resp map[string]interface{}) *AccountsPage {
	page := &AccountsPage{TotalCount: -1, TotalPages: -1, Raw: resp}
	for _, key := range []string{"items", "data"} {
		if list, ok := resp[key].([]interface{}); ok {
			for _, item := range list {
				if m, ok := item.(map[string]interface{}); ok {
					page.Items = append(page.Items, Record(m))
				}
			}
			break
		}
	}
	if n, err := toInt(resp["totalCount"]); err == nil && resp["totalCount"] != nil {
		page.TotalCount = n
	}
	if n, err := toInt(resp["totalPage"]); err == nil && resp["totalPage"] != nil {
		page.TotalPages = n
	}
	if n, err := toInt(resp["nowPage"]); err == nil && resp["nowPage"] != nil {
		page.NowPage = n
	}
	return page
}

// User fetches the user detail for an account id.
func (c *Client) User(ctx context.Context, call Call, id string) (map[string]interface{}, error) {
	endpoint := joinURL(call.BaseURL, "/v1/pilldoc/user/"+url.PathEscape(id))
	return c.do(ctx, call, http.MethodGet, endpoint, "", nil)
}

// Pharm fetches the pharmacy detail for a normalized business number.
func (c *Client) Pharm(ctx context.Context, call Call, bizNo string) (map[string]interface{}, error) {
	endpoint := joinURL(call.BaseURL, "/v1/pilldoc/pharm/"+url.PathEscape(NormalizeBizNo(bizNo)))
	return c.do(ctx, call, http.MethodGet, endpoint, "", nil)
}

// AdpsRejects fetches the rejected ad campaigns for a business number.
func (c *Client) AdpsRejects(ctx context.Context, call Call, bizNo string) (map[string]interface{}, error) {
	endpoint := joinURL(call.BaseURL, "/v1/adps/campain/"+url.PathEscape(NormalizeBizNo(bizNo))+"/reject")
	return c.do(ctx, call, http.MethodGet, endpoint, "", nil)
}

// AdpsReject toggles the reject state of an ad campaign for a business number.
func (c *Client) AdpsReject(ctx context.Context, call Call, bizNo string, campaignID int, comment string) (map[string]interface{}, error) {
	endpoint := joinURL(call.BaseURL, "/v1/adps/campain/"+url.PathEscape(NormalizeBizNo(bizNo))+"/reject")
	payload := map[string]interface{}{
		"campaignId": campaignID,
		"comment":    comment,
	}
	return c.doJSON(ctx, call, http.MethodPost, endpoint, payload)
}

// updateContentTypes are tried in order when the caller asked for plain JSON;
// some deployments of the remote only accept one of the later variants and
// answer 415 to the others.
var updateContentTypes = []string{
	"application/json; charset=utf-8",
	"application/json",
	"application/merge-patch+json",
	"application/x-www-form-urlencoded",
}

// UpdateAccount issues a partial update (PATCH) against an account id. When
// contentType is the default JSON, 415 responses fall through the known
// content-type variants; any other failure aborts immediately.
func (c *Client) UpdateAccount(ctx context.Context, call Call, id string, body map[string]interface{}, contentType string) (map[string]interface{}, error) {
	endpoint := joinURL(call.BaseURL, "/v1/pilldoc/account/"+url.PathEscape(id))

	variants := []string{contentType}
	if contentType == "" || contentType == "application/json" {
		variants = updateContentTypes
	}

	var lastErr error
	for _, ct := range variants {
		var payload io.Reader
		if ct == "application/x-www-form-urlencoded" {
			form := url.Values{}
			for k, v := range body {
				form.Set(k, fmt.Sprintf("%v", v))
			}
			payload = strings.NewReader(form.Encode())
		} else {
			buf, err := json.Marshal(body)
			if err != nil {
				return nil, ValidationErrorf("encode update body: %v", err)
			}
			payload = bytes.NewReader(buf)
		}

		resp, err := c.do(ctx, call, http.MethodPatch, endpoint, ct, payload)
		if err == nil {
			return resp, nil
		}
		if pe := AsError(err); pe.Status != http.StatusUnsupportedMediaType {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// loginRequest is the login endpoint's payload.
type loginRequest struct {
	UserID       string `json:"userId"`
	Password     string `json:"password"`
	IsForceLogin bool   `json:"isForceLogin"`
}

// Login exchanges credentials for a bearer token. A duplicate-session
// rejection triggers exactly one forced retry when the caller did not already
// force.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	if creds.LoginURL == "" {
		return "", ConfigErrorf("login URL is not set; provide loginUrl or EDB_LOGIN_URL")
	}
	if creds.UserID == "" || creds.Password == "" {
		return "", ConfigErrorf("userId and password are required; provide them or set EDB_USER_ID/EDB_PASSWORD")
	}

	resp, err := c.doLogin(ctx, creds, creds.Force)

	// The duplicate-session rejection shows up either as an error status or
	// as a 200 whose body carries the rejection code but no token.
	duplicate := false
	if err != nil {
		duplicate = isDuplicateLogin(bodyOf(err))
	} else if ExtractToken(resp) == "" {
		duplicate = isDuplicateMap(resp)
	}
	if duplicate && !creds.Force {
		c.logger.Info("duplicate session detected, retrying login with force", "user_id", creds.UserID)
		resp, err = c.doLogin(ctx, creds, true)
	}
	if err != nil {
		pe := AsError(err)
		// Only an actual remote response is a rejection. Transport failures
		// and timeouts carry Status 0 and stay remote errors.
		if pe.Kind == KindAuth || (pe.Kind == KindRemote && pe.Status != 0) {
			return "", &Error{Kind: KindAuth, Message: "login rejected by remote", Endpoint: pe.Endpoint, Status: pe.Status, Body: pe.Body}
		}
		return "", err
	}

	token := ExtractToken(resp)
	if token == "" {
		return "", AuthErrorf("login response carried no recognizable token")
	}
	return token, nil
}

func bodyOf(err error) string {
	return AsError(err).Body
}

func (c *Client) doLogin(ctx context.Context, creds Credentials, force bool) (map[string]interface{}, error) {
	call := Call{Accept: "application/json", Timeout: creds.Timeout}
	payload := loginRequest{UserID: creds.UserID, Password: creds.Password, IsForceLogin: force}
	return c.doJSON(ctx, call, http.MethodPost, creds.LoginURL, payload)
}

// isDuplicateLogin recognizes the remote's duplicate-session rejection in a
// raw response body.
func isDuplicateLogin(body string) bool {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return false
	}
	return isDuplicateMap(data)
}

func isDuplicateMap(data map[string]interface{}) bool {
	if msg, ok := data["message"].(string); ok && strings.Contains(msg, "중복로그인") {
		return true
	}
	return fmt.Sprintf("%v", data["resultCode"]) == "4100"
}

// tokenKeys lists the response fields a token may live under, in priority
// order; containerKeys are the envelopes it may be nested in.
var (
	tokenKeys = []string{
		"accessToken", "access_token", "refreshToken", "refresh_token",
		"token", "jwt", "id_token", "idToken",
	}
	containerKeys = []string{"data", "result", "payload", "response"}
)

// ExtractToken digs a bearer token out of an arbitrarily nested login
// response.
func ExtractToken(data interface{}) string {
	switch v := data.(type) {
	case map[string]interface{}:
		for _, key := range tokenKeys {
			if s, ok := v[key].(string); ok {
				if t := strings.TrimSpace(s); t != "" {
					return t
				}
			}
		}
		for _, key := range containerKeys {
			if inner, ok := v[key]; ok {
				if t := ExtractToken(inner); t != "" {
					return t
				}
			}
		}
	case []interface{}:
		for _, item := range v {
			if t := ExtractToken(item); t != "" {
				return t
			}
		}
	}
	return ""
}
