package pilldoc

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials identify one remote login. Force requests a session takeover on
// the first attempt instead of waiting for a duplicate-session rejection.
type Credentials struct {
	UserID   string
	Password string
	LoginURL string
	Force    bool
	Timeout  time.Duration
}

// CacheKey identifies a cache slot. Tokens are scoped per user and login
// endpoint so two environments sharing a user id never cross-contaminate.
type CacheKey struct {
	UserID   string
	LoginURL string
}

func (c Credentials) cacheKey() CacheKey {
	return CacheKey{UserID: c.UserID, LoginURL: c.LoginURL}
}

// TokenCache is a concurrency-safe token store. Last writer wins on
// concurrent logins for the same key; both tokens are valid remotely, so
// which one survives is immaterial.
type TokenCache struct {
	mu     sync.RWMutex
	tokens map[CacheKey]string
}

// NewTokenCache creates an empty cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{tokens: make(map[CacheKey]string)}
}

// Get returns the cached token for the key, if any.
func (c *TokenCache) Get(key CacheKey) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tok, ok := c.tokens[key]
	return tok, ok
}

// Put stores a token for the key.
func (c *TokenCache) Put(key CacheKey, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[key] = token
}

// Invalidate drops the cached token for the key.
func (c *TokenCache) Invalidate(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, key)
}

// Len reports the number of cached tokens.
func (c *TokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tokens)
}

// loginClient is the slice of Client the provider needs; tests substitute a
// fake.
type loginClient interface {
	Login(ctx context.Context, creds Credentials) (string, error)
}

// TokenProvider resolves bearer tokens, reusing cached ones across calls
// within the process. Tokens never persist beyond process lifetime.
type TokenProvider struct {
	cache  *TokenCache
	client loginClient
	logger *slog.Logger
}

// NewTokenProvider creates a provider backed by a fresh cache.
func NewTokenProvider(client loginClient, logger *slog.Logger) *TokenProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenProvider{
		cache:  NewTokenCache(),
		client: client,
		logger: logger,
	}
}

// Token returns a bearer token for the credentials, logging in only when the
// cache has no usable entry. Force always performs a fresh login.
func (p *TokenProvider) Token(ctx context.Context, creds Credentials) (string, error) {
	key := creds.cacheKey()
	if !creds.Force {
		if tok, ok := p.cache.Get(key); ok {
			if tokenUsable(tok) {
				p.logger.Debug("token cache hit", "user_id", creds.UserID)
				return tok, nil
			}
			p.logger.Debug("cached token expired, re-authenticating", "user_id", creds.UserID)
			p.cache.Invalidate(key)
		}
	}
	return p.Refresh(ctx, creds)
}

// Refresh performs a fresh login regardless of cache state and stores the
// result. Used by the paginator after a mid-run auth failure.
func (p *TokenProvider) Refresh(ctx context.Context, creds Credentials) (string, error) {
	tok, err := p.client.Login(ctx, creds)
	if err != nil {
		return "", err
	}
	p.cache.Put(creds.cacheKey(), tok)
	p.logger.Info("authenticated", "user_id", creds.UserID)
	return tok, nil
}

// Invalidate drops the cached token for the credentials.
func (p *TokenProvider) Invalidate(creds Credentials) {
	p.cache.Invalidate(creds.cacheKey())
}

// expirySkew rejects cached tokens this close to expiry so a long pagination
// run does not start on a token about to die.
const expirySkew = 30 * time.Second

// TokenExpiry returns the exp claim of a JWT bearer, decoded without
// signature verification. ok is false for opaque tokens and JWTs carrying no
// exp claim.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// tokenUsable reports whether a cached token is still worth presenting. An
// opaque (non-JWT) token or a JWT without an exp claim is assumed usable; the
// remote is the final authority either way.
func tokenUsable(token string) bool {
	exp, ok := TokenExpiry(token)
	if !ok {
		return true
	}
	return time.Until(exp) > expirySkew
}
