// package auth holds the FLO sign-in token cache.
//
// [TokenCache] keeps at most one access token. The first [TokenCache.Token] call signs in and
// arms an expiry timer; later calls return the cached token without network I/O until the timer
// fires or [TokenCache.Invalidate] is called.
//
// Concurrent callers that find the cache empty are not serialized: each may sign in, and the last
// token stored wins. The only cost is a redundant login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flox/internal/shared"
	"golang.org/x/oauth2"
)

// TokenTTL is how long a FLO access token is reused before signing in again.
const TokenTTL = 7 * 24 * time.Hour

// TokenType is the header FLO expects the access token in.
const TokenType = "x-gm-access-token"

// Authenticator signs a FLO member in and returns an access token.
type Authenticator interface {
	SignIn(ctx context.Context, username, password, deviceID string) (string, error)
}

// Credentials is the member account used for sign-in.
type Credentials struct {
	Username string
	Password string
}

// TokenCache is a single-slot access token cache with a fixed lifetime.
type TokenCache struct {
	authenticator Authenticator
	credentials   Credentials
	clock         Clock
	deviceID      DeviceIDGenerator
	ttl           time.Duration
	logger        *log.Logger

	mu         sync.Mutex
	token      *oauth2.Token
	createdAt  time.Time
	timer      Timer
	generation uint64
}

// Option configures a [TokenCache].
type Option func(*TokenCache)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(tc *TokenCache) { tc.clock = c }
}

// WithDeviceID replaces the device identifier strategy.
func WithDeviceID(g DeviceIDGenerator) Option {
	return func(tc *TokenCache) { tc.deviceID = g }
}

// WithTTL overrides [TokenTTL].
func WithTTL(ttl time.Duration) Option {
	return func(tc *TokenCache) { tc.ttl = ttl }
}

// WithLogger sets the logger used for sign-in and expiry events.
func WithLogger(l *log.Logger) Option {
	return func(tc *TokenCache) { tc.logger = l }
}

// NewTokenCache creates an empty cache that signs in through a with creds.
func NewTokenCache(a Authenticator, creds Credentials, opts ...Option) *TokenCache {
	tc := &TokenCache{
		authenticator: a,
		credentials:   creds,
		clock:         SystemClock(),
		deviceID:      NewDeviceID,
		ttl:           TokenTTL,
	}
	for _, opt := range opts {
		opt(tc)
	}
	if tc.logger == nil {
		tc.logger = shared.DiscardLogger()
	}
	return tc
}

// Token returns the cached access token, signing in first if the cache is empty.
//
// Sign-in failures are wrapped in [shared.ErrAuthentication] and leave the cache empty.
func (c *TokenCache) Token(ctx context.Context) (*oauth2.Token, error) {
	if tok := c.cached(); tok != nil {
		return tok, nil
	}

	deviceID := c.deviceID()
	c.logger.Info("signing in to FLO", "user", c.credentials.Username, "device", deviceID)

	access, err := c.authenticator.SignIn(ctx, c.credentials.Username, c.credentials.Password, deviceID)
	if err != nil {
		if errors.Is(err, shared.ErrAuthentication) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthentication, err)
	}
	if access == "" {
		return nil, fmt.Errorf("%w: empty access token", shared.ErrAuthentication)
	}

	return c.store(access), nil
}

// GetToken returns the bare access token string.
func (c *TokenCache) GetToken(ctx context.Context) (string, error) {
	tok, err := c.Token(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// TokenSource adapts the cache to [oauth2.TokenSource], binding ctx to every sign-in it triggers.
func (c *TokenCache) TokenSource(ctx context.Context) oauth2.TokenSource {
	return tokenSource{ctx: ctx, cache: c}
}

type tokenSource struct {
	ctx   context.Context
	cache *TokenCache
}

func (s tokenSource) Token() (*oauth2.Token, error) {
	return s.cache.Token(s.ctx)
}

// Invalidate empties the cache and cancels the pending expiry.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Valid reports whether a token is cached.
func (c *TokenCache) Valid() bool {
	return c.cached() != nil
}

func (c *TokenCache) cached() *oauth2.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == nil {
		return nil
	}
	tok := *c.token
	return &tok
}

// store replaces the slot with access and arms its expiry. A superseded token's timer is stopped.
func (c *TokenCache) store(access string) *oauth2.Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}

	now := c.clock.Now()
	c.generation++
	gen := c.generation
	c.createdAt = now
	c.token = &oauth2.Token{
		AccessToken: access,
		TokenType:   TokenType,
		Expiry:      now.Add(c.ttl),
	}
	c.timer = c.clock.AfterFunc(c.ttl, func() { c.expire(gen) })

	c.logger.Info("FLO token cached", "expires", c.token.Expiry.Format(time.RFC3339))

	tok := *c.token
	return &tok
}

// expire clears the slot if it still holds the token of generation gen.
func (c *TokenCache) expire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return
	}
	c.logger.Info("FLO token expired", "age", c.clock.Now().Sub(c.createdAt))
	c.token = nil
	c.timer = nil
}

func (c *TokenCache) clearLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.generation++
	c.token = nil
	c.timer = nil
	c.createdAt = time.Time{}
}
