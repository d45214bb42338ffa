// Package session holds the opaque bearer credential used by
// authenticated storefront calls. The token is issued elsewhere; the
// only local inspection is a best-effort expiry check so calls with a
// clearly dead credential fail before touching the network.
package session

import (
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const expiryLeeway = 5 * time.Second

// Credentials stores the bearer token shared by every authenticated
// client call. Safe for concurrent use.
type Credentials struct {
	mu    sync.RWMutex
	token string

	// onAuthFailure, when set, runs after an auth failure is observed
	// (expired local token or a 401 surfaced by a caller). The UI layer
	// uses it to redirect to the login entry point.
	onAuthFailure func()

	now func() time.Time
}

// NewCredentials returns an empty credential holder.
func NewCredentials() *Credentials {
	return &Credentials{now: time.Now}
}

// OnAuthFailure registers the redirect hook. Only one hook is kept.
func (c *Credentials) OnAuthFailure(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAuthFailure = fn
}

// SetToken replaces the stored bearer token.
func (c *Credentials) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

// Token returns the stored bearer token, empty when logged out.
func (c *Credentials) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Clear drops the stored token.
func (c *Credentials) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

// Present reports whether any token is stored.
func (c *Credentials) Present() bool {
	return c.Token() != ""
}

// Valid reports whether the stored token is present and not locally
// known to be expired. The token is treated as opaque: if it does not
// parse as a JWT, or parses without an exp claim, the server stays
// authoritative and Valid returns true.
func (c *Credentials) Valid() bool {
	token := c.Token()
	if token == "" {
		return false
	}
	exp, ok := c.expiration(token)
	if !ok {
		return true
	}
	return c.now().Before(exp.Add(expiryLeeway))
}

// ExpiresSoon reports whether the stored token expires within the
// given window. Opaque tokens never expire soon; a missing token does.
func (c *Credentials) ExpiresSoon(within time.Duration) bool {
	token := c.Token()
	if token == "" {
		return true
	}
	exp, ok := c.expiration(token)
	if !ok {
		return false
	}
	return !c.now().Add(within).Before(exp)
}

func (c *Credentials) expiration(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// NotifyAuthFailure invokes the registered redirect hook, if any.
func (c *Credentials) NotifyAuthFailure() {
	c.mu.RLock()
	fn := c.onAuthFailure
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
