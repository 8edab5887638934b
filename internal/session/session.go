// Package session maps opaque cookie tokens to usernames and carries the
// authenticated username through request contexts.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/cache"
)

const (
	CookieName         = "fintrack_session"
	DefaultMaxSessions = 10000
)

type Manager struct {
	tokens *cache.LRUCache[string]
	ttl    time.Duration
	secure bool
}

// NewManager creates a session manager. Sessions expire after ttl without
// activity; every authenticated request restarts the clock.
func NewManager(ttl time.Duration, secure bool, opts ...cache.Option) *Manager {
	return &Manager{
		tokens: cache.NewLRUCache[string](DefaultMaxSessions, ttl, opts...),
		ttl:    ttl,
		secure: secure,
	}
}

// Cleaner exposes the token cache so a cache.Manager can sweep it.
func (m *Manager) Cleaner() cache.Cleaner {
	return m.tokens
}

// Create starts a session for username and returns its token.
func (m *Manager) Create(username string) string {
	token := uuid.NewString()
	m.tokens.Set(token, username)
	return token
}

// Lookup returns the username bound to token and extends the session.
func (m *Manager) Lookup(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	username, ok := m.tokens.Get(token)
	if !ok {
		return "", false
	}
	m.tokens.Touch(token)
	return username, true
}

func (m *Manager) Destroy(token string) {
	m.tokens.Delete(token)
}

// Start creates a session and sets its cookie on w.
func (m *Manager) Start(w http.ResponseWriter, username string) {
	m.setCookie(w, m.Create(username), int(m.ttl.Seconds()))
}

// End destroys the request's session, if any, and expires the cookie.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		m.Destroy(c.Value)
	}
	m.setCookie(w, "", -1)
}

func (m *Manager) setCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest resolves the username of the request's session cookie.
func (m *Manager) FromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	return m.Lookup(c.Value)
}

// RequireUser puts the session's username into the request context, or
// redirects to loginPath when there is no valid session. The cookie is
// re-issued on every authenticated request so it lives as long as the
// server-side session.
func (m *Manager) RequireUser(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(CookieName)
			if err != nil {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			username, ok := m.Lookup(c.Value)
			if !ok {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			m.setCookie(w, c.Value, int(m.ttl.Seconds()))
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), username)))
		})
	}
}

type userKey struct{}

// WithUser returns ctx carrying the authenticated username.
func WithUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userKey{}, username)
}

// UserFrom returns the authenticated username carried by ctx.
func UserFrom(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(userKey{}).(string)
	return u, ok && u != ""
}
