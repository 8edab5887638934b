package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/internal/cache"
)

func TestCreateLookupDestroy(t *testing.T) {
	m := NewManager(time.Hour, false)
	token := m.Create("ana")
	if u, ok := m.Lookup(token); !ok || u != "ana" {
		t.Fatalf("lookup: %q %v", u, ok)
	}
	m.Destroy(token)
	if _, ok := m.Lookup(token); ok {
		t.Fatalf("destroyed session still valid")
	}
	if _, ok := m.Lookup(""); ok {
		t.Fatalf("empty token must not resolve")
	}
}

func TestSessionExpires(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(time.Minute, false, cache.WithClock(func() time.Time { return now }))
	token := m.Create("ana")
	now = now.Add(2 * time.Minute)
	if _, ok := m.Lookup(token); ok {
		t.Fatalf("expired session still valid")
	}
}

func TestRequireUser(t *testing.T) {
	m := NewManager(time.Hour, true)
	var seen string
	h := m.RequireUser("/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("anonymous request: %d %s", rec.Code, rec.Header().Get("Location"))
	}

	login := httptest.NewRecorder()
	m.Start(login, "ana")
	cookies := login.Result().Cookies()
	if len(cookies) != 1 || !cookies[0].HttpOnly || !cookies[0].Secure {
		t.Fatalf("unexpected cookie: %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen != "ana" {
		t.Fatalf("authenticated request: %d user=%q", rec.Code, seen)
	}
}

func TestRequireUserRefreshesCookie(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	m := NewManager(time.Hour, false, cache.WithClock(func() time.Time { return now }))
	h := m.RequireUser("/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	token := m.Create("ana")

	// Active every 40 minutes for three hours: the session and its cookie
	// must both outlive the one-hour TTL.
	for i := 0; i < 5; i++ {
		now = now.Add(40 * time.Minute)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
		c := rec.Result().Cookies()
		if len(c) != 1 || c[0].Value != token || c[0].MaxAge != int(time.Hour.Seconds()) {
			t.Fatalf("request %d: cookie not refreshed: %+v", i, c)
		}
	}
}

func TestEndExpiresCookie(t *testing.T) {
	m := NewManager(time.Hour, false)
	token := m.Create("ana")
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	m.End(rec, req)

	if _, ok := m.Lookup(token); ok {
		t.Fatalf("session survived logout")
	}
	c := rec.Result().Cookies()
	if len(c) != 1 || c[0].MaxAge >= 0 {
		t.Fatalf("cookie not expired: %+v", c)
	}
}

func TestUserFromEmpty(t *testing.T) {
	if _, ok := UserFrom(context.Background()); ok {
		t.Fatalf("empty context must not carry a user")
	}
	if _, ok := UserFrom(WithUser(context.Background(), "")); ok {
		t.Fatalf("blank username must not count")
	}
}
