package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"showroom-presence-svc/src/internal/config"
	"showroom-presence-svc/src/internal/presence"
	"showroom-presence-svc/src/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackerFixture struct {
	store   *presence.Store
	tokens  *session.TokenManager
	router  *gin.Engine
	tracker *SessionTracker
}

func newTrackerFixture(skip ...string) *trackerFixture {
	gin.SetMode(gin.TestMode)

	store := presence.NewStore()
	svc := presence.NewService(store, presence.DefaultSettings(), nil)
	tokens := session.NewTokenManager("secret", time.Hour)
	cfg := config.SessionSettings{CookieName: "session", HttpOnly: true}
	tracker := NewSessionTracker(tokens, svc, cfg, skip)

	router := gin.New()
	router.Use(tracker.Track())
	router.GET("/*path", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(session.ContextKeyID))
	})

	return &trackerFixture{store: store, tokens: tokens, router: router, tracker: tracker}
}

func (f *trackerFixture) get(path string, cookie *http.Cookie, userAgent string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.RemoteAddr = "192.0.2.10:5555"
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "session" {
			return cookie
		}
	}
	return nil
}

func TestSessionTracker_NewSession(t *testing.T) {
	f := newTrackerFixture()

	w := f.get("/products", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	sessionID := w.Body.String()
	require.NotEmpty(t, sessionID)

	cookie := findCookie(w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	claims, err := f.tokens.Parse(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, sessionID, claims.SessionID)

	rec, ok := f.store.Get(sessionID)
	require.True(t, ok)
	assert.Equal(t, "192.0.2.10", rec.IP)
	assert.Equal(t, presence.UnknownAgent, rec.UserAgent)
	assert.Equal(t, "/products", rec.CurrentPage)
}

func TestSessionTracker_ReusesSessionFromCookie(t *testing.T) {
	f := newTrackerFixture()

	first := f.get("/", nil, "Chrome")
	cookie := findCookie(first)
	require.NotNil(t, cookie)

	second := f.get("/cart", cookie, "Firefox")

	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, f.store.Len())

	rec, _ := f.store.Get(first.Body.String())
	assert.Equal(t, "/cart", rec.CurrentPage)
	assert.Equal(t, "Firefox", rec.UserAgent)
}

func TestSessionTracker_RestoresEvictedSession(t *testing.T) {
	f := newTrackerFixture()
	createdAt := time.Now().Add(-time.Hour).Truncate(time.Second)
	token, err := f.tokens.Issue("returning", createdAt, createdAt, time.Now())
	require.NoError(t, err)

	w := f.get("/", &http.Cookie{Name: "session", Value: token}, "")

	assert.Equal(t, "returning", w.Body.String())
	rec, ok := f.store.Get("returning")
	require.True(t, ok)
	assert.True(t, rec.CreatedAt.Equal(createdAt))
}

func TestSessionTracker_InvalidCookieStartsNewSession(t *testing.T) {
	f := newTrackerFixture()

	w := f.get("/", &http.Cookie{Name: "session", Value: "tampered"}, "")

	assert.NotEmpty(t, w.Body.String())
	assert.NotEqual(t, "tampered", w.Body.String())
	assert.Equal(t, 1, f.store.Len())
}

func TestSessionTracker_SkipPaths(t *testing.T) {
	f := newTrackerFixture("/health")

	w := f.get("/health", nil, "")

	assert.Empty(t, w.Body.String())
	assert.Nil(t, findCookie(w))
	assert.Equal(t, 0, f.store.Len())
}
