package presence

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"showroom-presence-svc/src/internal/models"
	"showroom-presence-svc/src/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCart struct{ items, products int }

func (s staticCart) CartItems() int     { return s.items }
func (s staticCart) ProductsCount() int { return s.products }

type memoryCache struct {
	stats *models.Stats
	saves int
}

func (m *memoryCache) SaveStats(_ context.Context, stats *models.Stats) error {
	m.saves++
	m.stats = stats
	return nil
}

func (m *memoryCache) GetStats(context.Context) (*models.Stats, error) {
	return m.stats, nil
}

type stubRepository struct {
	entries []HistoryEntry
	err     error
	limit   int64
}

func (s *stubRepository) Archive(context.Context, []Record) error { return nil }

func (s *stubRepository) Recent(_ context.Context, limit int64) ([]HistoryEntry, error) {
	s.limit = limit
	return s.entries, s.err
}

func newHandlerRouter(h Handler, sessionID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if sessionID != "" {
			c.Set(session.ContextKeyID, sessionID)
		}
		c.Next()
	})
	router.GET("/api/connected_count", h.ConnectedCount)
	router.GET("/api/connected_users", h.ConnectedUsers)
	router.POST("/api/user_heartbeat", h.Heartbeat)
	router.GET("/api/session_info", h.SessionInfo)
	router.GET("/api/stats", h.Stats)
	router.GET("/api/session_history", h.History)
	return router
}

func doRequest(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Heartbeat(t *testing.T) {
	clock := newFakeClock()
	svc, store := newTestService(clock, nil)
	rec := svc.Track(Visit{Path: "/"})
	h := NewHandler(svc, staticCart{}, &memoryCache{}, nil, time.Second)

	t.Run("refreshes known session", func(t *testing.T) {
		clock.Advance(10 * time.Second)
		w := doRequest(newHandlerRouter(h, rec.SessionID), http.MethodPost, "/api/user_heartbeat",
			map[string]string{"Referer": "/products"})

		require.Equal(t, http.StatusOK, w.Code)
		var body HeartbeatResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, rec.SessionID, body.SessionID)

		updated, _ := store.Get(rec.SessionID)
		assert.Equal(t, "/products", updated.CurrentPage)
		assert.True(t, updated.LastSeen.Equal(clock.Now()))
	})

	t.Run("rejects missing session", func(t *testing.T) {
		w := doRequest(newHandlerRouter(h, ""), http.MethodPost, "/api/user_heartbeat", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_ConnectedEndpoints(t *testing.T) {
	clock := newFakeClock()
	svc, _ := newTestService(clock, nil)
	rec := svc.Track(Visit{IP: "10.1.1.1", UserAgent: "Firefox", Path: "/"})
	router := newHandlerRouter(NewHandler(svc, staticCart{}, &memoryCache{}, nil, time.Second), rec.SessionID)

	w := doRequest(router, http.MethodGet, "/api/connected_count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var count map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &count))
	assert.EqualValues(t, 1, count["connected_count"])
	assert.NotEmpty(t, count["timestamp"])

	w = doRequest(router, http.MethodGet, "/api/connected_users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users ConnectedUsersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Equal(t, 1, users.TotalConnected)
	assert.Equal(t, "10.1.1.1", users.ActiveUsers[rec.SessionID].IP)

	w = doRequest(router, http.MethodGet, "/api/session_info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, rec.SessionID, info["session_id"])
	assert.NotNil(t, info["created_at"])
	assert.EqualValues(t, 1, info["connected_users_count"])
}

func TestHandler_Stats(t *testing.T) {
	clock := newFakeClock()
	svc, _ := newTestService(clock, nil)
	svc.Track(Visit{UserAgent: "Chrome", Path: "/"})
	cache := &memoryCache{}
	router := newHandlerRouter(NewHandler(svc, staticCart{items: 3, products: 2}, cache, nil, time.Second), "")

	w := doRequest(router, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 1, stats.ActiveLastMinute)
	assert.Equal(t, 3, stats.CartItems)
	assert.Equal(t, 2, stats.ProductsCount)
	assert.Equal(t, map[string]int{"Chrome": 1}, stats.BrowserDistribution)
	assert.Equal(t, 1, cache.saves)

	svc.Track(Visit{UserAgent: "Firefox", Path: "/"})
	w = doRequest(router, http.MethodGet, "/api/stats", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalSessions, "cached stats are served while fresh")
	assert.Equal(t, 1, cache.saves)
}

func TestHandler_History(t *testing.T) {
	clock := newFakeClock()
	svc, _ := newTestService(clock, nil)

	t.Run("unavailable without repository", func(t *testing.T) {
		router := newHandlerRouter(NewHandler(svc, staticCart{}, &memoryCache{}, nil, time.Second), "")

		w := doRequest(router, http.MethodGet, "/api/session_history", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("returns entries with limit", func(t *testing.T) {
		repo := &stubRepository{entries: []HistoryEntry{{Record: Record{SessionID: "old"}, ExpiredAt: clock.Now()}}}
		router := newHandlerRouter(NewHandler(svc, staticCart{}, &memoryCache{}, repo, time.Second), "")

		w := doRequest(router, http.MethodGet, "/api/session_history?limit=5", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 5, repo.limit)

		var body struct {
			Sessions []map[string]interface{} `json:"sessions"`
			Count    int                      `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 1, body.Count)
		assert.Equal(t, "old", body.Sessions[0]["session_id"])
	})

	t.Run("rejects bad limit", func(t *testing.T) {
		router := newHandlerRouter(NewHandler(svc, staticCart{}, &memoryCache{}, &stubRepository{}, time.Second), "")

		w := doRequest(router, http.MethodGet, "/api/session_history?limit=-2", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := &stubRepository{err: errors.New("mongo down")}
		router := newHandlerRouter(NewHandler(svc, staticCart{}, &memoryCache{}, repo, time.Second), "")

		w := doRequest(router, http.MethodGet, "/api/session_history", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.EqualValues(t, defaultHistoryLimit, repo.limit)
	})
}
