package presence

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"showroom-presence-svc/src/internal/cache"
	"showroom-presence-svc/src/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultHistoryLimit = 50

type Handler interface {
	ConnectedCount(c *gin.Context)
	ConnectedUsers(c *gin.Context)
	Heartbeat(c *gin.Context)
	SessionInfo(c *gin.Context)
	Stats(c *gin.Context)
	History(c *gin.Context)
}

// CartCounter exposes the catalog sizes reported by the stats endpoint.
type CartCounter interface {
	CartItems() int
	ProductsCount() int
}

type handler struct {
	service      Service
	cart         CartCounter
	cacheService cache.Service
	repository   Repository
	timeout      time.Duration
}

// NewHandler builds the presence handlers. repository may be nil when no
// history store is configured.
func NewHandler(service Service, cart CartCounter, cacheService cache.Service,
	repository Repository, timeout time.Duration) Handler {
	return &handler{
		service:      service,
		cart:         cart,
		cacheService: cacheService,
		repository:   repository,
		timeout:      timeout,
	}
}

func (h *handler) ConnectedCount(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ConnectedCount())
}

func (h *handler) ConnectedUsers(c *gin.Context) {
	response := h.service.ConnectedUsers()

	logrus.WithField("total_connected", response.TotalConnected).Debug("Connected users requested")

	c.JSON(http.StatusOK, response)
}

func (h *handler) Heartbeat(c *gin.Context) {
	sessionID := c.GetString(session.ContextKeyID)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Session is required",
			"message": "Heartbeat requests must carry a session",
		})
		return
	}

	c.JSON(http.StatusOK, h.service.Heartbeat(sessionID, c.GetHeader("Referer")))
}

func (h *handler) SessionInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.SessionInfo(c.GetString(session.ContextKeyID)))
}

func (h *handler) Stats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	cached, err := h.cacheService.GetStats(ctx)
	if err == nil && cached != nil {
		logrus.Debug("Stats retrieved from cache")
		c.JSON(http.StatusOK, cached)
		return
	}

	stats := h.service.Stats()
	stats.CartItems = h.cart.CartItems()
	stats.ProductsCount = h.cart.ProductsCount()

	if err := h.cacheService.SaveStats(ctx, stats); err != nil {
		logrus.WithError(err).Warn("Failed to cache stats")
	}

	c.JSON(http.StatusOK, stats)
}

func (h *handler) History(c *gin.Context) {
	if h.repository == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Session history unavailable",
			"message": "No history database is configured",
		})
		return
	}

	limit := int64(defaultHistoryLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid limit",
				"message": "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	entries, err := h.repository.Recent(ctx, limit)
	if err != nil {
		logrus.WithError(err).Error("Failed to load session history")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve session history",
			"message": err.Error(),
		})
		return
	}

	if entries == nil {
		entries = []HistoryEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": entries,
		"count":    len(entries),
	})
}
