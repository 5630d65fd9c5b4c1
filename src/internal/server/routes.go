package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"time"

	"showroom-presence-svc/src/internal/dependency"
	"showroom-presence-svc/src/internal/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(deps *dependency.Manager) {
	router := deps.Router
	router.Use(deps.SessionTracker.Track())

	setupHealthEndpoint(deps)
	setupPublicRoutes(router, deps)
	setupCatalogRoutes(router, deps)
	setupPresenceRoutes(router, deps)
}

func setupHealthEndpoint(deps *dependency.Manager) {
	router := deps.Router
	cfg := deps.Config

	router.GET("/health", func(c *gin.Context) {
		log.Debug("Health check endpoint requested")

		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   cfg.App.Name,
			"version":   cfg.App.Version,
			"sessions":  deps.PresenceStore.Len(),
			"timestamp": models.FormatTimestamp(time.Now()),
		})
	})

	router.GET("/health/detailed", func(c *gin.Context) {
		log.Debug("Detailed health check endpoint requested")

		c.JSON(http.StatusOK, gin.H{
			"status":  "operational",
			"service": cfg.App.Name,
			"version": cfg.App.Version,
			"components": gin.H{
				"mongodb":  mongoStatus(deps, c),
				"redis":    redisStatus(deps, c),
				"rabbitmq": rabbitStatus(deps),
			},
		})
	})
}

func setupPublicRoutes(router *gin.Engine, deps *dependency.Manager) {
	router.GET("/api/ping", func(c *gin.Context) {
		now := time.Now()
		c.JSON(http.StatusOK, gin.H{
			"status":      "online",
			"message":     deps.Config.App.Name + " API is running",
			"timestamp":   models.FormatTimestamp(now),
			"server_time": now.Format("2006-01-02 15:04:05"),
		})
	})

	router.GET("/manifest.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, loadManifest(deps.Config.Static.ManifestPath))
	})

	if dir := deps.Config.Static.Dir; dir != "" {
		router.Static("/static", dir)
		router.StaticFile("/sw.js", dir+"/sw.js")
	}
}

func setupCatalogRoutes(router *gin.Engine, deps *dependency.Manager) {
	handler := deps.CatalogHandler

	api := router.Group("/api")
	{
		api.GET("/products", handler.GetProducts)
		api.GET("/cart", handler.GetCart)
		api.POST("/cart", handler.AddToCart)
		api.DELETE("/cart/:index", handler.RemoveFromCart)
		api.POST("/update_timers", handler.UpdateTimers)
	}
}

func setupPresenceRoutes(router *gin.Engine, deps *dependency.Manager) {
	handler := deps.PresenceHandler

	api := router.Group("/api")
	{
		api.GET("/connected_count", handler.ConnectedCount)
		api.GET("/connected_users", handler.ConnectedUsers)
		api.POST("/user_heartbeat", handler.Heartbeat)
		api.GET("/session_info", handler.SessionInfo)
		api.GET("/stats", handler.Stats)
		api.GET("/session_history", handler.History)
	}
}

func defaultManifest(name string) gin.H {
	return gin.H{
		"name":             name,
		"short_name":       name,
		"description":      "New, unique and imported garments",
		"start_url":        ".",
		"display":          "standalone",
		"background_color": "#667eea",
		"theme_color":      "#667eea",
	}
}

// loadManifest reads the manifest file, falling back to a built-in one when
// the file is missing or unreadable.
func loadManifest(path string) interface{} {
	fallback := defaultManifest("Showroom +Roma")
	if path == "" {
		return fallback
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.WithError(err).WithField("path", path).Warn("Failed to read manifest")
		}
		return fallback
	}

	var manifest map[string]interface{}
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.WithError(err).WithField("path", path).Warn("Invalid manifest file")
		return fallback
	}
	return manifest
}

func mongoStatus(deps *dependency.Manager, c *gin.Context) string {
	if deps.Mongodb == nil {
		return "disabled"
	}
	return getStatus(deps.Mongodb.Ping(c.Request.Context()) == nil)
}

func redisStatus(deps *dependency.Manager, c *gin.Context) string {
	if deps.Redis == nil {
		return "disabled"
	}
	return getStatus(deps.Redis.Client.Ping(c.Request.Context()).Err() == nil)
}

func rabbitStatus(deps *dependency.Manager) string {
	if deps.RabbitMQ == nil {
		return "disabled"
	}
	return getStatus(!deps.RabbitMQ.Conn.IsClosed())
}

func getStatus(b bool) string {
	if b {
		return "connected"
	}
	return "disconnected"
}
