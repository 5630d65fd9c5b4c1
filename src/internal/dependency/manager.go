package dependency

import (
	"context"
	"time"

	"showroom-presence-svc/src/clients"
	"showroom-presence-svc/src/internal/cache"
	"showroom-presence-svc/src/internal/catalog"
	"showroom-presence-svc/src/internal/config"
	"showroom-presence-svc/src/internal/middleware"
	"showroom-presence-svc/src/internal/presence"
	"showroom-presence-svc/src/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Manager owns every long-lived component of the service. The optional
// infrastructure clients are nil when not configured.
type Manager struct {
	Router          *gin.Engine
	Config          *config.Configuration
	Mongodb         *clients.MongoDB
	Redis           *clients.RedisClient
	RabbitMQ        *clients.RabbitMQ
	PresenceStore   *presence.Store
	PresenceService presence.Service
	PresenceEvents  *presence.AsyncObserver
	PresenceHandler presence.Handler
	CatalogService  catalog.Service
	CatalogHandler  catalog.Handler
	CacheService    cache.Service
	SessionTracker  *middleware.SessionTracker
}

func NewDependencyManager(router *gin.Engine,
	mongodb *clients.MongoDB,
	redisClient *clients.RedisClient,
	rabbitMQ *clients.RabbitMQ,
	cfg *config.Configuration,
	opts ...presence.Option) *Manager {
	var redisConn *redis.Client
	if redisClient != nil {
		redisConn = redisClient.Client
	}
	cacheService := cache.NewCacheService(redisConn, cfg)

	dbTimeout := time.Duration(cfg.Database.Timeout) * time.Second

	var observers presence.Observers
	var historyRepo presence.Repository
	if mongodb != nil {
		historyRepo = presence.NewRepository(mongodb, cfg.Database.SessionHistoryCollection)
		observers = append(observers, presence.NewArchiveObserver(historyRepo, dbTimeout))
	}
	if rabbitMQ != nil {
		publisher := clients.NewActivityPublisher(rabbitMQ.Channel, &cfg.Queue.RabbitMQ)
		observers = append(observers, presence.NewActivityObserver(publisher))
	}

	var events *presence.AsyncObserver
	var observer presence.Observer
	if len(observers) > 0 {
		events = presence.NewAsyncObserver(observers, cfg.Presence.EventBuffer)
		observer = events
	}

	store := presence.NewStore()
	presenceService := presence.NewService(store, presence.SettingsFromConfig(cfg.Presence), observer, opts...)

	catalogService := catalog.NewService(cfg.Catalog.Products)
	catalogHandler := catalog.NewHandler(catalogService)

	appTimeout := time.Duration(cfg.App.Timeout) * time.Second
	presenceHandler := presence.NewHandler(presenceService, catalogService, cacheService, historyRepo, appTimeout)

	tokens := session.NewTokenManager(cfg.Session.Secret, time.Duration(cfg.Session.MaxAge)*time.Second)
	tracker := middleware.NewSessionTracker(tokens, presenceService, cfg.Session, cfg.Presence.SkipPaths)

	logrus.WithFields(logrus.Fields{
		"mongodb":  mongodb != nil,
		"redis":    redisClient != nil,
		"rabbitmq": rabbitMQ != nil,
	}).Info("Dependencies initialized")

	return &Manager{
		Router:          router,
		Config:          cfg,
		Mongodb:         mongodb,
		Redis:           redisClient,
		RabbitMQ:        rabbitMQ,
		PresenceStore:   store,
		PresenceService: presenceService,
		PresenceEvents:  events,
		PresenceHandler: presenceHandler,
		CatalogService:  catalogService,
		CatalogHandler:  catalogHandler,
		CacheService:    cacheService,
		SessionTracker:  tracker,
	}
}

// Close releases the infrastructure clients.
func (m *Manager) Close(ctx context.Context) {
	if m.RabbitMQ != nil {
		_ = m.RabbitMQ.Close()
	}
	if m.Redis != nil {
		_ = m.Redis.Close()
	}
	if m.Mongodb != nil {
		_ = m.Mongodb.Close(ctx)
	}
}
