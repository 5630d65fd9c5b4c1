package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"showroom-presence-svc/src/clients"
	"showroom-presence-svc/src/internal/config"
	"showroom-presence-svc/src/internal/dependency"
	"showroom-presence-svc/src/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg *config.Configuration
}

func New(cfg *config.Configuration) *Server {
	return &Server{cfg: cfg}
}

// Start connects the configured backends, serves HTTP and runs the session
// sweeper until SIGINT or SIGTERM.
func (s *Server) Start() error {
	cfg := s.cfg

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	mongodb, redisClient, rabbitMQ := connectClients(cfg)

	router := NewRouter()
	deps := dependency.NewDependencyManager(router, mongodb, redisClient, rabbitMQ, cfg)
	SetupRoutes(deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		deps.PresenceService.Run(ctx)
	}()

	eventsDone := make(chan struct{})
	go func() {
		defer close(eventsDone)
		if deps.PresenceEvents != nil {
			deps.PresenceEvents.Run(ctx)
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Server listening on port %s", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serveErr:
		runErr = err
		stop()
	}

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}

	<-sweeperDone
	<-eventsDone
	deps.Close(shutdownCtx)

	log.Info("Server stopped")
	return runErr
}

// NewRouter returns a gin engine with the common middleware chain.
func NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger())
	return router
}

// connectClients dials every backend that has a URL configured. A backend
// that cannot be reached is logged and left out.
func connectClients(cfg *config.Configuration) (*clients.MongoDB, *clients.RedisClient, *clients.RabbitMQ) {
	var mongodb *clients.MongoDB
	if cfg.Database.Url != "" {
		db, err := clients.NewMongoDB(&cfg.Database)
		if err != nil {
			log.WithError(err).Warn("MongoDB unavailable, session history disabled")
		} else {
			mongodb = db
		}
	}

	var redisClient *clients.RedisClient
	if cfg.Redis.Url != "" {
		client, err := clients.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, stats cache disabled")
		} else {
			redisClient = client
		}
	}

	var rabbitMQ *clients.RabbitMQ
	if cfg.Queue.RabbitMQ.Url != "" {
		mq, err := clients.NewRabbitMQ(&cfg.Queue.RabbitMQ)
		if err != nil {
			log.WithError(err).Warn("RabbitMQ unavailable, activity events disabled")
		} else if err := mq.SetupExchange(); err != nil {
			log.WithError(err).Warn("RabbitMQ exchange setup failed, activity events disabled")
			_ = mq.Close()
		} else {
			rabbitMQ = mq
		}
	}

	return mongodb, redisClient, rabbitMQ
}
