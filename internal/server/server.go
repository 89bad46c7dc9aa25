package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/crossstore/hub/internal/api/middleware"
	"github.com/crossstore/hub/internal/broker"
	"github.com/crossstore/hub/internal/infrastructure/config"
	"github.com/crossstore/hub/internal/infrastructure/logging"
	"github.com/crossstore/hub/internal/infrastructure/monitoring"
	"github.com/crossstore/hub/internal/permissions"
	"github.com/crossstore/hub/internal/storage"
	"github.com/crossstore/hub/internal/ws"
)

// Server wraps the HTTP server hosting the hub endpoint.
type Server struct {
	router    *gin.Engine
	hub       *ws.Hub
	adapter   storage.Adapter
	logger    *logging.Logger
	metrics   *monitoring.Metrics
	config    *config.Config
	available bool
	startTime time.Time
}

// New creates a server instance: permission table, storage adapter, broker,
// and router. A failed permission table load is a configuration error and
// fails construction; a failed storage adapter puts the hub in unavailable
// mode, where it announces unavailability to connecting clients and never
// installs the request listener.
func New(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing storage hub",
		zap.String("port", cfg.Server.Port),
		zap.String("permissions", cfg.Permissions.Path),
		zap.Bool("persist", cfg.Storage.Persist),
	)

	metrics := monitoring.NewMetrics()

	table, err := permissions.Load(cfg.Permissions.Path, logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load permission table: %w", err)
	}
	logger.Info("Permission table loaded", zap.Int("entries", len(table)))

	available := true
	var adapter storage.Adapter
	if cfg.Storage.Persist {
		persistent, err := storage.NewMemoryWithSnapshot(cfg.Storage.SnapshotPath)
		if err != nil {
			logger.Error("Storage unavailable, hub will announce unavailability",
				zap.String("snapshot", cfg.Storage.SnapshotPath),
				zap.Error(err),
			)
			available = false
		} else {
			adapter = persistent
		}
	} else {
		adapter = storage.NewMemory()
	}

	var b *broker.Broker
	if available {
		b = broker.New(permissions.NewAuthorizer(table), adapter).
			WithLogger(logger).
			WithMetrics(metrics)
	}

	hub := ws.NewHub()
	wsHandler := ws.NewHandler(hub, b, available, logger, metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	srv := &Server{
		router:    router,
		hub:       hub,
		adapter:   adapter,
		logger:    logger,
		metrics:   metrics,
		config:    cfg,
		available: available,
		startTime: time.Now(),
	}

	router.GET("/", srv.root)
	router.GET("/health", srv.health)
	router.GET("/hub", wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized")
	return srv, nil
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close shuts down client connections and flushes logs.
func (s *Server) Close() error {
	s.logger.Info("Shutting down hub...")
	s.hub.CloseAll()
	s.logger.Sync() //nolint:errcheck
	return nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   "crossstore-hub",
		"endpoint":  "/hub",
		"available": s.available,
	})
}

func (s *Server) health(c *gin.Context) {
	status := http.StatusOK
	if !s.available {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":      map[bool]string{true: "healthy", false: "unavailable"}[s.available],
		"uptime":      time.Since(s.startTime).String(),
		"connections": s.hub.Len(),
	})
}
