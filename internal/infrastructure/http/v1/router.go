// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AbdullahAsendar/chimney-sub000/internal/descriptor"
	"github.com/AbdullahAsendar/chimney-sub000/internal/engine"
	"github.com/AbdullahAsendar/chimney-sub000/internal/gateway"
	"github.com/AbdullahAsendar/chimney-sub000/internal/infrastructure/http/v1/handlers"
	"github.com/AbdullahAsendar/chimney-sub000/internal/infrastructure/http/v1/middleware"
	"github.com/AbdullahAsendar/chimney-sub000/internal/infrastructure/storage/postgres"
	"github.com/AbdullahAsendar/chimney-sub000/internal/session"
	"github.com/AbdullahAsendar/chimney-sub000/pkg/logger"
)

// RouterConfig holds everything the console API needs.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Registry holds the page configurations
	Registry *descriptor.Registry

	// Engines maps page name -> its engine instance
	Engines map[string]*engine.Engine

	// Gateway client for utility proxies
	Gateway *gateway.Client

	// Session provides the operator identity
	Session session.Provider

	// AuditStore records operator mutations (nil disables the trail)
	AuditStore *postgres.AuditStore

	// AuditPool is the audit database pool (nil when the trail is disabled),
	// used only for health checks
	AuditPool *pgxpool.Pool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no operator required)
	healthHandler := handlers.NewHealthHandler(cfg.AuditPool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	// API v1 - every console endpoint runs with a resolved operator
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Operator(cfg.Session))
	{
		handlers.NewConsoleHandler(base, cfg.Registry, cfg.Engines).RegisterRoutes(v1)
		handlers.NewOptionsHandler(base, cfg.Engines).RegisterRoutes(v1)
		handlers.NewUtilityHandler(base, cfg.Gateway, cfg.AuditStore).RegisterRoutes(v1)
	}

	return router
}
