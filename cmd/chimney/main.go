// Package main is the entry point for the Chimney console server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AbdullahAsendar/chimney-sub000/internal/descriptor"
	"github.com/AbdullahAsendar/chimney-sub000/internal/engine"
	"github.com/AbdullahAsendar/chimney-sub000/internal/gateway"
	v1 "github.com/AbdullahAsendar/chimney-sub000/internal/infrastructure/http/v1"
	"github.com/AbdullahAsendar/chimney-sub000/internal/infrastructure/storage/postgres"
	"github.com/AbdullahAsendar/chimney-sub000/internal/session"
	"github.com/AbdullahAsendar/chimney-sub000/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting chimney console server")

	// --- Session provider ---
	// A refresh token against the auth service is the normal mode; a static
	// access token is kept for local development.
	var sess session.Provider
	if refreshToken := os.Getenv("REFRESH_TOKEN"); refreshToken != "" {
		sess = session.NewRefreshProvider(mustEnv("AUTH_URL"), refreshToken, nil)
		log.Info("session: refresh token exchange")
	} else {
		sess = &session.Static{
			AccessToken: mustEnv("ACCESS_TOKEN"),
			Account:     getEnv("ACCOUNT_ID", ""),
		}
		log.Info("session: static access token")
	}

	// --- Gateway client ---
	gw := gateway.New(gateway.Config{
		BaseURL: mustEnv("GATEWAY_URL"),
		Timeout: getEnvDuration("GATEWAY_TIMEOUT", 0),
	}, sess)

	// --- Audit trail (optional) ---
	var (
		auditPool  *pgxpool.Pool
		auditStore *postgres.AuditStore
		recorder   engine.ActionRecorder = engine.NopRecorder{}
	)
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		auditPool, err = pgxpool.New(ctx, dsn)
		if err != nil {
			log.Fatalw("failed to connect to audit database", "error", err)
		}
		defer auditPool.Close()

		if err := auditPool.Ping(ctx); err != nil {
			log.Fatalw("failed to ping audit database", "error", err)
		}

		auditStore, err = postgres.NewAuditStore(auditPool)
		if err != nil {
			log.Fatalw("failed to initialize audit store", "error", err)
		}
		recorder = auditStore
		log.Info("audit trail enabled")
	} else {
		log.Info("audit trail disabled (no DATABASE_URL)")
	}

	// --- Page registry and engines ---
	registry := descriptor.DefaultRegistry()
	engines := make(map[string]*engine.Engine)
	for _, cfg := range registry.List() {
		engines[cfg.Entity] = engine.New(cfg, gw, recorder)
	}
	log.Infow("page registry initialized", "pages", len(engines))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:     log,
		Registry:   registry,
		Engines:    engines,
		Gateway:    gw,
		Session:    sess,
		AuditStore: auditStore,
		AuditPool:  auditPool,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
