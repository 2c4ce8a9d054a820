package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/prakhar1989/blag/internal/api"
	"github.com/prakhar1989/blag/internal/auth"
	"github.com/prakhar1989/blag/internal/cache"
	"github.com/prakhar1989/blag/internal/config"
	"github.com/prakhar1989/blag/internal/log"
	"github.com/prakhar1989/blag/internal/metrics"
	"github.com/prakhar1989/blag/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := log.NewSugar(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting blag API server",
		"env", cfg.Env,
		"addr", cfg.HTTPAddr,
		"auth_mode", cfg.Auth.Mode,
	)

	// Setup metrics
	metricsObj, metricsHandler, err := metrics.Setup("blag-api")
	if err != nil {
		logger.Fatalw("Failed to setup metrics", "error", err)
	}

	// Setup stores
	var (
		posts store.PostStore
		users store.UserStore
	)
	if cfg.Database.UseInMemory {
		logger.Infow("Using in-memory stores")
		posts = store.NewMemoryPosts()
		users = store.NewMemoryUsers()
	} else {
		db, err := sql.Open("pgx", cfg.Database.PostgresDSN)
		if err != nil {
			logger.Fatalw("Failed to open database", "error", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(ctx); err != nil {
			cancel()
			logger.Fatalw("Database ping failed", "error", err)
		}
		cancel()
		logger.Infow("Database connection established")

		posts = store.NewPostgresPosts(db, logger)
		users = store.NewPostgresUsers(db, logger)
	}

	// Setup cache: Redis when reachable, in-memory otherwise
	kvStore := cache.NewBackend(cfg.Cache.RedisAddr, logger)
	defer kvStore.Close()
	postCache := cache.New(kvStore, posts, cfg.Cache.CacheDrafts, logger, metricsObj)

	// Setup auth policy
	codec := auth.NewTokenCodec(cfg.Auth.Secret)
	var policy auth.Policy
	switch cfg.Auth.Mode {
	case config.AuthModeAdmin:
		policy, err = auth.NewAdminPolicy(cfg.Auth.AdminUser, cfg.Auth.AdminPassword, codec, logger)
		if err != nil {
			logger.Fatalw("Failed to setup admin auth policy", "error", err)
		}
		// No user accounts in admin mode; signup is disabled.
		users = nil
	default:
		policy = auth.NewSessionPolicy(users, codec, logger)
	}

	// Setup API handler and middleware
	handler := api.NewHandler(posts, users, postCache, policy, cfg, logger, metricsObj)
	middleware := api.NewMiddleware(logger, metricsObj)

	router := handler.Routes(middleware, cfg.Security.CORSAllowedOrigins, cfg.Security.RateLimitRPM)
	router.Handle("/metrics", metricsHandler)

	// Setup HTTP server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("API server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("Server startup failed", "error", err)
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}

		logger.Infow("Server stopped")
	}
}
