package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"vecteditor/internal/auth"
	"vecteditor/internal/config"
	"vecteditor/internal/domain/repositories"
	svgdocRepo "vecteditor/internal/domain/repositories/svgdoc"
	svgdocSvc "vecteditor/internal/domain/services/svgdoc"
	"vecteditor/internal/handler"
	"vecteditor/internal/middleware"
	"vecteditor/internal/repository/memory"
	"vecteditor/internal/repository/postgres"
	"vecteditor/internal/repository/redis"
	"vecteditor/internal/service/editor"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, logFile, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer func() { _ = logFile.Close() }()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Peer authentication is optional; without JWKS peers declare themselves
	var verifier auth.JWTVerifier
	if cfg.JWKSURL != "" {
		verifier, err = auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()
	} else {
		logger.Warn("JWKS_URL not set: peers are identified by the X-Peer-ID header")
	}

	// Snapshot storage
	var (
		snapshots svgdocRepo.SnapshotRepository
		moves     svgdocRepo.MoveLogRepository
		txManager repositories.TransactionManager
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		logger.Info("database connected",
			"max_conns", pool.Config().MaxConns,
			"min_conns", pool.Config().MinConns,
		)

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		}
		snapshots = postgres.NewSnapshotRepository(repoConfig)
		moves = postgres.NewMoveLogRepository(repoConfig)
		txManager = postgres.NewTransactionManager(repoConfig)
	} else {
		logger.Warn("DATABASE_URL not set: documents are kept in memory")
		store := memory.NewStore()
		snapshots, moves, txManager = store.Snapshots(), store.Moves(), store
	}

	// Change fan-out
	var notifier svgdocSvc.Notifier
	if cfg.RedisURL != "" {
		redisNotifier, err := redis.NewNotifier(ctx, cfg.RedisURL, logger)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer func() { _ = redisNotifier.Close() }()
		notifier = redisNotifier
		logger.Info("redis connected")
	} else {
		notifier = memory.NewNotifier()
	}

	editorService := editor.NewService(snapshots, moves, txManager, notifier, cfg, logger)
	logger.Info("services initialized")

	origins := strings.Split(cfg.CORSOrigins, ",")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux,
		handler.NewEditorHandler(editorService, logger),
		handler.NewChangeHandler(notifier, origins, logger),
	)

	// Build middleware chain
	var h http.Handler = mux

	// Order: CORS → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(verifier, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.PeerHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled for long-lived websocket streams
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
