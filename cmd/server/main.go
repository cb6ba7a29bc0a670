package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yushan-platform/analytics-api/internal/analytics"
	"github.com/yushan-platform/analytics-api/internal/config"
	"github.com/yushan-platform/analytics-api/internal/gateway"
	"github.com/yushan-platform/analytics-api/internal/handlers"
	"github.com/yushan-platform/analytics-api/internal/ranking"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Fatalw("Invalid REDIS_URL", "error", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		sugar.Fatalw("Failed to connect to Redis", "error", err)
	}

	// PostgreSQL
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		sugar.Fatalw("Failed to create PostgreSQL pool", "error", err)
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		sugar.Fatalw("Failed to connect to PostgreSQL", "error", err)
	}

	// Upstream service clients
	content := gateway.NewContentClient(cfg.ContentServiceURL, cfg.GatewayTimeout, logger)
	users := gateway.NewUserClient(cfg.UserServiceURL, cfg.GatewayTimeout, logger)
	gamification := gateway.NewGamificationClient(cfg.GamificationServiceURL, cfg.GatewayTimeout, logger)
	var engagement analytics.EngagementGateway
	if cfg.EngagementServiceURL != "" {
		engagement = gateway.NewEngagementClient(cfg.EngagementServiceURL, cfg.GatewayTimeout, logger)
	}

	// Ranking
	store := ranking.NewRedisStore(rdb)
	rebuilder := ranking.NewRebuilder(store, content, users, gamification, ranking.RebuildConfig{
		PageSize:       cfg.FetchPageSize,
		MaxPages:       cfg.MaxFetchPages,
		StatsBatchSize: cfg.StatsBatchSize,
	}, logger)
	ranking.NewScheduler(rebuilder, cfg.RebuildInterval, logger).Start(ctx)
	queries := ranking.NewQueryService(store, content, users, gamification, logger)

	// Analytics
	analyticsSvc := analytics.NewService(pg, content, engagement, logger)

	h := handlers.New(handlers.Config{
		Redis:     rdb,
		Postgres:  pg,
		Logger:    logger,
		Ranking:   queries,
		Rebuilder: rebuilder,
		Analytics: analyticsSvc,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Routes(cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sugar.Infow("Starting server", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Graceful shutdown failed", "error", err)
	}
}
