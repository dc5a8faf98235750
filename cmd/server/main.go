package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/maxviazov/basketball-live-service/internal/config"
	"github.com/maxviazov/basketball-live-service/internal/engine"
	"github.com/maxviazov/basketball-live-service/internal/handler"
	"github.com/maxviazov/basketball-live-service/internal/livecache"
	"github.com/maxviazov/basketball-live-service/internal/logger"
	"github.com/maxviazov/basketball-live-service/internal/repository"
	"github.com/maxviazov/basketball-live-service/internal/repository/postgres"
	"github.com/maxviazov/basketball-live-service/internal/service"
)

func main() {
	// Load application config
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}

	ctx := context.Background()

	if err := runMigrations(cfg); err != nil {
		appLogger.Fatal().Err(err).Msg("migrations failed")
	}

	repo, err := repository.New(ctx, cfg, &appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer repo.Close()

	pool := repo.Pool()
	matches := postgres.NewMatchRepository(pool)
	events := postgres.NewEventRepository(pool)
	box := postgres.NewBoxScoreRepository(pool)
	txManager := postgres.NewTxManager(pool)
	pinger := postgres.NewPinger(pool)

	// Optional Redis mirror for live snapshot reads.
	var live *livecache.Cache
	if cfg.Redis.Enabled {
		live, err = livecache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second, appLogger)
		if err != nil {
			appLogger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis connection failed")
		}
		defer func() { _ = live.Close() }()
	}

	store := service.NewEngineStore(matches, events, box)

	pubOpts := []engine.PublisherOption{
		engine.WithPublishTimeout(time.Duration(cfg.Game.PublishTimeoutSeconds) * time.Second),
		engine.WithRetry(cfg.Game.PublishAttempts, time.Duration(cfg.Game.PublishBackoffMillis)*time.Millisecond),
	}
	if live != nil {
		pubOpts = append(pubOpts, engine.WithLiveSink(live))
	}
	publisher := engine.NewPublisher(store, appLogger, pubOpts...)

	rules := engine.Rules{
		PeriodSeconds:     cfg.Game.PeriodSeconds,
		RegulationPeriods: cfg.Game.RegulationPeriods,
		MaxFouls:          cfg.Game.MaxFouls,
		TimeoutAllotment:  cfg.Game.TimeoutAllotment,
	}
	manager := engine.NewManager(store, txManager, publisher, rules, appLogger)

	matchSvc := service.NewMatchService(matches, box, txManager, manager, rules, live, appLogger)
	eventSvc := service.NewEventService(events, box, manager, appLogger)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.Register(router, pinger, matchSvc, eventSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		appLogger.Info().Str("addr", srv.Addr).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info().Msg("shutdown signal received")

	// Stop clocks and autosave every live match before the pool goes away.
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	manager.Shutdown(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("http shutdown failed")
	}
	appLogger.Info().Msg("✅ Service stopped")
}

// runMigrations applies goose migrations through database/sql; the pgx stdlib
// adapter reuses the same DSN as the pool.
func runMigrations(cfg *config.Config) error {
	db, err := sql.Open("pgx", repository.DSN(&cfg.Postgres))
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, cfg.Postgres.MigrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
