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

	"github.com/natours/booking-api/internal/api"
	mongostore "github.com/natours/booking-api/internal/infrastructure/db/mongo"
	redisstore "github.com/natours/booking-api/internal/infrastructure/db/redis"
	"github.com/natours/booking-api/internal/infrastructure/notify"
	"github.com/natours/booking-api/internal/infrastructure/queue"
	"github.com/natours/booking-api/internal/pkg/config"
	"github.com/natours/booking-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title           Natours API
// @version         1.0
// @description     Tour catalogue, reviews, bookings and accounts.

// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "natours: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	log := logger.Init(logger.OptionsFor(cfg.Env, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return fmt.Errorf("mongo: %w", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()

	notifier, closeNotifier, err := notify.New(cfg.Notifier, logger.Component("notify"))
	if err != nil {
		return err
	}
	defer closeNotifier()

	// Workers stop only after the HTTP server, so late requests can still
	// enqueue. Stopping drains what is already queued.
	workCtx, stopWork := context.WithCancel(context.Background())
	ratings := queue.NewRatingDispatcher(cfg.Ratings.Workers, mongostore.NewReviewRepository(db), logger.Component("ratings"))
	ratings.Start(workCtx)
	defer func() {
		stopWork()
		ratings.Wait()
	}()

	e := api.NewRouter(cfg, db, rdb, notifier, ratings, log)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}
