package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/staffdesk/auth-service/internal/api"
	"github.com/staffdesk/auth-service/internal/infrastructure/bootstrap"
	mongostore "github.com/staffdesk/auth-service/internal/infrastructure/db/mongo"
	redisstore "github.com/staffdesk/auth-service/internal/infrastructure/db/redis"
	"github.com/staffdesk/auth-service/internal/infrastructure/mail"
	"github.com/staffdesk/auth-service/internal/infrastructure/queue"
	"github.com/staffdesk/auth-service/internal/pkg/config"
	"github.com/staffdesk/auth-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	accountRepo := mongostore.NewAccountRepository(db)
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure account indexes")
	}

	// --- Redis ---
	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() { _ = rdb.Close() }()

	// --- Default admin seeding (idempotent) ---
	if err := bootstrap.SeedDefaultAdmin(ctx, accountRepo, cfg.Seed, log); err != nil {
		log.Fatal().Err(err).Msg("failed to seed default admin")
	}

	// --- Notification pipeline ---
	mailer := mail.NewSMTPMailer(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		From:     cfg.SMTP.From,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	})
	suppressor := redisstore.NewNotificationSuppressor(rdb)
	dispatcher := queue.NewDispatcher(0, mailer, suppressor, log)
	dispatcher.Start(ctx)

	// --- HTTP server ---
	e, err := api.NewRouter(api.Dependencies{
		DB:     db,
		Redis:  rdb,
		Config: cfg,
		Sink:   dispatcher,
		Logger: log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("auth service started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}
