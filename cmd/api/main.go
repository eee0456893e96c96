package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bahir-ride/api/internal/config"
	jwtinfra "github.com/bahir-ride/api/internal/infrastructure/jwt"
	"github.com/bahir-ride/api/internal/infrastructure/postgres"
	redisinfra "github.com/bahir-ride/api/internal/infrastructure/redis"
	s3infra "github.com/bahir-ride/api/internal/infrastructure/s3"
	"github.com/bahir-ride/api/internal/infrastructure/smtp"
	"github.com/bahir-ride/api/internal/infrastructure/sns"
	transporthttp "github.com/bahir-ride/api/internal/transport/http"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Bootstrap(context.Background(), db); err != nil {
		logger.Error("postgres bootstrap failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := redisinfra.NewClient(cfg)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// The engine cannot run without signing keys; fail hard rather than
	// serve unauthenticated.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		logger.Error("jwt provider init failed", "error", err)
		os.Exit(1)
	}

	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	mailer := smtp.NewMailer(cfg)

	// SMS is degradable: without it email-only accounts still work.
	smsSender, err := sns.NewSender(cfg)
	if err != nil {
		logger.Warn("sns sender not available, SMS delivery disabled", "error", err)
		smsSender = sns.Disabled()
	}

	deps := &transporthttp.Deps{
		IdentityRepo:     postgres.NewIdentityRepo(db),
		VerificationRepo: postgres.NewVerificationRepo(db),
		CodeStore:        redisinfra.NewCodeStore(redisClient),
		S3Store:          s3Store,
		Mailer:           mailer,
		SMSSender:        smsSender,
		JWTProvider:      jwtProvider,
		Logger:           logger,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
