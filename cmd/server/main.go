package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"visa-consultancy/backend/config"
	"visa-consultancy/backend/internal/api/binding"
	"visa-consultancy/backend/internal/api/handler"
	"visa-consultancy/backend/internal/api/router"
	"visa-consultancy/backend/internal/model"
	"visa-consultancy/backend/internal/repository"
	"visa-consultancy/backend/internal/service"
	"visa-consultancy/backend/pkg/clock"
	"visa-consultancy/backend/pkg/database"
	"visa-consultancy/backend/pkg/jwt"
	applogger "visa-consultancy/backend/pkg/logger"
	"visa-consultancy/backend/pkg/metrics"
	"visa-consultancy/backend/pkg/notify"
	"visa-consultancy/backend/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	// 1. configuration (.env first so viper sees its variables)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logging
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. database
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("database connected")

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	repo := repository.NewRepository(db)
	if err := ensureSequences(context.Background(), repo, cfg.Sequence); err != nil {
		logger.Fatal("sequence setup failed", zap.Error(err))
	}

	// 4. redis (optional: run degraded without it)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, token revocation and rate limiting disabled", zap.Error(err))
		rdb = nil
	}

	// 5. collaborators
	jwtMgr := jwt.NewManager(&cfg.Auth)
	m := metrics.New(prometheus.DefaultRegisterer)
	if err := binding.Register(); err != nil {
		logger.Fatal("register validators failed", zap.Error(err))
	}

	// a nil *redis.Client must not become a non-nil interface
	var revoker service.TokenRevoker
	if rdb != nil {
		revoker = rdb
	}

	// 6. repository → service → handler
	svc := service.NewService(service.Deps{
		Repo:     repo,
		Clock:    clock.Real(),
		Notifier: notify.New(&cfg.Mail, logger),
		Metrics:  m,
		Revoker:  revoker,
		Logger:   logger,
	})
	h := handler.NewHandler(svc)

	// 7. routes
	engine := router.Setup(router.Deps{
		Config:   cfg,
		Handler:  h,
		JWT:      jwtMgr,
		Redis:    rdb,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
		Health: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return sqlDB.PingContext(ctx)
		},
		Logger: logger,
	})

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("close database failed", zap.Error(err))
	}

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}

// ensureSequences applies the configured prefix and padding to each namespace
func ensureSequences(ctx context.Context, repo *repository.Repository, cfg config.SequenceConfig) error {
	for code, f := range map[string]config.SequenceFormat{
		model.SequenceApplication: cfg.Application,
		model.SequencePayment:     cfg.Payment,
		model.SequenceInvoice:     cfg.Invoice,
	} {
		if err := repo.Sequence.Ensure(ctx, code, f.Prefix, f.Padding); err != nil {
			return fmt.Errorf("ensure %s: %w", code, err)
		}
	}
	return nil
}
