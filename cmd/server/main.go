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

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sales_backend/internal/app/config"
	"sales_backend/internal/app/di"
	"sales_backend/internal/app/router"
	salesadapters "sales_backend/internal/feature/sales/adapters"
	userentity "sales_backend/internal/feature/users/domain/entity"
	"sales_backend/internal/platform/db"
	platformhandler "sales_backend/internal/platform/http/handler"
	"sales_backend/internal/platform/logger"
	infraredis "sales_backend/internal/platform/redis"
	"sales_backend/internal/shared/ratelimiter"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	// .envを読み込む（存在しない場合はシステム環境変数を使用）
	dotenv := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)
	if !dotenv {
		log.Info(".env not found; using system environment variables")
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// db
	gdb, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer func() { _ = sqlDB.Close() }()
	}
	if cfg.RunMigrations {
		if err := db.Migrate(gdb, &salesadapters.SaleModel{}, &userentity.User{}); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(context.Background(), cfg.Redis, log.Named("redis")); err != nil {
		log.Warn("redis unavailable; running without cache", zap.Error(err))
	} else if tmp != nil {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("failed to close redis client", zap.Error(err))
			}
		}()
	}

	var limiter *ratelimiter.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = ratelimiter.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// ルータ生成
	engine := router.NewRouter(router.Deps{
		Sales:          di.NewSalesHandler(gdb, rdb, cfg.CacheTTL, cfg.CacheNamespace, log),
		Users:          di.NewUserHandler(gdb, log),
		Ready:          platformhandler.Ready(gdb, rdb),
		Limiter:        limiter,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.Addr), zap.String("db_driver", cfg.DB.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
