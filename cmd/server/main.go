package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"farmverify/docs"
	"farmverify/internal/auth"
	"farmverify/internal/cache"
	"farmverify/internal/config"
	"farmverify/internal/db"
	"farmverify/internal/events"
	"farmverify/internal/geo"
	"farmverify/internal/handler"
	"farmverify/internal/logger"
	"farmverify/internal/repository"
	"farmverify/internal/router"
	"farmverify/internal/service"
)

// @title Farmer Certification API
// @version 1.0
// @description Farmer registration, admin certification review, location capture and PDF certificates.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.NewMySQL(db.DSN(cfg))
	if err != nil {
		return err
	}
	if cfg.ResetDB {
		log.Warn("RESET_DB set, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			return err
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Warn("redis unavailable, running without cache and rate limits", zap.Error(err))
	}
	cancel()

	var resolver geo.Resolver = geo.NewGeocoder(cfg.GeocoderBaseURL, cfg.GeocoderAPIKey, cfg.GeocoderTimeout, log)
	resolver = geo.NewCachedResolver(resolver, cacheClient, cfg.GeocoderCacheTTL)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		publisher = events.NewAMQPPublisher(cfg.RabbitMQURL)
	} else {
		log.Info("RABBITMQ_URL not set, certification events disabled")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	farmerRepo := repository.NewFarmerRepository(gormDB)

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	authService := service.NewAuthService(userRepo, jwtService, cacheClient, cfg.BcryptCost)
	farmerService := service.NewFarmerService(farmerRepo, resolver, publisher, cacheClient, log)

	e := echo.New()
	router.Register(e, cfg, log, jwtService, cacheClient.Redis(),
		handler.NewAuthHandler(authService),
		handler.NewFarmerHandler(farmerService, log),
		handler.NewAdminHandler(farmerService),
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	log.Info("swagger documentation available",
		zap.String("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.ServerPort), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return e.Shutdown(shutdownCtx)
}
