package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"taskapi/docs"
	"taskapi/internal/auth"
	"taskapi/internal/cache"
	"taskapi/internal/config"
	"taskapi/internal/db"
	"taskapi/internal/handler"
	"taskapi/internal/logging"
	"taskapi/internal/media"
	"taskapi/internal/notify"
	"taskapi/internal/repository"
	"taskapi/internal/router"
	"taskapi/internal/service"
)

// @title Task API
// @version 1.0
// @description Multi-tenant task API with session tokens, ownership-scoped queries and avatar uploads.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg := config.Load()
	logger := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Error("database init", "error", err)
		os.Exit(1)
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Error("reset database", "error", err)
			os.Exit(1)
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Error("migrate database", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		logger.Warn("redis unavailable, serving without cache", "addr", cfg.RedisAddr, "error", err)
	}

	var sender notify.Sender = notify.NewLogSender(logging.WithComponent(logger, "notify"))
	if cfg.NATSURL != "" {
		natsSender, nc, err := notify.Connect(cfg.NATSURL, logging.WithComponent(logger, "notify"))
		if err != nil {
			logger.Warn("nats unavailable, notifications will only be logged", "url", cfg.NATSURL, "error", err)
		} else {
			defer nc.Drain()
			sender = natsSender
		}
	}

	// Initialize repositories
	store := repository.NewStore(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	sessions := auth.NewSessionValidator(jwtService, store.Users())

	// Initialize services
	authService := service.NewAuthService(store, jwtService, sender, cacheClient)
	userService := service.NewUserService(store, cacheClient, media.NewAvatarProcessor(), sender)
	taskService := service.NewTaskService(store.Tasks())

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 30 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	router.Register(e, sessions, router.Handlers{
		Auth:  handler.NewAuthHandler(authService),
		Users: handler.NewUserHandler(userService),
		Tasks: handler.NewTaskHandler(taskService),
	}, logging.WithComponent(logger, "http"))

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logger.Info("swagger documentation available", "path", "/swagger/index.html", "host", docs.SwaggerInfo.Host)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server starting", "addr", addr, "db_driver", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	logger.Info("server stopped")
}
