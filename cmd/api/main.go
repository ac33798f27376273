package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/attendance-logger-api/api/swagger"
	"github.com/noah-isme/attendance-logger-api/internal/bootstrap"
	"github.com/noah-isme/attendance-logger-api/internal/handler"
	"github.com/noah-isme/attendance-logger-api/internal/middleware"
	"github.com/noah-isme/attendance-logger-api/internal/service"
	"github.com/noah-isme/attendance-logger-api/pkg/config"
	"github.com/noah-isme/attendance-logger-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/attendance-logger-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/attendance-logger-api/pkg/middleware/requestid"
)

// @title Attendance Logger API
// @version 1.0.0
// @description Student directory, daily attendance ledger and ID-card registry.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	app, err := bootstrap.New(ctx, cfg, logr, metrics, bootstrap.Options{Migrate: cfg.StoreDriver == config.StoreDriverPostgres})
	if err != nil {
		logr.Fatal("failed to initialise store", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			logr.Warn("close connections", zap.Error(err))
		}
	}()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metrics != nil {
		r.Use(middleware.Metrics(metrics))
	}

	guard := middleware.OptionalJWT(app.Services.Auth)
	if cfg.Auth.Required {
		guard = middleware.JWT(app.Services.Auth)
	}

	var promHandler http.Handler
	if metrics != nil {
		promHandler = metrics.Handler()
	}

	handler.RegisterRoutes(r, handler.Handlers{
		Students:   handler.NewStudentHandler(app.Services.Students),
		Attendance: handler.NewAttendanceHandler(app.Services.Attendance, app.Services.Export),
		Cards:      handler.NewStudentCardHandler(app.Services.Cards),
		Auth:       handler.NewAuthHandler(app.Services.Auth),
		Health:     handler.NewHealthHandler(promHandler, app.Checks),
	}, handler.RouterConfig{
		APIPrefix:  cfg.APIPrefix,
		Guard:      guard,
		EnableDocs: cfg.Env != config.EnvProduction,
		ExposeProm: metrics != nil,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "auth_required", cfg.Auth.Required)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
