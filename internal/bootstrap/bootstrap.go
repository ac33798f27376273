// Package bootstrap wires the configured store, cache and services together.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-logger-api/internal/handler"
	"github.com/noah-isme/attendance-logger-api/internal/models"
	"github.com/noah-isme/attendance-logger-api/internal/repository"
	"github.com/noah-isme/attendance-logger-api/internal/repository/mongostore"
	"github.com/noah-isme/attendance-logger-api/internal/service"
	"github.com/noah-isme/attendance-logger-api/pkg/cache"
	"github.com/noah-isme/attendance-logger-api/pkg/config"
	"github.com/noah-isme/attendance-logger-api/pkg/database"
)

const cacheNamespace = "attendance-logger"

// attendanceStore is satisfied by both the sqlx and the Mongo attendance repositories.
type attendanceStore interface {
	Exists(ctx context.Context, studentID string, day time.Time) (bool, error)
	Create(ctx context.Context, record *models.Attendance) error
	ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.Attendance, error)
	ListWithStudents(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error)
}

// Services is the fully wired service layer.
type Services struct {
	Students   *service.StudentService
	Attendance *service.AttendanceService
	Cards      *service.StudentCardService
	Auth       *service.AuthService
	Export     *service.ExportService
	Cache      *service.CacheService
	Metrics    *service.MetricsService
}

// App owns the open connections behind Services.
type App struct {
	Services Services
	// Checks are the readiness probes for every open dependency.
	Checks  map[string]handler.ReadinessCheck
	closers []func(context.Context) error
}

// Options tweaks what New opens.
type Options struct {
	// Migrate applies the embedded schema on the relational store before use.
	Migrate bool
}

// New opens the configured store and cache and builds the services on top of them.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *service.MetricsService, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{Checks: map[string]handler.ReadinessCheck{}}
	validate := validator.New()

	var (
		students   *service.StudentService
		attendance attendanceStore
		cards      *service.StudentCardService
		auth       *service.AuthService
	)

	authCfg := service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	}

	cacheRepo := repository.NewCacheRepository(nil, cacheNamespace)
	cacheEnabled := cfg.Cache.Enabled
	if cacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			// Aggregates are served uncached rather than failing startup.
			logger.Warn("redis unavailable, caching disabled", zap.Error(err))
			cacheEnabled = false
		} else {
			cacheRepo = repository.NewCacheRepository(client, cacheNamespace)
			app.closers = append(app.closers, func(context.Context) error { return cacheRepo.Close() })
			app.Checks["redis"] = cacheRepo.Ping
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logger, cacheEnabled)

	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		store, err := mongostore.Connect(ctx, cfg.Mongo)
		if err != nil {
			_ = app.Close(ctx)
			return nil, err
		}
		app.closers = append(app.closers, store.Close)
		app.Checks["mongo"] = store.Ping
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = app.Close(ctx)
			return nil, err
		}
		students = service.NewStudentService(store.Students(), cacheSvc, metrics, validate, logger)
		attendance = store.Attendance()
		cards = service.NewStudentCardService(store.StudentCards(), metrics, validate, logger)
		auth = service.NewAuthService(store.Users(), validate, logger, authCfg)
		logger.Info("document store ready", zap.String("database", cfg.Mongo.Database))
	default:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			_ = app.Close(ctx)
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return db.Close() })
		app.Checks["postgres"] = db.PingContext
		if opts.Migrate {
			if err := database.Migrate(db.DB, "up", cfg.Migrations.Dir); err != nil {
				_ = app.Close(ctx)
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		students = service.NewStudentService(repository.NewStudentRepository(db), cacheSvc, metrics, validate, logger)
		attendance = repository.NewAttendanceRepository(db)
		cards = service.NewStudentCardService(repository.NewStudentCardRepository(db), metrics, validate, logger)
		auth = service.NewAuthService(repository.NewUserRepository(db), validate, logger, authCfg)
		logger.Info("relational store ready", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Name))
	}

	attendanceSvc := service.NewAttendanceService(attendance, cacheSvc, metrics, validate, logger, cfg.Cache.TTL)
	app.Services = Services{
		Students:   students,
		Attendance: attendanceSvc,
		Cards:      cards,
		Auth:       auth,
		Export:     service.NewExportService(attendanceSvc, logger),
		Cache:      cacheSvc,
		Metrics:    metrics,
	}
	return app, nil
}

// Close releases every connection in reverse open order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
