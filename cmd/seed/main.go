package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-logger-api/internal/bootstrap"
	"github.com/noah-isme/attendance-logger-api/internal/service"
	"github.com/noah-isme/attendance-logger-api/pkg/config"
	appErrors "github.com/noah-isme/attendance-logger-api/pkg/errors"
	"github.com/noah-isme/attendance-logger-api/pkg/logger"
)

func main() {
	userEmail := flag.String("user-email", "", "create a staff login with this email")
	userPassword := flag.String("user-password", "", "password for -user-email")
	userName := flag.String("user-name", "Staff", "display name for -user-email")
	clearOnly := flag.Bool("clear-only", false, "remove every student without inserting the demo set")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	app, err := bootstrap.New(ctx, cfg, logr, nil, bootstrap.Options{
		Migrate: cfg.StoreDriver == config.StoreDriverPostgres,
	})
	if err != nil {
		logr.Fatal("failed to initialise store", zap.Error(err))
	}
	defer app.Close(context.Background()) //nolint:errcheck

	count, err := seedDirectory(ctx, app.Services.Students, *clearOnly)
	if err != nil {
		logr.Fatal("seed students", zap.Error(err))
	}
	logr.Info("student directory replaced", zap.Int("count", count), zap.Bool("clear_only", *clearOnly))

	if *userEmail == "" {
		return
	}
	user, err := app.Services.Auth.CreateUser(ctx, service.CreateUserRequest{
		Email:    *userEmail,
		Password: *userPassword,
		Name:     *userName,
	})
	switch {
	case errors.Is(err, appErrors.ErrConflict):
		logr.Info("staff user already exists", zap.String("email", *userEmail))
	case err != nil:
		logr.Fatal("create staff user", zap.Error(err))
	default:
		logr.Info("created staff user", zap.String("email", user.Email))
	}
}
