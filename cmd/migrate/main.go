package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-logger-api/pkg/config"
	"github.com/noah-isme/attendance-logger-api/pkg/database"
	"github.com/noah-isme/attendance-logger-api/pkg/logger"
)

func main() {
	command := flag.String("command", "up", "goose command: up, down, status, reset, version")
	dir := flag.String("dir", "", "migrations directory (defaults to the embedded set)")
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

	if cfg.StoreDriver != config.StoreDriverPostgres {
		logr.Fatal("migrations apply to the postgres store only", zap.String("store_driver", cfg.StoreDriver))
	}

	migrationsDir := *dir
	if migrationsDir == "" {
		migrationsDir = cfg.Migrations.Dir
	}

	db, err := database.NewPostgres(context.Background(), cfg.Database)
	if err != nil {
		logr.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db.DB, *command, migrationsDir); err != nil {
		logr.Fatal("migration failed", zap.String("command", *command), zap.Error(err))
	}
	logr.Info("migration complete", zap.String("command", *command))
}
