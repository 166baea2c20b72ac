package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/photofolio/internal/config"
	"github.com/photofolio/internal/db"
	"github.com/photofolio/internal/logger"
	"github.com/photofolio/internal/migrate"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "list pending migrations without applying them")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLog.Sync()

	gdb, err := db.Init(db.Options{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseDSN()})
	if err != nil {
		appLog.Fatal("failed to initialize database", "driver", cfg.DatabaseDriver, "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	runner := migrate.New(gdb, appLog)
	if *dryRun {
		pending, err := runner.Pending(ctx)
		if err != nil {
			appLog.Fatal("failed to read migration state", "error", err)
		}
		for _, step := range pending {
			appLog.Info("pending migration", "version", step.Version, "name", step.Name)
		}
		return
	}

	applied, err := runner.Up(ctx)
	if err != nil {
		appLog.Fatal("migration failed", "applied", applied, "error", err)
	}
	if len(applied) == 0 {
		appLog.Info("database is up to date")
		return
	}
	appLog.Info("migrations applied", "versions", applied)
}
