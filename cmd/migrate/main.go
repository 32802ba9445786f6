// Command migrate applies, inspects and rolls back the forum schema.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"forum/internal/config"
	"forum/internal/database"
	"forum/internal/middleware"
)

const usageText = "usage: migrate <up|auto|status|down> [version]"

func main() {
	flag.Usage = func() { fmt.Fprintln(flag.CommandLine.Output(), usageText) }
	flag.Parse()

	if err := run(context.Background(), flag.Args()); err != nil {
		middleware.Logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New(usageText)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	log := middleware.Logger
	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Info("sql migrations applied")
	case "auto":
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}
		log.Info("automigrations applied", "models", len(database.PersistentModels()))
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		log.Info("schema status",
			"mode", status.Mode,
			"env", status.Environment,
			"run_sql", status.WillRunSQL,
			"run_auto", status.WillRunAutoMigrate,
			"applied", len(status.AppliedVersions),
			"pending", len(status.PendingMigrations),
		)
		for _, m := range status.PendingMigrations {
			log.Info("pending migration", "migration", m.String())
		}
	case "down":
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate down <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Info("rolled back migration", "version", version)
	default:
		return errors.New(usageText)
	}
	return nil
}
