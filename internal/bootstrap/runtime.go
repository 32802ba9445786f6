// Package bootstrap wires the runtime dependencies shared by the commands.
package bootstrap

import (
	"fmt"

	"forum/internal/cache"
	"forum/internal/config"
	"forum/internal/database"
	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData fills an empty development database with demo content.
	SeedDemoData bool
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemoData {
		if err := seedDemoData(cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

func seedDemoData(cfg *config.Config, db *gorm.DB) error {
	if cfg.IsProduction() {
		middleware.Logger.Warn("Refusing to seed demo data in production")
		return nil
	}

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		middleware.Logger.Info("Database already has users, skipping demo seed", "users", users)
		return nil
	}

	res, err := seed.Seed(db, seed.DefaultOptions())
	if err != nil {
		return err
	}
	middleware.Logger.Info("Demo data seeded", "users", res.Users, "posts", res.Posts, "comments", res.Comments)
	return nil
}
