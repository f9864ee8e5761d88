// Package bootstrap wires process-wide runtime dependencies for cmds.
package bootstrap

import (
	"fmt"
	"strings"

	"habitnavi/internal/cache"
	"habitnavi/internal/config"
	"habitnavi/internal/database"
	"habitnavi/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemoData bool
	SeedUsers    int
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
		// Demo data never belongs anywhere near production.
		if !strings.EqualFold(cfg.Env, "development") && !strings.EqualFold(cfg.Env, "test") {
			return nil, nil, fmt.Errorf("refusing to seed demo data in %s environment", cfg.Env)
		}
		if err := seed.Run(db, seed.Options{NumUsers: opts.SeedUsers}); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}
