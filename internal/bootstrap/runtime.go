// Package bootstrap wires runtime dependencies for the command entrypoints.
package bootstrap

import (
	"fmt"
	"strings"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/seed"

	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo populates an empty development database with demo authors
	// and posts.
	SeedDemo bool
}

// InitRuntime connects to the database and optionally seeds demo content.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.SeedDemo && strings.EqualFold(cfg.Env, "development") {
		var count int64
		if err := db.Table("posts").Count(&count).Error; err != nil {
			return nil, fmt.Errorf("checking for existing content: %w", err)
		}
		if count == 0 {
			middleware.Logger.Info("seeding demo content into empty development database")
			if err := seed.Run(db, seed.Options{}); err != nil {
				return nil, fmt.Errorf("seeding demo content: %w", err)
			}
		}
	}

	return db, nil
}
