package cmd

import (
	"fmt"

	"cloud-storage/core/config"
	"cloud-storage/core/database"
	"cloud-storage/core/logger"
	"cloud-storage/feature/objects"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime bundles what every command needs after start-up.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	objects *objects.Service
}

// bootstrap loads configuration, builds the logger, optionally connects the audit
// database and opens the storage client.
func bootstrap() (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	var db *gorm.DB
	if cfg.Database.Enabled {
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			db = conn
			logg.Info("Connected to audit database", zap.String("host", cfg.Database.Host))
		}
	}

	svc, err := objects.Open(cfg.Storage, logg, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	if err := svc.Audit().Migrate(); err != nil {
		logg.Warn("Audit table migration failed", zap.Error(err))
	}

	return &runtime{cfg: cfg, logger: logg, db: db, objects: svc}, nil
}
