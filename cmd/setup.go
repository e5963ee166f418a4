package cmd

import (
	"fmt"

	"tversky-reconcile/core/config"
	"tversky-reconcile/core/database"
	"tversky-reconcile/core/logger"
	"tversky-reconcile/core/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var driverFlag string

// runtime bundles what every command needs.
type runtime struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func (r *runtime) close() {
	if err := database.Close(r.db); err != nil {
		r.log.Warn("Failed to close database", zap.Error(err))
	}
	_ = r.log.Sync()
}

// setup loads configuration, builds the logger and opens the database named on the command line.
func setup(databaseName string) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Database.Name = databaseName
	if driverFlag != "" {
		cfg.Database.Driver = driverFlag
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	l.Debug("Connected to database", zap.String("driver", cfg.Database.Driver), zap.String("name", databaseName))
	return &runtime{cfg: cfg, log: l, db: db}, nil
}

// storageClient creates the object storage client only when something needs it.
func (r *runtime) storageClient(needed bool) (storage.Client, error) {
	if !needed {
		return nil, nil
	}
	client, err := storage.NewClient(r.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return client, nil
}
