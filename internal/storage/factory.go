// internal/storage/factory.go
package storage

import (
	"fmt"
	"path/filepath"

	"github.com/OCAP2/flythrough/internal/config"
	"github.com/OCAP2/flythrough/internal/geo"
	"github.com/OCAP2/flythrough/internal/logging"
	"github.com/OCAP2/flythrough/internal/storage/memory"
	"github.com/OCAP2/flythrough/internal/storage/postgres"
	sqlitestorage "github.com/OCAP2/flythrough/internal/storage/sqlite"
)

// Dependencies holds what every backend may need besides its own config.
type Dependencies struct {
	LogManager *logging.SlogManager
	// RunDir is the output directory of the run; file based sinks write into it.
	RunDir string
	// Origin geotags sequences when set.
	Origin *geo.Origin
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, dbCfg config.DatabaseConfig, deps Dependencies) (Backend, error) {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	switch cfg.Type {
	case "postgres":
		return postgres.New(dbCfg, postgres.Options{
			LogManager: deps.LogManager,
			Origin:     deps.Origin,
			BatchSize:  cfg.BatchSize,
		})
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			Path:      filepath.Join(deps.RunDir, cfg.SQLite.FileName),
			BatchSize: cfg.BatchSize,
		}, deps.LogManager, deps.Origin)
	case "memory":
		return memory.New(cfg.Memory, deps.RunDir), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
