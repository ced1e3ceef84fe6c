// Package sqlitestorage implements the storage.Backend interface on a SQLite file
// in the run directory. It wraps the GORM backend via composition; the only
// SQLite-specific concerns are opening the file and closing it after the final flush.
package sqlitestorage

import (
	"errors"
	"fmt"

	"github.com/OCAP2/flythrough/internal/database"
	"github.com/OCAP2/flythrough/internal/geo"
	"github.com/OCAP2/flythrough/internal/logging"
	gormstorage "github.com/OCAP2/flythrough/internal/storage/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	Path      string
	BatchSize int
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	manager *database.Manager
	cfg     Config
}

// New opens the SQLite file and creates the backend.
func New(cfg Config, logManager *logging.SlogManager, origin *geo.Origin) (*Backend, error) {
	if logManager == nil {
		logManager = logging.NewSlogManager()
	}
	manager := database.NewManager(logManager.Zerolog("sqlite"))
	if err := manager.OpenSqlite(cfg.Path); err != nil {
		return nil, fmt.Errorf("failed to create SQLite DB: %w", err)
	}

	gormBackend := gormstorage.New(gormstorage.Dependencies{
		Manager:    manager,
		LogManager: logManager,
		Origin:     origin,
		BatchSize:  cfg.BatchSize,
	})

	return &Backend{
		Backend: gormBackend,
		manager: manager,
		cfg:     cfg,
	}, nil
}

// Path returns the database file.
func (b *Backend) Path() string {
	return b.cfg.Path
}

// Close drains the embedded GORM backend, then closes the file.
func (b *Backend) Close() error {
	err := b.Backend.Close()
	return errors.Join(err, b.manager.Close())
}
