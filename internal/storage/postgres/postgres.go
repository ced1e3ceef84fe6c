// Package postgres implements the storage.Backend interface on a PostgreSQL
// database by wrapping the GORM backend.
package postgres

import (
	"errors"

	"github.com/OCAP2/flythrough/internal/config"
	"github.com/OCAP2/flythrough/internal/database"
	"github.com/OCAP2/flythrough/internal/geo"
	"github.com/OCAP2/flythrough/internal/logging"
	gormstorage "github.com/OCAP2/flythrough/internal/storage/gorm"
)

// Options holds the non-connection settings of the backend.
type Options struct {
	LogManager *logging.SlogManager
	Origin     *geo.Origin
	BatchSize  int
}

// Backend wraps the GORM backend with a postgres connection.
type Backend struct {
	*gormstorage.Backend
	manager *database.Manager
}

// New connects to postgres and creates the backend.
func New(cfg config.DatabaseConfig, opts Options) (*Backend, error) {
	if opts.LogManager == nil {
		opts.LogManager = logging.NewSlogManager()
	}
	manager := database.NewManager(opts.LogManager.Zerolog("postgres"))
	if err := manager.OpenPostgres(cfg); err != nil {
		return nil, err
	}
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			Manager:    manager,
			LogManager: opts.LogManager,
			Origin:     opts.Origin,
			BatchSize:  opts.BatchSize,
		}),
		manager: manager,
	}, nil
}

// Close drains the embedded GORM backend and closes the connection pool.
func (b *Backend) Close() error {
	err := b.Backend.Close()
	return errors.Join(err, b.manager.Close())
}
