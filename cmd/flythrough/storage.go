package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/OCAP2/flythrough/internal/config"
	"github.com/OCAP2/flythrough/internal/geo"
	"github.com/OCAP2/flythrough/internal/influx"
	"github.com/OCAP2/flythrough/internal/monitor"
	"github.com/OCAP2/flythrough/internal/storage"
	"github.com/spf13/viper"
)

const influxBackupName = "influx_backup.log.gz"

func initStorage(runDir string) (storage.Backend, error) {
	storageCfg := config.GetStorageConfig()

	origin, err := geoOrigin()
	if err != nil {
		return nil, err
	}

	backend, err := storage.NewBackend(storageCfg, config.GetDatabaseConfig(), storage.Dependencies{
		LogManager: SlogManager,
		RunDir:     runDir,
		Origin:     origin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage backend: %w", storageCfg.Type, err)
	}
	if err := backend.Init(); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to initialize storage backend: %w", err), backend.Close())
	}
	Logger.Info("Storage backend initialized", "type", storageCfg.Type)
	return backend, nil
}

// geoOrigin resolves the geotag origin: --geo-origin wins over the geo.* config keys.
// A nil origin disables geotags.
func geoOrigin() (*geo.Origin, error) {
	if coords := viper.GetString("geo.origin"); coords != "" {
		o, err := geo.ParseOrigin(coords)
		if err != nil {
			return nil, fmt.Errorf("--geo-origin %q: %w", coords, err)
		}
		return &o, nil
	}
	geoCfg := config.GetGeoConfig()
	if !geoCfg.Enabled {
		return nil, nil
	}
	o := geo.Origin{Lon: geoCfg.OriginLon, Lat: geoCfg.OriginLat}
	if !o.Valid() {
		return nil, fmt.Errorf("geo origin %v,%v: %w", o.Lon, o.Lat, geo.ErrInvalidCoordinates)
	}
	return &o, nil
}

// outputLocation returns the file a backend wrote, or "" for database sinks.
func outputLocation(backend storage.Backend) string {
	switch b := backend.(type) {
	case interface{ GetExportedFilePath() string }:
		return b.GetExportedFilePath()
	case interface{ Path() string }:
		return b.Path()
	}
	return ""
}

// shutdown closes the sink before stopping the monitor, so the final status
// snapshot sees the drained write queue.
func shutdown(backend storage.Backend, status *monitor.Service) {
	closeStorage(backend)
	if status != nil {
		status.Stop()
	}
}

func closeStorage(backend storage.Backend) {
	if err := backend.Close(); err != nil {
		Logger.Error("Failed to close storage backend", "error", err)
		return
	}
	attrs := []any{}
	if c, ok := backend.(storage.Counter); ok {
		attrs = append(attrs, "sequences", c.Written())
	}
	if path := outputLocation(backend); path != "" {
		attrs = append(attrs, "path", path)
	}
	Logger.Info("Storage closed", attrs...)
}

// initInflux returns nil when InfluxDB is disabled or cannot be used at all.
func initInflux(ctx context.Context, runDir string) *influx.Manager {
	cfg := config.GetInfluxConfig()
	if !cfg.Enabled {
		return nil
	}
	m := influx.NewManager(cfg, SlogManager.Zerolog("influx"), filepath.Join(runDir, influxBackupName))
	if err := m.Connect(ctx); err != nil {
		Logger.Warn("Trial metrics disabled", "error", err)
		return nil
	}
	return m
}
