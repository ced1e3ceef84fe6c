package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the optional JSON config file looked up in the config directory.
const FileName = "flythrough.cfg.json"

// SimulatorConfig holds the simulator connection settings
type SimulatorConfig struct {
	Address     string        `json:"address" mapstructure:"address"`
	VehicleName string        `json:"vehicleName" mapstructure:"vehicleName"`
	CallTimeout time.Duration `json:"callTimeout" mapstructure:"callTimeout"`
}

// CaptureConfig holds the sequence generation settings
type CaptureConfig struct {
	Trials             int     `json:"trials" mapstructure:"trials"`
	SeqLen             int     `json:"seqLen" mapstructure:"seqLen"`
	ShortSeqLen        int     `json:"shortSeqLen" mapstructure:"shortSeqLen"`
	FPS                float64 `json:"fps" mapstructure:"fps"`
	FrameSize          int     `json:"frameSize" mapstructure:"frameSize"`
	MaxSpeed           float64 `json:"maxSpeed" mapstructure:"maxSpeed"`
	CollisionThreshold float64 `json:"collisionThreshold" mapstructure:"collisionThreshold"`
	MaxStartDepth      float64 `json:"maxStartDepth" mapstructure:"maxStartDepth"`
	ProgressEvery      int     `json:"progressEvery" mapstructure:"progressEvery"`
	Seed               uint64  `json:"seed" mapstructure:"seed"`
}

// Validate checks that the capture settings describe a usable run.
func (c CaptureConfig) Validate() error {
	var errs []error
	if c.Trials < 0 {
		errs = append(errs, fmt.Errorf("capture.trials must not be negative, got %d", c.Trials))
	}
	if c.SeqLen <= 0 {
		errs = append(errs, fmt.Errorf("capture.seqLen must be positive, got %d", c.SeqLen))
	}
	if c.ShortSeqLen <= 0 || c.ShortSeqLen > c.SeqLen {
		errs = append(errs, fmt.Errorf("capture.shortSeqLen must be in [1, seqLen], got %d", c.ShortSeqLen))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("capture.fps must be positive, got %v", c.FPS))
	}
	if c.FrameSize <= 0 {
		errs = append(errs, fmt.Errorf("capture.frameSize must be positive, got %d", c.FrameSize))
	}
	if c.MaxSpeed < 0 {
		errs = append(errs, fmt.Errorf("capture.maxSpeed must not be negative, got %v", c.MaxSpeed))
	}
	return errors.Join(errs...)
}

// SQLiteConfig holds sqlite storage backend settings
type SQLiteConfig struct {
	FileName string `json:"fileName" mapstructure:"fileName"`
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	FileName       string `json:"fileName" mapstructure:"fileName"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// StorageConfig selects and configures the output sink
type StorageConfig struct {
	Type      string       `json:"type" mapstructure:"type"`
	BatchSize int          `json:"batchSize" mapstructure:"batchSize"`
	SQLite    SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
	Memory    MemoryConfig `json:"memory" mapstructure:"memory"`
}

// DatabaseConfig holds the postgres connection settings
type DatabaseConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// InfluxConfig holds the metrics sink settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// GraylogConfig holds the GELF log sink settings
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// GeoConfig pins the simulator origin to a map coordinate
type GeoConfig struct {
	Enabled   bool    `json:"enabled" mapstructure:"enabled"`
	OriginLat float64 `json:"originLat" mapstructure:"originLat"`
	OriginLon float64 `json:"originLon" mapstructure:"originLon"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFormat", "text")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("outPath", "../../data/raw/")
	viper.SetDefault("saveImages", false)

	viper.SetDefault("simulator.address", "127.0.0.1:41451")
	viper.SetDefault("simulator.vehicleName", "")
	viper.SetDefault("simulator.callTimeout", "30s")

	viper.SetDefault("capture.trials", 3600)
	viper.SetDefault("capture.seqLen", 40)
	viper.SetDefault("capture.shortSeqLen", 10)
	viper.SetDefault("capture.fps", 30)
	viper.SetDefault("capture.frameSize", 112)
	viper.SetDefault("capture.maxSpeed", 3)
	viper.SetDefault("capture.collisionThreshold", 0.5)
	viper.SetDefault("capture.maxStartDepth", 50)
	viper.SetDefault("capture.progressEvery", 100)
	viper.SetDefault("capture.seed", 0)

	viper.SetDefault("storage.type", "sqlite")
	viper.SetDefault("storage.batchSize", 16)
	viper.SetDefault("storage.sqlite.fileName", "output.db")
	viper.SetDefault("storage.memory.fileName", "labels.json.gz")
	viper.SetDefault("storage.memory.compressOutput", true)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "flythrough")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "flythrough")
	viper.SetDefault("influx.bucket", "trials")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("geo.enabled", false)
	viper.SetDefault("geo.originLat", 0)
	viper.SetDefault("geo.originLon", 0)
}

// Load sets default values and reads configuration from the JSON file in configDir.
// The defaults stay in effect when the file cannot be read.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetSimulatorConfig returns the simulator connection settings.
func GetSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		Address:     viper.GetString("simulator.address"),
		VehicleName: viper.GetString("simulator.vehicleName"),
		CallTimeout: viper.GetDuration("simulator.callTimeout"),
	}
}

// GetCaptureConfig returns the sequence generation settings.
func GetCaptureConfig() CaptureConfig {
	return CaptureConfig{
		Trials:             viper.GetInt("capture.trials"),
		SeqLen:             viper.GetInt("capture.seqLen"),
		ShortSeqLen:        viper.GetInt("capture.shortSeqLen"),
		FPS:                viper.GetFloat64("capture.fps"),
		FrameSize:          viper.GetInt("capture.frameSize"),
		MaxSpeed:           viper.GetFloat64("capture.maxSpeed"),
		CollisionThreshold: viper.GetFloat64("capture.collisionThreshold"),
		MaxStartDepth:      viper.GetFloat64("capture.maxStartDepth"),
		ProgressEvery:      viper.GetInt("capture.progressEvery"),
		Seed:               viper.GetUint64("capture.seed"),
	}
}

// GetStorageConfig returns the output sink settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type:      viper.GetString("storage.type"),
		BatchSize: viper.GetInt("storage.batchSize"),
		SQLite: SQLiteConfig{
			FileName: viper.GetString("storage.sqlite.fileName"),
		},
		Memory: MemoryConfig{
			FileName:       viper.GetString("storage.memory.fileName"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
	}
}

// GetDatabaseConfig returns the postgres connection settings.
func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetInfluxConfig returns the metrics sink settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetGraylogConfig returns the GELF log sink settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetGeoConfig returns the map origin settings.
func GetGeoConfig() GeoConfig {
	return GeoConfig{
		Enabled:   viper.GetBool("geo.enabled"),
		OriginLat: viper.GetFloat64("geo.originLat"),
		OriginLon: viper.GetFloat64("geo.originLon"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
