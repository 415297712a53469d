package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vodfgo/vodf/vodf"
	"github.com/vodfgo/vodf/vodf/blobstore"
)

// Environment variables overriding file values.
const (
	EnvDatabaseDSN = "VODF_DATABASE_DSN"
	EnvBlobDriver  = "VODF_BLOB_DRIVER"
)

// Default values.
const (
	DefaultDatabaseDriver = "sqlite"
	DefaultSQLiteDSN      = "file:vodf.db"
	DefaultAdapter        = "pgx"
	DefaultBlobRoot       = "./blobdata"
	DefaultConcurrency    = 4
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the root of config.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Blob     BlobConfig     `yaml:"blob"`
	Split    SplitConfig    `yaml:"split"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig selects the sqlengine backend.
type DatabaseConfig struct {
	Driver  string       `yaml:"driver"`
	DSN     string       `yaml:"dsn"`
	Adapter string       `yaml:"adapter"`
	Migrate bool         `yaml:"migrate"`
	Tables  TablesConfig `yaml:"tables"`
}

// TablesConfig overrides sqlengine table names. Empty keeps the engine default.
type TablesConfig struct {
	Index   string `yaml:"index"`
	Events  string `yaml:"events"`
	Headers string `yaml:"headers"`
}

// BlobConfig selects where component payloads are read from. An empty driver disables
// payload resolution and components stay unloaded.
type BlobConfig struct {
	Driver          string   `yaml:"driver"`
	Root            string   `yaml:"root"`
	MaxPayloadBytes int64    `yaml:"max_payload_bytes"`
	S3              S3Config `yaml:"s3"`
}

// S3Config mirrors the parameters of the S3 blob driver.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	Prefix    string `yaml:"prefix"`
	PathStyle bool   `yaml:"path_style"`
}

// SplitConfig tunes loading and splitting.
type SplitConfig struct {
	Preset        string  `yaml:"preset"`
	BandParameter string  `yaml:"band_parameter"`
	BandHalfWidth float64 `yaml:"band_half_width"`
	Concurrency   int     `yaml:"concurrency"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig configures metric output. TextFile, when set, receives the Prometheus text
// exposition after the run.
type MetricsConfig struct {
	TextFile string `yaml:"textfile"`
}

// Load reads the file at path, applies defaults and environment overrides and validates the
// result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}

		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if dsn := os.Getenv(EnvDatabaseDSN); dsn != "" {
		cfg.Database.DSN = dsn
	}

	if driver := os.Getenv(EnvBlobDriver); driver != "" {
		cfg.Blob.Driver = driver
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DefaultDatabaseDriver
	}

	if cfg.Database.DSN == "" && cfg.Database.Driver == DefaultDatabaseDriver {
		cfg.Database.DSN = DefaultSQLiteDSN
	}

	if cfg.Database.Adapter == "" {
		cfg.Database.Adapter = DefaultAdapter
	}

	if cfg.Blob.Driver == string(blobstore.DriverFilesystem) && cfg.Blob.Root == "" {
		cfg.Blob.Root = DefaultBlobRoot
	}

	defaults := vodf.DefaultSplitConfig()

	if cfg.Split.Preset == "" {
		cfg.Split.Preset = vodf.PresetFullEnclosure
	}

	if cfg.Split.BandParameter == "" {
		cfg.Split.BandParameter = defaults.BandParameter
	}

	if cfg.Split.BandHalfWidth == 0 {
		cfg.Split.BandHalfWidth = defaults.BandHalfWidth
	}

	if cfg.Split.Concurrency == 0 {
		cfg.Split.Concurrency = DefaultConcurrency
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}

	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

func validate(cfg *Config) error {
	var errs []error

	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q unknown: want sqlite|postgres", cfg.Database.Driver))
	}

	if cfg.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}

	switch cfg.Database.Adapter {
	case "pgx", "sql", "sqlx":
	default:
		errs = append(errs, fmt.Errorf("database.adapter %q unknown: want pgx|sql|sqlx", cfg.Database.Adapter))
	}

	if cfg.Blob.Driver != "" {
		driver, err := blobstore.ParseDriver(cfg.Blob.Driver)
		if err != nil {
			errs = append(errs, fmt.Errorf("blob.driver: %w", err))
		}

		if driver == blobstore.DriverS3 && cfg.Blob.S3.Bucket == "" {
			errs = append(errs, errors.New("blob.s3.bucket is required for the s3 driver"))
		}
	}

	if cfg.Blob.MaxPayloadBytes < 0 {
		errs = append(errs, errors.New("blob.max_payload_bytes must not be negative"))
	}

	if _, err := vodf.PresetComponents(cfg.Split.Preset); err != nil {
		errs = append(errs, fmt.Errorf("split.preset: %w", err))
	}

	if err := cfg.SplitConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("split: %w", err))
	}

	if cfg.Split.Concurrency < 0 {
		errs = append(errs, errors.New("split.concurrency must not be negative"))
	}

	if _, err := cfg.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	switch cfg.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format %q unknown: want json|text", cfg.Log.Format))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}

	return nil
}

// SplitConfig returns the core split configuration without observability.
func (c *Config) SplitConfig() vodf.SplitConfig {
	return vodf.SplitConfig{
		BandParameter: c.Split.BandParameter,
		BandHalfWidth: c.Split.BandHalfWidth,
	}
}

// Requirement returns the component requirement of the configured preset.
func (c *Config) Requirement() vodf.Requirement {
	return vodf.RequirePreset(c.Split.Preset)
}

// SlogLevel parses the configured level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, fmt.Errorf("log.level %q unknown: want debug|info|warn|error", l.Level)
	}

	return level, nil
}
