package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Governance GovernanceConfig `yaml:"governance"`
	Remote     RemoteConfig     `yaml:"remote"`
	Auth       AuthConfig       `yaml:"auth"`
	Log        LogConfig        `yaml:"log"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// CatalogConfig contains catalog database settings.
type CatalogConfig struct {
	Path string `yaml:"path"`
	// DatabaseName is the first segment of every remote index name.
	DatabaseName string `yaml:"database_name"`
}

// GovernanceConfig names the extension and access method whose indexes
// are mirrored remotely.
type GovernanceConfig struct {
	ExtensionName string `yaml:"extension_name"`
	AccessMethod  string `yaml:"access_method"`
}

// RemoteConfig contains search engine settings.
type RemoteConfig struct {
	DefaultURL     string   `yaml:"default_url"`
	Timeout        Duration `yaml:"timeout"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"-"` // env-only, never in YAML
	APIKey         string   `yaml:"-"` // env-only, never in YAML
	DeleteLogLevel string   `yaml:"delete_log_level"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	APIKey string `yaml:"-"` // env-only, never in YAML
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// SeqURL enables shipping logs to a Seq server when set.
	SeqURL string `yaml:"seq_url"`
}

// SnapshotConfig contains catalog snapshot settings.
type SnapshotConfig struct {
	Interval Duration              `yaml:"interval"`
	Path     string                `yaml:"path"`
	Storage  SnapshotStorageConfig `yaml:"storage"`
}

// SnapshotStorageConfig contains S3-compatible storage settings.
// An empty bucket keeps snapshots local.
type SnapshotStorageConfig struct {
	Bucket    string   `yaml:"bucket"`
	Endpoint  string   `yaml:"endpoint"`
	Region    string   `yaml:"region"`
	UseSSL    *bool    `yaml:"use_ssl"`
	URLExpiry Duration `yaml:"url_expiry"`
	AccessKey string   `yaml:"-"` // env-only, never in YAML
	SecretKey string   `yaml:"-"` // env-only, never in YAML
}

// MetricsConfig contains Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// LogLevel returns the slog level of the remote delete log line.
// Unknown names fall back to info.
func (r RemoteConfig) LogLevel() slog.Level {
	return ParseLevel(r.DeleteLogLevel)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	return load(true)
}

// LoadLocal loads configuration for offline CLI commands, which never
// serve HTTP and so do not need the API key.
func LoadLocal() (*Config, error) {
	return load(false)
}

func load(requireAuth bool) (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("SEARCHBRIDGE_CONFIG_PATH", "config.yaml")

	// Missing file is not an error
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(requireAuth); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used by tests and by callers that pass an explicit path.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(true); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Catalog: CatalogConfig{
			Path:         "data/catalog.db",
			DatabaseName: "searchbridge",
		},
		Governance: GovernanceConfig{
			ExtensionName: "searchbridge",
			AccessMethod:  "searchbridge",
		},
		Remote: RemoteConfig{
			DefaultURL:     "http://localhost:9200",
			Timeout:        Duration(10 * time.Second),
			DeleteLogLevel: "info",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Snapshot: SnapshotConfig{
			Interval: Duration(1 * time.Hour),
			Path:     "data/snapshots/catalog.db",
			Storage: SnapshotStorageConfig{
				URLExpiry: Duration(15 * time.Minute),
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("SEARCHBRIDGE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	envDuration("SEARCHBRIDGE_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SEARCHBRIDGE_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SEARCHBRIDGE_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Catalog
	envString("SEARCHBRIDGE_CATALOG_PATH", &cfg.Catalog.Path)
	envString("SEARCHBRIDGE_DATABASE_NAME", &cfg.Catalog.DatabaseName)

	// Governance
	envString("SEARCHBRIDGE_EXTENSION_NAME", &cfg.Governance.ExtensionName)
	envString("SEARCHBRIDGE_ACCESS_METHOD", &cfg.Governance.AccessMethod)

	// Remote
	envString("SEARCHBRIDGE_REMOTE_URL", &cfg.Remote.DefaultURL)
	envDuration("SEARCHBRIDGE_REMOTE_TIMEOUT", &cfg.Remote.Timeout)
	envString("SEARCHBRIDGE_REMOTE_USERNAME", &cfg.Remote.Username)
	envString("SEARCHBRIDGE_REMOTE_PASSWORD", &cfg.Remote.Password)
	envString("SEARCHBRIDGE_REMOTE_API_KEY", &cfg.Remote.APIKey)
	envString("SEARCHBRIDGE_DELETE_LOG_LEVEL", &cfg.Remote.DeleteLogLevel)

	// Auth
	envString("SEARCHBRIDGE_API_KEY", &cfg.Auth.APIKey)

	// Log
	envString("SEARCHBRIDGE_LOG_LEVEL", &cfg.Log.Level)
	envString("SEARCHBRIDGE_LOG_FORMAT", &cfg.Log.Format)
	envString("SEARCHBRIDGE_SEQ_URL", &cfg.Log.SeqURL)

	// Snapshot
	envDuration("SEARCHBRIDGE_SNAPSHOT_INTERVAL", &cfg.Snapshot.Interval)
	envString("SEARCHBRIDGE_SNAPSHOT_PATH", &cfg.Snapshot.Path)
	envString("SEARCHBRIDGE_SNAPSHOT_BUCKET", &cfg.Snapshot.Storage.Bucket)
	envString("SEARCHBRIDGE_S3_ENDPOINT", &cfg.Snapshot.Storage.Endpoint)
	envString("SEARCHBRIDGE_S3_REGION", &cfg.Snapshot.Storage.Region)
	envString("SEARCHBRIDGE_S3_ACCESS_KEY", &cfg.Snapshot.Storage.AccessKey)
	envString("SEARCHBRIDGE_S3_SECRET_KEY", &cfg.Snapshot.Storage.SecretKey)
	envDuration("SEARCHBRIDGE_S3_URL_EXPIRY", &cfg.Snapshot.Storage.URLExpiry)
	if v := os.Getenv("SEARCHBRIDGE_S3_USE_SSL"); v != "" {
		useSSL := v == "true" || v == "1"
		cfg.Snapshot.Storage.UseSSL = &useSSL
	}

	// Metrics
	if v := os.Getenv("SEARCHBRIDGE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = v == "true" || v == "1"
	}
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envDuration(key string, dst *Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

// validate checks that required configuration values are set.
// In dev mode (SEARCHBRIDGE_DEV_MODE=true), API key validation is skipped.
func (c *Config) validate(requireAuth bool) error {
	if c.Catalog.DatabaseName == "" {
		return errors.New("catalog.database_name is required")
	}
	if c.Governance.ExtensionName == "" || c.Governance.AccessMethod == "" {
		return errors.New("governance.extension_name and governance.access_method are required")
	}
	if c.Remote.Timeout <= 0 {
		return errors.New("remote.timeout must be positive")
	}

	if !requireAuth || os.Getenv("SEARCHBRIDGE_DEV_MODE") == "true" {
		return nil
	}

	if c.Auth.APIKey == "" {
		return errors.New("SEARCHBRIDGE_API_KEY is required")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
