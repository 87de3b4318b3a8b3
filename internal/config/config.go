package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultEndpoint        = "http://127.0.0.1:8000"
	DefaultRequestTimeout  = 10 * time.Second
	DefaultFleetSize       = 6
	DefaultIDPrefix        = "ENG-"
	DefaultFirstID         = 1001
	DefaultSeed            = 1
	DefaultNotificationTTL = 5 * time.Second
	DefaultLogLevel        = "info"
)

// Config is the top-level configuration. Fields map 1:1 to config.example.yaml.
type Config struct {
	// Endpoint is the base URL of the inference service.
	Endpoint string `yaml:"endpoint"`

	// RequestTimeout bounds every prediction request.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	Fleet FleetConfig `yaml:"fleet"`

	// Seed drives the synthetic telemetry generator.
	Seed uint64 `yaml:"seed"`

	// NotificationTTL is how long a dashboard notification stays visible.
	NotificationTTL time.Duration `yaml:"notification_ttl"`

	// MetricsAddr, when set, serves Prometheus metrics on host:port.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogFile receives JSON log lines. Empty discards logs in the dashboard.
	LogFile string `yaml:"log_file"`

	// LogLevel is a zerolog level name: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`
}

// FleetConfig describes the monitored engines.
type FleetConfig struct {
	// Size is the number of generated engine IDs. Ignored when EngineIDs is set.
	Size int `yaml:"size"`

	// EngineIDs lists the fleet explicitly.
	EngineIDs []string `yaml:"engine_ids"`

	// IDPrefix and FirstID build generated IDs: ENG-1001, ENG-1002, ...
	IDPrefix string `yaml:"id_prefix"`
	FirstID  int    `yaml:"first_id"`

	// Concurrency caps in-flight prediction requests during a sync. 0 = all.
	Concurrency int `yaml:"concurrency"`

	// TelemetryDir, when set, reads <dir>/<engine id>.csv instead of
	// generating synthetic windows.
	TelemetryDir string `yaml:"telemetry_dir"`
}

// IDs returns the fleet's engine IDs in display order.
func (f FleetConfig) IDs() []string {
	if len(f.EngineIDs) > 0 {
		return append([]string(nil), f.EngineIDs...)
	}
	ids := make([]string, f.Size)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%d", f.IDPrefix, f.FirstID+i)
	}
	return ids
}

// Load reads a YAML config file, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config pre-populated with default values. It is what the
// program runs with when no config file is given.
func Default() *Config {
	return &Config{
		Endpoint:       DefaultEndpoint,
		RequestTimeout: DefaultRequestTimeout,
		Fleet: FleetConfig{
			Size:     DefaultFleetSize,
			IDPrefix: DefaultIDPrefix,
			FirstID:  DefaultFirstID,
		},
		Seed:            DefaultSeed,
		NotificationTTL: DefaultNotificationTTL,
		LogLevel:        DefaultLogLevel,
	}
}

// Validate checks required fields and structural constraints. Flags that
// override file values are validated again through this method.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint %q must be an http or https URL", c.Endpoint)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.NotificationTTL <= 0 {
		return fmt.Errorf("notification_ttl must be positive")
	}
	if len(c.Fleet.EngineIDs) == 0 && c.Fleet.Size < 0 {
		return fmt.Errorf("fleet.size must be >= 0")
	}
	if c.Fleet.Concurrency < 0 {
		return fmt.Errorf("fleet.concurrency must be >= 0")
	}

	seen := make(map[string]bool, len(c.Fleet.EngineIDs))
	for i, id := range c.Fleet.EngineIDs {
		if id == "" {
			return fmt.Errorf("fleet.engine_ids[%d]: id is required", i)
		}
		if seen[id] {
			return fmt.Errorf("fleet.engine_ids[%d]: duplicate id %q", i, id)
		}
		seen[id] = true
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the configured zerolog level, falling back to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
