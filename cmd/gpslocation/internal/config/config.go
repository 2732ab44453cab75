package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/gpslocation/internal/simbridge"
	"github.com/go-drift/gpslocation/pkg/geolocation"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "gpslocation.yaml"

// Environment overrides.
const (
	EnvConfig   = "GPSLOCATION_CONFIG"
	EnvLogLevel = "GPSLOCATION_LOG_LEVEL"
)

// Config represents the optional gpslocation.yaml configuration.
type Config struct {
	// Request holds default request options with the same loose typing as
	// geolocation.ParseOptions: numbers or numeric strings in milliseconds.
	Request   map[string]any   `yaml:"request,omitempty"`
	Simulator simbridge.Config `yaml:"simulator"`
	Telemetry TelemetryConfig  `yaml:"telemetry"`
	Log       LogConfig        `yaml:"log"`
}

// TelemetryConfig toggles trace and metrics output.
type TelemetryConfig struct {
	Trace   bool `yaml:"trace,omitempty"`
	Metrics bool `yaml:"metrics,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	// Path is the file the configuration came from, empty when none was read.
	Path      string
	Request   map[string]any
	Options   geolocation.RequestOptions
	Simulator simbridge.Config
	Trace     bool
	Metrics   bool
	LogLevel  slog.Level
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Simulator: simbridge.DefaultConfig(),
		Log:       LogConfig{Level: "warn"},
	}
}

// Path picks the configuration file: the --config flag, then
// GPSLOCATION_CONFIG, then gpslocation.yaml in the working directory.
func Path(flagValue string) (path string, explicit bool) {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p, true
	}
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p, true
	}
	return FileName, false
}

// LoadOptional reads the file at path on top of the defaults. A missing file
// yields the defaults.
func LoadOptional(path string) (*Config, bool, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, true, nil
}

// Resolve loads the configuration (if present) and resolves defaults and
// environment overrides. A file named by flag or environment must exist.
func Resolve(flagPath string) (*Resolved, error) {
	path, explicit := Path(flagPath)
	cfg, found, err := LoadOptional(path)
	if err != nil {
		return nil, err
	}
	if explicit && !found {
		return nil, fmt.Errorf("config file %s does not exist", path)
	}

	levelName := cfg.Log.Level
	if env := strings.TrimSpace(os.Getenv(EnvLogLevel)); env != "" {
		levelName = env
	}
	var level slog.Level
	if levelName != "" {
		if err := level.UnmarshalText([]byte(levelName)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", levelName, err)
		}
	}

	if err := validateSimulator(cfg.Simulator); err != nil {
		return nil, err
	}

	resolved := &Resolved{
		Request:   cfg.Request,
		Options:   geolocation.ParseOptions(cfg.Request),
		Simulator: cfg.Simulator,
		Trace:     cfg.Telemetry.Trace,
		Metrics:   cfg.Telemetry.Metrics,
		LogLevel:  level,
	}
	if found {
		resolved.Path = path
	}
	return resolved, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func validateSimulator(sim simbridge.Config) error {
	if sim.Latitude < -90 || sim.Latitude > 90 {
		return fmt.Errorf("simulator.latitude must be within [-90, 90] (got %v)", sim.Latitude)
	}
	if sim.Longitude < -180 || sim.Longitude > 180 {
		return fmt.Errorf("simulator.longitude must be within [-180, 180] (got %v)", sim.Longitude)
	}
	if sim.Delay < 0 {
		return fmt.Errorf("simulator.delay cannot be negative (got %v)", sim.Delay)
	}
	return nil
}
