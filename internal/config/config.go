// Package config provides unified configuration loading for dsssim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config contains all dsssim configuration settings.
type Config struct {
	// Server contains settings for the HTTP API.
	Server ServerConfig `json:"server" yaml:"server"`

	// Engine contains settings for the simulation engine.
	Engine EngineConfig `json:"engine" yaml:"engine"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Defaults contains fallback values for simulation request fields
	// the caller leaves unset.
	Defaults SimulationDefaults `json:"defaults" yaml:"defaults"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8000" or "localhost:8000".
	Addr string `json:"addr" yaml:"addr"`

	// MaxPoints caps how many waveform/spectrum points a response
	// carries per stage; longer series are decimated.
	MaxPoints int `json:"max_points" yaml:"max_points"`
}

// EngineConfig configures the simulation engine.
type EngineConfig struct {
	// CacheCapacity bounds the number of simulations whose stage
	// snapshots remain queryable.
	CacheCapacity int `json:"cache_capacity" yaml:"cache_capacity"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default) or "debug".
	Level string `json:"level" yaml:"level"`
}

// SimulationDefaults mirrors the optional simulation request fields and
// the values used when a request leaves them unset.
type SimulationDefaults struct {
	ChipRate       float64 `json:"chip_rate" yaml:"chip_rate"`
	CarrierFreq    float64 `json:"carrier_freq" yaml:"carrier_freq"`
	NoisePower     float64 `json:"noise_power" yaml:"noise_power"`
	NoiseBandwidth float64 `json:"noise_bandwidth" yaml:"noise_bandwidth"`
	Oversampling   int     `json:"oversampling" yaml:"oversampling"`
	CodingScheme   string  `json:"coding_scheme" yaml:"coding_scheme"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:      ":8000",
			MaxPoints: 2048,
		},
		Engine: EngineConfig{
			CacheCapacity: 16,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Defaults: SimulationDefaults{
			ChipRate:       1e5,
			CarrierFreq:    1e6,
			NoisePower:     0,
			NoiseBandwidth: 5e3,
			Oversampling:   8,
			CodingScheme:   "nrz",
		},
	}
}

// Load loads configuration in layers: defaults, then the YAML file at
// path (a missing file is fine), then environment overrides. An empty
// path skips the file layer.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config file: %w", err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Engine.CacheCapacity <= 0 {
		return fmt.Errorf("engine.cache_capacity must be positive, got %d", c.Engine.CacheCapacity)
	}
	if c.Server.MaxPoints <= 0 {
		return fmt.Errorf("server.max_points must be positive, got %d", c.Server.MaxPoints)
	}

	validLevels := map[string]bool{"info": true, "debug": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, or empty for default)", c.Logging.Level)
	}

	if c.Defaults.Oversampling < 1 || c.Defaults.Oversampling > 64 {
		return fmt.Errorf("defaults.oversampling must be in 1..64, got %d", c.Defaults.Oversampling)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DSSSIM_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	if v := os.Getenv("DSSSIM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("DSSSIM_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.CacheCapacity = n
		}
	}

	if v := os.Getenv("DSSSIM_MAX_POINTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MaxPoints = n
		}
	}
}
