// Package config loads the settings of the pardist command.
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/exascience/pardist/aggregate"
	"github.com/exascience/pardist/coordinator"
	"github.com/exascience/pardist/partition"
)

// Config holds all pardist settings.
type Config struct {
	// Procs is the number of participants, including the coordinator.
	// 0 selects runtime.GOMAXPROCS(0).
	Procs int `yaml:"procs"`

	Mode     string `yaml:"mode"`     // inclusive, workers-only
	Strategy string `yaml:"strategy"` // collective, point-to-point

	// Repeat is the number of times the parallel phase runs.
	Repeat int `yaml:"repeat"`

	// Seed seeds random matrices. 0 seeds from the current time.
	Seed int64 `yaml:"seed"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Procs:    0,
		Mode:     partition.InclusiveAll.String(),
		Strategy: aggregate.Collective.String(),
		Repeat:   1,
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load loads configuration from a YAML file. Missing files yield the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Procs < 0 {
		return fmt.Errorf("procs must not be negative, got %d", c.Procs)
	}
	if c.Repeat < 1 {
		return fmt.Errorf("repeat must be at least 1, got %d", c.Repeat)
	}
	if _, err := partition.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := aggregate.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging level: %w", err)
	}
	return nil
}

// Options translates the configuration into run options.
func (c *Config) Options(logger *zap.Logger) (coordinator.Options, error) {
	mode, err := partition.ParseMode(c.Mode)
	if err != nil {
		return coordinator.Options{}, err
	}
	strategy, err := aggregate.ParseStrategy(c.Strategy)
	if err != nil {
		return coordinator.Options{}, err
	}
	return coordinator.Options{
		Procs:    c.Procs,
		Mode:     mode,
		Strategy: strategy,
		Logger:   logger,
	}, nil
}

// NewLogger builds the logger described by the configuration. If verbose is
// set, the level is lowered to debug.
func (c *Config) NewLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if c.Logging.Development {
		config = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid logging level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
