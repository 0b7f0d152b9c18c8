package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the service configuration. Values come from defaults, then an
// optional YAML file, then environment variables.
type Config struct {
	Port     string        `yaml:"port"`
	LogLevel string        `yaml:"log_level"`
	GCP      GCPConfig     `yaml:"gcp"`
	Trivia   TriviaConfig  `yaml:"trivia"`
	Content  ContentConfig `yaml:"content"`
	Limits   LimitsConfig  `yaml:"limits"`
}

// GCPConfig enables clue hints through Gemini on Vertex AI. Hints are
// disabled when ProjectID is empty.
type GCPConfig struct {
	ProjectID string `yaml:"project_id"`
	Region    string `yaml:"region"`
	Model     string `yaml:"model"`
}

type TriviaConfig struct {
	AdvanceDelay string `yaml:"advance_delay"`
}

// ContentConfig points at YAML files replacing the built-in pools.
type ContentConfig struct {
	PuzzleFile string `yaml:"puzzle_file"`
	TriviaFile string `yaml:"trivia_file"`
}

type LimitsConfig struct {
	ActionsPerSecond int `yaml:"actions_per_second"`
	HintsPerMinute   int `yaml:"hints_per_minute"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Port:     "8080",
		LogLevel: "info",
		GCP: GCPConfig{
			Region: defaultRegion,
			Model:  defaultModel,
		},
		Trivia: TriviaConfig{AdvanceDelay: "1500ms"},
		Limits: LimitsConfig{
			ActionsPerSecond: 60,
			HintsPerMinute:   5,
		},
	}
}

// LoadConfig reads path (if not empty) over the defaults and applies
// environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("GCP_PROJECT_ID"); v != "" {
		c.GCP.ProjectID = v
	}
	if v := os.Getenv("GCP_REGION"); v != "" {
		c.GCP.Region = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.GCP.Model = v
	}
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is empty"))
	}
	if _, err := c.AdvanceDelay(); err != nil {
		errs = append(errs, err)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.Limits.ActionsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("limits.actions_per_second must be positive, got %d", c.Limits.ActionsPerSecond))
	}
	if c.Limits.HintsPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("limits.hints_per_minute must be positive, got %d", c.Limits.HintsPerMinute))
	}
	return errors.Join(errs...)
}

// AdvanceDelay parses Trivia.AdvanceDelay.
func (c Config) AdvanceDelay() (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(c.Trivia.AdvanceDelay))
	if err != nil {
		return 0, fmt.Errorf("trivia.advance_delay: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("trivia.advance_delay must not be negative, got %s", d)
	}
	return d, nil
}

// NewLogger builds the production zap logger at the configured level.
// verbose forces debug.
func NewLogger(level string, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
