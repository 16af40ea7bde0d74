package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModel            = "gpt-4o"
	DefaultMaxRounds        = 50
	DefaultMaxTokens        = 8096
	DefaultCommandTimeout   = 120 * time.Second
	DefaultSearchTimeout    = 30 * time.Second
	DefaultMaxSearchResults = 100
	DefaultMaxOutputBytes   = 1024 * 1024
	DefaultLogLevel         = "warn"
)

var (
	ErrMissingAPIKey   = errors.New("OPENAI_API_KEY is not set")
	ErrMissingModel    = errors.New("model is not set")
	ErrInvalidWorkRoot = errors.New("working directory is invalid")
)

// Config holds all runtime configuration for the agent.
type Config struct {
	Model       string `yaml:"model"`
	WorkingRoot string `yaml:"cwd"`

	MaxRounds        int           `yaml:"max_rounds"`
	MaxTokens        int           `yaml:"max_tokens"`
	CommandTimeout   time.Duration `yaml:"command_timeout"`
	SearchTimeout    time.Duration `yaml:"search_timeout"`
	MaxSearchResults int           `yaml:"max_search_results"`
	MaxOutputBytes   int           `yaml:"max_output_bytes"`
	Confine          bool          `yaml:"confine"`
	Verbose          bool          `yaml:"verbose"`
	LogLevel         string        `yaml:"log_level"`

	// Credentials only come from the environment.
	APIKey  string `yaml:"-"`
	BaseURL string `yaml:"base_url"`
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		Model:            DefaultModel,
		WorkingRoot:      ".",
		MaxRounds:        DefaultMaxRounds,
		MaxTokens:        DefaultMaxTokens,
		CommandTimeout:   DefaultCommandTimeout,
		SearchTimeout:    DefaultSearchTimeout,
		MaxSearchResults: DefaultMaxSearchResults,
		MaxOutputBytes:   DefaultMaxOutputBytes,
		LogLevel:         DefaultLogLevel,
	}
}

// LoadFile overlays the YAML document at path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays OPENAI_* environment variables onto cfg.
func ApplyEnv(cfg Config, getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg.APIKey = strings.TrimSpace(getenv("OPENAI_API_KEY"))
	if v := strings.TrimSpace(getenv("OPENAI_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(getenv("OPENAI_MODEL")); v != "" {
		cfg.Model = v
	}
	return cfg
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	defaults := DefaultConfig()

	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.WorkingRoot = strings.TrimSpace(cfg.WorkingRoot)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if cfg.WorkingRoot == "" {
		cfg.WorkingRoot = defaults.WorkingRoot
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = defaults.MaxRounds
	}
	if cfg.MaxTokens < 0 {
		cfg.MaxTokens = 0
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = defaults.CommandTimeout
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = defaults.SearchTimeout
	}
	if cfg.MaxSearchResults <= 0 {
		cfg.MaxSearchResults = defaults.MaxSearchResults
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = defaults.MaxOutputBytes
	}
	return cfg
}

// ResolveWorkingRoot returns the absolute working root, failing when it is
// missing or not a directory.
func ResolveWorkingRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidWorkRoot, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: '%s' is not a directory", ErrInvalidWorkRoot, abs)
	}
	return abs, nil
}

// Validate checks the fields required to start a session.
func Validate(cfg Config) error {
	if cfg.APIKey == "" {
		return ErrMissingAPIKey
	}
	if cfg.Model == "" {
		return ErrMissingModel
	}
	_, err := ResolveWorkingRoot(cfg.WorkingRoot)
	return err
}
