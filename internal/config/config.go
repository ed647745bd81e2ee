package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"potpack2d/rectpack"
)

const (
	defaultInputDir  = "input"
	defaultOutputDir = "output"
	defaultMaxSize   = 4096
	defaultOrder     = "height"
	maxAlpha         = 255
)

// ErrInvalid is wrapped by every validation failure returned from Load.
var ErrInvalid = errors.New("invalid configuration")

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	InputDir       string
	OutputDir      string
	Padding        int
	Trim           bool
	AlphaThreshold int
	NaturalSort    bool
	PowerOfTwo     bool
	MaxWidth       int
	MaxHeight      int
	Order          string
	Workers        int
}

// yamlConfig represents the YAML configuration file structure.
// Pointers distinguish keys that are absent from zero values.
type yamlConfig struct {
	Input          string   `yaml:"input"`
	Output         string   `yaml:"output"`
	Padding        *int     `yaml:"padding"`
	Trim           *bool    `yaml:"trim"`
	AlphaThreshold *int     `yaml:"alpha_threshold"`
	NaturalSort    *bool    `yaml:"natural_sort"`
	PowerOfTwo     *bool    `yaml:"power_of_two"`
	MaxSize        yamlSize `yaml:"max_size"`
	Order          string   `yaml:"order"`
	Workers        *int     `yaml:"workers"`
}

// yamlSize represents the max_size section in YAML.
type yamlSize struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

// CLIOverrides holds command-line flag overrides. Nil fields were not set.
type CLIOverrides struct {
	ConfigFile     string
	InputDir       *string
	OutputDir      *string
	Padding        *int
	Trim           *bool
	AlphaThreshold *int
	NaturalSort    *bool
	PowerOfTwo     *bool
	MaxWidth       *int
	MaxHeight      *int
	Order          *string
	Workers        *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Environment variables override defaults
	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	// YAML overrides environment
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	// CLI overrides have the highest precedence
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		InputDir:    defaultInputDir,
		OutputDir:   defaultOutputDir,
		Trim:        true,
		NaturalSort: true,
		MaxWidth:    defaultMaxSize,
		MaxHeight:   defaultMaxSize,
		Order:       defaultOrder,
		Workers:     runtime.NumCPU(),
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	if yamlCfg.Input != "" {
		cfg.InputDir = yamlCfg.Input
	}
	if yamlCfg.Output != "" {
		cfg.OutputDir = yamlCfg.Output
	}
	if yamlCfg.Order != "" {
		cfg.Order = yamlCfg.Order
	}
	setIfPresent(&cfg.Padding, yamlCfg.Padding)
	setIfPresent(&cfg.Trim, yamlCfg.Trim)
	setIfPresent(&cfg.AlphaThreshold, yamlCfg.AlphaThreshold)
	setIfPresent(&cfg.NaturalSort, yamlCfg.NaturalSort)
	setIfPresent(&cfg.PowerOfTwo, yamlCfg.PowerOfTwo)
	setIfPresent(&cfg.MaxWidth, yamlCfg.MaxSize.Width)
	setIfPresent(&cfg.MaxHeight, yamlCfg.MaxSize.Height)
	setIfPresent(&cfg.Workers, yamlCfg.Workers)
}

// applyEnvConfig applies POTPACK_* environment variables.
func applyEnvConfig(cfg *Config) error {
	if v := env("POTPACK_INPUT"); v != "" {
		cfg.InputDir = v
	}
	if v := env("POTPACK_OUTPUT"); v != "" {
		cfg.OutputDir = v
	}
	if v := env("POTPACK_ORDER"); v != "" {
		cfg.Order = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"POTPACK_PADDING", &cfg.Padding},
		{"POTPACK_ALPHA_THRESHOLD", &cfg.AlphaThreshold},
		{"POTPACK_MAX_WIDTH", &cfg.MaxWidth},
		{"POTPACK_MAX_HEIGHT", &cfg.MaxHeight},
		{"POTPACK_WORKERS", &cfg.Workers},
	}
	for _, e := range ints {
		raw := env(e.key)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q: %w", e.key, raw, ErrInvalid)
		}
		*e.dst = value
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"POTPACK_TRIM", &cfg.Trim},
		{"POTPACK_NATURAL_SORT", &cfg.NaturalSort},
		{"POTPACK_POWER_OF_TWO", &cfg.PowerOfTwo},
	}
	for _, e := range bools {
		raw := env(e.key)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q: %w", e.key, raw, ErrInvalid)
		}
		*e.dst = value
	}
	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.InputDir != nil && *overrides.InputDir != "" {
		cfg.InputDir = *overrides.InputDir
	}
	if overrides.OutputDir != nil && *overrides.OutputDir != "" {
		cfg.OutputDir = *overrides.OutputDir
	}
	if overrides.Order != nil && *overrides.Order != "" {
		cfg.Order = *overrides.Order
	}
	setIfPresent(&cfg.Padding, overrides.Padding)
	setIfPresent(&cfg.Trim, overrides.Trim)
	setIfPresent(&cfg.AlphaThreshold, overrides.AlphaThreshold)
	setIfPresent(&cfg.NaturalSort, overrides.NaturalSort)
	setIfPresent(&cfg.PowerOfTwo, overrides.PowerOfTwo)
	setIfPresent(&cfg.MaxWidth, overrides.MaxWidth)
	setIfPresent(&cfg.MaxHeight, overrides.MaxHeight)
	setIfPresent(&cfg.Workers, overrides.Workers)
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.Padding < 0 {
		return fmt.Errorf("padding must be >= 0, got %d: %w", cfg.Padding, ErrInvalid)
	}
	if cfg.AlphaThreshold < 0 || cfg.AlphaThreshold > maxAlpha {
		return fmt.Errorf("alpha threshold must be within [0, %d], got %d: %w", maxAlpha, cfg.AlphaThreshold, ErrInvalid)
	}
	if cfg.MaxWidth <= 0 || cfg.MaxHeight <= 0 {
		return fmt.Errorf("max size must be positive, got %dx%d: %w", cfg.MaxWidth, cfg.MaxHeight, ErrInvalid)
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d: %w", cfg.Workers, ErrInvalid)
	}
	if _, err := rectpack.ResolveSort(cfg.Order); err != nil {
		return fmt.Errorf("order: %w: %w", err, ErrInvalid)
	}
	return nil
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
