package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"POTPACK_INPUT", "POTPACK_OUTPUT", "POTPACK_ORDER", "POTPACK_PADDING",
		"POTPACK_ALPHA_THRESHOLD", "POTPACK_MAX_WIDTH", "POTPACK_MAX_HEIGHT",
		"POTPACK_WORKERS", "POTPACK_TRIM", "POTPACK_NATURAL_SORT", "POTPACK_POWER_OF_TWO",
	} {
		t.Setenv(key, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "potpack.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.InputDir != defaultInputDir || cfg.OutputDir != defaultOutputDir {
		t.Fatalf("unexpected dirs: %s, %s", cfg.InputDir, cfg.OutputDir)
	}
	if !cfg.Trim || !cfg.NaturalSort || cfg.PowerOfTwo {
		t.Fatalf("unexpected boolean defaults: %+v", cfg)
	}
	if cfg.MaxWidth != defaultMaxSize || cfg.MaxHeight != defaultMaxSize {
		t.Fatalf("unexpected max size: %dx%d", cfg.MaxWidth, cfg.MaxHeight)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Fatalf("unexpected workers: %d", cfg.Workers)
	}
	if cfg.Order != defaultOrder {
		t.Fatalf("unexpected order: %s", cfg.Order)
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("POTPACK_INPUT", "sprites")
	t.Setenv("POTPACK_PADDING", " 2 ")
	t.Setenv("POTPACK_TRIM", "false")
	t.Setenv("POTPACK_ORDER", "area")

	cfg, err := Load(&CLIOverrides{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.InputDir != "sprites" || cfg.Padding != 2 || cfg.Trim || cfg.Order != "area" {
		t.Fatalf("environment not applied: %+v", cfg)
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("POTPACK_PADDING", "1")
	t.Setenv("POTPACK_OUTPUT", "from-env")
	t.Setenv("POTPACK_WORKERS", "3")

	path := writeYAML(t, `
output: from-yaml
padding: 4
trim: false
power_of_two: true
max_size:
  width: 1024
order: perimeter
`)
	padding := 8
	order := "max-side"
	cfg, err := Load(&CLIOverrides{
		ConfigFile: path,
		Padding:    &padding,
		Order:      &order,
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Padding != 8 {
		t.Errorf("CLI should win over YAML, got padding %d", cfg.Padding)
	}
	if cfg.Order != "max-side" {
		t.Errorf("CLI should win over YAML, got order %s", cfg.Order)
	}
	if cfg.OutputDir != "from-yaml" {
		t.Errorf("YAML should win over env, got output %s", cfg.OutputDir)
	}
	if cfg.Workers != 3 {
		t.Errorf("env should apply when YAML is silent, got workers %d", cfg.Workers)
	}
	if cfg.Trim || !cfg.PowerOfTwo {
		t.Errorf("YAML booleans not applied: %+v", cfg)
	}
	if cfg.MaxWidth != 1024 || cfg.MaxHeight != defaultMaxSize {
		t.Errorf("unexpected max size %dx%d", cfg.MaxWidth, cfg.MaxHeight)
	}
}

func TestLoadInvalid(t *testing.T) {
	negative := -1
	tooOpaque := 256
	zero := 0
	unknown := "diagonal"

	tests := []struct {
		name      string
		env       map[string]string
		overrides *CLIOverrides
	}{
		{name: "NegativePadding", overrides: &CLIOverrides{Padding: &negative}},
		{name: "ThresholdOutOfRange", overrides: &CLIOverrides{AlphaThreshold: &tooOpaque}},
		{name: "ZeroMaxWidth", overrides: &CLIOverrides{MaxWidth: &zero}},
		{name: "ZeroWorkers", overrides: &CLIOverrides{Workers: &zero}},
		{name: "UnknownOrder", overrides: &CLIOverrides{Order: &unknown}},
		{name: "BadEnvInteger", env: map[string]string{"POTPACK_PADDING": "two"}},
		{name: "BadEnvBool", env: map[string]string{"POTPACK_TRIM": "sometimes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(tt.overrides); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(&CLIOverrides{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
