// Package config loads runtime configuration for the atlas packer from
// multiple sources (YAML file, POTPACK_* environment variables, CLI flags)
// with precedence: CLI flags > YAML config > Environment variables > Defaults.
package config
