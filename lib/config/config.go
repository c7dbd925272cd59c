// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for relgate.
//
// Configuration is loaded from a single YAML file specified by:
//   - the --config flag passed to the command, or
//   - the RELGATE_CONFIG environment variable
//
// When neither is set, the built-in defaults apply. There is no
// automatic discovery and environment variables never override file
// values, so the same inputs always verify the same way.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/relgate-io/relgate/lib/checksum"
	"github.com/relgate-io/relgate/lib/redact"
)

// EnvConfig is the environment variable naming the config file.
const EnvConfig = "RELGATE_CONFIG"

// Placeholder formats for custom redaction modes.
const (
	// PlaceholderFormatGeneric masks every field as "<redacted>".
	PlaceholderFormatGeneric = "generic"

	// PlaceholderFormatField masks fields as "<redacted:PATH>",
	// keeping redacted documents self-describing at the cost of
	// leaking field names.
	PlaceholderFormatField = "field"
)

// Config is the master configuration for relgate.
type Config struct {
	// Checksum configures the digest engine.
	Checksum ChecksumConfig `yaml:"checksum"`

	// Gates configures gate evaluation.
	Gates GatesConfig `yaml:"gates"`

	// Redaction defines custom redaction modes beyond the builtins.
	Redaction RedactionConfig `yaml:"redaction"`
}

// ChecksumConfig configures the digest engine.
type ChecksumConfig struct {
	// Algorithm selects the manifest digest function.
	// Values: "sha256", "blake3". Default: sha256.
	Algorithm string `yaml:"algorithm"`

	// IncludeRedactionRecord includes redaction.json in checksum
	// coverage when redaction writes one. Default: true.
	IncludeRedactionRecord bool `yaml:"include_redaction_record"`
}

// GatesConfig configures gate evaluation.
type GatesConfig struct {
	// File is the path to the gate definitions (JSONC). Empty selects
	// the built-in default gates.
	File string `yaml:"file"`

	// Concurrency bounds how many command gates run at once.
	// Default: 4.
	Concurrency int `yaml:"concurrency"`

	// DefaultTimeout applies to command gates without their own
	// timeout, in time.ParseDuration syntax. Default: 2m.
	DefaultTimeout string `yaml:"default_timeout"`
}

// RedactionConfig defines custom redaction modes.
type RedactionConfig struct {
	// Modes maps mode names to their definitions. The builtin modes
	// ("none", "safe-share") cannot be redefined.
	Modes map[string]ModeConfig `yaml:"modes"`
}

// ModeConfig defines one custom redaction mode.
type ModeConfig struct {
	// PlaceholderFormat selects the masked value: "generic" or
	// "field". Default: generic.
	PlaceholderFormat string `yaml:"placeholder_format"`

	// Rules lists the fields the mode masks. At least one is
	// required.
	Rules []redact.Rule `yaml:"rules"`
}

// Default returns the default configuration: sha256 checksums covering
// the redaction record, built-in gates, four gate workers.
func Default() *Config {
	return &Config{
		Checksum: ChecksumConfig{
			Algorithm:              string(checksum.SHA256),
			IncludeRedactionRecord: true,
		},
		Gates: GatesConfig{
			Concurrency:    4,
			DefaultTimeout: "2m",
		},
	}
}

// Load resolves configuration for a run: the explicit path when given,
// else the RELGATE_CONFIG environment variable, else the built-in
// defaults. A configured path that cannot be read or parsed is an
// error, never a silent fallback to defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path. The file is
// merged over the defaults, so it only needs to name the fields it
// changes. The result is validated before it is returned.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if _, err := checksum.ParseAlgorithm(c.Checksum.Algorithm); err != nil {
		errs = append(errs, fmt.Errorf("checksum.algorithm: %w", err))
	}

	if c.Gates.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("gates.concurrency must be positive, got %d", c.Gates.Concurrency))
	}
	if c.Gates.DefaultTimeout != "" {
		parsed, err := time.ParseDuration(c.Gates.DefaultTimeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("gates.default_timeout: %w", err))
		} else if parsed <= 0 {
			errs = append(errs, fmt.Errorf("gates.default_timeout must be positive, got %s", c.Gates.DefaultTimeout))
		}
	}

	// Sorted so repeated validation reports mode issues in a stable
	// order.
	for _, name := range c.modeNames() {
		mode := c.Redaction.Modes[name]
		if name == redact.ModeNone || name == redact.ModeSafeShare {
			errs = append(errs, fmt.Errorf("redaction.modes.%s: redefines a builtin mode", name))
		}
		switch mode.PlaceholderFormat {
		case "", PlaceholderFormatGeneric, PlaceholderFormatField:
		default:
			errs = append(errs, fmt.Errorf(
				"redaction.modes.%s: placeholder_format must be %q or %q, got %q",
				name, PlaceholderFormatGeneric, PlaceholderFormatField, mode.PlaceholderFormat))
		}
		if len(mode.Rules) == 0 {
			errs = append(errs, fmt.Errorf("redaction.modes.%s: at least one rule is required", name))
		}
		for i, rule := range mode.Rules {
			if rule.Path == "" {
				errs = append(errs, fmt.Errorf("redaction.modes.%s: rules[%d] has no path", name, i))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Registry materializes the redaction mode registry for this
// configuration: the builtins plus every custom mode.
func (c *Config) Registry() (*redact.Registry, error) {
	registry := redact.NewRegistry()
	for _, name := range c.modeNames() {
		mode := c.Redaction.Modes[name]
		err := registry.Register(redact.Mode{
			Name:           name,
			Rules:          mode.Rules,
			FieldQualified: mode.PlaceholderFormat == PlaceholderFormatField,
		})
		if err != nil {
			return nil, fmt.Errorf("redaction.modes: %w", err)
		}
	}
	return registry, nil
}

// Algorithm returns the parsed checksum algorithm. Call Validate
// first; an invalid name falls back to the parse error here as well.
func (c *Config) Algorithm() (checksum.Algorithm, error) {
	return checksum.ParseAlgorithm(c.Checksum.Algorithm)
}

func (c *Config) modeNames() []string {
	names := make([]string, 0, len(c.Redaction.Modes))
	for name := range c.Redaction.Modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
