// Package config loads the run configuration YAML that drives an assembly.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTopN is the shortlist size when params.top_n is not set.
const DefaultTopN = 10

// DefaultProfile labels runs whose config names no profile.
const DefaultProfile = "custom"

// Config is the recognised part of the run configuration. Params and Versions
// are opaque and echoed into the evidence bundle.
type Config struct {
	Profile  string         `yaml:"profile"`
	Modules  ModulesConfig  `yaml:"modules"`
	Params   map[string]any `yaml:"params"`
	Versions map[string]any `yaml:"versions"`
}

// ModulesConfig toggles the evidence modules.
type ModulesConfig struct {
	TestMode            bool `yaml:"test_mode"`
	EnableSourmash      bool `yaml:"enable_sourmash"`
	EnableStructuralPPI bool `yaml:"enable_structural_ppi"`
	EnableSafety        bool `yaml:"enable_safety"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes config YAML and fills defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if cfg.Profile == "" {
		cfg.Profile = DefaultProfile
	}
	if cfg.Params == nil {
		cfg.Params = map[string]any{}
	}
	if cfg.Versions == nil {
		cfg.Versions = map[string]any{}
	}
	if _, err := cfg.TopN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TopN returns params.top_n, or DefaultTopN when unset.
func (c *Config) TopN() (int, error) {
	raw, ok := c.Params["top_n"]
	if !ok || raw == nil {
		return DefaultTopN, nil
	}
	var n int
	switch v := raw.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case uint64:
		n = int(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("params.top_n must be an integer, got %v", v)
		}
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("params.top_n must be an integer, got %q", v)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("params.top_n must be an integer, got %T", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("params.top_n must be >= 0, got %d", n)
	}
	return n, nil
}
