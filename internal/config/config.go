package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/meikuraledutech/flow"
)

// Config holds the server settings.
type Config struct {
	Version int `yaml:"version"`
	Server  struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Layout struct {
		InsertOffset  *float64 `yaml:"insert_offset"`
		AppendSpacing *float64 `yaml:"append_spacing"`
	} `yaml:"layout"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Version: 1}
	cfg.Server.Addr = ":3000"
	cfg.Log.Level = "info"
	return cfg
}

// Load reads the YAML file at path on top of the defaults, then applies
// FLOW_ADDR and FLOW_LOG_LEVEL. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if cfg.Version != 1 {
			return nil, fmt.Errorf("unsupported config version: %d", cfg.Version)
		}
	}

	if v := os.Getenv("FLOW_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("FLOW_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return cfg, nil
}

// EditorOptions turns the layout section into editor options.
func (c *Config) EditorOptions() []flow.Option {
	var opts []flow.Option
	if c.Layout.InsertOffset != nil {
		opts = append(opts, flow.WithInsertOffset(*c.Layout.InsertOffset))
	}
	if c.Layout.AppendSpacing != nil {
		opts = append(opts, flow.WithAppendSpacing(*c.Layout.AppendSpacing))
	}
	return opts
}
