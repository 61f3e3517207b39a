package cmd

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is datacode.yaml, loaded in the shape of vippsas/sqlcode's own
// sqlcode.yaml/LoadConfig, but read directly without a stat first.
type Config struct {
	ListenAddr   string `yaml:"listen_addr"`
	UseVE        bool   `yaml:"use_ve"`
	SessionRoot  string `yaml:"session_root"`
	MaxCallDepth int    `yaml:"max_call_depth"`
}

// LoadConfig reads datacode.yaml from dir, if present. It is not an error
// for the file to be absent — unlike sqlcode.yaml, which is mandatory for
// every sqlcode subcommand, datacode.yaml is an optional override of the
// flag/env defaults; configuration is never mandatory for datacode.
func LoadConfig(dir string) (Config, error) {
	path := filepath.Join(dir, "datacode.yaml")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
