package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the waveadmin tool configuration, loaded from YAML.
type Config struct {
	Store struct {
		// Backend selects the record store: memory, fs or leveldb.
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
		// Compression optionally wraps record bytes: none, snappy or zstd.
		Compression string `yaml:"compression"`
	} `yaml:"store"`

	Tree struct {
		Depth       uint8  `yaml:"depth"`
		MaxLeafSize uint32 `yaml:"max_leaf_size"`
	} `yaml:"tree"`

	Set struct {
		Capacity uint32 `yaml:"capacity"`
	} `yaml:"set"`
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Store.Backend = "fs"
	cfg.Store.Path = "./wave-data"
	cfg.Store.Compression = "none"
	cfg.Tree.Depth = 20
	cfg.Tree.MaxLeafSize = 32
	cfg.Set.Capacity = 1024
	return cfg
}

func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
