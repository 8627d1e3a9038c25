// Package config handles loading and managing sevscope configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for sevscope.
type Config struct {
	Output OutputConfig `yaml:"output"`
	Gate   GateConfig   `yaml:"gate"`
	Server ServerConfig `yaml:"server"`
	Feeds  []FeedConfig `yaml:"feeds"`
}

// OutputConfig controls how scoring results are rendered.
type OutputConfig struct {
	Format string `yaml:"format"` // text, json, markdown
	Color  bool   `yaml:"color"`
}

// GateConfig controls the CLI exit gate for batch scoring.
type GateConfig struct {
	FailOn string `yaml:"fail_on"` // minimum rating that fails the run, empty disables
}

// ServerConfig carries client-side settings for talking to a scoring
// daemon.
type ServerConfig struct {
	Addr   string `yaml:"addr"`
	APIKey string `yaml:"api_key"`
}

// FeedConfig names an advisory feed the tooling knows how to pull.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Server: ServerConfig{
			Addr: "http://localhost:8080",
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// FindConfigFile looks for .sevscope/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".sevscope", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Feed returns the configured feed with the given name, or nil.
func (c *Config) Feed(name string) *FeedConfig {
	for i := range c.Feeds {
		if c.Feeds[i].Name == name {
			return &c.Feeds[i]
		}
	}
	return nil
}
