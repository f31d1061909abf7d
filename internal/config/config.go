// Package config holds the fixed wire-protocol constants and the
// hostbridge.yaml project configuration.
//
// The constants are the contract shared by both sides of the process
// boundary: the launcher writes them into the host invocation and the
// dispatcher prints them around host output. The yaml config only feeds
// defaults into the outer-process side; nothing inside the host reads it.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level hostbridge.yaml configuration.
type Config struct {
	// Host is the host binary path. Overridden by an explicit bridge
	// option; overrides the HOSTBRIDGE_HOST environment fallback chain
	// only as a default (env still wins when set).
	Host string `yaml:"host,omitempty"`

	// ImportPaths are prepended to the host's module search path for
	// every launch.
	ImportPaths []string `yaml:"import_paths,omitempty"`

	// Verbose enables launch diagnostics on stderr.
	Verbose bool `yaml:"verbose,omitempty"`

	// Journal configures the optional run journal.
	Journal JournalConfig `yaml:"journal,omitempty"`
}

// JournalConfig configures the sqlite run journal.
type JournalConfig struct {
	// Enabled turns journaling on. Off by default.
	Enabled bool `yaml:"enabled,omitempty"`

	// Path is the journal database file. Defaults to
	// .hostbridge/journal.db next to the config file.
	Path string `yaml:"path,omitempty"`
}

// Load reads and parses a hostbridge.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses hostbridge.yaml content from bytes.
// The path argument is used for error messages and default resolution.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults(path)
	return &cfg, nil
}

// Find searches for hostbridge.yaml starting from dir and walking up to
// parent directories. Returns the config path and nil if found, or empty
// string and nil if no config exists.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	for i, p := range c.ImportPaths {
		if p == "" {
			return fmt.Errorf("%s: import_paths[%d]: empty path", path, i)
		}
	}
	return nil
}

// setDefaults fills derived defaults after a successful parse.
func (c *Config) setDefaults(path string) {
	if c.Journal.Enabled && c.Journal.Path == "" {
		c.Journal.Path = filepath.Join(filepath.Dir(path), ProjectDirName, "journal.db")
	}
}
