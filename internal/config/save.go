package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveRequested writes the config to the -write-config path when one was
// given and returns that path, or "" when no write was asked for.
func (c *Config) SaveRequested() (string, error) {
	path := *flagWriteConfig
	if path == "" {
		return "", nil
	}
	if err := c.SaveTo(path); err != nil {
		return "", fmt.Errorf("writing config to %s: %w", path, err)
	}
	return path, nil
}

// SaveTo writes the config to a specific path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
