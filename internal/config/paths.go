package config

import (
	"os"
	"path/filepath"

	"github.com/mrz1836/forja/internal/constants"
	"github.com/mrz1836/forja/internal/errors"
)

// GlobalConfigDir returns the global forja directory, typically ~/.forja.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.ForjaHome), nil
}

// GlobalConfigPath returns ~/.forja/config.yaml.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// ProjectConfigPath returns .forja/config.yaml relative to the project root.
func ProjectConfigPath() string {
	return filepath.Join(constants.ForjaHome, constants.ConfigFileName)
}

// DatabasePath returns the store path, defaulting to .forja/forja.db.
func (c *Config) DatabasePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(constants.ForjaHome, constants.DatabaseFileName)
}
