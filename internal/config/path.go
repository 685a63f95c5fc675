// Package config loads typed component configuration from viper and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ and $VAR references in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDataDir is where the database and certificates live unless configured.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "finai")
	}
	return ExpandPath("~/.local/share/finai")
}

// DatabasePath returns database.path or the default location.
func DatabasePath(configured string) string {
	if configured != "" {
		return ExpandPath(configured)
	}
	return filepath.Join(DefaultDataDir(), "finai.db")
}
