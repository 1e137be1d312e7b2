// Package config loads the ledger's runtime configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ and $VAR style environment variables in a path.
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

// ConfigDir is where the config file and session live: $XDG_CONFIG_HOME/ledger,
// or ~/.config/ledger.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ledger")
	}
	return ExpandPath("~/.config/ledger")
}

// DataDir is where the local database lives: $XDG_DATA_HOME/ledger, or
// ~/.local/share/ledger.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "ledger")
	}
	return ExpandPath("~/.local/share/ledger")
}
