// Package config reads flow settings through viper and resolves the paths they name.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigDir is where flow looks for config.yaml, relative to the home directory.
const ConfigDir = ".config/flow"

// ExpandPath resolves a leading ~ to the home directory and then expands
// $VAR references. The path is returned unchanged when home is unknown.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}

// SearchPaths lists the directories searched for config.yaml, in search order.
func SearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append([]string{filepath.Join(home, ConfigDir)}, paths...)
	}
	return paths
}

// DatabasePath returns the configured database location with ~ and $VARS expanded.
func DatabasePath(v *viper.Viper) string {
	path := v.GetString(KeyDatabasePath)
	if path == "" {
		path = DefaultDatabase
	}
	return ExpandPath(path)
}
