package database

import (
	"path/filepath"
)

// dataSourceName builds the sqlite DSN. An empty configPath keeps the
// database file in the working directory; anything else (including the
// in-memory DSN used by tests) is passed through as-is.
func dataSourceName(configPath string, name string) string {
	if configPath == "" {
		return name
	}

	return filepath.Join(configPath, name)
}
