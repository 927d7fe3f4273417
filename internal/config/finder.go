package config

import (
	"os"
	"path/filepath"
)

// FindLocalConfig finds local config file by walking up directories
func FindLocalConfig(dir string) string {
	for {
		for _, ext := range configExts {
			path := filepath.Join(dir, ".xcb."+ext)

			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}
