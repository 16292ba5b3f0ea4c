package config

import (
	"os"
	"path/filepath"
)

const (
	runtimePathEnv     = "TUSKMEM_RUNTIME_PATH"
	defaultRuntimePath = ".tuskmem"
)

// GetRuntimePath resolves TUSKMEM_RUNTIME_PATH. Relative paths are taken
// relative to the user's home directory.
func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv(runtimePathEnv))
}

func resolveRuntimePath(path string) string {
	if path == "" {
		path = defaultRuntimePath
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}

// GetEnvFilePath is the .env file loaded before configuration is parsed.
func GetEnvFilePath() string {
	return filepath.Join(GetRuntimePath(), ".env")
}
