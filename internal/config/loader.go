package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvAPIBase  = "CATCH_API_BASE"
	EnvLogLevel = "CATCH_LOG_LEVEL"
	EnvDBPath   = "CATCH_DB"
)

// Load loads the game configuration.
// Search order: customPath -> ~/.catch/config.yaml -> ./configs/catch.yaml -> embedded default.
// A .env file in the working directory is loaded first; CATCH_API_BASE then
// overrides remote.base_url.
func Load(customPath string) (Config, error) {
	// Missing .env is the normal case
	_ = godotenv.Load()

	cfg, err := loadFile(customPath)
	if err != nil {
		return cfg, err
	}

	if base := strings.TrimSpace(os.Getenv(EnvAPIBase)); base != "" {
		cfg.Remote.BaseURL = base
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(customPath string) (Config, error) {
	// Start from defaults so partial files only override what they name
	cfg := Default()

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
			cfg = Default()
		}
	}

	if data, err := os.ReadFile("configs/catch.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
		cfg = Default()
	}

	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Default(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Dir returns the per-user data directory (~/.catch), or "" if home is unavailable.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".catch")
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, filename)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
