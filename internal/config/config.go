// Package config manages persistent CLI settings stored in
// ~/.projlint/config.yaml, with PROJLINT_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	fileName  = "config"
	fileType  = "yaml"
	envPrefix = "PROJLINT"
)

// Settings keys.
const (
	KeyCacheDir     = "cache.dir"
	KeyCacheTTL     = "cache.ttl"
	KeyCacheBackend = "cache.backend"
	KeyRegistryURL  = "registry.url"
	KeyHistoryPath  = "history.path"
)

// Dir returns the path to the config directory (~/.projlint/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".projlint")
	}
	return filepath.Join(home, ".projlint")
}

// FilePath returns the full path to the config file (~/.projlint/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// Settings resolve in order: environment, config file, built-in default.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	viper.SetDefault(KeyCacheDir, filepath.Join(Dir(), "cache"))
	viper.SetDefault(KeyCacheTTL, "24h")
	viper.SetDefault(KeyCacheBackend, "file")
	viper.SetDefault(KeyRegistryURL, "https://pypi.org/pypi")
	viper.SetDefault(KeyHistoryPath, filepath.Join(Dir(), "history.db"))

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// GetDuration returns a duration config value, or fallback when unset
// or unparseable.
func GetDuration(key string, fallback time.Duration) time.Duration {
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return fallback
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Keys lists the known settings keys in display order.
func Keys() []string {
	return []string{KeyCacheDir, KeyCacheTTL, KeyCacheBackend, KeyRegistryURL, KeyHistoryPath}
}
