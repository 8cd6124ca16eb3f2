package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modgraph/pkg/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/modgraph"
	configFileName = "config.yaml"
	envFileName    = ".env"
)

// Environment variables that override config.yaml.
const (
	EnvCatalogDriver = "MODGRAPH_CATALOG_DRIVER"
	EnvCatalogPath   = "MODGRAPH_CATALOG_PATH"
	EnvCatalogDSN    = "MODGRAPH_CATALOG_DSN"
	EnvLogLevel      = "MODGRAPH_LOG_LEVEL"
)

// osUserHomeDir is swapped out in tests.
var osUserHomeDir = os.UserHomeDir

// GetDefaultConfigPath returns ~/.config/modgraph.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads configuration from configPath.
//
// Defaults are applied first, then config.yaml (if present), then a .env file
// in the same directory, then the process environment. A missing config.yaml
// is not an error.
func LoadConfig(configPath string) (ModgraphConfig, error) {
	config := GetDefaultConfig(configPath)
	configFilePath := filepath.Join(configPath, configFileName)

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return ModgraphConfig{}, ConfigurationError{
			FilePath:  configFilePath,
			FileName:  configFileName,
			ErrorType: ErrorTypeIO,
			Message:   err.Error(),
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return ModgraphConfig{}, ConfigurationError{
				FilePath:    configFilePath,
				FileName:    configFileName,
				ErrorType:   ErrorTypeParse,
				Message:     "malformed YAML",
				Details:     err.Error(),
				Suggestions: []string{"Check indentation and that durations use units, e.g. 500ms"},
			}
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	envFilePath := filepath.Join(configPath, envFileName)
	if err := godotenv.Load(envFilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("ConfigLoader", "Ignoring unreadable %s: %v", envFilePath, err)
	}
	applyEnvOverrides(&config)

	// A relative catalog path is resolved against the config directory.
	if config.Catalog.Path != "" && !filepath.IsAbs(config.Catalog.Path) && configPath != "" {
		config.Catalog.Path = filepath.Join(configPath, config.Catalog.Path)
	}

	if errs := config.Validate(); errs.HasErrors() {
		for i := range errs.Errors {
			errs.Errors[i].FilePath = configFilePath
			errs.Errors[i].FileName = configFileName
		}
		return ModgraphConfig{}, errs
	}
	return config, nil
}

func applyEnvOverrides(config *ModgraphConfig) {
	if v := envValue(EnvCatalogDriver); v != "" {
		config.Catalog.Driver = CatalogDriver(strings.ToLower(v))
	}
	if v := envValue(EnvCatalogPath); v != "" {
		config.Catalog.Path = v
	}
	if v := envValue(EnvCatalogDSN); v != "" {
		config.Catalog.DSN = v
	}
	if v := envValue(EnvLogLevel); v != "" {
		config.Logging.Level = v
	}
}

func envValue(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func joinIfSet(dir, name string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}
