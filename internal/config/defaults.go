package config

import "time"

const (
	// DefaultWatchDebounce is how long the watcher waits for writes to settle.
	DefaultWatchDebounce = 500 * time.Millisecond

	// DefaultCatalogDirName is the catalog root below the config directory.
	DefaultCatalogDirName = "catalog"
)

// GetDefaultConfig returns the default configuration rooted at configDir.
func GetDefaultConfig(configDir string) ModgraphConfig {
	return ModgraphConfig{
		Catalog: CatalogConfig{
			Driver: CatalogDriverFile,
			Path:   joinIfSet(configDir, DefaultCatalogDirName),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Watch: WatchConfig{
			Debounce: DefaultWatchDebounce,
		},
	}
}
