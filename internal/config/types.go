package config

import "time"

// ModgraphConfig is the top-level configuration structure for modgraph.
type ModgraphConfig struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Watch   WatchConfig   `yaml:"watch"`
}

// CatalogDriver selects the persistence adapter that supplies modules and edges.
type CatalogDriver string

const (
	CatalogDriverFile     CatalogDriver = "file"
	CatalogDriverPostgres CatalogDriver = "postgres"
	// CatalogDriverMemory is rejected by Validate: the in-memory store has no
	// loader and is only usable by programs that fill it themselves.
	CatalogDriverMemory CatalogDriver = "memory"
)

// CatalogConfig locates the module catalog.
type CatalogConfig struct {
	Driver CatalogDriver `yaml:"driver,omitempty"` // file (default) or postgres
	Path   string        `yaml:"path,omitempty"`   // Root directory for the file driver
	DSN    string        `yaml:"dsn,omitempty"`    // Connection string for the postgres driver
}

// LoggingConfig controls pkg/logging initialisation.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text or json
}

// MetricsConfig controls the Prometheus endpoint served by `modgraph watch`.
type MetricsConfig struct {
	Address string `yaml:"address,omitempty"` // Empty disables the endpoint
}

// WatchConfig controls catalog change detection.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
}
