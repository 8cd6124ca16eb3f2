package config

import (
	"fmt"
	"strings"

	"modgraph/pkg/logging"
)

// Validate checks the configuration for internal consistency and returns every
// problem found.
func (c ModgraphConfig) Validate() ConfigurationErrorCollection {
	var errs ConfigurationErrorCollection

	switch c.Catalog.Driver {
	case CatalogDriverFile:
		if strings.TrimSpace(c.Catalog.Path) == "" {
			errs.AddValidation("catalog", "path", "is required for the file driver",
				fmt.Sprintf("Set catalog.path or %s", EnvCatalogPath))
		}
	case CatalogDriverPostgres:
		if strings.TrimSpace(c.Catalog.DSN) == "" {
			errs.AddValidation("catalog", "dsn", "is required for the postgres driver",
				fmt.Sprintf("Set catalog.dsn or %s", EnvCatalogDSN))
		}
	case CatalogDriverMemory:
		// MemoryStore has no loader; it is filled through its Go API only.
		errs.AddValidation("catalog", "driver", "the memory catalog starts empty and is only available to programs embedding modgraph",
			"Use file or postgres")
	default:
		errs.AddValidation("catalog", "driver", fmt.Sprintf("unknown driver %q", c.Catalog.Driver),
			"Use one of: file, postgres")
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs.AddValidation("logging", "level", err.Error(), "Use one of: debug, info, warn, error")
	}
	switch logging.Format(c.Logging.Format) {
	case logging.FormatText, logging.FormatJSON, "":
	default:
		errs.AddValidation("logging", "format", fmt.Sprintf("unknown format %q", c.Logging.Format),
			"Use text or json")
	}

	if c.Watch.Debounce < 0 {
		errs.AddValidation("watch", "debounce", "must not be negative")
	}

	return errs
}
