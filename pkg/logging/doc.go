// Package logging provides subsystem-tagged structured logging for modgraph,
// built on Go's standard slog package.
//
// # Log Levels
//   - **Debug**: Detailed information for debugging
//   - **Info**: General informational messages
//   - **Warn**: Potential problems, e.g. a dependency graph that failed validation
//   - **Error**: Failures such as an unreadable catalog
//
// Every entry carries a "subsystem" attribute and, for Error, an "error"
// attribute.
//
// # Usage
//
//	logging.Init(logging.LevelInfo, logging.FormatJSON, os.Stderr)
//
//	logging.Info("Catalog", "Loaded %d modules for tenant %s", len(modules), tenantID)
//	logging.Warn("Orchestrator", "Tenant %s has %d circular dependencies", tenantID, n)
//	logging.Error("Watcher", err, "Failed to watch %s", dir)
//
// # Subsystems
//
//   - **CLI**: Command execution
//   - **ConfigLoader**: Configuration loading
//   - **Catalog**: Module and dependency persistence adapters
//   - **Orchestrator**: Validation and plan requests
//   - **Watcher**: Catalog change detection
//
// Before Init is called, Debug and Info are dropped and Warn and Error go to
// stderr, so library code can log safely from tests.
//
// # Thread Safety
//
// All functions are safe for concurrent use.
package logging
