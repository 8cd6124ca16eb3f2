package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"modgraph/internal/catalog"
	"modgraph/internal/config"
	"modgraph/internal/formatting"
	"modgraph/internal/orchestrator"
	"modgraph/pkg/logging"

	"github.com/spf13/cobra"
)

// session is everything a subcommand needs once flags and configuration
// have been resolved.
type session struct {
	config       config.ModgraphConfig
	tenantID     string
	source       catalog.Source
	orchestrator *orchestrator.Orchestrator
	formatter    formatting.Formatter
	out          io.Writer
	close        func() error
}

// Close releases the catalog connection.
func (s *session) Close() {
	if s.close == nil {
		return
	}
	if err := s.close(); err != nil {
		logging.Warn("CLI", "Failed to close catalog: %v", err)
	}
}

// newSession loads configuration, initialises logging, opens the catalog and
// builds the orchestrator. requireTenant is false for commands that span tenants.
func (o *rootOptions) newSession(cmd *cobra.Command, requireTenant bool) (*session, error) {
	tenantID := strings.TrimSpace(o.tenantID)
	if requireTenant && tenantID == "" {
		return nil, errors.New("a tenant is required: pass --tenant or set MODGRAPH_TENANT")
	}

	format, err := formatting.ParseFormat(o.output)
	if err != nil {
		return nil, err
	}

	configPath := o.configPath
	if configPath == "" {
		configPath, err = config.GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		var collection config.ConfigurationErrorCollection
		if errors.As(err, &collection) {
			return nil, fmt.Errorf("invalid configuration:\n%s", collection.GetDetailedReport())
		}
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logging.Init(level, logging.Format(cfg.Logging.Format), cmd.ErrOrStderr())

	source, closer, err := openSource(cmd.Context(), cfg.Catalog)
	if err != nil {
		return nil, err
	}
	logging.Debug("CLI", "Using %s catalog for tenant %q", cfg.Catalog.Driver, tenantID)

	return &session{
		config:   cfg,
		tenantID: tenantID,
		source:   source,
		orchestrator: orchestrator.New(orchestrator.Config{
			Source: source,
			Audit:  orchestrator.LogAuditSink{},
		}),
		formatter: formatting.New(formatting.Options{
			Format: format,
			Quiet:  o.quiet,
			Color:  !o.noColor && os.Getenv("NO_COLOR") == "",
		}),
		out:   cmd.OutOrStdout(),
		close: closer,
	}, nil
}

// openSource returns the catalog adapter selected by the driver. The config
// loader has already rejected drivers the CLI cannot open.
func openSource(ctx context.Context, cfg config.CatalogConfig) (catalog.Source, func() error, error) {
	switch cfg.Driver {
	case config.CatalogDriverPostgres:
		store, err := catalog.NewPostgresStore(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres catalog: %w", err)
		}
		return store, store.Close, nil
	default:
		return catalog.NewFileStore(cfg.Path), nil, nil
	}
}

// fileCatalog returns the session's catalog for commands that only work on
// the file driver.
func (s *session) fileCatalog(command string) (*catalog.FileStore, error) {
	store, ok := s.source.(*catalog.FileStore)
	if !ok {
		return nil, fmt.Errorf("%s requires the file catalog driver", command)
	}
	return store, nil
}
