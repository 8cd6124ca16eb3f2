// Package formatting renders validation reports, graph views and activation
// plans for the CLI as tables, JSON or YAML.
package formatting

import (
	"fmt"
	"io"
	"strings"

	"modgraph/internal/dependency"
	"modgraph/internal/orchestrator"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, json or yaml)", s)
	}
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Quiet  bool // Suppress decorative elements
	Color  bool // Enable colored output
}

// Formatter renders engine results to w.
type Formatter interface {
	FormatReport(w io.Writer, tenantID string, report *dependency.ValidationReport) error
	FormatGraphView(w io.Writer, view *orchestrator.GraphView) error
	FormatPlan(w io.Writer, plan *dependency.ActivationPlan) error
}

// New creates the appropriate formatter based on options
func New(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{options: options}
	}
}

// reportDocument wraps a report with its tenant for structured output.
type reportDocument struct {
	TenantID string `json:"tenantId"`
	*dependency.ValidationReport
}
