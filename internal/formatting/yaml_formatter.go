package formatting

import (
	"fmt"
	"io"

	"modgraph/internal/dependency"
	"modgraph/internal/orchestrator"

	"sigs.k8s.io/yaml"
)

// YAMLFormatter writes YAML documents. Keys follow the JSON field names so
// both formats can be consumed by the same tooling.
type YAMLFormatter struct{}

// FormatReport writes the report with its tenant id.
func (f *YAMLFormatter) FormatReport(w io.Writer, tenantID string, report *dependency.ValidationReport) error {
	return writeYAML(w, reportDocument{TenantID: tenantID, ValidationReport: report})
}

// FormatGraphView writes the view as is.
func (f *YAMLFormatter) FormatGraphView(w io.Writer, view *orchestrator.GraphView) error {
	return writeYAML(w, view)
}

// FormatPlan writes the plan as is.
func (f *YAMLFormatter) FormatPlan(w io.Writer, plan *dependency.ActivationPlan) error {
	return writeYAML(w, plan)
}

func writeYAML(w io.Writer, v interface{}) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	_, err = w.Write(b)
	return err
}
