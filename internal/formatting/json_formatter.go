package formatting

import (
	"encoding/json"
	"fmt"
	"io"

	"modgraph/internal/dependency"
	"modgraph/internal/orchestrator"
)

// JSONFormatter writes indented JSON documents.
type JSONFormatter struct{}

// FormatReport writes the report with its tenant id.
func (f *JSONFormatter) FormatReport(w io.Writer, tenantID string, report *dependency.ValidationReport) error {
	return writeJSON(w, reportDocument{TenantID: tenantID, ValidationReport: report})
}

// FormatGraphView writes the view as is.
func (f *JSONFormatter) FormatGraphView(w io.Writer, view *orchestrator.GraphView) error {
	return writeJSON(w, view)
}

// FormatPlan writes the plan as is.
func (f *JSONFormatter) FormatPlan(w io.Writer, plan *dependency.ActivationPlan) error {
	return writeJSON(w, plan)
}

func writeJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// PrettyJSON formats any value as indented JSON for human-readable display.
// It falls back to fmt.Sprintf when the value cannot be marshaled.
func PrettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
