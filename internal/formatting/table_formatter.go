package formatting

import (
	"fmt"
	"io"
	"strings"

	"modgraph/internal/dependency"
	"modgraph/internal/orchestrator"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// nameMaxLen bounds the NAME column of the modules table.
const nameMaxLen = 40

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) *TableFormatter {
	return &TableFormatter{options: options}
}

// FormatReport renders the validity verdict followed by one table per
// non-empty problem class.
func (f *TableFormatter) FormatReport(w io.Writer, tenantID string, report *dependency.ValidationReport) error {
	if report.IsValid {
		fmt.Fprintf(w, "%s Dependency graph for tenant %s is valid\n", f.paint(text.FgGreen, "✔"), tenantID)
	} else {
		fmt.Fprintf(w, "%s Dependency graph for tenant %s is invalid\n", f.paint(text.FgRed, "✖"), tenantID)
	}

	if len(report.MissingDependencies) > 0 {
		f.section(w, "Missing dependencies")
		f.renderEdges(w, report.MissingDependencies, false)
	}
	if len(report.CircularDependencies) > 0 {
		f.section(w, "Circular dependencies")
		f.renderCycles(w, report.CircularDependencies)
	}
	if len(report.CriticalDependencies) > 0 {
		f.section(w, "Critical dependencies")
		f.renderEdges(w, report.CriticalDependencies, true)
	}

	if f.options.Quiet {
		return nil
	}
	if len(report.AdvisoryMissing) > 0 {
		f.section(w, "Advisory: optional or recommended targets missing")
		f.renderEdges(w, report.AdvisoryMissing, false)
	}
	if len(report.AdvisoryCycles) > 0 {
		f.section(w, "Advisory: cycles through optional or recommended edges")
		f.renderCycles(w, report.AdvisoryCycles)
	}
	if len(report.OrphanedDependencies) > 0 {
		f.section(w, "Ignored: edges from unknown modules")
		f.renderEdges(w, report.OrphanedDependencies, false)
	}
	if len(report.DuplicateDependencies) > 0 {
		f.section(w, "Ignored: duplicate edges")
		f.renderEdges(w, report.DuplicateDependencies, false)
	}
	if len(report.DuplicateModules) > 0 {
		f.section(w, "Ignored: duplicate modules")
		fmt.Fprintf(w, "  %s\n", strings.Join(report.DuplicateModules, ", "))
	}
	return nil
}

// FormatGraphView renders the modules and their edges.
func (f *TableFormatter) FormatGraphView(w io.Writer, view *orchestrator.GraphView) error {
	if len(view.Nodes) == 0 {
		f.emptyMessage(w, fmt.Sprintf("No modules found for tenant %s", view.TenantID))
		return nil
	}

	t := f.createTable(w)
	t.AppendHeader(f.header("MODULE", "NAME", "STATE", "LOCKED"))
	for _, m := range view.Nodes {
		locked := ""
		if m.IsLocked() {
			locked = "yes"
		}
		t.AppendRow(table.Row{m.ID, truncateCell(m.Name, nameMaxLen), f.state(m.State), locked})
	}
	t.Render()

	if len(view.Edges) == 0 {
		return nil
	}
	f.section(w, "Dependencies")
	t = f.createTable(w)
	t.AppendHeader(f.header("SOURCE", "TARGET", "TYPE", "PRIORITY", "IMPACT", "MTTR", "RISK"))
	for _, e := range view.Edges {
		t.AppendRow(table.Row{e.Source, e.Target, e.Type, f.priority(e.Priority), e.FailureImpact,
			formatMinutes(e.MTTREstimateMinutes), e.RiskScore})
	}
	t.Render()
	return nil
}

// FormatPlan renders the ordered steps and the excluded modules.
func (f *TableFormatter) FormatPlan(w io.Writer, plan *dependency.ActivationPlan) error {
	if !f.options.Quiet {
		fmt.Fprintf(w, "%s %s plan %s for tenant %s\n",
			f.paint(text.FgHiBlue, "▶"), plan.Direction, plan.ID, plan.TenantID)
	}

	if len(plan.Steps) == 0 {
		f.emptyMessage(w, "Nothing to do")
	} else {
		t := f.createTable(w)
		t.AppendHeader(f.header("#", "MODULE", "TRANSITIONS", "ROLLBACK"))
		for i, step := range plan.Steps {
			t.AppendRow(table.Row{i + 1, step.ModuleID, formatTransitions(step.Forward), formatTransition(step.Rollback)})
		}
		t.Render()
	}

	if len(plan.Excluded) > 0 {
		f.section(w, "Excluded")
		t := f.createTable(w)
		t.AppendHeader(f.header("MODULE", "REASON"))
		for _, ex := range plan.Excluded {
			t.AppendRow(table.Row{ex.ModuleID, string(ex.Reason)})
		}
		t.Render()
	}
	return nil
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) header(titles ...string) table.Row {
	row := make(table.Row, 0, len(titles))
	for _, title := range titles {
		row = append(row, f.paint(text.FgHiCyan, title))
	}
	return row
}

func (f *TableFormatter) section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", f.paint(text.FgHiWhite, title))
}

func (f *TableFormatter) emptyMessage(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", f.paint(text.FgYellow, "📋"), f.paint(text.FgYellow, message))
}

func (f *TableFormatter) renderEdges(w io.Writer, edges []dependency.Edge, ranked bool) {
	t := f.createTable(w)
	if ranked {
		t.AppendHeader(f.header("RANK", "SOURCE", "TARGET", "TYPE", "PRIORITY", "IMPACT", "MTTR", "RISK"))
	} else {
		t.AppendHeader(f.header("SOURCE", "TARGET", "TYPE", "PRIORITY"))
	}
	for i, e := range edges {
		if ranked {
			t.AppendRow(table.Row{i + 1, e.Source, e.Target, e.Type, f.priority(e.Priority), e.FailureImpact,
				formatMinutes(e.MTTREstimateMinutes), dependency.RiskScore(e)})
		} else {
			t.AppendRow(table.Row{e.Source, e.Target, e.Type, f.priority(e.Priority)})
		}
	}
	t.Render()
}

func (f *TableFormatter) renderCycles(w io.Writer, cycles [][]string) {
	for i, cycle := range cycles {
		path := append(append([]string(nil), cycle...), cycle[0])
		fmt.Fprintf(w, "  %d. %s\n", i+1, strings.Join(path, " → "))
	}
}

func (f *TableFormatter) paint(color text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return color.Sprint(s)
}

func (f *TableFormatter) priority(p dependency.Priority) string {
	switch p {
	case dependency.PriorityP0:
		return f.paint(text.FgHiRed, string(p))
	case dependency.PriorityP1:
		return f.paint(text.FgRed, string(p))
	case dependency.PriorityP2:
		return f.paint(text.FgYellow, string(p))
	default:
		return string(p)
	}
}

func (f *TableFormatter) state(s dependency.LifecycleState) string {
	switch s {
	case dependency.StateActive:
		return f.paint(text.FgGreen, string(s))
	case dependency.StatePendingActivation, dependency.StatePendingDeactivation:
		return f.paint(text.FgYellow, string(s))
	case dependency.StateLocked:
		return f.paint(text.FgHiBlack, string(s))
	default:
		return string(s)
	}
}

func formatTransition(t dependency.Transition) string {
	return fmt.Sprintf("%s → %s", t.From, t.To)
}

func formatTransitions(ts []dependency.Transition) string {
	if len(ts) == 0 {
		return ""
	}
	parts := []string{string(ts[0].From)}
	for _, t := range ts {
		parts = append(parts, string(t.To))
	}
	return strings.Join(parts, " → ")
}

// formatMinutes renders an MTTR estimate compactly, e.g. 90 -> "1h30m".
func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%dm", h, m)
}

// truncateCell collapses whitespace so a cell stays on one line and cuts it
// to maxLen runes, ending in "..." when shortened. maxLen is at least 4.
func truncateCell(s string, maxLen int) string {
	if maxLen < 4 {
		maxLen = 4
	}
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
