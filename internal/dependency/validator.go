package dependency

import "slices"

// Validate checks a snapshot for missing and circular Required dependencies
// and ranks every edge by risk.
//
// Both checks always run, so the report shows every problem at once. Only
// Required edges can make the report invalid. Validate does no I/O and does
// not modify its inputs.
func Validate(modules []Module, edges []Edge) ValidationReport {
	// Permissive construction cannot fail.
	g, _ := Build(modules, edges, Permissive)
	return ValidateGraph(g)
}

// ValidateGraph is Validate for an already built graph.
func ValidateGraph(g *Graph) ValidationReport {
	report := ValidationReport{
		MissingDependencies:  []Edge{},
		CircularDependencies: [][]string{},
		CriticalDependencies: Rank(g.edges),
	}

	for _, e := range g.edges {
		if g.IsUnresolved(e.Target) {
			report.addMissing(e)
		}
	}
	// An orphaned edge is dropped from the graph but its target can still be absent.
	for _, e := range g.orphaned {
		if _, ok := g.modules[e.Target]; !ok {
			report.addMissing(e)
		}
	}

	if cycles := FindCycles(g, RequiredOnly); len(cycles) > 0 {
		report.CircularDependencies = cycles
	}
	for _, cycle := range FindCycles(g, AllEdges) {
		if !requiredCycle(g, cycle) {
			report.AdvisoryCycles = append(report.AdvisoryCycles, cycle)
		}
	}

	report.OrphanedDependencies = g.Orphaned()
	report.DuplicateDependencies = g.Duplicates()
	report.DuplicateModules = g.DuplicateModules()
	report.IsValid = len(report.MissingDependencies) == 0 && len(report.CircularDependencies) == 0
	return report
}

func (r *ValidationReport) addMissing(e Edge) {
	if e.IsRequired() {
		r.MissingDependencies = append(r.MissingDependencies, e)
	} else {
		r.AdvisoryMissing = append(r.AdvisoryMissing, e)
	}
}

// requiredCycle reports whether every step of cycle, including the step back
// to its first node, is a Required edge.
func requiredCycle(g *Graph, cycle []string) bool {
	for i, from := range cycle {
		to := cycle[(i+1)%len(cycle)]
		if !slices.ContainsFunc(g.forward[from], func(e Edge) bool {
			return e.Target == to && e.IsRequired()
		}) {
			return false
		}
	}
	return true
}

// Offending returns the part of the report that touches any of ids: missing
// Required edges leaving one of them and Required cycles containing one of
// them. The result is nil when nothing touches ids.
func (r ValidationReport) Offending(ids []string) *UnresolvedGraphError {
	touched := make(map[string]bool, len(ids))
	for _, id := range ids {
		touched[id] = true
	}

	var res UnresolvedGraphError
	for _, e := range r.MissingDependencies {
		if touched[e.Source] {
			res.MissingDependencies = append(res.MissingDependencies, e)
		}
	}
	for _, cycle := range r.CircularDependencies {
		for _, id := range cycle {
			if touched[id] {
				res.CircularDependencies = append(res.CircularDependencies, cycle)
				break
			}
		}
	}

	if len(res.MissingDependencies) == 0 && len(res.CircularDependencies) == 0 {
		return nil
	}
	return &res
}
