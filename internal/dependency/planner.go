package dependency

import "slices"

// PlanActivation orders the activation of targets and every module they
// transitively Require. A prerequisite is always activated before the modules
// that rely on it.
//
// Active modules are left out as already satisfied. A locked module that is
// active is a satisfied terminal: it is not scheduled and its own
// dependencies are not followed. A locked module that is not active fails the
// whole plan when anything in the closure requires it.
//
// Planning is all-or-nothing: either the complete plan or a typed error.
func PlanActivation(g *Graph, targets []string) (*ActivationPlan, error) {
	if err := checkKnown(g, targets); err != nil {
		return nil, err
	}

	closure := activationClosure(g, targets)
	if err := checkResolved(g, closure); err != nil {
		return nil, err
	}

	plan := newPlan(DirectionActivate)
	scheduled := make(map[string]bool, len(closure))
	for _, id := range closure {
		m := g.modules[id]
		if m.IsLocked() {
			if !m.IsActive() {
				if requiredBy := requiringMembers(g, id, closure); len(requiredBy) > 0 {
					return nil, &LockedPrerequisiteError{ModuleID: id, State: m.State, RequiredBy: requiredBy}
				}
			}
			plan.exclude(id, ExcludedLocked)
			continue
		}
		if m.State.IsPending() {
			return nil, &TransitionInProgressError{ModuleID: id, State: m.State}
		}
		if m.IsActive() {
			plan.exclude(id, ExcludedAlreadyActive)
			continue
		}
		scheduled[id] = true
	}

	order, err := kahn(g, scheduled, DirectionActivate)
	if err != nil {
		return nil, err
	}
	plan.schedule(order)
	return plan, nil
}

// PlanDeactivation orders the deactivation of exactly the modules in targets,
// dependents before the modules they rely on.
//
// It refuses with ActiveDependentsError when a module outside the batch that
// is active, or about to be, Requires a module of the batch. Dependents are
// never deactivated implicitly.
func PlanDeactivation(g *Graph, targets []string) (*ActivationPlan, error) {
	if err := checkKnown(g, targets); err != nil {
		return nil, err
	}

	batch := g.sortByOrder(toSet(targets))
	if err := checkResolved(g, batch); err != nil {
		return nil, err
	}

	plan := newPlan(DirectionDeactivate)
	scheduled := make(map[string]bool, len(batch))
	for _, id := range batch {
		m := g.modules[id]
		switch {
		case m.IsLocked():
			plan.exclude(id, ExcludedLocked)
		case m.State.IsPending():
			return nil, &TransitionInProgressError{ModuleID: id, State: m.State}
		case m.State == StateInactive:
			plan.exclude(id, ExcludedAlreadyInactive)
		default:
			scheduled[id] = true
		}
	}

	stranded := make(map[string][]string)
	for _, id := range batch {
		if !scheduled[id] {
			continue
		}
		for _, e := range g.reverse[id] {
			if !e.IsRequired() || scheduled[e.Source] || e.Source == id {
				continue
			}
			if dependent := g.modules[e.Source]; dependent.inUse() {
				stranded[id] = append(stranded[id], e.Source)
			}
		}
	}
	if len(stranded) > 0 {
		return nil, &ActiveDependentsError{Stranded: stranded}
	}

	order, err := kahn(g, scheduled, DirectionDeactivate)
	if err != nil {
		return nil, err
	}
	plan.schedule(order)
	return plan, nil
}

// PlanFromSnapshot validates a snapshot and plans on it in one step.
//
// Problems that do not touch the modules being planned are tolerated: the
// plan is computed on a strict graph built from the resolvable edges only.
// Problems that do touch them fail with UnresolvedGraphError. The report is
// returned in both cases.
func PlanFromSnapshot(dir Direction, modules []Module, edges []Edge, targets []string) (*ActivationPlan, ValidationReport, error) {
	loose, _ := Build(modules, edges, Permissive)
	report := ValidateGraph(loose)

	if err := checkKnown(loose, targets); err != nil {
		return nil, report, err
	}

	touched := targets
	if dir == DirectionActivate {
		touched = activationClosure(loose, targets)
	}
	if offending := report.Offending(touched); offending != nil {
		return nil, report, offending
	}

	g, err := Build(loose.Modules(), resolvableEdges(loose), Strict)
	if err != nil {
		return nil, report, err
	}

	var plan *ActivationPlan
	if dir == DirectionDeactivate {
		plan, err = PlanDeactivation(g, targets)
	} else {
		plan, err = PlanActivation(g, targets)
	}
	return plan, report, err
}

// resolvableEdges drops the edges a strict graph would reject: self-loops and
// edges to unresolved targets. Orphaned and duplicate edges were already
// dropped by permissive construction.
func resolvableEdges(g *Graph) []Edge {
	res := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		if e.Source == e.Target || g.IsUnresolved(e.Target) {
			continue
		}
		res = append(res, e)
	}
	return res
}

// activationClosure returns targets plus their transitive Required
// dependencies, in module order. Unresolved targets are included so callers
// can detect them. Dependencies of locked modules are not followed.
func activationClosure(g *Graph, targets []string) []string {
	seen := make(map[string]bool)
	var unresolved []string
	stack := append([]string(nil), targets...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		if g.IsUnresolved(id) {
			unresolved = append(unresolved, id)
			continue
		}
		m, ok := g.modules[id]
		if !ok || m.IsLocked() {
			continue
		}
		for _, e := range g.forward[id] {
			if e.IsRequired() && !seen[e.Target] {
				stack = append(stack, e.Target)
			}
		}
	}

	closure := g.sortByOrder(seen)
	return append(closure, unresolved...)
}

// kahn topologically sorts the scheduled modules along Required edges. For
// activation a module is ready once everything it relies on is placed; for
// deactivation once everything relying on it is placed. Ties go to the module
// listed first in the snapshot.
func kahn(g *Graph, scheduled map[string]bool, dir Direction) ([]string, error) {
	blockers := func(id string) []Edge { return g.forward[id] }
	unblocks := func(id string) []Edge { return g.reverse[id] }
	other := func(e Edge) string { return e.Target }
	next := func(e Edge) string { return e.Source }
	if dir == DirectionDeactivate {
		blockers, unblocks = unblocks, blockers
		other, next = next, other
	}

	pending := make(map[string]int, len(scheduled))
	var ready []int
	for id := range scheduled {
		for _, e := range blockers(id) {
			if e.IsRequired() && scheduled[other(e)] {
				pending[id]++
			}
		}
		if pending[id] == 0 {
			ready = insertSorted(ready, g.index[id])
		}
	}

	order := make([]string, 0, len(scheduled))
	for len(ready) > 0 {
		id := g.order[ready[0]]
		ready = ready[1:]
		order = append(order, id)
		for _, e := range unblocks(id) {
			n := next(e)
			if !e.IsRequired() || !scheduled[n] {
				continue
			}
			pending[n]--
			if pending[n] == 0 {
				ready = insertSorted(ready, g.index[n])
			}
		}
	}

	if len(order) < len(scheduled) {
		return nil, &UnresolvedGraphError{CircularDependencies: stuckCycles(g, scheduled, order)}
	}
	return order, nil
}

// stuckCycles reports the Required cycles among the modules Kahn could not place.
func stuckCycles(g *Graph, scheduled map[string]bool, placed []string) [][]string {
	done := toSet(placed)
	var res [][]string
	for _, cycle := range FindCycles(g, RequiredOnly) {
		for _, id := range cycle {
			if scheduled[id] && !done[id] {
				res = append(res, cycle)
				break
			}
		}
	}
	return res
}

func insertSorted(s []int, v int) []int {
	i, _ := slices.BinarySearch(s, v)
	return slices.Insert(s, i, v)
}

// checkResolved fails when a Required edge leaving one of ids ends at an
// unresolved target, or a Required cycle passes through one of ids. Cycles
// are checked up front because members that are already active never reach
// the topological sort.
func checkResolved(g *Graph, ids []string) error {
	members := toSet(ids)
	var res UnresolvedGraphError
	for _, id := range ids {
		for _, e := range g.forward[id] {
			if e.IsRequired() && g.IsUnresolved(e.Target) {
				res.MissingDependencies = append(res.MissingDependencies, e)
			}
		}
	}
	for _, cycle := range FindCycles(g, RequiredOnly) {
		if slices.ContainsFunc(cycle, func(id string) bool { return members[id] }) {
			res.CircularDependencies = append(res.CircularDependencies, cycle)
		}
	}
	if len(res.MissingDependencies) > 0 || len(res.CircularDependencies) > 0 {
		return &res
	}
	return nil
}

func checkKnown(g *Graph, ids []string) error {
	var unknown []string
	for _, id := range ids {
		if !g.Has(id) && !slices.Contains(unknown, id) {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return &UnknownModuleError{ModuleIDs: unknown}
	}
	return nil
}

// requiringMembers lists the closure members that Require id.
func requiringMembers(g *Graph, id string, closure []string) []string {
	members := toSet(closure)
	var res []string
	for _, e := range g.reverse[id] {
		if e.IsRequired() && members[e.Source] && e.Source != id {
			res = append(res, e.Source)
		}
	}
	return res
}

// sortByOrder returns the known modules of set in snapshot order.
func (g *Graph) sortByOrder(set map[string]bool) []string {
	res := make([]string, 0, len(set))
	for _, id := range g.order {
		if set[id] {
			res = append(res, id)
		}
	}
	return res
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func newPlan(dir Direction) *ActivationPlan {
	return &ActivationPlan{
		Direction: dir,
		Order:     []string{},
		Excluded:  []Exclusion{},
		Steps:     []PlanStep{},
	}
}

func (p *ActivationPlan) exclude(id string, reason ExclusionReason) {
	p.Excluded = append(p.Excluded, Exclusion{ModuleID: id, Reason: reason})
}

func (p *ActivationPlan) schedule(order []string) {
	p.Order = append(p.Order, order...)
	for _, id := range order {
		p.Steps = append(p.Steps, stepFor(id, p.Direction))
	}
}
