package dependency

// BuildMode selects how Build treats edges that do not fit the module list.
type BuildMode int

const (
	// Strict rejects dangling, self-referential and duplicate edges. Planning
	// always runs on a strict graph.
	Strict BuildMode = iota
	// Permissive keeps dangling targets as unresolved nodes and self-loops as
	// edges, and records orphaned edges and duplicate edges or modules
	// instead of failing. It never returns an error.
	// Validation runs on a permissive graph.
	Permissive
)

func (m BuildMode) String() string {
	if m == Permissive {
		return "permissive"
	}
	return "strict"
}

// Graph is an immutable snapshot of modules and their dependency edges.
//
// Every lookup returns copies, so a built graph can be shared between
// goroutines without synchronisation.
type Graph struct {
	mode BuildMode

	order   []string
	modules map[string]Module
	index   map[string]int

	edges   []Edge
	forward map[string][]Edge // source -> edges, insertion order
	reverse map[string][]Edge // target -> edges, insertion order

	unresolved    []string
	unresolvedSet map[string]bool
	orphaned      []Edge
	duplicates    []Edge

	duplicateModules []string
}

// Build creates a graph from a flat module list and edge list. Modules keep
// the order in which they were supplied; that order is what makes cycle
// detection and planning deterministic.
func Build(modules []Module, edges []Edge, mode BuildMode) (*Graph, error) {
	g := &Graph{
		mode:          mode,
		order:         make([]string, 0, len(modules)),
		modules:       make(map[string]Module, len(modules)),
		index:         make(map[string]int, len(modules)),
		forward:       make(map[string][]Edge),
		reverse:       make(map[string][]Edge),
		unresolvedSet: make(map[string]bool),
	}

	for _, m := range modules {
		if _, exists := g.modules[m.ID]; exists {
			if mode == Strict {
				return nil, &DuplicateModuleError{ModuleID: m.ID}
			}
			g.duplicateModules = append(g.duplicateModules, m.ID)
			continue
		}
		g.index[m.ID] = len(g.order)
		g.order = append(g.order, m.ID)
		g.modules[m.ID] = m
	}

	// Permissive graphs keep the most severe of repeated edges, the first one
	// on a tie, so a Required edge is never hidden behind an Optional one.
	kept := make(map[edgeKey]int, len(edges))
	if mode == Permissive {
		for i, e := range edges {
			if j, ok := kept[e.key()]; !ok || e.Type.weight() > edges[j].Type.weight() {
				kept[e.key()] = i
			}
		}
	}

	seen := make(map[edgeKey]bool, len(edges))
	for i, e := range edges {
		if _, ok := g.modules[e.Source]; !ok {
			if mode == Strict {
				return nil, &MalformedEdgeError{Edge: e, Reason: ReasonUnknownSource}
			}
			g.orphaned = append(g.orphaned, e)
			continue
		}
		if e.Source == e.Target && mode == Strict {
			return nil, &MalformedEdgeError{Edge: e, Reason: ReasonSelfLoop}
		}
		if _, ok := g.modules[e.Target]; !ok && mode == Strict {
			return nil, &MalformedEdgeError{Edge: e, Reason: ReasonDanglingTarget}
		}
		if mode == Strict {
			if seen[e.key()] {
				return nil, &MalformedEdgeError{Edge: e, Reason: ReasonDuplicate}
			}
			seen[e.key()] = true
		} else if kept[e.key()] != i {
			g.duplicates = append(g.duplicates, e)
			continue
		}

		if _, ok := g.modules[e.Target]; !ok && !g.unresolvedSet[e.Target] {
			g.unresolvedSet[e.Target] = true
			g.unresolved = append(g.unresolved, e.Target)
		}

		g.edges = append(g.edges, e)
		g.forward[e.Source] = append(g.forward[e.Source], e)
		g.reverse[e.Target] = append(g.reverse[e.Target], e)
	}

	return g, nil
}

// Mode returns the mode the graph was built with.
func (g *Graph) Mode() BuildMode {
	return g.mode
}

// Modules returns the modules in insertion order.
func (g *Graph) Modules() []Module {
	res := make([]Module, 0, len(g.order))
	for _, id := range g.order {
		res = append(res, g.modules[id])
	}
	return res
}

// Module returns the module with the given ID.
func (g *Graph) Module(id string) (Module, bool) {
	m, ok := g.modules[id]
	return m, ok
}

// Has reports whether id is a known module. Unresolved targets are not modules.
func (g *Graph) Has(id string) bool {
	_, ok := g.modules[id]
	return ok
}

// Edges returns the retained edges in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// DependencyEdges returns the edges leaving id, i.e. what id relies on.
func (g *Graph) DependencyEdges(id string) []Edge {
	return append([]Edge(nil), g.forward[id]...)
}

// DependentEdges returns the edges arriving at id, i.e. who relies on id.
func (g *Graph) DependentEdges(id string) []Edge {
	return append([]Edge(nil), g.reverse[id]...)
}

// Dependencies returns the IDs id relies on.
func (g *Graph) Dependencies(id string) []NodeID {
	var res []NodeID
	for _, e := range g.forward[id] {
		res = append(res, e.Target)
	}
	return res
}

// Dependents returns the IDs that rely on id.
func (g *Graph) Dependents(id string) []NodeID {
	var res []NodeID
	for _, e := range g.reverse[id] {
		res = append(res, e.Source)
	}
	return res
}

// IsUnresolved reports whether id is the target of an edge but not a module.
func (g *Graph) IsUnresolved(id string) bool {
	return g.unresolvedSet[id]
}

// Unresolved returns the dangling targets in first-seen order.
func (g *Graph) Unresolved() []string {
	return append([]string(nil), g.unresolved...)
}

// Orphaned returns edges dropped because their source is not a module.
func (g *Graph) Orphaned() []Edge {
	return append([]Edge(nil), g.orphaned...)
}

// Duplicates returns edges dropped because another edge with the same
// (source, target) pair was kept: the most severe one, or the first on a tie.
func (g *Graph) Duplicates() []Edge {
	return append([]Edge(nil), g.duplicates...)
}

// DuplicateModules returns module IDs that were listed more than once. Only
// the first listing is kept.
func (g *Graph) DuplicateModules() []string {
	return append([]string(nil), g.duplicateModules...)
}

// NodeID is a module identifier. It is an alias so callers can pass plain
// strings around freely.
type NodeID = string
