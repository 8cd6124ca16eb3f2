package dependency

import "strings"

// EdgeFilter selects which edges take part in a traversal.
type EdgeFilter func(Edge) bool

// RequiredOnly keeps Required edges; only these can make a graph invalid.
func RequiredOnly(e Edge) bool {
	return e.IsRequired()
}

// AllEdges keeps every edge regardless of its type.
func AllEdges(Edge) bool {
	return true
}

// FindCycles returns the cycles found by a depth-first walk over the edges
// accepted by include (nil means all edges).
//
// Each cycle lists its nodes once, without repeating the first node at the
// end, rotated so that it starts with its lexically smallest id. A cycle is
// reported once however many rotations of it the walk runs into. A self-loop
// is reported as a cycle of length one.
//
// The walk records one cycle per back edge it meets; it does not enumerate
// every elementary cycle of densely connected components.
func FindCycles(g *Graph, include EdgeFilter) [][]string {
	if include == nil {
		include = AllEdges
	}

	visiting := make(map[string]bool)
	visited := make(map[string]bool)
	reported := make(map[string]bool)
	var path []string
	var cycles [][]string

	var visit func(id string)
	visit = func(id string) {
		visiting[id] = true
		path = append(path, id)

		for _, e := range g.forward[id] {
			if !include(e) {
				continue
			}
			switch next := e.Target; {
			case visiting[next]:
				cycle := cycleFrom(path, next)
				key := strings.Join(cycle, "\x00")
				if !reported[key] {
					reported[key] = true
					cycles = append(cycles, cycle)
				}
			case !visited[next]:
				visit(next)
			}
		}

		path = path[:len(path)-1]
		visiting[id] = false
		visited[id] = true
	}

	for _, id := range g.order {
		if !visited[id] {
			visit(id)
		}
	}
	return cycles
}

// cycleFrom cuts the suffix of path starting at start and rotates it into
// canonical form.
func cycleFrom(path []string, start string) []string {
	from := len(path) - 1
	for from > 0 && path[from] != start {
		from--
	}
	return canonicalCycle(path[from:])
}

func canonicalCycle(nodes []string) []string {
	smallest := 0
	for i, id := range nodes {
		if id < nodes[smallest] {
			smallest = i
		}
	}
	res := make([]string, 0, len(nodes))
	res = append(res, nodes[smallest:]...)
	res = append(res, nodes[:smallest]...)
	return res
}
