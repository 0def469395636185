// Package graph provides a small directed graph over string-identified
// nodes with deterministic cycle detection. The variable resolver and the
// context assembler both build their reference graphs on it; the two graphs
// never share node identities.
package graph

import "sort"

// Graph is a directed graph of named nodes. The zero value is not usable;
// call New.
type Graph struct {
	edges map[string][]string
}

// New creates an initialized, empty Graph.
func New() *Graph {
	return &Graph{edges: make(map[string][]string)}
}

// AddNode ensures a node with the given ID exists. Adding an existing node
// is a no-op.
func (g *Graph) AddNode(id string) {
	if _, ok := g.edges[id]; !ok {
		g.edges[id] = nil
	}
}

// AddEdge records a directed edge from -> to, creating either node as
// needed. Duplicate edges are kept; they do not affect cycle detection.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.edges[from] = append(g.edges[from], to)
}

// FindCycle returns the members of one cycle in reference order, or nil if
// the graph is acyclic. Nodes are visited in sorted order so the reported
// cycle is stable across runs.
func (g *Graph) FindCycle() []string {
	// Classic three-state depth-first search: done nodes are known safe,
	// nodes on the current stack are candidates for closing a cycle.
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(g.edges))

	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		switch state[id] {
		case done:
			return false
		case inProgress:
			// Slice the stack from the first occurrence of id: everything
			// after it is on the cycle.
			for i, member := range stack {
				if member == id {
					cycle = append([]string(nil), stack[i:]...)
					return true
				}
			}
			return true
		}

		state[id] = inProgress
		stack = append(stack, id)
		for _, next := range g.edges[id] {
			if visit(next) {
				return true
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
		return false
	}

	ids := make([]string, 0, len(g.edges))
	for id := range g.edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if state[id] == unvisited && visit(id) {
			return cycle
		}
	}
	return nil
}
