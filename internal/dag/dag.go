// Package dag models the category graph of an almanac.
// Each category (seed, soil, ...) is a node and each stage is a directed edge
// from its source category to its destination category. The graph supports
// cycle detection, topological sorting, and extraction of a linear chain.
package dag

import (
	"fmt"
	"sort"
	"strings"
)

// Edge is one stage between two categories.
type Edge struct {
	From  string
	To    string
	Stage string
}

// Graph is a directed graph of categories.
type Graph struct {
	nodes    map[string]bool
	children map[string][]string // from -> to
	parents  map[string][]string // to -> from
	stages   map[[2]string]string
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]bool),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
		stages:   make(map[[2]string]string),
	}
}

// AddCategory adds a category node. Adding an existing category is a no-op.
func (g *Graph) AddCategory(name string) {
	g.nodes[name] = true
}

// AddStage adds the edge from -> to labelled with the stage name, creating
// both categories if needed.
func (g *Graph) AddStage(from, to, stage string) error {
	if from == to {
		return fmt.Errorf("stage %q maps category %q onto itself", stage, from)
	}
	key := [2]string{from, to}
	if prev, exists := g.stages[key]; exists {
		return fmt.Errorf("stage %q duplicates %q (%s -> %s)", stage, prev, from, to)
	}

	g.AddCategory(from)
	g.AddCategory(to)
	g.stages[key] = stage
	g.children[from] = append(g.children[from], to)
	g.parents[to] = append(g.parents[to], from)
	return nil
}

// Stage returns the stage name for the edge from -> to.
func (g *Graph) Stage(from, to string) (string, bool) {
	s, ok := g.stages[[2]string{from, to}]
	return s, ok
}

// Parents returns the categories with a stage into id.
func (g *Graph) Parents(id string) []string {
	return g.parents[id]
}

// Children returns the categories reachable from id in one stage.
func (g *Graph) Children(id string) []string {
	return g.children[id]
}

// NodeCount returns the number of categories.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of stages.
func (g *Graph) EdgeCount() int {
	return len(g.stages)
}

// Edges returns every stage sorted by source then destination.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.stages))
	for k, s := range g.stages {
		edges = append(edges, Edge{From: k[0], To: k[1], Stage: s})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasCycle returns true if the graph contains a cycle, along with the cycle path.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	via := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, next := range g.children[id] {
			if !visited[next] {
				via[next] = id
				if dfs(next) {
					return true
				}
			} else if onStack[next] {
				cyclePath = []string{next}
				for cur := id; cur != next; cur = via[cur] {
					cyclePath = append([]string{cur}, cyclePath...)
				}
				cyclePath = append([]string{next}, cyclePath...)
				return true
			}
		}

		onStack[id] = false
		return false
	}

	for _, id := range g.sortedIDs() {
		if !visited[id] && dfs(id) {
			return true, cyclePath
		}
	}
	return false, nil
}

// TopologicalSort returns categories with every source before its destinations.
// Ties are broken alphabetically so the order is deterministic.
func (g *Graph) TopologicalSort() ([]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %s", strings.Join(cyclePath, " -> "))
	}

	indegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		indegree[id] = len(g.parents[id])
	}

	var ready []string
	for _, id := range g.sortedIDs() {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		next := append([]string(nil), g.children[id]...)
		sort.Strings(next)
		for _, child := range next {
			indegree[child]--
			if indegree[child] == 0 {
				ready = append(ready, child)
			}
		}
	}
	return order, nil
}

// Roots returns categories no stage maps into.
func (g *Graph) Roots() []string {
	var roots []string
	for _, id := range g.sortedIDs() {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// Leaves returns categories no stage maps out of.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, id := range g.sortedIDs() {
		if len(g.children[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// Chain returns the categories in order when the graph is a single linear
// path (one root, one leaf, no branching, no cycle). An empty graph yields an
// empty chain.
func (g *Graph) Chain() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	for _, id := range order {
		if n := len(g.children[id]); n > 1 {
			return nil, fmt.Errorf("category %q branches into %s", id, strings.Join(g.children[id], ", "))
		}
		if n := len(g.parents[id]); n > 1 {
			return nil, fmt.Errorf("category %q is reached from %s", id, strings.Join(g.parents[id], ", "))
		}
	}
	if roots := g.Roots(); len(roots) != 1 {
		return nil, fmt.Errorf("expected one starting category, found %d: %s", len(roots), strings.Join(roots, ", "))
	}
	return order, nil
}
