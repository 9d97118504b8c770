package dag

import (
	"fmt"
	"slices"
	"strings"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:   id,
		deps: make(map[string]*node),
	}
	g.order = append(g.order, id)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. An error is returned
// if either node does not exist or if the edge would create a self-reference.
// Adding an existing edge again is a no-op.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	if _, exists := toNode.deps[fromID]; exists {
		return nil
	}
	toNode.deps[fromID] = fromNode
	toNode.depOrder = append(toNode.depOrder, fromID)

	return nil
}

// CycleError reports a dependency cycle. Path starts and ends at the same node.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: %s", strings.Join(e.Path, " -> "))
}

// Cycles returns one path per back edge found by a depth-first walk along
// dependency edges. Each path reads "a depends on b depends on ... a".
func (g *Graph) Cycles() [][]string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// permanent: nodes that have been fully visited.
	// stack: nodes currently in the recursion stack, in order.
	permanent := make(map[string]bool)
	onStack := make(map[string]int)
	var stack []string
	var cycles [][]string

	var visit func(n *node)
	visit = func(n *node) {
		onStack[n.id] = len(stack)
		stack = append(stack, n.id)

		for _, depID := range n.depOrder {
			if idx, ok := onStack[depID]; ok {
				// We've hit a node that's already in our recursion stack, so we have a cycle.
				path := slices.Clone(stack[idx:])
				cycles = append(cycles, append(path, depID))
				continue
			}
			if !permanent[depID] {
				visit(n.deps[depID])
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, n.id)
		permanent[n.id] = true
	}

	for _, id := range g.order {
		if !permanent[id] {
			visit(g.nodes[id])
		}
	}

	return cycles
}
