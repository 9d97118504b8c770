package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// build creates a graph from "dependency -> dependent" pairs, adding nodes in
// first-seen order.
func build(t *testing.T, nodes []string, edges ...[2]string) *Graph {
	t.Helper()
	g := New()
	for _, id := range nodes {
		g.AddNode(id)
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestAddNode_IdempotentAndOrdered(t *testing.T) {
	g := New()
	g.AddNode("Core")
	g.AddNode("Addon")
	g.AddNode("Core")

	assert.Equal(t, []string{"Core", "Addon"}, g.order)
	assert.Len(t, g.nodes, 2)
}

func TestAddEdge(t *testing.T) {
	g := build(t, []string{"Core", "Addon", "Motd"},
		[2]string{"Core", "Addon"},
		[2]string{"Motd", "Addon"},
	)

	require.NoError(t, g.AddEdge("Core", "Addon"), "repeating an edge is a no-op")

	assert.Equal(t, []string{"Core", "Motd"}, g.nodes["Addon"].depOrder)
	assert.Empty(t, g.nodes["Core"].depOrder)
	assert.Same(t, g.nodes["Core"], g.nodes["Addon"].deps["Core"])
}

func TestAddEdge_Errors(t *testing.T) {
	g := build(t, []string{"Core"})

	testCases := []struct {
		from, to string
		wantErr  string
	}{
		{from: "Ghost", to: "Core", wantErr: "source node not found: Ghost"},
		{from: "Core", to: "Ghost", wantErr: "destination node not found: Ghost"},
		{from: "Core", to: "Core", wantErr: "self-referential edge"},
	}
	for _, tc := range testCases {
		t.Run(tc.from+"->"+tc.to, func(t *testing.T) {
			assert.ErrorContains(t, g.AddEdge(tc.from, tc.to), tc.wantErr)
		})
	}
}

func TestCycles_FirstPath(t *testing.T) {
	testCases := []struct {
		name  string
		nodes []string
		edges [][2]string
		want  []string
	}{
		{
			name: "empty graph",
		},
		{
			name:  "isolated plugins",
			nodes: []string{"Core", "Addon", "Motd"},
		},
		{
			name:  "diamond with a transitive edge",
			nodes: []string{"Core", "Storage", "Chat", "Addon"},
			edges: [][2]string{{"Core", "Storage"}, {"Core", "Chat"}, {"Storage", "Addon"}, {"Chat", "Addon"}, {"Core", "Addon"}},
		},
		{
			name:  "two plugins depending on each other",
			nodes: []string{"A", "B"},
			edges: [][2]string{{"B", "A"}, {"A", "B"}},
			want:  []string{"A", "B", "A"},
		},
		{
			name:  "four plugin loop",
			nodes: []string{"A", "B", "C", "D"},
			edges: [][2]string{{"B", "A"}, {"C", "B"}, {"D", "C"}, {"A", "D"}},
			want:  []string{"A", "B", "C", "D", "A"},
		},
		{
			name:  "loop in a separate component",
			nodes: []string{"Core", "Addon", "X", "Y"},
			edges: [][2]string{{"Core", "Addon"}, {"Y", "X"}, {"X", "Y"}},
			want:  []string{"X", "Y", "X"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := build(t, tc.nodes, tc.edges...)

			cycles := g.Cycles()
			if tc.want == nil {
				assert.Empty(t, cycles)
				return
			}

			require.NotEmpty(t, cycles)
			assert.Equal(t, tc.want, cycles[0])
		})
	}
}

func TestCycleError(t *testing.T) {
	err := &CycleError{Path: []string{"A", "D", "C", "B", "A"}}
	assert.EqualError(t, err, "cycle detected: A -> D -> C -> B -> A")
}

func TestCycles_EachBackEdgeOnce(t *testing.T) {
	g := build(t, []string{"A", "B", "X", "Y"},
		[2]string{"B", "A"}, [2]string{"A", "B"},
		[2]string{"Y", "X"}, [2]string{"X", "Y"},
	)

	assert.Equal(t, [][]string{
		{"A", "B", "A"},
		{"X", "Y", "X"},
	}, g.Cycles())
}

func TestCycles_Acyclic(t *testing.T) {
	g := build(t, []string{"Core", "Addon"}, [2]string{"Core", "Addon"})
	assert.Empty(t, g.Cycles())
}
