// Package coupling builds the static adjacency graph over a model's joints.
//
// Two joints are coupled when they act on the same body or on bodies in a
// direct parent-child relation, i.e. when torque applied at one is felt
// immediately at the other. The graph is built once per model and never
// changes afterwards.
package coupling

import (
	"github.com/san-kum/splitsim/internal/topology"
)

// Edge is an undirected coupling between two joints, stored low-index-first
// so edge sets from identical models compare equal.
type Edge struct {
	A, B int
}

// Graph is an index-addressed adjacency structure over joint indices. It is
// immutable after Build returns.
type Graph struct {
	n     int
	edges []Edge
	adj   [][]int
}

// Build derives the coupling graph from a model's topology. It validates the
// model first; a joint attached to an undeclared body surfaces as a
// [*topology.TopologyError].
func Build(m *topology.Model) (*Graph, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	n := m.NumJoints()
	g := &Graph{
		n:   n,
		adj: make([][]int, n),
	}

	parent := make(map[string]string, len(m.Bodies))
	for _, b := range m.Bodies {
		parent[b.Name] = b.Parent
	}

	// A joint spans the body it moves and that body's parent. Two joints
	// are coupled when their spans intersect: same body, consecutive along
	// a chain, or siblings hanging off one body.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			bi := m.Joints[i].Body
			bj := m.Joints[j].Body
			pi := parent[bi]
			pj := parent[bj]
			if bi == bj || bi == pj || bj == pi || (pi != "" && pi == pj) {
				g.addEdge(i, j)
			}
		}
	}

	return g, nil
}

func (g *Graph) addEdge(a, b int) {
	if a > b {
		a, b = b, a
	}
	g.edges = append(g.edges, Edge{A: a, B: b})
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
}

func (g *Graph) NumJoints() int { return g.n }

// Edges returns a copy of the canonical edge list in build order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Neighbors returns the joints adjacent to joint i, in ascending order.
func (g *Graph) Neighbors(i int) []int {
	out := make([]int, len(g.adj[i]))
	copy(out, g.adj[i])
	return out
}

// Distances runs a breadth-first traversal from the given source joints and
// returns the hop distance to every joint; unreachable joints get -1.
// Sources are expanded in the order given, neighbors in ascending index
// order, so results are deterministic.
func (g *Graph) Distances(sources []int) []int {
	dist := make([]int, g.n)
	for i := range dist {
		dist[i] = -1
	}

	queue := make([]int, 0, g.n)
	for _, s := range sources {
		if dist[s] == -1 {
			dist[s] = 0
			queue = append(queue, s)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range g.adj[cur] {
			if dist[nb] == -1 {
				dist[nb] = dist[cur] + 1
				queue = append(queue, nb)
			}
		}
	}

	return dist
}

// Diameter is the longest shortest path between any pair of joints,
// considering only reachable pairs.
func (g *Graph) Diameter() int {
	max := 0
	for i := 0; i < g.n; i++ {
		for _, d := range g.Distances([]int{i}) {
			if d > max {
				max = d
			}
		}
	}
	return max
}
