package coupling

import (
	"errors"
	"reflect"
	"testing"

	"github.com/san-kum/splitsim/internal/topology"
)

func TestBuildChain(t *testing.T) {
	g, err := Build(topology.Chain(4))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := []Edge{{0, 1}, {1, 2}, {2, 3}}
	if !reflect.DeepEqual(g.Edges(), want) {
		t.Errorf("expected chain edges %v, got %v", want, g.Edges())
	}
	if g.Diameter() != 3 {
		t.Errorf("expected diameter 3, got %d", g.Diameter())
	}
}

func TestBuildWalkerHipsCoupled(t *testing.T) {
	m := topology.Walker()
	g, err := Build(m)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	rightHip := m.JointIndex("right_hip")
	leftHip := m.JointIndex("left_hip")

	coupled := false
	for _, nb := range g.Neighbors(rightHip) {
		if nb == leftHip {
			coupled = true
		}
	}
	if !coupled {
		t.Error("hips share the torso and must be coupled")
	}

	// The graph must be connected: every joint reachable from joint 0.
	for i, d := range g.Distances([]int{0}) {
		if d < 0 {
			t.Errorf("joint %d unreachable from joint 0", i)
		}
	}
}

func TestBuildRejectsBadTopology(t *testing.T) {
	m := &topology.Model{
		Name:   "bad",
		Bodies: []topology.Body{{Name: "torso"}},
		Joints: []topology.Joint{{Name: "j0", Body: "ghost"}},
	}

	_, err := Build(m)
	var topoErr *topology.TopologyError
	if !errors.As(err, &topoErr) {
		t.Fatalf("expected TopologyError, got %v", err)
	}
}

func TestEdgesCanonical(t *testing.T) {
	g, err := Build(topology.Walker())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, e := range g.Edges() {
		if e.A >= e.B {
			t.Errorf("edge %v not canonicalized low-index-first", e)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	g1, _ := Build(topology.Crawler())
	g2, _ := Build(topology.Crawler())

	if !reflect.DeepEqual(g1.Edges(), g2.Edges()) {
		t.Error("identical models must yield identical edge sets")
	}
}

func TestDistances(t *testing.T) {
	g, _ := Build(topology.Chain(4))

	dist := g.Distances([]int{0})
	want := []int{0, 1, 2, 3}
	if !reflect.DeepEqual(dist, want) {
		t.Errorf("expected distances %v, got %v", want, dist)
	}

	// Multi-source traversal takes the nearest source.
	dist = g.Distances([]int{0, 3})
	want = []int{0, 1, 1, 0}
	if !reflect.DeepEqual(dist, want) {
		t.Errorf("expected distances %v, got %v", want, dist)
	}
}
