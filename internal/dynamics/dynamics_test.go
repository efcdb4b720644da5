package dynamics

import (
	"math"
	"testing"

	"github.com/san-kum/splitsim/internal/coupling"
	"github.com/san-kum/splitsim/internal/topology"
)

func newChainSystem(t *testing.T, n int) *CoupledJoints {
	t.Helper()
	m := topology.Chain(n)
	g, err := coupling.Build(m)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	return NewCoupledJoints(m, g)
}

func TestCoupledJointsDimensions(t *testing.T) {
	sys := newChainSystem(t, 4)

	if sys.StateDim() != 8 {
		t.Errorf("expected state dim 8, got %d", sys.StateDim())
	}
	if sys.ControlDim() != 4 {
		t.Errorf("expected control dim 4, got %d", sys.ControlDim())
	}
}

func TestCoupledJointsEquilibrium(t *testing.T) {
	sys := newChainSystem(t, 2)

	x := make(State, 4)
	u := make(Control, 2)
	dx := sys.Derive(x, u, 0)

	for i, v := range dx {
		if math.Abs(v) > 1e-12 {
			t.Errorf("expected zero derivative at rest, got dx[%d]=%f", i, v)
		}
	}
}

func TestCoupledJointsTorqueAccelerates(t *testing.T) {
	sys := newChainSystem(t, 2)

	x := make(State, 4)
	dx := sys.Derive(x, Control{1.0, 0.0}, 0)

	if dx[2] <= 0 {
		t.Errorf("positive torque should accelerate joint 0, got %f", dx[2])
	}

	// Coupling pulls the neighbor only once it is displaced.
	displaced := State{1.0, 0, 0, 0}
	dx = sys.Derive(displaced, Control{0, 0}, 0)
	if dx[3] <= 0 {
		t.Errorf("displaced joint 0 should drag joint 1 along, got %f", dx[3])
	}
}

func TestEulerStep(t *testing.T) {
	sys := newChainSystem(t, 2)

	x := State{0.5, 0, 0, 0}
	next := NewEuler().Step(sys, x, Control{0, 0}, 0, 0.01)

	if len(next) != 4 {
		t.Fatalf("expected state length 4, got %d", len(next))
	}
	if next[0] != 0.5 {
		t.Errorf("euler with zero velocity should not move position in one step, got %f", next[0])
	}
	if next[2] >= 0 {
		t.Errorf("spring should pull displaced joint back, vel %f", next[2])
	}
}

func TestRK4Decays(t *testing.T) {
	sys := newChainSystem(t, 2)
	integ := NewRK4()

	x := State{1.0, 0.5, 0, 0}
	u := Control{0, 0}
	t0 := 0.0
	for i := 0; i < 2000; i++ {
		x = integ.Step(sys, x, u, t0, 0.01)
		t0 += 0.01
	}

	if !x.IsValid() {
		t.Fatal("state diverged")
	}
	for i, v := range x {
		if math.Abs(v) > 0.05 {
			t.Errorf("damped system should settle near rest, x[%d]=%f", i, v)
		}
	}
}

func TestStateClone(t *testing.T) {
	x := State{1, 2, 3}
	c := x.Clone()
	c[0] = 9
	if x[0] != 1 {
		t.Error("clone must not alias the original")
	}
}

func TestStateIsValid(t *testing.T) {
	if !(State{1, 2}).IsValid() {
		t.Error("finite state should be valid")
	}
	if (State{math.NaN()}).IsValid() {
		t.Error("NaN state should be invalid")
	}
	if (State{math.Inf(1)}).IsValid() {
		t.Error("Inf state should be invalid")
	}
}
