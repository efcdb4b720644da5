package stepper

import (
	"errors"
	"reflect"
	"testing"

	"github.com/san-kum/splitsim/internal/coupling"
	"github.com/san-kum/splitsim/internal/dynamics"
	"github.com/san-kum/splitsim/internal/topology"
)

func newChainStepper(t *testing.T, n int, cfg Config) *Stepper {
	t.Helper()
	m := topology.Chain(n)
	g, err := coupling.Build(m)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	cfg.NumJoints = n
	if cfg.Timestep == 0 {
		cfg.Timestep = m.Timestep
	}
	s, err := New(dynamics.NewCoupledJoints(m, g), dynamics.NewRK4(), cfg)
	if err != nil {
		t.Fatalf("new stepper: %v", err)
	}
	return s
}

func TestStepAdvancesClock(t *testing.T) {
	s := newChainStepper(t, 2, Config{FrameSkip: 5, Timestep: 0.01})

	st := s.Reset()
	if st.Tick != 0 || st.Time != 0 {
		t.Fatalf("reset should zero the clock, got tick=%d time=%f", st.Tick, st.Time)
	}

	st, err := s.Step([]float64{0, 0})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if st.Tick != 5 {
		t.Errorf("frame skip 5 should advance 5 ticks, got %d", st.Tick)
	}
	if st.Time != s.Dt() {
		t.Errorf("expected time %f after one step, got %f", s.Dt(), st.Time)
	}
}

func TestStepWrongShape(t *testing.T) {
	s := newChainStepper(t, 2, Config{})
	s.Reset()
	before := s.State()

	_, err := s.Step([]float64{1, 2, 3})
	var shapeErr *ActionShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected ActionShapeError, got %v", err)
	}
	if shapeErr.Want != 2 || shapeErr.Got != 3 {
		t.Errorf("error should carry shapes, got %+v", shapeErr)
	}

	// State untouched by the failed call.
	if !reflect.DeepEqual(s.State(), before) {
		t.Error("failed step must leave state byte-identical")
	}
}

func TestResetReproducible(t *testing.T) {
	a := newChainStepper(t, 4, Config{Noise: 0.1, Seed: 42})
	b := newChainStepper(t, 4, Config{Noise: 0.1, Seed: 42})

	s1 := a.Reset()
	s2 := b.Reset()
	if !reflect.DeepEqual(s1, s2) {
		t.Error("same seed must give identical reset states")
	}

	c := newChainStepper(t, 4, Config{Noise: 0.1, Seed: 43})
	s3 := c.Reset()
	if reflect.DeepEqual(s1, s3) {
		t.Error("different seeds should give different reset noise")
	}
}

func TestSnapshotImmutable(t *testing.T) {
	s := newChainStepper(t, 2, Config{})
	st := s.Reset()

	st.Qpos[0] = 99
	if s.State().Qpos[0] == 99 {
		t.Error("mutating a snapshot must not affect the stepper's state")
	}
}

func TestSetState(t *testing.T) {
	s := newChainStepper(t, 2, Config{})
	s.Reset()

	st, err := s.SetState([]float64{0.3, -0.2}, []float64{1, -1})
	if err != nil {
		t.Fatalf("set state: %v", err)
	}
	if st.Qpos[0] != 0.3 || st.Qvel[1] != -1 {
		t.Errorf("set state not reflected in snapshot: %+v", st)
	}

	if _, err := s.SetState([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("expected error for wrong-length set-state vectors")
	}
}

func TestInitState(t *testing.T) {
	s := newChainStepper(t, 2, Config{InitQpos: []float64{0.5, 0.1}})
	st := s.Reset()
	if st.Qpos[0] != 0.5 || st.Qpos[1] != 0.1 {
		t.Errorf("reset should restore configured initial positions, got %v", st.Qpos)
	}
}

func TestNewValidation(t *testing.T) {
	m := topology.Chain(2)
	g, _ := coupling.Build(m)
	sys := dynamics.NewCoupledJoints(m, g)

	if _, err := New(sys, dynamics.NewRK4(), Config{NumJoints: 3, Timestep: 0.01}); err == nil {
		t.Error("expected error when system dims do not match joint count")
	}
	if _, err := New(sys, dynamics.NewRK4(), Config{NumJoints: 2, Timestep: -1}); err == nil {
		t.Error("expected error for non-positive timestep")
	}
	if _, err := New(sys, dynamics.NewRK4(), Config{NumJoints: 2, Timestep: 0.01, InitQpos: []float64{1}}); err == nil {
		t.Error("expected error for wrong-length initial positions")
	}
}
