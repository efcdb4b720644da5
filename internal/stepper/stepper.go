// Package stepper owns the single mutable simulation state.
//
// A [Stepper] is the only component allowed to advance physics. Everything
// else sees state as the immutable [GlobalState] snapshots returned from
// Reset and Step. One Step call advances the underlying integrator
// FrameSkip times, so the effective control timestep is
// timestep * frameSkip.
package stepper

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/splitsim/internal/dynamics"
)

// GlobalState is a flat, index-addressed snapshot of the simulation:
// per-joint positions and velocities plus the tick count and sim time at
// which it was taken. Snapshots are never mutated after being returned.
type GlobalState struct {
	Qpos []float64
	Qvel []float64
	Tick int
	Time float64
}

// ActionShapeError reports an action vector whose length does not match
// the actuator count it addresses: the whole model for global actions, one
// agent's owned joints when Agent is set. The simulation state is
// untouched either way.
type ActionShapeError struct {
	Agent     string
	Want, Got int
}

func (e *ActionShapeError) Error() string {
	if e.Agent != "" {
		return fmt.Sprintf("stepper: agent %q action has length %d, owns %d actuators", e.Agent, e.Got, e.Want)
	}
	return fmt.Sprintf("stepper: action vector has length %d, model has %d actuators", e.Got, e.Want)
}

// Stepper advances one shared simulation. Not safe for concurrent use; the
// facade serializes all access.
type Stepper struct {
	sys       dynamics.System
	integ     dynamics.Integrator
	numJoints int
	timestep  float64
	frameSkip int

	initQpos []float64
	initQvel []float64
	noise    float64
	rng      *rand.Rand

	x    dynamics.State
	tick int
	time float64
}

// Config carries everything a Stepper needs besides the physics system
// itself.
type Config struct {
	NumJoints int
	Timestep  float64
	FrameSkip int
	InitQpos  []float64 // nil means all zeros
	InitQvel  []float64
	Noise     float64 // uniform reset noise magnitude
	Seed      int64
}

func New(sys dynamics.System, integ dynamics.Integrator, cfg Config) (*Stepper, error) {
	if cfg.NumJoints <= 0 {
		return nil, fmt.Errorf("stepper: joint count must be positive, got %d", cfg.NumJoints)
	}
	if sys.StateDim() != cfg.NumJoints*2 {
		return nil, fmt.Errorf("stepper: system state dim %d does not match %d joints", sys.StateDim(), cfg.NumJoints)
	}
	if cfg.Timestep <= 0 {
		return nil, fmt.Errorf("stepper: timestep must be positive, got %f", cfg.Timestep)
	}
	if cfg.FrameSkip <= 0 {
		cfg.FrameSkip = 1
	}

	s := &Stepper{
		sys:       sys,
		integ:     integ,
		numJoints: cfg.NumJoints,
		timestep:  cfg.Timestep,
		frameSkip: cfg.FrameSkip,
		initQpos:  make([]float64, cfg.NumJoints),
		initQvel:  make([]float64, cfg.NumJoints),
		noise:     cfg.Noise,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		x:         make(dynamics.State, cfg.NumJoints*2),
	}
	if cfg.InitQpos != nil {
		if len(cfg.InitQpos) != cfg.NumJoints {
			return nil, fmt.Errorf("stepper: initial position vector has length %d, want %d", len(cfg.InitQpos), cfg.NumJoints)
		}
		copy(s.initQpos, cfg.InitQpos)
	}
	if cfg.InitQvel != nil {
		if len(cfg.InitQvel) != cfg.NumJoints {
			return nil, fmt.Errorf("stepper: initial velocity vector has length %d, want %d", len(cfg.InitQvel), cfg.NumJoints)
		}
		copy(s.initQvel, cfg.InitQvel)
	}

	s.restore()
	return s, nil
}

func (s *Stepper) NumJoints() int { return s.numJoints }

// Dt is the effective control timestep of one Step call.
func (s *Stepper) Dt() float64 { return s.timestep * float64(s.frameSkip) }

func (s *Stepper) restore() {
	for i := 0; i < s.numJoints; i++ {
		s.x[i] = s.initQpos[i]
		s.x[s.numJoints+i] = s.initQvel[i]
	}
	s.tick = 0
	s.time = 0
}

// Reset restores the initial joint state plus uniform noise and returns the
// fresh snapshot. Resets are reproducible for a fixed construction seed.
func (s *Stepper) Reset() *GlobalState {
	s.restore()
	if s.noise > 0 {
		for i := 0; i < s.numJoints; i++ {
			s.x[i] += s.noise * (2*s.rng.Float64() - 1)
			s.x[s.numJoints+i] += s.noise * (2*s.rng.Float64() - 1)
		}
	}
	return s.snapshot()
}

// Step validates the global action, advances the integrator frameSkip
// times, and returns the new snapshot. A shape failure leaves the state
// exactly as it was.
func (s *Stepper) Step(action []float64) (*GlobalState, error) {
	if len(action) != s.numJoints {
		return nil, &ActionShapeError{Want: s.numJoints, Got: len(action)}
	}

	u := dynamics.Control(action)
	for f := 0; f < s.frameSkip; f++ {
		s.x = s.integ.Step(s.sys, s.x, u, s.time, s.timestep)
		s.time += s.timestep
		s.tick++
	}

	if !s.x.IsValid() {
		return nil, fmt.Errorf("stepper: state diverged (NaN/Inf) at tick %d", s.tick)
	}
	return s.snapshot(), nil
}

// SetState injects an explicit joint state, bypassing the integrator. Used
// by tests and scripted scenarios.
func (s *Stepper) SetState(qpos, qvel []float64) (*GlobalState, error) {
	if len(qpos) != s.numJoints || len(qvel) != s.numJoints {
		return nil, fmt.Errorf("stepper: set-state vectors have lengths %d/%d, want %d", len(qpos), len(qvel), s.numJoints)
	}
	for i := 0; i < s.numJoints; i++ {
		s.x[i] = qpos[i]
		s.x[s.numJoints+i] = qvel[i]
	}
	return s.snapshot(), nil
}

// State returns the current snapshot without advancing anything.
func (s *Stepper) State() *GlobalState {
	return s.snapshot()
}

func (s *Stepper) snapshot() *GlobalState {
	g := &GlobalState{
		Qpos: make([]float64, s.numJoints),
		Qvel: make([]float64, s.numJoints),
		Tick: s.tick,
		Time: s.time,
	}
	copy(g.Qpos, s.x[:s.numJoints])
	copy(g.Qvel, s.x[s.numJoints:])
	return g
}
