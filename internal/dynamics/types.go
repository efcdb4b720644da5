// Package dynamics provides the joint-space physics backing the stepper.
//
// The rest of the system treats physics as an opaque service: a [System]
// produces state derivatives and an [Integrator] advances them. The
// built-in [CoupledJoints] system is a damped spring network shaped by a
// model's coupling structure; it stands in for any external engine that
// satisfies the same interfaces.
package dynamics

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Control []float64

// System defines joint-space dynamics dX/dt = f(X, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Integrator advances a system state by one timestep.
type Integrator interface {
	Step(sys System, x State, u Control, t, dt float64) State
}
