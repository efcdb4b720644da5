package dynamics

import (
	"github.com/san-kum/splitsim/internal/coupling"
	"github.com/san-kum/splitsim/internal/topology"
)

// CoupledJoints is a damped torsional-spring network over a model's
// joints: each joint is pulled toward zero by its own spring and toward
// its coupled neighbors by coupling springs, with direct torque input.
// State layout: [qpos(n), qvel(n)]. Control layout: one torque per joint.
type CoupledJoints struct {
	n         int
	neighbors [][]int
	Inertia   float64
	Stiffness float64
	Coupling  float64
	Damping   float64
	Gain      float64
}

func NewCoupledJoints(m *topology.Model, g *coupling.Graph) *CoupledJoints {
	n := m.NumJoints()
	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		neighbors[i] = g.Neighbors(i)
	}
	return &CoupledJoints{
		n:         n,
		neighbors: neighbors,
		Inertia:   1.0,
		Stiffness: 4.0,
		Coupling:  2.0,
		Damping:   0.5,
		Gain:      10.0,
	}
}

func (c *CoupledJoints) StateDim() int   { return c.n * 2 }
func (c *CoupledJoints) ControlDim() int { return c.n }

func (c *CoupledJoints) Derive(x State, u Control, _ float64) State {
	deriv := make(State, c.n*2)

	for i := 0; i < c.n; i++ {
		q := x[i]
		v := x[c.n+i]

		torque := -c.Stiffness*q - c.Damping*v
		for _, nb := range c.neighbors[i] {
			torque += c.Coupling * (x[nb] - q)
		}
		if i < len(u) {
			torque += c.Gain * u[i]
		}

		deriv[i] = v
		deriv[c.n+i] = torque / c.Inertia
	}

	return deriv
}
