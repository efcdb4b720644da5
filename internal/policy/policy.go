// Package policy provides built-in per-agent controllers for scripted
// rollouts. These are driver-side conveniences for the CLI and tests; a
// learning stack would supply its own actions through the same env API.
package policy

import (
	"math"
	"math/rand"

	"github.com/san-kum/splitsim/internal/env"
	"github.com/san-kum/splitsim/internal/obs"
)

// Policy produces one agent's local action from its observation.
type Policy interface {
	Act(agentID string, observation []float64, t float64) []float64
}

// Zero always outputs zero torque.
type Zero struct {
	dims map[string]int
}

func NewZero(e *env.Env) *Zero {
	z := &Zero{dims: make(map[string]int)}
	for _, id := range e.AgentIDs() {
		space, _ := e.ActionSpace(id)
		z.dims[id] = space.Len()
	}
	return z
}

func (z *Zero) Act(agentID string, _ []float64, _ float64) []float64 {
	return make([]float64, z.dims[agentID])
}

// Random samples uniformly inside each agent's action box.
type Random struct {
	spaces map[string]env.Box
	rng    *rand.Rand
}

func NewRandom(e *env.Env, seed int64) *Random {
	r := &Random{
		spaces: make(map[string]env.Box),
		rng:    rand.New(rand.NewSource(seed)),
	}
	for _, id := range e.AgentIDs() {
		space, _ := e.ActionSpace(id)
		r.spaces[id] = space
	}
	return r
}

func (r *Random) Act(agentID string, _ []float64, _ float64) []float64 {
	space := r.spaces[agentID]
	u := make([]float64, space.Len())
	for i := range u {
		u[i] = space.Low[i] + r.rng.Float64()*(space.High[i]-space.Low[i])
	}
	return u
}

// Sine drives every actuator with a phase-shifted sine sweep, useful for
// exciting coupled modes.
type Sine struct {
	spaces    map[string]env.Box
	Amplitude float64
	Frequency float64
}

func NewSine(e *env.Env, amplitude, frequency float64) *Sine {
	s := &Sine{
		spaces:    make(map[string]env.Box),
		Amplitude: amplitude,
		Frequency: frequency,
	}
	for _, id := range e.AgentIDs() {
		space, _ := e.ActionSpace(id)
		s.spaces[id] = space
	}
	return s
}

func (s *Sine) Act(agentID string, _ []float64, t float64) []float64 {
	space := s.spaces[agentID]
	u := make([]float64, space.Len())
	for i := range u {
		phase := float64(i) * math.Pi / 4
		u[i] = s.Amplitude * math.Sin(2*math.Pi*s.Frequency*t+phase)
	}
	return u
}

// PDHold drives each owned joint toward zero with proportional-derivative
// feedback read from the agent's own observation entries.
type PDHold struct {
	Kp, Kd float64
	pos    map[string][]int // obs indices of own positions, action order
	vel    map[string][]int
}

func NewPDHold(e *env.Env, kp, kd float64) *PDHold {
	p := &PDHold{
		Kp:  kp,
		Kd:  kd,
		pos: make(map[string][]int),
		vel: make(map[string][]int),
	}
	for _, id := range e.AgentIDs() {
		schema, _ := e.Schema(id)
		for i, entry := range schema.Entries {
			switch entry.Category {
			case obs.OwnPos:
				p.pos[id] = append(p.pos[id], i)
			case obs.OwnVel:
				p.vel[id] = append(p.vel[id], i)
			}
		}
	}
	return p
}

func (p *PDHold) Act(agentID string, observation []float64, _ float64) []float64 {
	pos := p.pos[agentID]
	vel := p.vel[agentID]
	u := make([]float64, len(pos))
	for i := range pos {
		u[i] = -p.Kp*observation[pos[i]] - p.Kd*observation[vel[i]]
	}
	return u
}
