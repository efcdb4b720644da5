// Package metrics accumulates per-rollout statistics over facade steps.
package metrics

import (
	"math"

	"github.com/san-kum/splitsim/internal/env"
)

// Metric observes every facade step of a rollout and reduces to a scalar.
type Metric interface {
	Name() string
	Observe(d env.StepData, rewards map[string]float64)
	Value() float64
	Reset()
}

// ControlEffort tracks the mean absolute torque across all actuators.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(d env.StepData, _ map[string]float64) {
	for _, u := range d.Action {
		c.sum += math.Abs(u)
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// Stability is the fraction of steps with every joint position inside the
// given threshold.
type Stability struct {
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(d env.StepData, _ map[string]float64) {
	s.samples++
	for _, q := range d.Cur.Qpos {
		if math.Abs(q) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Return tracks the mean global reward per step.
type Return struct {
	sum     float64
	samples int
}

func NewReturn() *Return {
	return &Return{}
}

func (r *Return) Name() string { return "mean_reward" }

func (r *Return) Observe(_ env.StepData, rewards map[string]float64) {
	for _, v := range rewards {
		r.sum += v
		r.samples++
	}
}

func (r *Return) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return r.sum / float64(r.samples)
}

func (r *Return) Reset() {
	r.sum = 0
	r.samples = 0
}
