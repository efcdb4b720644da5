package metrics_test

import (
	"math"
	"testing"

	"github.com/san-kum/splitsim/internal/env"
	"github.com/san-kum/splitsim/internal/metrics"
	"github.com/san-kum/splitsim/internal/stepper"
)

func stepData(qpos, action []float64) env.StepData {
	return env.StepData{
		Cur:    &stepper.GlobalState{Qpos: qpos},
		Action: action,
	}
}

func TestControlEffort(t *testing.T) {
	m := metrics.NewControlEffort()

	m.Observe(stepData(nil, []float64{1, -1}), nil)
	m.Observe(stepData(nil, []float64{0.5, 0.5}), nil)

	if got, want := m.Value(), 1.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("value = %v, want %v", got, want)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("value after reset = %v, want 0", m.Value())
	}
}

func TestStability(t *testing.T) {
	m := metrics.NewStability(1.0)

	m.Observe(stepData([]float64{0.5, -0.5}, nil), nil)
	m.Observe(stepData([]float64{1.5, 0.0}, nil), nil)
	m.Observe(stepData([]float64{0.0, 0.0}, nil), nil)
	m.Observe(stepData([]float64{-2.0, 3.0}, nil), nil)

	if got, want := m.Value(), 0.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("value = %v, want %v", got, want)
	}
}

func TestReturnAveragesAcrossAgents(t *testing.T) {
	m := metrics.NewReturn()

	m.Observe(env.StepData{}, map[string]float64{"a": 1.0, "b": 2.0})
	m.Observe(env.StepData{}, map[string]float64{"a": 3.0, "b": 4.0})

	if got, want := m.Value(), 2.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("value = %v, want %v", got, want)
	}
}

func TestEmptyMetricValues(t *testing.T) {
	if v := metrics.NewControlEffort().Value(); v != 0 {
		t.Errorf("control effort = %v, want 0", v)
	}
	if v := metrics.NewReturn().Value(); v != 0 {
		t.Errorf("return = %v, want 0", v)
	}
	if v := metrics.NewStability(1.0).Value(); v != 1.0 {
		t.Errorf("stability = %v, want 1", v)
	}
}
