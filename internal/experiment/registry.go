package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/splitsim/internal/dynamics"
	"github.com/san-kum/splitsim/internal/env"
	"github.com/san-kum/splitsim/internal/metrics"
	"github.com/san-kum/splitsim/internal/policy"
)

// Registry resolves the string names used by configs and the CLI into
// concrete policies and integrators.
type Registry struct {
	policies    map[string]func(e *env.Env, params map[string]float64) policy.Policy
	integrators map[string]func() dynamics.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		policies:    make(map[string]func(*env.Env, map[string]float64) policy.Policy),
		integrators: make(map[string]func() dynamics.Integrator),
	}

	r.policies["zero"] = func(e *env.Env, _ map[string]float64) policy.Policy {
		return policy.NewZero(e)
	}
	r.policies["random"] = func(e *env.Env, params map[string]float64) policy.Policy {
		return policy.NewRandom(e, int64(params["seed"]))
	}
	r.policies["sine"] = func(e *env.Env, params map[string]float64) policy.Policy {
		amplitude := params["amplitude"]
		if amplitude == 0 {
			amplitude = 0.5
		}
		frequency := params["frequency"]
		if frequency == 0 {
			frequency = 1.0
		}
		return policy.NewSine(e, amplitude, frequency)
	}
	r.policies["pd"] = func(e *env.Env, params map[string]float64) policy.Policy {
		kp := params["kp"]
		if kp == 0 {
			kp = 2.0
		}
		return policy.NewPDHold(e, kp, params["kd"])
	}

	r.integrators["euler"] = func() dynamics.Integrator { return dynamics.NewEuler() }
	r.integrators["rk4"] = func() dynamics.Integrator { return dynamics.NewRK4() }

	return r
}

func (r *Registry) GetPolicy(name string, e *env.Env, params map[string]float64) (policy.Policy, error) {
	fn, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown policy: %s (available: %v)", name, r.ListPolicies())
	}
	return fn(e, params), nil
}

func (r *Registry) GetIntegrator(name string) (dynamics.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListPolicies() []string {
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics is the standard metric set attached to CLI rollouts.
func (r *Registry) DefaultMetrics() []metrics.Metric {
	return []metrics.Metric{
		metrics.NewReturn(),
		metrics.NewControlEffort(),
		metrics.NewStability(2.0),
	}
}
