// Package experiment drives scripted rollouts of a multi-agent env and
// collects their traces.
package experiment

import (
	"context"

	"github.com/san-kum/splitsim/internal/env"
	"github.com/san-kum/splitsim/internal/metrics"
	"github.com/san-kum/splitsim/internal/policy"
)

// Result is one rollout's trace: per-agent reward series plus reduced
// metrics. Reward series share a common step index across agents.
type Result struct {
	AgentIDs     []string
	Rewards      map[string][]float64
	GlobalReward []float64
	Times        []float64
	Episodes     int
	Steps        int
	Terminated   int
	Truncated    int
	Metrics      map[string]float64
}

// Rollout owns one env, one policy, and the metrics observing the run.
type Rollout struct {
	env     *env.Env
	pol     policy.Policy
	metrics []metrics.Metric

	// OnStep, when set, fires after every facade step.
	OnStep func(rewards map[string]float64, info env.Info)
}

func NewRollout(e *env.Env, pol policy.Policy, ms []metrics.Metric) *Rollout {
	r := &Rollout{env: e, pol: pol, metrics: ms}
	for _, m := range ms {
		e.AddObserver(m.Observe)
	}
	return r
}

// Run plays the configured number of episodes to their natural end
// (termination, truncation, or context cancellation) and returns the
// combined trace.
func (r *Rollout) Run(ctx context.Context, episodes int) (*Result, error) {
	result := &Result{
		AgentIDs: r.env.AgentIDs(),
		Rewards:  make(map[string][]float64),
		Metrics:  make(map[string]float64),
	}
	for _, m := range r.metrics {
		m.Reset()
	}

	for ep := 0; ep < episodes; ep++ {
		observations, _, err := r.env.Reset()
		if err != nil {
			return nil, err
		}
		result.Episodes++

		t := 0.0
		for {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}

			actions := make(map[string][]float64, len(result.AgentIDs))
			for _, id := range result.AgentIDs {
				actions[id] = r.pol.Act(id, observations[id], t)
			}

			obs, rewards, terminated, truncated, info, err := r.env.Step(actions)
			if err != nil {
				return nil, err
			}
			observations = obs
			t = info.Time
			result.Steps++

			for _, id := range result.AgentIDs {
				result.Rewards[id] = append(result.Rewards[id], rewards[id])
			}
			result.GlobalReward = append(result.GlobalReward, info.GlobalReward)
			result.Times = append(result.Times, info.Time)

			if r.OnStep != nil {
				r.OnStep(rewards, info)
			}

			if r.env.Phase() == env.Ready {
				if anyTrue(truncated) {
					result.Truncated++
				} else if anyTrue(terminated) {
					result.Terminated++
				}
				break
			}
		}
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func anyTrue(flags map[string]bool) bool {
	for _, v := range flags {
		if v {
			return true
		}
	}
	return false
}
