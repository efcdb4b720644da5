package experiment

import (
	"context"
	"sync"
)

// Ensemble runs several fully independent rollouts in parallel. Each
// instance gets its own env, policy, and metrics from the factory;
// instances share no state, so no locking is needed beyond the join.
type Ensemble struct {
	factory   func(instance int, seed int64) (*Rollout, error)
	numRuns   int
	seedStart int64
}

func NewEnsemble(factory func(instance int, seed int64) (*Rollout, error), numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, episodes int) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			r, err := e.factory(idx, e.seedStart+int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = r.Run(ctx, episodes)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
