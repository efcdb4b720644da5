package env

import "github.com/san-kum/splitsim/internal/dynamics"

type globalCategory struct {
	name   string
	length int
	fn     func() []float64
}

type options struct {
	depth           int
	neighborVel     bool
	globals         []globalCategory
	frameSkip       int
	noise           float64
	seed            int64
	initQpos        []float64
	initQvel        []float64
	maxEpisodeSteps int
	system          dynamics.System
	integrator      dynamics.Integrator
	rewardFn        RewardFn
	doneFn          DoneFn
}

func defaultOptions() options {
	return options{
		depth:           0,
		frameSkip:       5,
		noise:           0.01,
		maxEpisodeSteps: 1000,
	}
}

type Option func(*options)

// WithDepth sets the neighborhood depth k. Zero means agents see their own
// joints only.
func WithDepth(k int) Option {
	return func(o *options) { o.depth = k }
}

// WithNeighborVelocities exposes neighbor joint velocities in addition to
// positions.
func WithNeighborVelocities() Option {
	return func(o *options) { o.neighborVel = true }
}

// WithGlobal registers a shared observation category appended identically
// to every agent's vector. fn is called once per slice and must return
// exactly length values.
func WithGlobal(name string, length int, fn func() []float64) Option {
	return func(o *options) {
		o.globals = append(o.globals, globalCategory{name: name, length: length, fn: fn})
	}
}

// WithFrameSkip sets how many integrator ticks one Step spans.
func WithFrameSkip(n int) Option {
	return func(o *options) { o.frameSkip = n }
}

// WithResetNoise sets the uniform noise magnitude applied to the initial
// state on Reset.
func WithResetNoise(mag float64) Option {
	return func(o *options) { o.noise = mag }
}

// WithSeed fixes the reset RNG, making episodes reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithInitState overrides the all-zero initial joint state.
func WithInitState(qpos, qvel []float64) Option {
	return func(o *options) {
		o.initQpos = qpos
		o.initQvel = qvel
	}
}

// WithMaxEpisodeSteps truncates episodes after n facade steps. Zero
// disables truncation.
func WithMaxEpisodeSteps(n int) Option {
	return func(o *options) { o.maxEpisodeSteps = n }
}

// WithSystem substitutes the physics system; the default is the built-in
// coupled-joints dynamics derived from the model.
func WithSystem(sys dynamics.System) Option {
	return func(o *options) { o.system = sys }
}

// WithIntegrator substitutes the integrator; the default is RK4.
func WithIntegrator(integ dynamics.Integrator) Option {
	return func(o *options) { o.integrator = integ }
}

// WithRewardFn replaces the broadcast reward with task-specific shaping.
func WithRewardFn(fn RewardFn) Option {
	return func(o *options) { o.rewardFn = fn }
}

// WithDoneFn replaces the broadcast termination strategy.
func WithDoneFn(fn DoneFn) Option {
	return func(o *options) { o.doneFn = fn }
}
