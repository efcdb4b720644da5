package env

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/splitsim/internal/coupling"
	"github.com/san-kum/splitsim/internal/dynamics"
	"github.com/san-kum/splitsim/internal/obs"
	"github.com/san-kum/splitsim/internal/partition"
	"github.com/san-kum/splitsim/internal/stepper"
	"github.com/san-kum/splitsim/internal/topology"
)

// Phase is the env lifecycle state.
type Phase string

const (
	Ready   Phase = "READY"
	Running Phase = "RUNNING"
)

// Box is a bounded continuous vector space.
type Box struct {
	Low  []float64
	High []float64
}

func (b Box) Len() int { return len(b.Low) }

// Info is the auxiliary data returned alongside per-agent maps.
type Info struct {
	Tick         int
	Time         float64
	EpisodeSteps int
	GlobalReward float64
}

// StepData is the global view handed to reward and termination strategies.
type StepData struct {
	Model  *topology.Model
	Agents []partition.Agent
	Prev   *stepper.GlobalState
	Cur    *stepper.GlobalState
	Action []float64
}

// RewardFn maps one transition to a per-agent reward. The default
// broadcasts a single global reward to every agent; task layers substitute
// per-agent shaping here.
type RewardFn func(StepData) map[string]float64

// DoneFn maps one transition to per-agent termination flags. The default
// broadcasts a single global flag.
type DoneFn func(StepData) map[string]bool

// Env is the multi-agent facade over one shared simulation.
type Env struct {
	model    *topology.Model
	graph    *coupling.Graph
	part     *partition.Partition
	schemas  map[string]*obs.Schema
	step     *stepper.Stepper
	phase    Phase
	episode  int
	rewardFn RewardFn
	doneFn   DoneFn
	cfg      options
	prev     *stepper.GlobalState

	observers []Observer
}

// Observer is notified after every completed step, once rewards are
// known. Observers must not retain or mutate the snapshot.
type Observer func(d StepData, rewards map[string]float64)

// New builds the whole static pipeline: coupling graph, partition,
// observation schemas, and the stepper. Every construction-time invariant
// is checked here, before any stepping is possible.
func New(m *topology.Model, scheme partition.Scheme, opt ...Option) (*Env, error) {
	cfg := defaultOptions()
	for _, o := range opt {
		o(&cfg)
	}

	g, err := coupling.Build(m)
	if err != nil {
		return nil, err
	}
	part, err := partition.Resolve(scheme, m)
	if err != nil {
		return nil, err
	}

	specs := make([]obs.GlobalSpec, len(cfg.globals))
	for i, gl := range cfg.globals {
		specs[i] = obs.GlobalSpec{Name: gl.name, Len: gl.length}
	}
	schemas, err := obs.Compile(g, part, obs.Options{
		Depth:       cfg.depth,
		Globals:     specs,
		NeighborVel: cfg.neighborVel,
	})
	if err != nil {
		return nil, err
	}

	sys := cfg.system
	if sys == nil {
		sys = dynamics.NewCoupledJoints(m, g)
	}
	integ := cfg.integrator
	if integ == nil {
		integ = dynamics.NewRK4()
	}
	st, err := stepper.New(sys, integ, stepper.Config{
		NumJoints: m.NumJoints(),
		Timestep:  m.Timestep,
		FrameSkip: cfg.frameSkip,
		InitQpos:  cfg.initQpos,
		InitQvel:  cfg.initQvel,
		Noise:     cfg.noise,
		Seed:      cfg.seed,
	})
	if err != nil {
		return nil, err
	}

	e := &Env{
		model:   m,
		graph:   g,
		part:    part,
		schemas: make(map[string]*obs.Schema, len(schemas)),
		step:    st,
		phase:   Ready,
		cfg:     cfg,
	}
	for _, s := range schemas {
		e.schemas[s.AgentID] = s
	}

	e.rewardFn = cfg.rewardFn
	if e.rewardFn == nil {
		e.rewardFn = e.broadcastReward
	}
	e.doneFn = cfg.doneFn
	if e.doneFn == nil {
		e.doneFn = e.broadcastDone
	}

	return e, nil
}

func (e *Env) Model() *topology.Model { return e.model }

func (e *Env) Graph() *coupling.Graph { return e.graph }

func (e *Env) Partition() *partition.Partition { return e.part }

func (e *Env) Phase() Phase { return e.phase }

func (e *Env) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// Dt is the duration of one facade step in simulated seconds.
func (e *Env) Dt() float64 { return e.step.Dt() }

// State returns the current global snapshot without advancing anything.
func (e *Env) State() *stepper.GlobalState { return e.step.State() }

// AgentIDs returns the agent ids in partition order.
func (e *Env) AgentIDs() []string { return e.part.IDs() }

// Schema returns the compiled observation schema for one agent.
func (e *Env) Schema(id string) (*obs.Schema, error) {
	s, ok := e.schemas[id]
	if !ok {
		return nil, fmt.Errorf("env: unknown agent %q", id)
	}
	return s, nil
}

// ActionSpace is the bounded box of the agent's local action vector: one
// slot per owned joint, bounds from the model's control ranges. Queryable
// before any Reset or Step.
func (e *Env) ActionSpace(id string) (Box, error) {
	agent, ok := e.part.ByID(id)
	if !ok {
		return Box{}, fmt.Errorf("env: unknown agent %q", id)
	}
	b := Box{
		Low:  make([]float64, len(agent.Joints)),
		High: make([]float64, len(agent.Joints)),
	}
	for i, j := range agent.Joints {
		b.Low[i], b.High[i] = e.model.CtrlRange(j)
	}
	return b, nil
}

// ObservationSpace is the unbounded box of the agent's observation vector,
// its length fixed by the compiled schema.
func (e *Env) ObservationSpace(id string) (Box, error) {
	s, ok := e.schemas[id]
	if !ok {
		return Box{}, fmt.Errorf("env: unknown agent %q", id)
	}
	b := Box{
		Low:  make([]float64, s.Len()),
		High: make([]float64, s.Len()),
	}
	for i := range b.Low {
		b.Low[i] = math.Inf(-1)
		b.High[i] = math.Inf(1)
	}
	return b, nil
}

// Reset starts a fresh episode. Always legal, from either phase.
func (e *Env) Reset() (map[string][]float64, Info, error) {
	state := e.step.Reset()
	observations, err := e.slice(state)
	if err != nil {
		return nil, Info{}, err
	}
	e.prev = state
	e.episode = 0
	e.phase = Running
	return observations, Info{Tick: state.Tick, Time: state.Time}, nil
}

// Step runs one tick: validate, assemble, advance, slice, score. Any
// validation failure happens before the stepper is touched.
func (e *Env) Step(actions map[string][]float64) (map[string][]float64, map[string]float64, map[string]bool, map[string]bool, Info, error) {
	if e.phase != Running {
		return nil, nil, nil, nil, Info{}, &StateError{Op: "step", Phase: e.phase}
	}
	if err := e.checkAgents(actions); err != nil {
		return nil, nil, nil, nil, Info{}, err
	}

	global, err := e.assemble(actions)
	if err != nil {
		return nil, nil, nil, nil, Info{}, err
	}

	state, err := e.step.Step(global)
	if err != nil {
		return nil, nil, nil, nil, Info{}, err
	}
	e.episode++

	observations, err := e.slice(state)
	if err != nil {
		return nil, nil, nil, nil, Info{}, err
	}

	data := StepData{
		Model:  e.model,
		Agents: e.part.Agents(),
		Prev:   e.prev,
		Cur:    state,
		Action: global,
	}
	e.prev = state

	rewards := e.rewardFn(data)
	terminated := e.doneFn(data)

	for _, o := range e.observers {
		o(data, rewards)
	}

	truncate := e.cfg.maxEpisodeSteps > 0 && e.episode >= e.cfg.maxEpisodeSteps
	truncated := make(map[string]bool, len(e.schemas))
	for _, id := range e.part.IDs() {
		truncated[id] = truncate
	}

	done := true
	for _, id := range e.part.IDs() {
		if !terminated[id] && !truncated[id] {
			done = false
		}
	}
	if done {
		e.phase = Ready
	}

	info := Info{
		Tick:         state.Tick,
		Time:         state.Time,
		EpisodeSteps: e.episode,
		GlobalReward: globalReward(rewards),
	}
	return observations, rewards, terminated, truncated, info, nil
}

// checkAgents verifies the submitted id set equals the partition's agent
// set exactly.
func (e *Env) checkAgents(actions map[string][]float64) error {
	mismatch := &AgentMismatchError{}
	for _, id := range e.part.IDs() {
		if _, ok := actions[id]; !ok {
			mismatch.Missing = append(mismatch.Missing, id)
		}
	}
	for id := range actions {
		if _, ok := e.schemas[id]; !ok {
			mismatch.Extra = append(mismatch.Extra, id)
		}
	}
	sort.Strings(mismatch.Extra)
	if len(mismatch.Missing) > 0 || len(mismatch.Extra) > 0 {
		return mismatch
	}
	return nil
}

// assemble scatters each agent's local action into its owned joint slots,
// clamping to the model's control ranges. Totality of the partition
// guarantees every slot is written exactly once.
func (e *Env) assemble(actions map[string][]float64) ([]float64, error) {
	global := make([]float64, e.model.NumJoints())
	for _, agent := range e.part.Agents() {
		local := actions[agent.ID]
		if len(local) != len(agent.Joints) {
			return nil, &stepper.ActionShapeError{Agent: agent.ID, Want: len(agent.Joints), Got: len(local)}
		}
		for i, j := range agent.Joints {
			lo, hi := e.model.CtrlRange(j)
			global[j] = clamp(local[i], lo, hi)
		}
	}
	return global, nil
}

func (e *Env) slice(state *stepper.GlobalState) (map[string][]float64, error) {
	globals := make(map[string][]float64, len(e.cfg.globals))
	for _, gl := range e.cfg.globals {
		vals := gl.fn()
		if len(vals) != gl.length {
			return nil, fmt.Errorf("env: global category %q produced %d values, declared %d", gl.name, len(vals), gl.length)
		}
		globals[gl.name] = vals
	}

	out := make(map[string][]float64, len(e.schemas))
	for _, id := range e.part.IDs() {
		v, err := e.schemas[id].Slice(state.Qpos, state.Qvel, globals)
		if err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, nil
}

// broadcastReward is the default strategy: one global scalar, identical
// for every agent. The global term rewards staying alive while penalizing
// posture drift and control effort.
func (e *Env) broadcastReward(d StepData) map[string]float64 {
	posture := 0.0
	for _, q := range d.Cur.Qpos {
		posture += q * q
	}
	effort := 0.0
	for _, u := range d.Action {
		effort += u * u
	}
	r := 1.0 - 0.1*posture - 0.05*effort

	out := make(map[string]float64, len(d.Agents))
	for _, a := range d.Agents {
		out[a.ID] = r
	}
	return out
}

// broadcastDone is the default strategy: the episode ends for everyone
// when any joint exceeds its position limit.
func (e *Env) broadcastDone(d StepData) map[string]bool {
	failed := false
	for j, q := range d.Cur.Qpos {
		limit := e.model.PosLimit(j)
		if limit > 0 && math.Abs(q) > limit {
			failed = true
			break
		}
	}
	out := make(map[string]bool, len(d.Agents))
	for _, a := range d.Agents {
		out[a.ID] = failed
	}
	return out
}

func globalReward(rewards map[string]float64) float64 {
	sum := 0.0
	for _, r := range rewards {
		sum += r
	}
	if len(rewards) == 0 {
		return 0
	}
	return sum / float64(len(rewards))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
