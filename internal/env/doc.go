// Package env is the multi-agent control loop over one shared simulation.
//
// An [Env] is built once from a model and a partition scheme: the coupling
// graph, the resolved partition, and each agent's observation schema are
// compiled at construction and never change. Every step the env gathers
// one local action per agent, scatters them into the global action vector,
// advances the shared stepper exactly once, and slices the returned
// snapshot back into per-agent observations.
//
// The env is a two-state machine. It starts READY; Reset moves it to
// RUNNING; termination or truncation moves it back. Step outside RUNNING
// fails with [*StateError]. All validation happens before the stepper is
// touched, so a failed call never mutates simulation state.
//
// Instances are single-threaded by contract: one Reset or Step call runs
// to completion before the next may begin, and no agent ever observes
// intermediate state from another agent's action within the same tick.
package env
