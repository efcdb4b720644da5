// Package obs compiles per-agent observation schemas.
//
// A schema is the fixed, ordered recipe for slicing the global state into
// one agent's observation vector. It is computed once per environment from
// the coupling graph, the partition, and a neighborhood depth k: a
// breadth-first walk from the agent's own joints collects every joint
// within k hops, then shared global categories are appended. Compilation
// is deterministic; the same inputs always produce the same entry list,
// and the entry list's length is the agent's observation dimension for the
// lifetime of the environment.
package obs
