// Package topology defines robot model descriptions: the bodies of a
// kinematic tree and the controllable joints attached to them.
//
// A [Model] is the static input to the factorization layer. Joint order in
// the model is significant: a joint's position in [Model.Joints] is its
// index into every global action and state vector in the rest of the
// system. Models can be built in code, loaded from YAML files, or taken
// from the built-in registry:
//
//	m, err := topology.Get("walker")
//
// Validation happens once, before anything downstream consumes the model;
// a joint referencing an unknown body surfaces as a [*TopologyError].
package topology
