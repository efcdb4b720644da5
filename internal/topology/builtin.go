package topology

import (
	"fmt"
	"sort"
)

const DefaultTimestep = 0.01

// Chain builds a serial kinematic chain of n hinge joints, each body hanging
// off the previous one.
func Chain(n int) *Model {
	m := &Model{
		Name:     fmt.Sprintf("chain-%d", n),
		Timestep: DefaultTimestep,
		Bodies:   []Body{{Name: "base"}},
		Joints:   make([]Joint, 0, n),
	}
	parent := "base"
	for i := 0; i < n; i++ {
		body := fmt.Sprintf("link%d", i)
		m.Bodies = append(m.Bodies, Body{Name: body, Parent: parent})
		m.Joints = append(m.Joints, Joint{
			Name:    fmt.Sprintf("joint%d", i),
			Type:    Hinge,
			Body:    body,
			CtrlMin: -1, CtrlMax: 1,
			Limit: 3.0,
		})
		parent = body
	}
	return m
}

// Walker is a planar biped: a torso with two legs of three hinge joints
// each (hip, knee, ankle). Joint indices 0-2 are the right leg, 3-5 the
// left leg.
func Walker() *Model {
	m := &Model{
		Name:     "walker",
		Timestep: DefaultTimestep,
		Bodies:   []Body{{Name: "torso"}},
	}
	for _, side := range []string{"right", "left"} {
		parent := "torso"
		for _, seg := range []string{"thigh", "shin", "foot"} {
			body := side + "_" + seg
			m.Bodies = append(m.Bodies, Body{Name: body, Parent: parent})
			parent = body
		}
	}
	for _, side := range []string{"right", "left"} {
		m.Joints = append(m.Joints,
			Joint{Name: side + "_hip", Type: Hinge, Body: side + "_thigh", CtrlMin: -1, CtrlMax: 1, Limit: 2.6},
			Joint{Name: side + "_knee", Type: Hinge, Body: side + "_shin", CtrlMin: -1, CtrlMax: 1, Limit: 2.6},
			Joint{Name: side + "_ankle", Type: Hinge, Body: side + "_foot", CtrlMin: -1, CtrlMax: 1, Limit: 1.2},
		)
	}
	return m
}

// Crawler is a quadruped: a torso with four legs of two hinge joints each.
// Legs are ordered fr, fl, br, bl; within a leg the hip joint precedes the
// knee joint.
func Crawler() *Model {
	m := &Model{
		Name:     "crawler",
		Timestep: DefaultTimestep,
		Bodies:   []Body{{Name: "torso"}},
	}
	legs := []string{"fr", "fl", "br", "bl"}
	for _, leg := range legs {
		upper := leg + "_upper"
		lower := leg + "_lower"
		m.Bodies = append(m.Bodies,
			Body{Name: upper, Parent: "torso"},
			Body{Name: lower, Parent: upper},
		)
		m.Joints = append(m.Joints,
			Joint{Name: leg + "_hip", Type: Hinge, Body: upper, CtrlMin: -1, CtrlMax: 1, Limit: 1.8},
			Joint{Name: leg + "_knee", Type: Hinge, Body: lower, CtrlMin: -1, CtrlMax: 1, Limit: 1.8},
		)
	}
	return m
}

var builtins = map[string]func() *Model{
	"chain-2": func() *Model { return Chain(2) },
	"chain-4": func() *Model { return Chain(4) },
	"walker":  Walker,
	"crawler": Crawler,
}

// Get returns a fresh instance of a built-in model.
func Get(name string) (*Model, error) {
	fn, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("topology: unknown model %q (available: %v)", name, List())
	}
	return fn(), nil
}

// List returns the built-in model names in sorted order.
func List() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
