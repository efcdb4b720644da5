package topology

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type JointType string

const (
	Hinge JointType = "hinge"
	Slide JointType = "slide"
	Free  JointType = "free"
)

type Joint struct {
	Name    string    `yaml:"name"`
	Type    JointType `yaml:"type"`
	Body    string    `yaml:"body"`
	CtrlMin float64   `yaml:"ctrl_min"`
	CtrlMax float64   `yaml:"ctrl_max"`
	Limit   float64   `yaml:"limit"`
}

type Body struct {
	Name   string `yaml:"name"`
	Parent string `yaml:"parent"`
}

// Model is a robot description. The position of a joint in Joints is its
// global joint index for the lifetime of the model.
type Model struct {
	Name     string  `yaml:"name"`
	Timestep float64 `yaml:"timestep"`
	Bodies   []Body  `yaml:"bodies"`
	Joints   []Joint `yaml:"joints"`
}

// TopologyError reports a malformed model: a joint or body referencing a
// body that does not exist.
type TopologyError struct {
	Joint string
	Body  string
}

func (e *TopologyError) Error() string {
	if e.Joint != "" {
		return fmt.Sprintf("topology: joint %q references unknown body %q", e.Joint, e.Body)
	}
	return fmt.Sprintf("topology: body references unknown parent %q", e.Body)
}

func (m *Model) NumJoints() int { return len(m.Joints) }

// BodyIndex returns the index of the named body, or -1.
func (m *Model) BodyIndex(name string) int {
	for i, b := range m.Bodies {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// JointIndex returns the index of the named joint, or -1.
func (m *Model) JointIndex(name string) int {
	for i, j := range m.Joints {
		if j.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks that every joint is attached to a declared body and every
// non-root body has a declared parent.
func (m *Model) Validate() error {
	if len(m.Joints) == 0 {
		return fmt.Errorf("topology: model %q has no joints", m.Name)
	}
	for _, b := range m.Bodies {
		if b.Parent == "" {
			continue
		}
		if m.BodyIndex(b.Parent) < 0 {
			return &TopologyError{Body: b.Parent}
		}
	}
	for _, j := range m.Joints {
		if m.BodyIndex(j.Body) < 0 {
			return &TopologyError{Joint: j.Name, Body: j.Body}
		}
	}
	return nil
}

// CtrlRange returns the control bounds for joint i. Joints declared without
// a range default to [-1, 1].
func (m *Model) CtrlRange(i int) (lo, hi float64) {
	j := m.Joints[i]
	if j.CtrlMin == 0 && j.CtrlMax == 0 {
		return -1, 1
	}
	return j.CtrlMin, j.CtrlMax
}

// PosLimit returns the joint position magnitude beyond which the robot is
// considered failed. Zero means unlimited.
func (m *Model) PosLimit(i int) float64 {
	return m.Joints[i].Limit
}

func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Timestep == 0 {
		m.Timestep = DefaultTimestep
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func Save(path string, m *Model) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
