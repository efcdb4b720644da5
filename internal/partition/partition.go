// Package partition assigns every joint of a model to exactly one agent.
//
// A partition is requested through a [Scheme]: either the name of a
// built-in assignment for a known model ("walker:2x3") or an explicit
// agent-to-joints mapping. Either form resolves into the same canonical
// [Partition], which is validated for disjointness and totality before
// anything downstream sees it.
package partition

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/splitsim/internal/topology"
)

// AgentSpec names one agent and the joints it owns. Joints may be given by
// index or by name; names are resolved against the model during Resolve.
type AgentSpec struct {
	ID     string   `yaml:"id"`
	Joints []int    `yaml:"joints"`
	Names  []string `yaml:"names"`
}

// Scheme is a tagged variant: a named built-in scheme or a custom mapping.
// Exactly one of the fields should be set.
type Scheme struct {
	Named  string
	Custom []AgentSpec
}

func Named(key string) Scheme { return Scheme{Named: key} }

func Custom(specs []AgentSpec) Scheme { return Scheme{Custom: specs} }

// Agent is one resolved agent: a stable ID and the joint indices it owns,
// sorted ascending. The struct is treated as immutable after Resolve.
type Agent struct {
	ID     string
	Joints []int
}

// Partition is the canonical resolved form of a scheme. Agent order is
// declaration order for custom schemes and scheme-defined order for named
// ones; it is fixed for the lifetime of the environment.
type Partition struct {
	agents []Agent
	owner  []int // joint index -> agent position
}

// PartitionError reports a partition that violates disjointness or
// totality, naming the offending joints.
type PartitionError struct {
	Unassigned []int
	Duplicated []int
	Empty      []string
}

func (e *PartitionError) Error() string {
	var parts []string
	if len(e.Unassigned) > 0 {
		parts = append(parts, fmt.Sprintf("unassigned joints %v", e.Unassigned))
	}
	if len(e.Duplicated) > 0 {
		parts = append(parts, fmt.Sprintf("joints assigned more than once %v", e.Duplicated))
	}
	if len(e.Empty) > 0 {
		parts = append(parts, fmt.Sprintf("agents with no joints %v", e.Empty))
	}
	return "partition: " + strings.Join(parts, "; ")
}

// Resolve turns a scheme into a validated partition over the model's
// joints.
func Resolve(s Scheme, m *topology.Model) (*Partition, error) {
	specs := s.Custom
	if s.Named != "" {
		var ok bool
		specs, ok = schemes[s.Named]
		if !ok {
			return nil, fmt.Errorf("partition: unknown scheme %q (available: %v)", s.Named, SchemeNames())
		}
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("partition: scheme defines no agents")
	}

	n := m.NumJoints()
	p := &Partition{
		agents: make([]Agent, 0, len(specs)),
		owner:  make([]int, n),
	}
	for i := range p.owner {
		p.owner[i] = -1
	}

	perr := &PartitionError{}
	seen := make(map[string]bool, len(specs))

	for pos, spec := range specs {
		if spec.ID == "" {
			return nil, fmt.Errorf("partition: agent at position %d has no id", pos)
		}
		if seen[spec.ID] {
			return nil, fmt.Errorf("partition: duplicate agent id %q", spec.ID)
		}
		seen[spec.ID] = true

		joints := append([]int(nil), spec.Joints...)
		for _, name := range spec.Names {
			idx := m.JointIndex(name)
			if idx < 0 {
				return nil, fmt.Errorf("partition: agent %q references unknown joint %q", spec.ID, name)
			}
			joints = append(joints, idx)
		}
		if len(joints) == 0 {
			perr.Empty = append(perr.Empty, spec.ID)
		}

		for _, j := range joints {
			if j < 0 || j >= n {
				return nil, fmt.Errorf("partition: agent %q references joint index %d outside model range [0,%d)", spec.ID, j, n)
			}
			if p.owner[j] != -1 {
				perr.Duplicated = append(perr.Duplicated, j)
				continue
			}
			p.owner[j] = pos
		}

		sort.Ints(joints)
		p.agents = append(p.agents, Agent{ID: spec.ID, Joints: joints})
	}

	for j, owner := range p.owner {
		if owner == -1 {
			perr.Unassigned = append(perr.Unassigned, j)
		}
	}
	sort.Ints(perr.Duplicated)

	if len(perr.Unassigned) > 0 || len(perr.Duplicated) > 0 || len(perr.Empty) > 0 {
		return nil, perr
	}
	return p, nil
}

// Agents returns the resolved agents in their fixed order.
func (p *Partition) Agents() []Agent {
	out := make([]Agent, len(p.agents))
	copy(out, p.agents)
	return out
}

func (p *Partition) NumAgents() int { return len(p.agents) }

// IDs returns the agent ids in their fixed order.
func (p *Partition) IDs() []string {
	ids := make([]string, len(p.agents))
	for i, a := range p.agents {
		ids[i] = a.ID
	}
	return ids
}

// Owner returns the position of the agent owning joint j, or -1.
func (p *Partition) Owner(j int) int {
	if j < 0 || j >= len(p.owner) {
		return -1
	}
	return p.owner[j]
}

// ByID returns the agent with the given id.
func (p *Partition) ByID(id string) (Agent, bool) {
	for _, a := range p.agents {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}

// NumJoints returns the size of the joint set the partition covers.
func (p *Partition) NumJoints() int { return len(p.owner) }
