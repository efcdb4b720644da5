package obs

import (
	"fmt"
	"sort"

	"github.com/san-kum/splitsim/internal/coupling"
	"github.com/san-kum/splitsim/internal/partition"
)

type Category string

const (
	OwnPos      Category = "own-joint-position"
	OwnVel      Category = "own-joint-velocity"
	NeighborPos Category = "neighbor-joint-position"
	NeighborVel Category = "neighbor-joint-velocity"
	Global      Category = "global"
)

// Entry is one scalar slot of an agent's observation vector. Joint entries
// carry the source joint index and its hop distance from the agent's own
// set; global entries carry the category name and an offset into the
// category's value vector.
type Entry struct {
	Category Category
	Source   int // joint index, or -1 for global entries
	Hop      int
	Name     string // global category name
	Offset   int    // element within the global category
}

// GlobalSpec declares a shared observation category: a named vector of
// fixed length broadcast identically to every agent.
type GlobalSpec struct {
	Name string
	Len  int
}

// Options controls schema compilation. Depth 0 means "own joints only".
// NeighborVel additionally exposes velocities of neighbor joints, the way
// own joints always expose both position and velocity.
type Options struct {
	Depth       int
	Globals     []GlobalSpec
	NeighborVel bool
}

// Schema is one agent's compiled observation layout.
type Schema struct {
	AgentID   string
	Entries   []Entry
	saturated bool
}

// Len is the agent's observation-vector length.
func (s *Schema) Len() int { return len(s.Entries) }

// Saturated reports whether the traversal reached every joint in the
// graph, i.e. the requested depth met or exceeded what the graph needed.
func (s *Schema) Saturated() bool { return s.saturated }

// JointSet returns the set of joint indices the schema observes.
func (s *Schema) JointSet() map[int]bool {
	set := make(map[int]bool)
	for _, e := range s.Entries {
		if e.Source >= 0 {
			set[e.Source] = true
		}
	}
	return set
}

// Compile builds one schema per agent, in the partition's agent order.
func Compile(g *coupling.Graph, p *partition.Partition, opts Options) ([]*Schema, error) {
	if opts.Depth < 0 {
		return nil, fmt.Errorf("obs: depth must be non-negative, got %d", opts.Depth)
	}
	if g.NumJoints() != p.NumJoints() {
		return nil, fmt.Errorf("obs: graph has %d joints but partition covers %d", g.NumJoints(), p.NumJoints())
	}
	for _, gs := range opts.Globals {
		if gs.Len <= 0 {
			return nil, fmt.Errorf("obs: global category %q must have positive length", gs.Name)
		}
	}

	out := make([]*Schema, 0, p.NumAgents())
	for _, agent := range p.Agents() {
		out = append(out, compileAgent(g, agent, opts))
	}
	return out, nil
}

// reached is one joint collected by the traversal.
type reached struct {
	joint int
	hop   int
}

func compileAgent(g *coupling.Graph, agent partition.Agent, opts Options) *Schema {
	dist := g.Distances(agent.Joints)

	collected := make([]reached, 0, g.NumJoints())
	for j, d := range dist {
		if d >= 0 && d <= opts.Depth {
			collected = append(collected, reached{joint: j, hop: d})
		}
	}
	// Hop-distance ascending, joint index ascending.
	sort.Slice(collected, func(a, b int) bool {
		if collected[a].hop != collected[b].hop {
			return collected[a].hop < collected[b].hop
		}
		return collected[a].joint < collected[b].joint
	})

	s := &Schema{
		AgentID:   agent.ID,
		saturated: len(collected) == g.NumJoints(),
	}

	// Positions for every collected joint, then velocities, then globals.
	for _, r := range collected {
		cat := NeighborPos
		if r.hop == 0 {
			cat = OwnPos
		}
		s.Entries = append(s.Entries, Entry{Category: cat, Source: r.joint, Hop: r.hop})
	}
	for _, r := range collected {
		if r.hop == 0 {
			s.Entries = append(s.Entries, Entry{Category: OwnVel, Source: r.joint})
		} else if opts.NeighborVel {
			s.Entries = append(s.Entries, Entry{Category: NeighborVel, Source: r.joint, Hop: r.hop})
		}
	}
	for _, gs := range opts.Globals {
		for off := 0; off < gs.Len; off++ {
			s.Entries = append(s.Entries, Entry{Category: Global, Source: -1, Name: gs.Name, Offset: off})
		}
	}

	return s
}

// Slice assembles the agent's observation vector from global position and
// velocity vectors plus the current global category values. The returned
// slice is freshly allocated each call.
func (s *Schema) Slice(qpos, qvel []float64, globals map[string][]float64) ([]float64, error) {
	out := make([]float64, 0, len(s.Entries))
	for _, e := range s.Entries {
		switch e.Category {
		case OwnPos, NeighborPos:
			if e.Source >= len(qpos) {
				return nil, fmt.Errorf("obs: joint %d outside position vector of length %d", e.Source, len(qpos))
			}
			out = append(out, qpos[e.Source])
		case OwnVel, NeighborVel:
			if e.Source >= len(qvel) {
				return nil, fmt.Errorf("obs: joint %d outside velocity vector of length %d", e.Source, len(qvel))
			}
			out = append(out, qvel[e.Source])
		case Global:
			vals, ok := globals[e.Name]
			if !ok || e.Offset >= len(vals) {
				return nil, fmt.Errorf("obs: global category %q missing or too short", e.Name)
			}
			out = append(out, vals[e.Offset])
		}
	}
	return out, nil
}
