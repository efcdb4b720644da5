package partition

import "sort"

// Built-in schemes for the built-in models, keyed "model:scheme". Agent
// order within a scheme is the order used for the environment's lifetime.
var schemes = map[string][]AgentSpec{
	"chain-4:2x2": {
		{ID: "lower", Joints: []int{0, 1}},
		{ID: "upper", Joints: []int{2, 3}},
	},
	"chain-4:4x1": {
		{ID: "seg0", Joints: []int{0}},
		{ID: "seg1", Joints: []int{1}},
		{ID: "seg2", Joints: []int{2}},
		{ID: "seg3", Joints: []int{3}},
	},
	"walker:2x3": {
		{ID: "right_leg", Joints: []int{0, 1, 2}},
		{ID: "left_leg", Joints: []int{3, 4, 5}},
	},
	"walker:6x1": {
		{ID: "right_hip", Joints: []int{0}},
		{ID: "right_knee", Joints: []int{1}},
		{ID: "right_ankle", Joints: []int{2}},
		{ID: "left_hip", Joints: []int{3}},
		{ID: "left_knee", Joints: []int{4}},
		{ID: "left_ankle", Joints: []int{5}},
	},
	"crawler:4x2": {
		{ID: "fr_leg", Joints: []int{0, 1}},
		{ID: "fl_leg", Joints: []int{2, 3}},
		{ID: "br_leg", Joints: []int{4, 5}},
		{ID: "bl_leg", Joints: []int{6, 7}},
	},
	"crawler:2x4": {
		{ID: "front", Joints: []int{0, 1, 2, 3}},
		{ID: "back", Joints: []int{4, 5, 6, 7}},
	},
}

// SchemeNames returns all built-in scheme keys in sorted order.
func SchemeNames() []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SchemeSpecs returns the agent specs behind a named scheme, for display.
func SchemeSpecs(key string) ([]AgentSpec, bool) {
	specs, ok := schemes[key]
	if !ok {
		return nil, false
	}
	out := make([]AgentSpec, len(specs))
	copy(out, specs)
	return out, true
}
