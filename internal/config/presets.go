package config

var Presets = map[string]map[string]*Config{
	"walker": {
		"two-leg": {
			Model: "walker", Scheme: "walker:2x3", Depth: 1, FrameSkip: 5,
			Noise: 0.01, Episodes: 1, MaxSteps: 1000, Integrator: "rk4", Policy: "pd",
			PolicyParams: PolicyConfig{Kp: 2.0, Kd: 0.5},
		},
		"solo-joints": {
			Model: "walker", Scheme: "walker:6x1", Depth: 2, FrameSkip: 5,
			Noise: 0.01, Episodes: 1, MaxSteps: 1000, Integrator: "rk4", Policy: "sine",
			PolicyParams: PolicyConfig{Amplitude: 0.4, Frequency: 0.8},
		},
		"excite": {
			Model: "walker", Scheme: "walker:2x3", Depth: 0, FrameSkip: 5,
			Noise: 0.05, Episodes: 3, MaxSteps: 400, Integrator: "rk4", Policy: "random",
		},
	},
	"crawler": {
		"four-leg": {
			Model: "crawler", Scheme: "crawler:4x2", Depth: 1, FrameSkip: 5,
			Noise: 0.01, Episodes: 1, MaxSteps: 1000, Integrator: "rk4", Policy: "pd",
			PolicyParams: PolicyConfig{Kp: 2.0, Kd: 0.5},
		},
		"split": {
			Model: "crawler", Scheme: "crawler:2x4", Depth: 2, FrameSkip: 5,
			Noise: 0.01, Episodes: 1, MaxSteps: 1000, Integrator: "rk4", Policy: "sine",
			PolicyParams: PolicyConfig{Amplitude: 0.3, Frequency: 1.2},
		},
	},
	"chain-4": {
		"halves": {
			Model: "chain-4", Scheme: "chain-4:2x2", Depth: 1, FrameSkip: 5,
			Noise: 0.02, Episodes: 1, MaxSteps: 600, Integrator: "rk4", Policy: "pd",
			PolicyParams: PolicyConfig{Kp: 3.0, Kd: 0.8},
		},
		"solo-joints": {
			Model: "chain-4", Scheme: "chain-4:4x1", Depth: 1, FrameSkip: 5,
			Noise: 0.02, Episodes: 1, MaxSteps: 600, Integrator: "rk4", Policy: "zero",
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
