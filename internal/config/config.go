package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/splitsim/internal/partition"
)

const (
	DefaultDepth     = 1
	DefaultFrameSkip = 5
	DefaultNoise     = 0.01
	DefaultEpisodes  = 1
	DefaultMaxSteps  = 1000
)

// Config describes one multi-agent rollout: which robot, how it is split
// between agents, how far each agent sees, and which scripted policy
// drives it.
type Config struct {
	Model        string       `yaml:"model"`
	ModelFile    string       `yaml:"model_file"`
	Scheme       string       `yaml:"scheme"`
	Agents       []AgentSpec  `yaml:"agents"`
	Depth        int          `yaml:"depth"`
	NeighborVel  bool         `yaml:"neighbor_vel"`
	FrameSkip    int          `yaml:"frame_skip"`
	Noise        float64      `yaml:"noise"`
	Seed         int64        `yaml:"seed"`
	Episodes     int          `yaml:"episodes"`
	MaxSteps     int          `yaml:"max_steps"`
	Integrator   string       `yaml:"integrator"`
	Policy       string       `yaml:"policy"`
	PolicyParams PolicyConfig `yaml:"policy_params"`
}

// AgentSpec mirrors partition.AgentSpec for YAML configs declaring a
// custom partition inline.
type AgentSpec struct {
	ID     string   `yaml:"id"`
	Joints []int    `yaml:"joints"`
	Names  []string `yaml:"names"`
}

type PolicyConfig struct {
	Kp        float64 `yaml:"kp"`
	Kd        float64 `yaml:"kd"`
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "walker",
		Scheme:     "walker:2x3",
		Depth:      DefaultDepth,
		FrameSkip:  DefaultFrameSkip,
		Noise:      DefaultNoise,
		Episodes:   DefaultEpisodes,
		MaxSteps:   DefaultMaxSteps,
		Integrator: "rk4",
		Policy:     "zero",
		PolicyParams: PolicyConfig{
			Kp: 2.0,
			Kd: 0.5,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Partition returns the scheme the config declares: the named scheme if
// set, otherwise the inline custom agents.
func (c *Config) Partition() partition.Scheme {
	if c.Scheme != "" {
		return partition.Named(c.Scheme)
	}
	specs := make([]partition.AgentSpec, len(c.Agents))
	for i, a := range c.Agents {
		specs[i] = partition.AgentSpec{ID: a.ID, Joints: a.Joints, Names: a.Names}
	}
	return partition.Custom(specs)
}

// GetPolicyParams flattens the policy block into the registry's parameter
// map.
func (c *Config) GetPolicyParams() map[string]float64 {
	return map[string]float64{
		"kp":        c.PolicyParams.Kp,
		"kd":        c.PolicyParams.Kd,
		"amplitude": c.PolicyParams.Amplitude,
		"frequency": c.PolicyParams.Frequency,
		"seed":      float64(c.Seed),
	}
}
