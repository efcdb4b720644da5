package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/splitsim/internal/config"
	"github.com/san-kum/splitsim/internal/coupling"
	"github.com/san-kum/splitsim/internal/env"
	"github.com/san-kum/splitsim/internal/experiment"
	"github.com/san-kum/splitsim/internal/partition"
	"github.com/san-kum/splitsim/internal/storage"
	"github.com/san-kum/splitsim/internal/topology"
	"github.com/san-kum/splitsim/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	scheme     string
	depth      int
	nbrVel     bool
	frameSkip  int
	noise      float64
	seed       int64
	episodes   int
	maxSteps   int
	integrator string
	policyName string
	kp         float64
	kd         float64
	amplitude  float64
	frequency  float64
	runs       int
	// Config file
	configFile string
	// Preset name
	preset string
	// Custom model file
	modelFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "splitsim",
		Short: "multi-agent factorizations of shared robot simulations",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".splitsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a multi-agent rollout",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRollout,
	}
	addRolloutFlags(runCmd)
	runCmd.Flags().IntVar(&runs, "runs", 1, "independent rollouts (seeded seed, seed+1, ...)")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	topologyCmd := &cobra.Command{
		Use:   "topology [model]",
		Short: "show a model's joints and coupling graph",
		Args:  cobra.ExactArgs(1),
		RunE:  showTopology,
	}
	topologyCmd.Flags().StringVar(&modelFile, "model-file", "", "load model from yaml instead of built-ins")

	partitionsCmd := &cobra.Command{
		Use:   "partitions [model]",
		Short: "list named partition schemes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPartitions,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot per-agent rewards for a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	watchCmd := &cobra.Command{
		Use:   "watch [model]",
		Short: "watch a live rollout in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchRollout,
	}
	addRolloutFlags(watchCmd)
	watchCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	watchCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	rootCmd.AddCommand(runCmd, topologyCmd, partitionsCmd, presetsCmd, listCmd, plotCmd, exportCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRolloutFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&scheme, "scheme", "", "partition scheme (e.g. walker:2x3)")
	cmd.Flags().IntVar(&depth, "depth", config.DefaultDepth, "observation depth k")
	cmd.Flags().BoolVar(&nbrVel, "neighbor-vel", false, "include neighbor velocities")
	cmd.Flags().IntVar(&frameSkip, "frame-skip", config.DefaultFrameSkip, "physics substeps per facade step")
	cmd.Flags().Float64Var(&noise, "noise", config.DefaultNoise, "reset noise magnitude")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&episodes, "episodes", config.DefaultEpisodes, "episodes per rollout")
	cmd.Flags().IntVar(&maxSteps, "max-steps", config.DefaultMaxSteps, "truncation horizon")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().StringVar(&policyName, "policy", "zero", "scripted policy")
	cmd.Flags().Float64Var(&kp, "kp", 0, "pd kp")
	cmd.Flags().Float64Var(&kd, "kd", 0, "pd kd")
	cmd.Flags().Float64Var(&amplitude, "amplitude", 0, "sine amplitude")
	cmd.Flags().Float64Var(&frequency, "frequency", 0, "sine frequency")
	cmd.Flags().StringVar(&modelFile, "model-file", "", "load model from yaml instead of built-ins")
}

// resolveConfig merges preset, config file, and CLI flags into one
// Config. Precedence is flags > file > preset > defaults, mirroring how
// the run command documents itself.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	model := ""
	if len(args) > 0 {
		model = args[0]
	}

	if preset != "" {
		if model == "" {
			return nil, fmt.Errorf("preset requires a model argument")
		}
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if model != "" {
		cfg.Model = model
	}
	if cmd.Flags().Changed("scheme") {
		cfg.Scheme = scheme
	}
	if cmd.Flags().Changed("model-file") {
		cfg.ModelFile = modelFile
	}
	if cmd.Flags().Changed("depth") {
		cfg.Depth = depth
	}
	if cmd.Flags().Changed("neighbor-vel") {
		cfg.NeighborVel = nbrVel
	}
	if cmd.Flags().Changed("frame-skip") {
		cfg.FrameSkip = frameSkip
	}
	if cmd.Flags().Changed("noise") {
		cfg.Noise = noise
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("episodes") {
		cfg.Episodes = episodes
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("policy") {
		cfg.Policy = policyName
	}
	if cmd.Flags().Changed("kp") {
		cfg.PolicyParams.Kp = kp
	}
	if cmd.Flags().Changed("kd") {
		cfg.PolicyParams.Kd = kd
	}
	if cmd.Flags().Changed("amplitude") {
		cfg.PolicyParams.Amplitude = amplitude
	}
	if cmd.Flags().Changed("frequency") {
		cfg.PolicyParams.Frequency = frequency
	}

	return cfg, nil
}

func loadModel(cfg *config.Config) (*topology.Model, error) {
	if cfg.ModelFile != "" {
		return topology.Load(cfg.ModelFile)
	}
	return topology.Get(cfg.Model)
}

func buildEnv(cfg *config.Config, registry *experiment.Registry, seed int64) (*env.Env, error) {
	m, err := loadModel(cfg)
	if err != nil {
		return nil, err
	}

	integ, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	opts := []env.Option{
		env.WithDepth(cfg.Depth),
		env.WithFrameSkip(cfg.FrameSkip),
		env.WithResetNoise(cfg.Noise),
		env.WithSeed(seed),
		env.WithMaxEpisodeSteps(cfg.MaxSteps),
		env.WithIntegrator(integ),
	}
	if cfg.NeighborVel {
		opts = append(opts, env.WithNeighborVelocities())
	}

	return env.New(m, cfg.Partition(), opts...)
}

func runRollout(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()

	factory := func(instance int, seed int64) (*experiment.Rollout, error) {
		e, err := buildEnv(cfg, registry, seed)
		if err != nil {
			return nil, err
		}
		params := cfg.GetPolicyParams()
		params["seed"] = float64(seed)
		pol, err := registry.GetPolicy(cfg.Policy, e, params)
		if err != nil {
			return nil, err
		}
		return experiment.NewRollout(e, pol, registry.DefaultMetrics()), nil
	}

	fmt.Printf("running %s (%s, policy=%s, depth=%d)...\n", cfg.Model, cfg.Scheme, cfg.Policy, cfg.Depth)
	start := time.Now()

	var results []*experiment.Result
	if runs > 1 {
		ens := experiment.NewEnsemble(factory, runs, cfg.Seed)
		results, err = ens.Run(context.Background(), cfg.Episodes)
	} else {
		var r *experiment.Rollout
		r, err = factory(0, cfg.Seed)
		if err == nil {
			var res *experiment.Result
			res, err = r.Run(context.Background(), cfg.Episodes)
			results = []*experiment.Result{res}
		}
	}
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	fmt.Printf("completed in %v\n", elapsed)

	for i, result := range results {
		runID, err := st.Save(cfg.Model, cfg.Scheme, cfg.Policy, cfg.Depth, cfg.Seed+int64(i), result)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
		fmt.Printf("steps: %d  episodes: %d  terminated: %d  truncated: %d\n",
			result.Steps, result.Episodes, result.Terminated, result.Truncated)
		fmt.Println("metrics:")
		for name, val := range result.Metrics {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}

	if len(results) == 1 && len(results[0].GlobalReward) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(results[0].GlobalReward,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("global reward"),
		))
	}

	return nil
}

func showTopology(cmd *cobra.Command, args []string) error {
	var m *topology.Model
	var err error
	if modelFile != "" {
		m, err = topology.Load(modelFile)
	} else {
		m, err = topology.Get(args[0])
	}
	if err != nil {
		return err
	}

	g, err := coupling.Build(m)
	if err != nil {
		return err
	}

	fmt.Printf("model: %s (dt=%.4fs)\n\n", m.Name, m.Timestep)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IDX\tJOINT\tTYPE\tBODY\tCTRL RANGE")
	for i, j := range m.Joints {
		lo, hi := m.CtrlRange(i)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t[%.1f, %.1f]\n", i, j.Name, j.Type, j.Body, lo, hi)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\ncoupling edges:")
	for _, e := range g.Edges() {
		fmt.Printf("  %s -- %s\n", m.Joints[e.A].Name, m.Joints[e.B].Name)
	}
	fmt.Printf("\ndiameter: %d\n", g.Diameter())
	return nil
}

func listPartitions(cmd *cobra.Command, args []string) error {
	names := partition.SchemeNames()

	var prefix string
	if len(args) > 0 {
		prefix = args[0] + ":"
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCHEME\tAGENTS\tJOINTS PER AGENT")
	for _, name := range names {
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		specs, _ := partition.SchemeSpecs(name)
		sizes := make([]string, len(specs))
		for i, s := range specs {
			sizes[i] = fmt.Sprintf("%s=%d", s.ID, len(s.Joints)+len(s.Names))
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", name, len(specs), strings.Join(sizes, " "))
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tSCHEME\tPOLICY\tDEPTH\tTIME\tSTEPS\tEPISODES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%d\t%d\n",
			run.ID,
			run.Model,
			run.Scheme,
			run.Policy,
			run.Depth,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Episodes,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	_, rewards, global, err := st.LoadRewards(runID)
	if err != nil {
		return err
	}
	if len(global) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s  scheme: %s  policy: %s\n", meta.Model, meta.Scheme, meta.Policy)
	fmt.Printf("samples: %d\n\n", len(global))

	for _, id := range meta.AgentIDs {
		series := rewards[id]
		if len(series) < 2 {
			continue
		}
		fmt.Println(asciigraph.Plot(series,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("reward: %s", id)),
		))
		fmt.Println()
	}

	fmt.Println(asciigraph.Plot(global,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("global reward"),
	))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func watchRollout(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	e, err := buildEnv(cfg, registry, cfg.Seed)
	if err != nil {
		return err
	}

	params := cfg.GetPolicyParams()
	pol, err := registry.GetPolicy(cfg.Policy, e, params)
	if err != nil {
		return err
	}

	return tui.Run(e, pol)
}
