package env_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/splitsim/internal/env"
	"github.com/san-kum/splitsim/internal/partition"
	"github.com/san-kum/splitsim/internal/stepper"
	"github.com/san-kum/splitsim/internal/topology"
)

var twoAgents = partition.Custom([]partition.AgentSpec{
	{ID: "A", Joints: []int{0}},
	{ID: "B", Joints: []int{1}},
})

func newPair(opts ...env.Option) *env.Env {
	e, err := env.New(topology.Chain(2), twoAgents, opts...)
	Expect(err).NotTo(HaveOccurred())
	return e
}

func zeroActions(e *env.Env) map[string][]float64 {
	actions := make(map[string][]float64)
	for _, id := range e.AgentIDs() {
		space, err := e.ActionSpace(id)
		Expect(err).NotTo(HaveOccurred())
		actions[id] = make([]float64, space.Len())
	}
	return actions
}

var _ = Describe("Env", func() {
	Describe("construction", func() {
		It("rejects a partition missing a joint before any stepping is possible", func() {
			_, err := env.New(topology.Chain(2), partition.Custom([]partition.AgentSpec{
				{ID: "A", Joints: []int{0}},
			}))

			var perr *partition.PartitionError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Unassigned).To(Equal([]int{1}))
		})

		It("rejects a malformed model topology", func() {
			bad := &topology.Model{
				Name:     "bad",
				Timestep: 0.01,
				Bodies:   []topology.Body{{Name: "torso"}},
				Joints:   []topology.Joint{{Name: "j0", Body: "ghost"}},
			}
			_, err := env.New(bad, partition.Custom([]partition.AgentSpec{{ID: "A", Joints: []int{0}}}))

			var terr *topology.TopologyError
			Expect(errors.As(err, &terr)).To(BeTrue())
		})

		It("exposes action and observation spaces before reset", func() {
			e := newPair(env.WithDepth(1))

			action, err := e.ActionSpace("A")
			Expect(err).NotTo(HaveOccurred())
			Expect(action.Len()).To(Equal(1))
			Expect(action.Low[0]).To(Equal(-1.0))
			Expect(action.High[0]).To(Equal(1.0))

			observation, err := e.ObservationSpace("A")
			Expect(err).NotTo(HaveOccurred())
			// own pos + neighbor pos + own vel
			Expect(observation.Len()).To(Equal(3))
		})
	})

	Describe("lifecycle", func() {
		It("starts READY and refuses to step", func() {
			e := newPair()
			Expect(e.Phase()).To(Equal(env.Ready))

			_, _, _, _, _, err := e.Step(zeroActions(e))

			var serr *env.StateError
			Expect(errors.As(err, &serr)).To(BeTrue())
			Expect(serr.Phase).To(Equal(env.Ready))
		})

		It("runs after reset and returns one observation per agent", func() {
			e := newPair(env.WithDepth(1))

			observations, _, err := e.Reset()
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Phase()).To(Equal(env.Running))
			Expect(observations).To(HaveLen(2))
			Expect(observations["A"]).To(HaveLen(3))
			Expect(observations["B"]).To(HaveLen(3))
		})

		It("permits reset mid-episode and stays RUNNING", func() {
			e := newPair()
			_, _, err := e.Reset()
			Expect(err).NotTo(HaveOccurred())

			_, _, _, _, _, err = e.Step(zeroActions(e))
			Expect(err).NotTo(HaveOccurred())

			observations, _, err := e.Reset()
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Phase()).To(Equal(env.Running))
			Expect(observations).To(HaveKey("A"))
		})

		It("truncates after the configured number of steps and returns to READY", func() {
			e := newPair(env.WithMaxEpisodeSteps(3), env.WithResetNoise(0))
			_, _, err := e.Reset()
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 2; i++ {
				_, _, _, truncated, _, err := e.Step(zeroActions(e))
				Expect(err).NotTo(HaveOccurred())
				Expect(truncated["A"]).To(BeFalse())
			}

			_, _, _, truncated, _, err := e.Step(zeroActions(e))
			Expect(err).NotTo(HaveOccurred())
			Expect(truncated["A"]).To(BeTrue())
			Expect(truncated["B"]).To(BeTrue())
			Expect(e.Phase()).To(Equal(env.Ready))
		})
	})

	Describe("step validation", func() {
		It("rejects a wrong agent-id set and names the difference", func() {
			e := newPair()
			_, _, err := e.Reset()
			Expect(err).NotTo(HaveOccurred())
			before := e.State()

			_, _, _, _, _, err = e.Step(map[string][]float64{
				"A": {0},
				"C": {0},
			})

			var merr *env.AgentMismatchError
			Expect(errors.As(err, &merr)).To(BeTrue())
			Expect(merr.Missing).To(Equal([]string{"B"}))
			Expect(merr.Extra).To(Equal([]string{"C"}))
			Expect(e.State()).To(Equal(before))
			Expect(e.Phase()).To(Equal(env.Running))
		})

		It("rejects a wrong-length local action without mutating state", func() {
			e := newPair()
			_, _, err := e.Reset()
			Expect(err).NotTo(HaveOccurred())
			before := e.State()

			_, _, _, _, _, err = e.Step(map[string][]float64{
				"A": {0, 0},
				"B": {0},
			})

			var shapeErr *stepper.ActionShapeError
			Expect(errors.As(err, &shapeErr)).To(BeTrue())
			Expect(shapeErr.Agent).To(Equal("A"))
			Expect(e.State()).To(Equal(before))
		})
	})

	Describe("assembly and broadcast", func() {
		It("scatters local actions into the global vector by joint index", func() {
			var captured []float64
			e := newPair(env.WithRewardFn(func(d env.StepData) map[string]float64 {
				captured = append([]float64(nil), d.Action...)
				return map[string]float64{"A": 0, "B": 0}
			}))

			_, _, err := e.Reset()
			Expect(err).NotTo(HaveOccurred())

			_, _, _, _, _, err = e.Step(map[string][]float64{
				"A": {0.25},
				"B": {-0.5},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(captured).To(Equal([]float64{0.25, -0.5}))
		})

		It("clamps actions to the model's control range", func() {
			var captured []float64
			e := newPair(env.WithRewardFn(func(d env.StepData) map[string]float64 {
				captured = append([]float64(nil), d.Action...)
				return map[string]float64{"A": 0, "B": 0}
			}))

			_, _, err := e.Reset()
			Expect(err).NotTo(HaveOccurred())

			_, _, _, _, _, err = e.Step(map[string][]float64{
				"A": {7.0},
				"B": {-7.0},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(captured).To(Equal([]float64{1.0, -1.0}))
		})

		It("broadcasts identical reward and done flags by default", func() {
			e := newPair()
			_, _, err := e.Reset()
			Expect(err).NotTo(HaveOccurred())

			_, rewards, terminated, truncated, _, err := e.Step(zeroActions(e))
			Expect(err).NotTo(HaveOccurred())
			Expect(rewards["A"]).To(Equal(rewards["B"]))
			Expect(terminated["A"]).To(Equal(terminated["B"]))
			Expect(truncated["A"]).To(Equal(truncated["B"]))
		})

		It("lets a task layer substitute per-agent shaping", func() {
			e := newPair(env.WithRewardFn(func(d env.StepData) map[string]float64 {
				return map[string]float64{"A": 1.0, "B": -1.0}
			}))
			_, _, err := e.Reset()
			Expect(err).NotTo(HaveOccurred())

			_, rewards, _, _, _, err := e.Step(zeroActions(e))
			Expect(err).NotTo(HaveOccurred())
			Expect(rewards["A"]).To(Equal(1.0))
			Expect(rewards["B"]).To(Equal(-1.0))
		})
	})

	Describe("determinism", func() {
		It("reproduces initial observations for a fixed seed", func() {
			e1 := newPair(env.WithSeed(11), env.WithResetNoise(0.1))
			e2 := newPair(env.WithSeed(11), env.WithResetNoise(0.1))

			o1, _, err := e1.Reset()
			Expect(err).NotTo(HaveOccurred())
			o2, _, err := e2.Reset()
			Expect(err).NotTo(HaveOccurred())
			Expect(o1).To(Equal(o2))
		})

		It("evolves independent instances independently", func() {
			e1 := newPair(env.WithSeed(1), env.WithResetNoise(0.1))
			e2 := newPair(env.WithSeed(2), env.WithResetNoise(0.1))

			o1, _, err := e1.Reset()
			Expect(err).NotTo(HaveOccurred())
			o2, _, err := e2.Reset()
			Expect(err).NotTo(HaveOccurred())
			Expect(o1).NotTo(Equal(o2))
		})
	})
})
