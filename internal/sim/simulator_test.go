package sim_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tanksim/internal/control"
	"github.com/san-kum/tanksim/internal/dynamo"
	"github.com/san-kum/tanksim/internal/integrators"
	"github.com/san-kum/tanksim/internal/sim"
)

var (
	stairValues = []float64{10, 5, 0, 15, 5}
	stairTimes  = []float64{0, 20, 40, 60, 80}
)

// configure applies the steady-state convergence scenario.
func configure(s *sim.Simulator, kp float64) {
	Expect(s.SetTankVariables(2.0, 1.2)).To(Succeed())
	Expect(s.SetPIDSettings(kp, 0.8, 0, sim.WithAntiWindup(0.1))).To(Succeed())
	Expect(s.SetSaturation(0, 7)).To(Succeed())
	Expect(s.SetInitialCondition(0)).To(Succeed())
	Expect(s.SetSimTime(0, 100)).To(Succeed())
	Expect(s.SetTrajectory(stairValues, stairTimes)).To(Succeed())
}

// reentrant calls back into its simulator on the first step.
type reentrant struct {
	inner   dynamo.AdaptiveStepper
	sim     *sim.Simulator
	runErr  error
	setErr  error
	entered bool
}

func (r *reentrant) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt float64, tol dynamo.Tolerance) (dynamo.StepResult, error) {
	if !r.entered {
		r.entered = true
		r.runErr = r.sim.Run()
		r.setErr = r.sim.SetSaturation(0, 1)
	}
	return r.inner.StepAdaptive(dyn, x, t, dt, tol)
}

// levelAt returns the dense trace sample closest to at.
func levelAt(t, h []float64, at float64) float64 {
	i := int(math.Round(at / 0.01))
	Expect(t[i]).To(BeNumerically("~", at, 1e-9))
	return h[i]
}

var _ = Describe("Simulator", func() {
	var s *sim.Simulator

	BeforeEach(func() {
		s = sim.New()
	})

	Describe("configuration", func() {
		It("rejects invalid tank variables", func() {
			Expect(s.SetTankVariables(0, 1.2)).To(MatchError(dynamo.ErrConfiguration))
			Expect(s.SetTankVariables(-2, 1.2)).To(MatchError(dynamo.ErrConfiguration))
			Expect(s.SetTankVariables(2, -1)).To(MatchError(dynamo.ErrConfiguration))
		})

		It("rejects inverted saturation", func() {
			Expect(s.SetSaturation(7, 0)).To(MatchError(dynamo.ErrConfiguration))
			Expect(s.SetSaturation(3, 3)).To(Succeed())
		})

		It("rejects negative optional gains", func() {
			err := s.SetPIDSettings(1, 0, 0, sim.WithAntiWindup(-1))
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
			err = s.SetPIDSettings(1, 0, 0, sim.WithDeadband(-0.1))
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
		})

		It("rejects a negative or non-finite initial level", func() {
			Expect(s.SetInitialCondition(-1)).To(MatchError(dynamo.ErrConfiguration))
			Expect(s.SetInitialCondition(math.NaN())).To(MatchError(dynamo.ErrConfiguration))
		})

		It("rejects an empty or inverted time span", func() {
			Expect(s.SetSimTime(5, 5)).To(MatchError(dynamo.ErrConfiguration))
			Expect(s.SetSimTime(10, 0)).To(MatchError(dynamo.ErrConfiguration))
			Expect(s.SetSimTime(0, math.Inf(1))).To(MatchError(dynamo.ErrConfiguration))
		})

		It("rejects malformed trajectories as schedule errors", func() {
			err := s.SetTrajectory([]float64{1, 2}, []float64{0})
			Expect(err).To(MatchError(dynamo.ErrSchedule))
			Expect(errors.Is(err, dynamo.ErrConfiguration)).To(BeTrue())

			Expect(s.SetTrajectory(nil, nil)).To(MatchError(dynamo.ErrSchedule))
			Expect(s.SetTrajectory([]float64{1, 2}, []float64{3, 3})).To(MatchError(dynamo.ErrSchedule))
		})

		It("refuses to run when something is missing", func() {
			Expect(s.SetTankVariables(2, 1.2)).To(Succeed())
			Expect(s.Run()).To(MatchError(dynamo.ErrConfiguration))
			Expect(s.Phase()).To(Equal(sim.Configured))
		})

		It("reports the trajectory with its sentinel boundary", func() {
			configure(s, 2)
			values, bounds, err := s.Trajectory()
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal(stairValues))
			Expect(bounds).To(Equal([]float64{0, 20, 40, 60, 80, 1000}))
		})

		It("builds the output grid below the end time", func() {
			configure(s, 2)
			Expect(s.Run()).To(Succeed())
			t, h, _, _, _, err := s.Output()
			Expect(err).NotTo(HaveOccurred())
			Expect(t).To(HaveLen(10000))
			Expect(h).To(HaveLen(len(t)))
			Expect(t[0]).To(Equal(0.0))
			Expect(t[len(t)-1]).To(BeNumerically("~", 99.99, 1e-9))
			Expect(h[0]).To(Equal(0.0))
		})
	})

	Describe("output before a run", func() {
		It("returns ErrNoResult", func() {
			_, _, _, _, _, err := s.Output()
			Expect(err).To(MatchError(dynamo.ErrNoResult))
			_, err = s.Result()
			Expect(err).To(MatchError(dynamo.ErrNoResult))
		})
	})

	Describe("steady-state convergence", func() {
		var (
			t, h, tt, ee, ff []float64
		)

		BeforeEach(func() {
			configure(s, 2)
			Expect(s.Run()).To(Succeed())
			Expect(s.Phase()).To(Equal(sim.Done))

			var err error
			t, h, tt, ee, ff, err = s.Output()
			Expect(err).NotTo(HaveOccurred())
		})

		It("records one event per fired update", func() {
			Expect(tt).NotTo(BeEmpty())
			Expect(ee).To(HaveLen(len(tt)))
			Expect(ff).To(HaveLen(len(tt)))

			res, err := s.Result()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Stats.Updates).To(Equal(len(tt)))
			Expect(res.Stats.Accepted).To(BeNumerically(">=", len(t)-1))
			Expect(res.Stats.Evaluations).To(BeNumerically(">", res.Stats.Accepted))
		})

		It("gates updates to at least MinDt apart", func() {
			Expect(tt[0]).To(BeNumerically(">", control.MinDt))
			for i := 1; i < len(tt); i++ {
				Expect(tt[i] - tt[i-1]).To(BeNumerically(">", control.MinDt))
			}
		})

		It("keeps forcing inside the saturation limits", func() {
			for _, f := range ff {
				Expect(f).To(BeNumerically(">=", 0))
				Expect(f).To(BeNumerically("<=", 7))
			}
		})

		It("tracks every nonzero setpoint by the end of its window", func() {
			for _, at := range []struct{ t, sp float64 }{{19.99, 10}, {39.99, 5}, {79.99, 15}, {99.99, 5}} {
				Expect(levelAt(t, h, at.t)).To(BeNumerically("~", at.sp, 1.0), "t=%v", at.t)
			}
		})

		It("drives forcing to the lower bound once the setpoint drops to zero", func() {
			i := 0
			for i < len(tt) && tt[i] <= 40 {
				i++
			}
			Expect(i).To(BeNumerically("<", len(tt)))
			Expect(tt[i]).To(BeNumerically("<", 40.1))
			Expect(ee[i]).To(BeNumerically("<", 0))
			Expect(ff[i]).To(Equal(0.0))

			Expect(levelAt(t, h, 59.99)).To(BeNumerically("<", levelAt(t, h, 40)))
			Expect(levelAt(t, h, 59.99)).To(BeNumerically("<", 1))
		})

		It("never reports a level below the domain tolerance", func() {
			for _, v := range h {
				Expect(v).To(BeNumerically(">=", -1e-6))
			}
		})
	})

	Describe("repeated runs", func() {
		It("is deterministic", func() {
			configure(s, 2)
			Expect(s.Run()).To(Succeed())
			t1, h1, tt1, ee1, ff1, _ := s.Output()

			Expect(s.Run()).To(Succeed())
			t2, h2, tt2, ee2, ff2, _ := s.Output()

			Expect(t2).To(Equal(t1))
			Expect(h2).To(Equal(h1))
			Expect(tt2).To(Equal(tt1))
			Expect(ee2).To(Equal(ee1))
			Expect(ff2).To(Equal(ff1))
		})

		It("does not leak controller state between runs", func() {
			configure(s, 2)
			Expect(s.Run()).To(Succeed())
			_, h1, tt1, _, ff1, _ := s.Output()

			Expect(s.SetPIDSettings(20, 0.8, 0, sim.WithAntiWindup(0.1))).To(Succeed())
			Expect(s.Run()).To(Succeed())
			_, hOther, _, _, _, _ := s.Output()
			Expect(hOther).NotTo(Equal(h1))

			Expect(s.SetPIDSettings(2, 0.8, 0, sim.WithAntiWindup(0.1))).To(Succeed())
			Expect(s.Run()).To(Succeed())
			_, h3, tt3, _, ff3, _ := s.Output()

			Expect(h3).To(Equal(h1))
			Expect(tt3).To(Equal(tt1))
			Expect(ff3).To(Equal(ff1))
		})

		It("matches a fresh simulator", func() {
			configure(s, 2)
			Expect(s.SetSaturation(0, 5)).To(Succeed())
			Expect(s.Run()).To(Succeed())
			Expect(s.SetSaturation(0, 7)).To(Succeed())
			Expect(s.Run()).To(Succeed())
			_, h1, _, _, _, _ := s.Output()

			fresh := sim.New()
			configure(fresh, 2)
			Expect(fresh.Run()).To(Succeed())
			_, h2, _, _, _, _ := fresh.Output()

			Expect(h1).To(Equal(h2))
		})

		It("keeps the previous result after a setter", func() {
			configure(s, 2)
			Expect(s.Run()).To(Succeed())
			Expect(s.SetInitialCondition(1)).To(Succeed())
			Expect(s.Phase()).To(Equal(sim.Configured))
			_, _, _, _, _, err := s.Output()
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("domain guard", func() {
		BeforeEach(func() {
			configure(s, 2)
			Expect(s.SetInitialCondition(1)).To(Succeed())
			Expect(s.SetSaturation(-20, -10)).To(Succeed())
		})

		It("fails with a numeric domain error when forcing drains the tank", func() {
			err := s.Run()
			Expect(err).To(MatchError(dynamo.ErrNumericDomain))

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Time).To(BeNumerically(">", 0))
			Expect(simErr.Time).To(BeNumerically("<", 1))
			Expect(s.Phase()).To(Equal(sim.Failed))
		})

		It("clears the previous result", func() {
			Expect(s.SetSaturation(0, 7)).To(Succeed())
			Expect(s.Run()).To(Succeed())

			Expect(s.SetSaturation(-20, -10)).To(Succeed())
			Expect(s.Run()).To(HaveOccurred())

			_, _, _, _, _, err := s.Output()
			Expect(err).To(MatchError(dynamo.ErrNoResult))
		})
	})

	Describe("re-entrancy", func() {
		It("refuses Run and setters while a run is active", func() {
			st := &reentrant{inner: integrators.NewRK45()}
			s = sim.New(sim.WithStepper(st))
			st.sim = s
			configure(s, 2)
			Expect(s.SetSimTime(0, 5)).To(Succeed())

			Expect(s.Run()).To(Succeed())
			Expect(st.entered).To(BeTrue())
			Expect(st.runErr).To(MatchError(dynamo.ErrBusy))
			Expect(st.setErr).To(MatchError(dynamo.ErrBusy))

			Expect(s.Phase()).To(Equal(sim.Done))
			Expect(s.Limits()).To(Equal(control.Limits{Low: 0, High: 7}))
			t, _, _, _, _, err := s.Output()
			Expect(err).NotTo(HaveOccurred())
			Expect(t).To(HaveLen(500))
		})
	})

	Describe("draining tank", func() {
		It("never records a negative level", func() {
			for _, name := range []string{"rk45", "rk4"} {
				stepper, err := integrators.ByName(name)
				Expect(err).NotTo(HaveOccurred())
				s = sim.New(sim.WithStepper(stepper))
				configure(s, 2)
				Expect(s.SetInitialCondition(1)).To(Succeed())
				Expect(s.SetSaturation(0, 0)).To(Succeed())
				Expect(s.SetSimTime(0, 10)).To(Succeed())
				Expect(s.Run()).To(Succeed(), name)

				_, h, _, _, _, _ := s.Output()
				for _, v := range h {
					Expect(v).To(BeNumerically(">=", 0), name)
				}
				Expect(h[len(h)-1]).To(BeNumerically("<", 1e-6), name)
			}
		})
	})

	Describe("step budget", func() {
		It("fails with an integration error when exhausted", func() {
			s = sim.New(sim.WithMaxSteps(100))
			configure(s, 2)
			err := s.Run()
			Expect(err).To(MatchError(dynamo.ErrIntegration))
			Expect(s.Phase()).To(Equal(sim.Failed))
		})
	})

	Describe("integrators", func() {
		It("agree on the closed-loop trajectory", func() {
			configure(s, 2)
			Expect(s.SetSimTime(0, 40)).To(Succeed())
			Expect(s.Run()).To(Succeed())
			t1, h1, _, _, _, _ := s.Output()

			stepper, err := integrators.ByName("rk4")
			Expect(err).NotTo(HaveOccurred())
			other := sim.New(sim.WithStepper(stepper))
			configure(other, 2)
			Expect(other.SetSimTime(0, 40)).To(Succeed())
			Expect(other.Run()).To(Succeed())
			t2, h2, _, _, _, _ := other.Output()

			Expect(t2).To(Equal(t1))
			for _, at := range []float64{5, 19.99, 30, 39.99} {
				Expect(levelAt(t2, h2, at)).To(BeNumerically("~", levelAt(t1, h1, at), 0.25), "t=%v", at)
			}
		})
	})
})
