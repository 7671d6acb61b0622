package session_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/session"
	"gonum.org/v1/gonum/spatial/r2"
)

type recorder struct {
	times []float64
}

func (r *recorder) OnStep(x dynamo.State, t float64) { r.times = append(r.times, t) }

var _ = Describe("Session", func() {
	var s *session.Session

	BeforeEach(func() {
		var err error
		s, err = session.New(session.DefaultSettings())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("New", func() {
		It("starts from the configured state", func() {
			Expect(s.State()).To(Equal(physics.DefaultState()))
			Expect(s.Params()).To(Equal(physics.DefaultParams()))
			Expect(s.Time()).To(BeZero())
		})

		It("rejects invalid settings", func() {
			cfg := session.DefaultSettings()
			cfg.Params.M2 = 0
			_, err := session.New(cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))

			cfg = session.DefaultSettings()
			cfg.Horizon = 0
			_, err = session.New(cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidStep))

			cfg = session.DefaultSettings()
			cfg.Initial.Omega1 = math.Inf(1)
			_, err = session.New(cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
		})

		It("builds settings from a preset", func() {
			cfg := config.GetPreset("chaos")
			cfg.Integrator = "euler"
			settings, err := session.FromConfig(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(settings.Initial.Phi1).To(Equal(3.0))

			cfg.Integrator = "leapfrog"
			_, err = session.FromConfig(cfg)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Tick", func() {
		It("advances one horizon and lands on the frame time", func() {
			frame, err := s.Tick()
			Expect(err).NotTo(HaveOccurred())
			Expect(frame.Time).To(BeNumerically("~", 0.1, 1e-12))
			Expect(s.Time()).To(Equal(frame.Time))

			Expect(frame.State.Phi1).To(BeNumerically("<", math.Pi/5))
			Expect(frame.State.Phi2).To(BeNumerically("<", math.Pi/5))
			Expect(frame.State.Omega1).To(BeNumerically("~", -0.0038441, 4e-5))
			Expect(frame.State.Omega2).To(BeNumerically("<", 0))
		})

		It("reports bob positions consistent with the state", func() {
			frame, err := s.Tick()
			Expect(err).NotTo(HaveOccurred())

			b1, b2 := physics.Positions(physics.DefaultParams(), frame.State, physics.DefaultPivot)
			Expect(frame.Bob1).To(Equal(b1))
			Expect(frame.Bob2).To(Equal(b2))
			Expect(frame.Rot1).To(Equal(-frame.State.Phi1))
			Expect(frame.Rot2).To(Equal(-frame.State.Phi2))
		})

		It("keeps energy nearly constant over many frames", func() {
			e0 := s.Current().Energy
			var frame session.Frame
			var err error
			for i := 0; i < 100; i++ {
				frame, err = s.Tick()
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(frame.Time).To(BeNumerically("~", 10, 1e-9))
			Expect(math.Abs(frame.Energy-e0) / math.Abs(e0)).To(BeNumerically("<", 1e-6))
		})

		It("notifies observers after each frame", func() {
			rec := &recorder{}
			s.AddObserver(rec)
			for i := 0; i < 3; i++ {
				_, err := s.Tick()
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(rec.times).To(HaveLen(3))
			Expect(rec.times[2]).To(BeNumerically("~", 0.3, 1e-12))
		})

		It("leaves the state untouched when integration fails", func() {
			cfg := session.DefaultSettings()
			cfg.MaxRate = 1e-3
			cfg.Initial.Omega1 = 0.01
			s, err := session.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			frame, err := s.Tick()
			Expect(err).To(MatchError(dynamo.ErrNumericOverflow))
			Expect(frame.State).To(Equal(cfg.Initial))
			Expect(s.Time()).To(BeZero())
		})
	})

	Describe("parameter changes", func() {
		It("holds the last valid state while parameters are invalid", func() {
			_, err := s.Tick()
			Expect(err).NotTo(HaveOccurred())
			held := s.State()

			bad := physics.DefaultParams()
			bad.L1 = 0
			Expect(s.SetParams(bad)).To(MatchError(dynamo.ErrInvalidParameter))
			Expect(s.Pending()).To(HaveOccurred())

			for i := 0; i < 3; i++ {
				frame, err := s.Tick()
				Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
				Expect(frame.State).To(Equal(held))
			}
			Expect(s.Params()).To(Equal(physics.DefaultParams()))

			Expect(s.SetParams(physics.DefaultParams())).To(Succeed())
			Expect(s.Pending()).To(BeNil())
			frame, err := s.Tick()
			Expect(err).NotTo(HaveOccurred())
			Expect(frame.State).NotTo(Equal(held))
		})

		It("applies new parameters on the next tick", func() {
			p := physics.Params{L1: 60, L2: 300, M1: 10, M2: 90}
			Expect(s.SetParams(p)).To(Succeed())
			Expect(s.Params()).To(Equal(p))

			frame, err := s.Tick()
			Expect(err).NotTo(HaveOccurred())
			Expect(r2.Norm(r2.Sub(frame.Bob1, physics.DefaultPivot))).To(BeNumerically("~", 60, 1e-9))
		})
	})

	Describe("sliders", func() {
		It("scales lengths and passes masses through", func() {
			Expect(s.SetSlider("l1", 20)).To(Succeed())
			Expect(s.SetSlider("m2", 7)).To(Succeed())

			Expect(s.Params().L1).To(Equal(60.0))
			Expect(s.Params().M2).To(Equal(7.0))
			Expect(s.Slider("l1")).To(Equal(20.0))
			Expect(s.Slider("m2")).To(Equal(7.0))
		})

		It("clamps to the slider range", func() {
			Expect(s.SetSlider("l2", 1000)).To(Succeed())
			Expect(s.Params().L2).To(Equal(300.0))

			Expect(s.SetSlider("m1", -5)).To(Succeed())
			Expect(s.Params().M1).To(Equal(1.0))

			lo, hi := s.SliderRange()
			Expect(lo).To(Equal(1.0))
			Expect(hi).To(Equal(100.0))
		})

		It("starts the sliders at the stock scene", func() {
			for _, name := range session.SliderNames {
				Expect(s.Slider(name)).To(BeNumerically(">=", 1))
			}
			Expect(s.Slider("l1")).To(Equal(50.0))
			Expect(s.Slider("m1")).To(Equal(50.0))
		})

		It("rejects unknown sliders", func() {
			Expect(s.SetSlider("g", 3)).To(HaveOccurred())
		})
	})

	Describe("Reset", func() {
		It("restores the initial state but keeps parameters", func() {
			Expect(s.SetSlider("m1", 10)).To(Succeed())
			for i := 0; i < 5; i++ {
				_, err := s.Tick()
				Expect(err).NotTo(HaveOccurred())
			}

			s.Reset()
			Expect(s.State()).To(Equal(physics.DefaultState()))
			Expect(s.Time()).To(BeZero())
			Expect(s.Params().M1).To(Equal(10.0))
		})
	})
})
