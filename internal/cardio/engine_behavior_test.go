package cardio_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cvsim/internal/cardio"
)

var _ = Describe("Engine", func() {
	var e *cardio.Engine

	step := func(n int, f cardio.Flags) {
		for i := 0; i < n; i++ {
			_, err := e.Step(cardio.DefaultStepSize, f)
			Expect(err).NotTo(HaveOccurred())
		}
	}

	BeforeEach(func() {
		e = cardio.New(cardio.DefaultParams())
		Expect(e.Initialize()).To(Succeed())
	})

	Context("at the nominal heart rate", func() {
		It("produces a physiological left ventricular peak within one second", func() {
			peak := math.Inf(-1)
			for i := 0; i < 1000; i++ {
				_, err := e.Step(cardio.DefaultStepSize, cardio.Flags{})
				Expect(err).NotTo(HaveOccurred())
				peak = math.Max(peak, e.State().Pressure[cardio.LeftVentricle])
			}
			Expect(peak).To(BeNumerically(">=", 100))
			Expect(peak).To(BeNumerically("<=", 140))
		})

		It("beats once per cycle length", func() {
			var onsets []float64
			last := 0
			for i := 0; i < 4000; i++ {
				_, err := e.Step(cardio.DefaultStepSize, cardio.Flags{})
				Expect(err).NotTo(HaveOccurred())
				if n, at := e.Beats(); n != last {
					last = n
					onsets = append(onsets, at)
				}
			}
			Expect(len(onsets)).To(BeNumerically(">=", 4))
			period := 60.0 / 70.0
			Expect(onsets[0]).To(BeNumerically("~", period, period*0.01))
			for i := 1; i < len(onsets); i++ {
				Expect(onsets[i] - onsets[i-1]).To(BeNumerically("~", period, period*0.01))
			}
		})

		It("keeps the blood volume accounted for", func() {
			step(2000, cardio.Flags{})
			Expect(math.Abs(e.Residual())).To(BeNumerically("<", 0.05))
		})
	})

	Context("with the arterial baroreflex", func() {
		It("slows the heart when pressure sits above the set point", func() {
			Expect(e.UpdateParameter("abr_set_point", 50)).To(Succeed())
			step(3000, cardio.Flags{ArterialBaroreflex: true})
			Expect(e.Reflex().HeartRate).To(BeNumerically("<", e.Params()[cardio.NominalHeartRate]))
			Expect(e.State().Pressure[cardio.SensedPressure]).To(BeNumerically(">", 0))
		})

		It("has no effect while disabled", func() {
			Expect(e.UpdateParameter("abr_set_point", 50)).To(Succeed())
			step(3000, cardio.Flags{})
			Expect(e.Reflex().HeartRate).To(BeNumerically("~", e.Params()[cardio.NominalHeartRate], 1e-9))
		})
	})

	Context("during a head-up tilt", func() {
		BeforeEach(func() {
			Expect(e.UpdateParameter("tilt_angle", 70)).To(Succeed())
			Expect(e.UpdateParameter("tilt_onset", 0.5)).To(Succeed())
			Expect(e.UpdateParameter("tilt_time", 1)).To(Succeed())
		})

		It("pools blood and tracks the volume lost from the circulation", func() {
			legBefore := e.State().Volume[cardio.LegVeins]
			step(3000, cardio.Flags{Tilt: true, ArterialBaroreflex: true, Cardiopulmonary: true})

			s := e.State()
			Expect(s.Tilt.Angle).To(BeNumerically("~", 70, 1e-9))
			Expect(s.Tilt.VolumeLoss).To(BeNumerically(">", 0))
			Expect(s.Volume[cardio.LegVeins]).To(BeNumerically(">", legBefore))
			Expect(s.Pressure[cardio.Intrathoracic]).To(BeNumerically("<", e.Params()[cardio.IntrathoracicPressure]))
			Expect(math.Abs(e.Residual())).To(BeNumerically("<", 0.05))
		})
	})

	Context("after a reset", func() {
		It("keeps the circulation and clears the reflex history", func() {
			step(500, cardio.DefaultFlags())
			before := e.State()
			e.Reset()
			Expect(e.State().Pressure).To(Equal(before.Pressure))
			Expect(e.Responses()).To(Equal([cardio.NumKernels]float64{}))
			step(10, cardio.DefaultFlags())
		})
	})
})
