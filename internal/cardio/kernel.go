package cardio

import (
	"math"
)

const (
	// binWidth is the reflex sampling interval, s.
	binWidth = 0.0625
	// binsPerAverage is the length of the moving average in bins.
	binsPerAverage = 4
	// historyLength is the support of the impulse responses in bins (60 s).
	historyLength = 960
	// kernelShift compensates the delay introduced by the moving average.
	kernelShift = 3 * binWidth
	// reflexWarmup is the time before the convolutions start.
	reflexWarmup = binsPerAverage * binWidth
)

// Effector pathways, each with its own impulse response.
const (
	Parasympathetic = iota
	BetaSympathetic
	AlphaArterial
	AlphaVenous
	CardiopulmonaryArterial
	CardiopulmonaryVenous
	NumKernels
)

var kernelNames = [NumKernels]string{
	"parasympathetic",
	"beta_sympathetic",
	"alpha_arterial",
	"alpha_venous",
	"cp_arterial",
	"cp_venous",
}

// KernelName returns the name of an effector pathway.
func KernelName(k int) string { return kernelNames[k] }

var kernelBreakpoints = [NumKernels][3]Param{
	{ParasympatheticDelay, ParasympatheticPeak, ParasympatheticEnd},
	{BetaSympatheticDelay, BetaSympatheticPeak, BetaSympatheticEnd},
	{AlphaArterialDelay, AlphaArterialPeak, AlphaArterialEnd},
	{AlphaVenousDelay, AlphaVenousPeak, AlphaVenousEnd},
	{CardiopulmonaryArterialDelay, CardiopulmonaryArterialPeak, CardiopulmonaryArterialEnd},
	{CardiopulmonaryVenousDelay, CardiopulmonaryVenousPeak, CardiopulmonaryVenousEnd},
}

func isKernelParam(p Param) bool {
	for _, bp := range kernelBreakpoints {
		for _, q := range bp {
			if q == p {
				return true
			}
		}
	}
	return false
}

// Kernel is a normalized triangular impulse response sampled once per bin.
type Kernel [historyLength]float64

// Kernels holds one impulse response per effector pathway.
type Kernels [NumKernels]Kernel

func kernelIndex(t float64) int {
	i := int(math.RoundToEven((t - kernelShift) / binWidth))
	if i < 0 {
		return 0
	}
	if i > historyLength-1 {
		return historyLength - 1
	}
	return i
}

// NewKernel builds the impulse response that rises linearly from delay to
// peak and falls back to zero at end, normalized to unit area.
func NewKernel(delay, peak, end float64) Kernel {
	var k Kernel
	start, top, stop := kernelIndex(delay), kernelIndex(peak), kernelIndex(end)
	if top < start {
		top = start
	}
	if stop < top {
		stop = top
	}
	for i := start; i < top; i++ {
		k[i] = float64(i-start) / float64(top-start)
	}
	if stop == top {
		k[top] = 1
	} else {
		for i := top; i <= stop; i++ {
			k[i] = float64(stop-i) / float64(stop-top)
		}
	}

	sum := 0.0
	for _, v := range k {
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// BuildKernels derives every impulse response from the breakpoint parameters.
func BuildKernels(p *Params) Kernels {
	var ks Kernels
	for i, bp := range kernelBreakpoints {
		ks[i] = NewKernel(p[bp[0]], p[bp[1]], p[bp[2]])
	}
	return ks
}

// convolve weighs the history, newest sample first, by the kernel.
func (k *Kernel) convolve(hist *[historyLength]float64, top int) float64 {
	sum := 0.0
	for i, w := range k {
		if w == 0 {
			continue
		}
		sum += w * hist[(top+i)%historyLength]
	}
	return sum
}
