package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/dpsim/internal/dynamo"
)

// PowerSpectrum returns the magnitude of the first half of the DFT of
// data, with the mean removed so bin 0 does not dominate.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest
// non-zero spectral bin of samples taken every dt.
func DominantFrequency(samples []float64, dt float64) (float64, error) {
	if !(dt > 0) {
		return 0, fmt.Errorf("%w: sample interval %g", dynamo.ErrInvalidStep, dt)
	}
	if len(samples) < 4 {
		return 0, fmt.Errorf("need at least 4 samples, got %d", len(samples))
	}

	ps := PowerSpectrum(samples)
	peak := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	return float64(peak) / (float64(len(samples)) * dt), nil
}
