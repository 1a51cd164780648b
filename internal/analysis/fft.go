package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the discrete
// Fourier transform of data. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	spectrum := fft.FFTReal(data)
	ps := make([]float64, len(spectrum)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC bin
// for samples taken every dt seconds, and its magnitude.
func DominantFrequency(data []float64, dt float64) (float64, float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0, 0
	}

	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}

	freq := float64(best) / (float64(len(data)) * dt)
	return freq, ps[best]
}

// Detrend removes the mean so the DC bin does not dominate.
func Detrend(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// RMS returns the root mean square of data.
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(data)))
}
