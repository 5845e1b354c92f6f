// Package spectrum turns stage waveforms into one-sided magnitude
// spectra and thins both for transport. Magnitudes are normalized by
// the sample count so spectra from different stage lengths remain
// comparable.
package spectrum

import (
	"math/cmplx"

	"github.com/signalworks/dsssim/internal/dsp"
)

// Analysis is a one-sided magnitude spectrum: frequency bins from DC to
// Nyquist with spacing sampleRate/N.
type Analysis struct {
	Frequencies []float64
	Magnitudes  []float64
}

// Compute returns the one-sided magnitude spectrum of a waveform. An
// empty waveform produces a single zero-valued point at 0 Hz.
func Compute(waveform []float64, sampleRate float64) Analysis {
	n := len(waveform)
	if n == 0 {
		return Analysis{Frequencies: []float64{0}, Magnitudes: []float64{0}}
	}

	spec := dsp.FFTReal(waveform)
	bins := n/2 + 1
	freqs := make([]float64, bins)
	mags := make([]float64, bins)
	for k := 0; k < bins; k++ {
		freqs[k] = float64(k) * sampleRate / float64(n)
		mags[k] = cmplx.Abs(spec[k]) / float64(n)
	}
	return Analysis{Frequencies: freqs, Magnitudes: mags}
}

// Decimate subsamples values with a uniform stride so no more than
// maxPoints remain. Inputs already within the budget are copied
// through unchanged.
func Decimate(values []float64, maxPoints int) []float64 {
	if maxPoints <= 0 || len(values) <= maxPoints {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	stride := (len(values) + maxPoints - 1) / maxPoints
	out := make([]float64, 0, (len(values)+stride-1)/stride)
	for i := 0; i < len(values); i += stride {
		out = append(out, values[i])
	}
	return out
}
