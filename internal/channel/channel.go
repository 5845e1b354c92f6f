// Package channel models the analog leg of the link: mixing the chip
// waveform onto a cosine carrier, coherent demodulation with the same
// locally generated carrier, and additive Gaussian noise in either
// white or band-limited form.
//
// The receiver is assumed to know the carrier exactly; no phase or
// frequency estimation is modeled.
package channel

import (
	crand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand/v2"

	"github.com/signalworks/dsssim/internal/dsp"
)

// Model synthesizes channel impairments. Noise draws come from the
// model's own generator: unseeded by default, so two runs of the same
// noisy simulation differ, or seeded explicitly for reproducible tests.
type Model struct {
	rng *rand.Rand
}

// NewModel returns a model with an entropy-seeded noise generator.
func NewModel() *Model {
	var buf [16]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// Entropy read failures are effectively impossible; fall back
		// to a fixed seed rather than aborting a simulation.
		return NewSeededModel(0x9e3779b97f4a7c15)
	}
	seed1 := binary.LittleEndian.Uint64(buf[:8])
	seed2 := binary.LittleEndian.Uint64(buf[8:])
	return &Model{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// NewSeededModel returns a model whose noise is reproducible for the
// given seed.
func NewSeededModel(seed uint64) *Model {
	return &Model{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Carrier returns cos(2*pi*freq*t) sampled at sampleRate for n samples.
func Carrier(n int, freq, sampleRate float64) []float64 {
	carrier := make([]float64, n)
	step := 2 * math.Pi * freq / sampleRate
	for i := range carrier {
		carrier[i] = math.Cos(step * float64(i))
	}
	return carrier
}

// Mix multiplies a waveform elementwise by a carrier. Modulation and
// coherent demodulation are the same operation with the same carrier,
// so both sides of the link call Mix.
func Mix(waveform, carrier []float64) []float64 {
	n := len(waveform)
	if len(carrier) < n {
		n = len(carrier)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = waveform[i] * carrier[i]
	}
	return out
}

// AddWhiteNoise adds i.i.d. Gaussian noise of the given power (variance)
// to the signal. Non-positive power passes the signal through unchanged.
func (m *Model) AddWhiteNoise(signal []float64, noisePower float64) []float64 {
	if noisePower <= 0 {
		return signal
	}
	sigma := math.Sqrt(noisePower)
	out := make([]float64, len(signal))
	for i, v := range signal {
		out[i] = v + sigma*m.rng.NormFloat64()
	}
	return out
}

// AddBandLimitedNoise adds Gaussian noise whose spectral content is
// confined to [-bandwidth/2, +bandwidth/2]: unit white noise is
// transformed, bins outside the band are zeroed, and the shaped result
// is rescaled to the target power before being added. Non-positive
// power or bandwidth passes the signal through unchanged.
func (m *Model) AddBandLimitedNoise(signal []float64, noisePower, bandwidth, sampleRate float64) []float64 {
	if noisePower <= 0 || bandwidth <= 0 {
		return signal
	}
	n := len(signal)
	if n == 0 {
		return signal
	}

	raw := make([]complex128, n)
	for i := range raw {
		raw[i] = complex(m.rng.NormFloat64(), 0)
	}

	halfBW := math.Min(bandwidth/2, sampleRate/2)
	spectrum := dsp.FFT(raw)
	for k := range spectrum {
		if math.Abs(dsp.BinFrequency(k, n, sampleRate)) > halfBW {
			spectrum[k] = 0
		}
	}
	shaped := dsp.IFFT(spectrum)

	noise := make([]float64, n)
	mean := 0.0
	for i, v := range shaped {
		noise[i] = real(v)
		mean += noise[i]
	}
	mean /= float64(n)
	variance := 0.0
	for _, v := range noise {
		d := v - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(n))

	out := make([]float64, n)
	if std == 0 {
		copy(out, signal)
		return out
	}
	scale := math.Sqrt(noisePower) / std
	for i, v := range signal {
		out[i] = v + noise[i]*scale
	}
	return out
}
