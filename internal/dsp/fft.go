// Package dsp provides the discrete Fourier transforms behind spectrum
// taps and band-limited noise shaping. Stage waveforms have arbitrary
// lengths (bits x chips x oversampling), so the transform falls back to
// Bluestein's chirp-z algorithm whenever the length is not a power of
// two; both paths are exact DFTs, not approximations.
package dsp

import (
	"math"
	"math/bits"
	"math/cmplx"
)

// FFT computes the discrete Fourier transform of x for any length.
func FFT(x []complex128) []complex128 {
	n := len(x)
	if n == 0 {
		return nil
	}
	if n&(n-1) == 0 {
		out := make([]complex128, n)
		copy(out, x)
		radix2(out, false)
		return out
	}
	return bluestein(x)
}

// IFFT computes the inverse discrete Fourier transform of x, including
// the 1/N normalization.
func IFFT(x []complex128) []complex128 {
	n := len(x)
	if n == 0 {
		return nil
	}
	out := make([]complex128, n)
	for i, v := range x {
		out[i] = cmplx.Conj(v)
	}
	fwd := FFT(out)
	scale := complex(1/float64(n), 0)
	for i, v := range fwd {
		out[i] = cmplx.Conj(v) * scale
	}
	return out
}

// FFTReal transforms a real-valued signal.
func FFTReal(x []float64) []complex128 {
	buf := make([]complex128, len(x))
	for i, v := range x {
		buf[i] = complex(v, 0)
	}
	return FFT(buf)
}

// BinFrequency returns the signed frequency in Hz of bin k in an
// n-point transform at the given sample rate. Bins above n/2 alias to
// negative frequencies.
func BinFrequency(k, n int, sampleRate float64) float64 {
	if k > n/2 {
		k -= n
	}
	return float64(k) * sampleRate / float64(n)
}

// radix2 runs an in-place iterative Cooley-Tukey transform. len(x)
// must be a power of two. When inverse is set the twiddle sign flips;
// the caller owns any normalization.
func radix2(x []complex128, inverse bool) {
	n := len(x)
	if n < 2 {
		return
	}

	shift := 64 - uint(bits.TrailingZeros(uint(n)))
	for i := 0; i < n; i++ {
		j := int(bits.Reverse64(uint64(i)) >> shift)
		if j > i {
			x[i], x[j] = x[j], x[i]
		}
	}

	sign := -1.0
	if inverse {
		sign = 1.0
	}
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := sign * 2 * math.Pi / float64(size)
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				w := cmplx.Exp(complex(0, step*float64(k)))
				a := x[start+k]
				b := x[start+k+half] * w
				x[start+k] = a + b
				x[start+k+half] = a - b
			}
		}
	}
}

// bluestein computes an arbitrary-length DFT as a circular convolution
// of chirp-premultiplied input with the conjugate chirp, carried out in
// a power-of-two transform of at least 2n-1 points.
func bluestein(x []complex128) []complex128 {
	n := len(x)
	m := 1
	for m < 2*n-1 {
		m <<= 1
	}

	// k^2 is reduced mod 2n before scaling to keep the chirp phase
	// accurate for long inputs.
	chirp := make([]complex128, n)
	for k := range chirp {
		kk := (int64(k) * int64(k)) % int64(2*n)
		chirp[k] = cmplx.Exp(complex(0, -math.Pi*float64(kk)/float64(n)))
	}

	a := make([]complex128, m)
	for k := 0; k < n; k++ {
		a[k] = x[k] * chirp[k]
	}

	b := make([]complex128, m)
	b[0] = cmplx.Conj(chirp[0])
	for k := 1; k < n; k++ {
		c := cmplx.Conj(chirp[k])
		b[k] = c
		b[m-k] = c
	}

	radix2(a, false)
	radix2(b, false)
	for i := range a {
		a[i] *= b[i]
	}
	radix2(a, true)
	scale := complex(1/float64(m), 0)

	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		out[k] = a[k] * scale * chirp[k]
	}
	return out
}
