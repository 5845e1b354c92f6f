// Package spread implements the chip-domain half of the link: expanding
// coded bits into spread chip sequences on the transmit side, and the
// averaging/correlation steps that collapse them back into soft bit
// metrics on the receive side.
package spread

import (
	"errors"
	"fmt"
)

// ErrWindowSize is returned when an averaging window is not positive.
var ErrWindowSize = errors.New("window size must be > 0")

// NRZ maps 0/1 bits to -1/+1 symbols.
func NRZ(bits []uint8) []float64 {
	symbols := make([]float64, len(bits))
	for i, b := range bits {
		symbols[i] = 2.0*float64(b) - 1.0
	}
	return symbols
}

// Bits spreads coded bits with the transmit PRN: each bit becomes
// chipsPerBit chips of its NRZ symbol multiplied elementwise by the PRN
// tiled across the whole sequence. Empty input yields a zero vector of
// length chipsPerBit so downstream stages keep a non-empty waveform.
func Bits(bits []uint8, chips []float64, chipsPerBit int) []float64 {
	if len(bits) == 0 {
		return make([]float64, chipsPerBit)
	}
	out := make([]float64, 0, len(bits)*chipsPerBit)
	for _, b := range bits {
		symbol := 2.0*float64(b) - 1.0
		for c := 0; c < chipsPerBit; c++ {
			out = append(out, symbol*chips[c])
		}
	}
	return out
}

// Repeat sample-and-holds each value factor times. With chip input this
// is the oversampling step: the output sample rate is the chip rate
// multiplied by factor.
func Repeat(values []float64, factor int) []float64 {
	if factor <= 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, 0, len(values)*factor)
	for _, v := range values {
		for i := 0; i < factor; i++ {
			out = append(out, v)
		}
	}
	return out
}

// ChunkMean averages consecutive non-overlapping windows of the given
// size. A trailing partial window is dropped.
func ChunkMean(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrWindowSize, window)
	}
	n := len(values) / window
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for _, v := range values[i*window : (i+1)*window] {
			sum += v
		}
		out[i] = sum / float64(window)
	}
	return out, nil
}

// TilePRN repeats the PRN end to end count times.
func TilePRN(chips []float64, count int) []float64 {
	if count < 1 {
		count = 1
	}
	out := make([]float64, 0, len(chips)*count)
	for i := 0; i < count; i++ {
		out = append(out, chips...)
	}
	return out
}

// Despread collapses a demodulated waveform back to hard bit decisions
// using the receiver's own regenerated PRN. Oversampling is removed by
// chunk-averaging, the PRN is correlated in, and a second chunk-average
// over chipsPerBit yields one soft metric per bit; a bit is 1 iff its
// metric is positive.
func Despread(demodulated []float64, chips []float64, chipsPerBit, oversampling, encodedBits int) ([]uint8, error) {
	rxChips, err := ChunkMean(demodulated, oversampling)
	if err != nil {
		return nil, err
	}

	tiled := TilePRN(chips, encodedBits)
	n := len(rxChips)
	if len(tiled) < n {
		n = len(tiled)
	}
	correlated := make([]float64, n)
	for i := 0; i < n; i++ {
		correlated[i] = rxChips[i] * tiled[i]
	}

	metrics, err := ChunkMean(correlated, chipsPerBit)
	if err != nil {
		return nil, err
	}

	bits := make([]uint8, len(metrics))
	for i, m := range metrics {
		if m > 0 {
			bits[i] = 1
		}
	}
	return bits, nil
}
