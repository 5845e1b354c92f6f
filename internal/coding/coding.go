// Package coding implements the forward-error-correcting schemes the
// link can apply to payload bits before spreading: plain NRZ, Manchester,
// 3x repetition with majority vote, and single-error-correcting
// Hamming(7,4).
//
// Each scheme is a pure encode/decode pair selected at a single dispatch
// point. Encode returns the coded bits plus the metadata decode needs to
// reverse it (payload length, repeat factor, padding).
package coding

import (
	"errors"
	"fmt"
)

// Scheme identifies a forward-error-correcting scheme.
type Scheme string

const (
	NRZ        Scheme = "nrz"
	Manchester Scheme = "manchester"
	Repeat3    Scheme = "rep3"
	Hamming74  Scheme = "hamming74"
)

// Schemes lists every supported scheme, in presentation order.
func Schemes() []Scheme {
	return []Scheme{NRZ, Manchester, Repeat3, Hamming74}
}

// Valid reports whether s names a supported scheme.
func (s Scheme) Valid() bool {
	switch s {
	case NRZ, Manchester, Repeat3, Hamming74:
		return true
	}
	return false
}

// ErrUnsupportedScheme is returned when a scheme outside the supported
// set reaches encode or decode.
var ErrUnsupportedScheme = errors.New("unsupported coding scheme")

// Metadata carries the per-run decode parameters produced by Encode.
type Metadata struct {
	// PayloadBits is the bit count of the original payload, before
	// coding. Decode truncates its output to this length.
	PayloadBits int

	// Repeat is the repetition factor (Repeat3 only).
	Repeat int

	// Padding is the number of zero bits appended to fill the last
	// 4-bit data block (Hamming74 only).
	Padding int
}

// Encode applies the scheme to bits and returns the coded sequence plus
// the metadata required to decode it.
func Encode(bits []uint8, scheme Scheme) ([]uint8, Metadata, error) {
	meta := Metadata{PayloadBits: len(bits)}

	switch scheme {
	case NRZ:
		out := make([]uint8, len(bits))
		copy(out, bits)
		return out, meta, nil

	case Manchester:
		out := make([]uint8, 0, len(bits)*2)
		for _, b := range bits {
			if b != 0 {
				out = append(out, 1, 0)
			} else {
				out = append(out, 0, 1)
			}
		}
		return out, meta, nil

	case Repeat3:
		meta.Repeat = 3
		out := make([]uint8, 0, len(bits)*3)
		for _, b := range bits {
			out = append(out, b, b, b)
		}
		return out, meta, nil

	case Hamming74:
		padding := (4 - len(bits)%4) % 4
		meta.Padding = padding
		padded := make([]uint8, len(bits)+padding)
		copy(padded, bits)
		out := make([]uint8, 0, len(padded)/4*7)
		for i := 0; i+4 <= len(padded); i += 4 {
			d1, d2, d3, d4 := padded[i], padded[i+1], padded[i+2], padded[i+3]
			p1 := d1 ^ d2 ^ d4
			p2 := d1 ^ d3 ^ d4
			p3 := d2 ^ d3 ^ d4
			out = append(out, p1, p2, d1, p3, d2, d3, d4)
		}
		return out, meta, nil
	}

	return nil, Metadata{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
}

// Decode reverses Encode using the metadata from the matching encode
// call. Incomplete trailing groups are discarded; the result is
// truncated to the original payload length. Hamming74 corrects a single
// flipped bit per 7-bit codeword via its syndrome.
func Decode(bits []uint8, scheme Scheme, meta Metadata) ([]uint8, error) {
	switch scheme {
	case NRZ:
		return truncate(bits, meta.PayloadBits), nil

	case Manchester:
		out := make([]uint8, 0, len(bits)/2)
		for i := 0; i+2 <= len(bits); i += 2 {
			if bits[i] > bits[i+1] {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
		return truncate(out, meta.PayloadBits), nil

	case Repeat3:
		repeat := meta.Repeat
		if repeat <= 0 {
			repeat = 3
		}
		threshold := (repeat + 1) / 2
		out := make([]uint8, 0, len(bits)/repeat)
		for i := 0; i+repeat <= len(bits); i += repeat {
			votes := 0
			for _, b := range bits[i : i+repeat] {
				votes += int(b)
			}
			if votes >= threshold {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
		return truncate(out, meta.PayloadBits), nil

	case Hamming74:
		out := make([]uint8, 0, len(bits)/7*4)
		for i := 0; i+7 <= len(bits); i += 7 {
			var block [7]uint8
			copy(block[:], bits[i:i+7])
			s1 := block[0] ^ block[2] ^ block[4] ^ block[6]
			s2 := block[1] ^ block[2] ^ block[5] ^ block[6]
			s3 := block[3] ^ block[4] ^ block[5] ^ block[6]
			syndrome := int(s1) + int(s2)<<1 + int(s3)<<2
			if syndrome != 0 {
				block[syndrome-1] ^= 1
			}
			out = append(out, block[2], block[4], block[5], block[6])
		}
		if meta.Padding > 0 && meta.Padding <= len(out) {
			out = out[:len(out)-meta.Padding]
		}
		return truncate(out, meta.PayloadBits), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
}

func truncate(bits []uint8, limit int) []uint8 {
	if limit >= 0 && len(bits) > limit {
		return bits[:limit]
	}
	return bits
}
