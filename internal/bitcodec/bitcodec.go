// Package bitcodec converts between UTF-8 text and bit sequences.
// Bits are unpacked MSB-first, matching the over-the-air ordering used
// by the rest of the pipeline.
package bitcodec

import "strings"

// TextToBits unpacks each byte of data MSB-first into a bit sequence.
// Empty input yields an empty (non-nil) slice.
func TextToBits(data []byte) []uint8 {
	bits := make([]uint8, 0, len(data)*8)
	for _, b := range data {
		for shift := 7; shift >= 0; shift-- {
			bits = append(bits, (b>>uint(shift))&1)
		}
	}
	return bits
}

// BitsToText packs bits MSB-first into bytes and decodes them as UTF-8.
// The bit sequence is truncated to expectedBytes*8 bits and zero-padded
// up to a whole byte. Invalid UTF-8 sequences decode to the replacement
// character rather than failing; a corrupted channel must still produce
// a printable best-effort string.
func BitsToText(bits []uint8, expectedBytes int) string {
	if len(bits) == 0 {
		return ""
	}
	if max := expectedBytes * 8; len(bits) > max {
		bits = bits[:max]
	}

	packed := make([]byte, 0, expectedBytes)
	var cur byte
	count := 0
	for _, bit := range bits {
		cur = cur<<1 | (bit & 1)
		count++
		if count == 8 {
			packed = append(packed, cur)
			cur, count = 0, 0
		}
	}
	if count > 0 {
		packed = append(packed, cur<<uint(8-count))
	}
	if len(packed) > expectedBytes {
		packed = packed[:expectedBytes]
	}

	return strings.ToValidUTF8(string(packed), "�")
}
