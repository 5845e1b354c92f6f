package bitcodec

import (
	"strings"
	"testing"
)

func TestTextToBits_Empty(t *testing.T) {
	bits := TextToBits(nil)
	if bits == nil {
		t.Fatal("expected non-nil empty slice, got nil")
	}
	if len(bits) != 0 {
		t.Errorf("expected 0 bits, got %d", len(bits))
	}
}

func TestTextToBits_MSBFirst(t *testing.T) {
	// 'A' = 0x41 = 01000001
	bits := TextToBits([]byte("A"))
	want := []uint8{0, 1, 0, 0, 0, 0, 0, 1}
	if len(bits) != len(want) {
		t.Fatalf("expected %d bits, got %d", len(want), len(bits))
	}
	for i := range want {
		if bits[i] != want[i] {
			t.Errorf("bit %d: expected %d, got %d", i, want[i], bits[i])
		}
	}
}

func TestBitsToText_RoundTrip(t *testing.T) {
	messages := []string{"A", "HELLO DSSS", "héllo ✓", "  spaces  "}
	for _, msg := range messages {
		bits := TextToBits([]byte(msg))
		got := BitsToText(bits, len(msg))
		if got != msg {
			t.Errorf("round trip of %q: got %q", msg, got)
		}
	}
}

func TestBitsToText_Empty(t *testing.T) {
	if got := BitsToText(nil, 4); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestBitsToText_TruncatesToExpectedBytes(t *testing.T) {
	bits := TextToBits([]byte("ABCD"))
	if got := BitsToText(bits, 2); got != "AB" {
		t.Errorf("expected %q, got %q", "AB", got)
	}
}

func TestBitsToText_PadsPartialByte(t *testing.T) {
	// 'A' plus a dangling 0 bit; the tail pads to 0x00 and is cut by
	// the expected byte count.
	bits := append(TextToBits([]byte("A")), 0)
	if got := BitsToText(bits, 1); got != "A" {
		t.Errorf("expected %q, got %q", "A", got)
	}
}

func TestBitsToText_InvalidUTF8UsesReplacement(t *testing.T) {
	// 0xFF is never valid UTF-8.
	bits := TextToBits([]byte{0xFF})
	got := BitsToText(bits, 1)
	if !strings.Contains(got, "�") {
		t.Errorf("expected replacement character in %q", got)
	}
}
