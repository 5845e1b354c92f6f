package spread

import (
	"errors"
	"testing"

	"github.com/signalworks/dsssim/internal/prnseq"
)

func TestNRZ(t *testing.T) {
	symbols := NRZ([]uint8{0, 1, 1, 0})
	want := []float64{-1, 1, 1, -1}
	for i := range want {
		if symbols[i] != want[i] {
			t.Errorf("symbol %d: expected %v, got %v", i, want[i], symbols[i])
		}
	}
}

func TestBits_EmptyYieldsZeroVector(t *testing.T) {
	chips := prnseq.ChipSequence("alpha", 8)
	out := Bits(nil, chips, 8)
	if len(out) != 8 {
		t.Fatalf("expected length 8, got %d", len(out))
	}
	for i, v := range out {
		if v != 0 {
			t.Errorf("sample %d: expected 0, got %v", i, v)
		}
	}
}

func TestBits_SpreadsWithPRN(t *testing.T) {
	chips := []float64{1, -1, -1, 1}
	out := Bits([]uint8{1, 0}, chips, 4)
	want := []float64{1, -1, -1, 1, -1, 1, 1, -1}
	if len(out) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], out[i])
		}
	}
}

func TestRepeat(t *testing.T) {
	out := Repeat([]float64{1, -1}, 3)
	want := []float64{1, 1, 1, -1, -1, -1}
	if len(out) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], out[i])
		}
	}
}

func TestChunkMean(t *testing.T) {
	out, err := ChunkMean([]float64{1, 3, 2, 4, 9}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Trailing partial window (9) is dropped.
	want := []float64{2, 3}
	if len(out) != len(want) {
		t.Fatalf("expected %d means, got %d", len(want), len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("mean %d: expected %v, got %v", i, want[i], out[i])
		}
	}
}

func TestChunkMean_RejectsBadWindow(t *testing.T) {
	for _, window := range []int{0, -1} {
		if _, err := ChunkMean([]float64{1, 2}, window); !errors.Is(err, ErrWindowSize) {
			t.Errorf("window %d: expected ErrWindowSize, got %v", window, err)
		}
	}
}

func TestDespread_RecoversBits(t *testing.T) {
	const (
		chipsPerBit  = 20
		oversampling = 4
	)
	bits := []uint8{1, 0, 1, 1, 0, 0, 1}
	chips := prnseq.ChipSequence("alpha", chipsPerBit)

	tx := Repeat(Bits(bits, chips, chipsPerBit), oversampling)

	got, err := Despread(tx, chips, chipsPerBit, oversampling, len(bits))
	if err != nil {
		t.Fatalf("Despread: %v", err)
	}
	if len(got) != len(bits) {
		t.Fatalf("expected %d bits, got %d", len(bits), len(got))
	}
	for i := range bits {
		if got[i] != bits[i] {
			t.Errorf("bit %d: expected %d, got %d", i, bits[i], got[i])
		}
	}
}

func TestDespread_WrongPRNScramblesBits(t *testing.T) {
	const (
		chipsPerBit  = 48
		oversampling = 4
	)
	bits := []uint8{1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 1, 0, 0, 0, 1, 1}
	txChips := prnseq.ChipSequence("alpha", chipsPerBit)
	// An inverted PRN negates every soft metric, so each decision flips.
	rxChips := make([]float64, chipsPerBit)
	for i, c := range txChips {
		rxChips[i] = -c
	}

	tx := Repeat(Bits(bits, txChips, chipsPerBit), oversampling)

	got, err := Despread(tx, rxChips, chipsPerBit, oversampling, len(bits))
	if err != nil {
		t.Fatalf("Despread: %v", err)
	}
	same := true
	for i := range bits {
		if got[i] != bits[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("mismatched PRN still recovered every bit")
	}
}
