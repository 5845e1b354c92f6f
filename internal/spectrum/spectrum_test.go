package spectrum

import (
	"math"
	"testing"
)

func TestCompute_EmptyWaveform(t *testing.T) {
	a := Compute(nil, 8000)
	if len(a.Frequencies) != 1 || len(a.Magnitudes) != 1 {
		t.Fatalf("expected single point, got %d/%d", len(a.Frequencies), len(a.Magnitudes))
	}
	if a.Frequencies[0] != 0 || a.Magnitudes[0] != 0 {
		t.Errorf("expected zero point, got f=%v m=%v", a.Frequencies[0], a.Magnitudes[0])
	}
}

func TestCompute_ToneLandsInItsBin(t *testing.T) {
	const (
		n    = 128
		sr   = 12800.0
		bin  = 8
		tone = bin * sr / n // 800 Hz
	)
	waveform := make([]float64, n)
	for i := range waveform {
		waveform[i] = math.Cos(2 * math.Pi * tone * float64(i) / sr)
	}

	a := Compute(waveform, sr)
	if len(a.Frequencies) != n/2+1 {
		t.Fatalf("expected %d bins, got %d", n/2+1, len(a.Frequencies))
	}
	if math.Abs(a.Frequencies[bin]-tone) > 1e-9 {
		t.Errorf("bin %d frequency: expected %v, got %v", bin, tone, a.Frequencies[bin])
	}

	// A unit cosine carries magnitude 1/2 in its one-sided bin.
	if math.Abs(a.Magnitudes[bin]-0.5) > 1e-6 {
		t.Errorf("bin %d magnitude: expected 0.5, got %v", bin, a.Magnitudes[bin])
	}
	for k, m := range a.Magnitudes {
		if k != bin && m > 1e-6 {
			t.Errorf("bin %d: expected ~0 magnitude, got %v", k, m)
		}
	}
}

func TestCompute_OddLength(t *testing.T) {
	a := Compute(make([]float64, 101), 1000)
	if len(a.Frequencies) != 51 {
		t.Errorf("expected 51 bins for 101 samples, got %d", len(a.Frequencies))
	}
	// Bin spacing is sampleRate/N.
	if math.Abs(a.Frequencies[1]-1000.0/101.0) > 1e-9 {
		t.Errorf("unexpected bin spacing: %v", a.Frequencies[1])
	}
}

func TestDecimate_ShortInputUnchanged(t *testing.T) {
	in := []float64{1, 2, 3}
	out := Decimate(in, 8)
	if len(out) != 3 {
		t.Fatalf("expected 3 points, got %d", len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("point %d: expected %v, got %v", i, in[i], out[i])
		}
	}
}

func TestDecimate_Strides(t *testing.T) {
	in := make([]float64, 10)
	for i := range in {
		in[i] = float64(i)
	}
	out := Decimate(in, 4)
	// stride = ceil(10/4) = 3 -> indices 0, 3, 6, 9
	want := []float64{0, 3, 6, 9}
	if len(out) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("point %d: expected %v, got %v", i, want[i], out[i])
		}
	}
}

func TestDecimate_NeverExceedsBudget(t *testing.T) {
	for _, n := range []int{1, 7, 100, 2048, 4097} {
		out := Decimate(make([]float64, n), 100)
		if len(out) > 100 {
			t.Errorf("n=%d: decimated to %d points, budget 100", n, len(out))
		}
	}
}
