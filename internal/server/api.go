package server

import (
	"fmt"
	"unicode/utf8"

	"github.com/signalworks/dsssim/internal/coding"
	"github.com/signalworks/dsssim/internal/config"
	"github.com/signalworks/dsssim/internal/engine"
	"github.com/signalworks/dsssim/internal/spectrum"
	"github.com/signalworks/dsssim/internal/stagecache"
)

// SimulationRequest is the POST /api/simulate body. Optional fields
// are pointers so an absent field takes the configured default while
// an explicit zero still reaches validation and is rejected there.
type SimulationRequest struct {
	Message        string   `json:"message"`
	TxSecret       string   `json:"tx_secret"`
	RxSecret       string   `json:"rx_secret"`
	ChipRate       *float64 `json:"chip_rate"`
	CarrierFreq    *float64 `json:"carrier_freq"`
	NoisePower     float64  `json:"noise_power"`
	NoiseBandwidth *float64 `json:"noise_bandwidth"`
	Oversampling   *int     `json:"oversampling"`
	CodingScheme   *string  `json:"coding_scheme"`
}

// applyDefaults fills absent optional fields from the configured
// simulation defaults. Every pointer field is non-nil afterwards.
func (r *SimulationRequest) applyDefaults(d config.SimulationDefaults) {
	if r.ChipRate == nil {
		r.ChipRate = &d.ChipRate
	}
	if r.CarrierFreq == nil {
		r.CarrierFreq = &d.CarrierFreq
	}
	if r.NoiseBandwidth == nil {
		r.NoiseBandwidth = &d.NoiseBandwidth
	}
	if r.Oversampling == nil {
		r.Oversampling = &d.Oversampling
	}
	if r.CodingScheme == nil {
		r.CodingScheme = &d.CodingScheme
	}
}

// validate enforces the request field bounds the engine assumes.
// Call applyDefaults first; validate assumes all pointers are set.
func (r *SimulationRequest) validate() error {
	if n := utf8.RuneCountInString(r.Message); n < 1 || n > 256 {
		return fmt.Errorf("message must be 1..256 characters, got %d", n)
	}
	if n := len(r.TxSecret); n < 4 || n > 64 {
		return fmt.Errorf("tx_secret must be 4..64 characters, got %d", n)
	}
	if n := len(r.RxSecret); n < 4 || n > 64 {
		return fmt.Errorf("rx_secret must be 4..64 characters, got %d", n)
	}
	if *r.ChipRate <= 0 {
		return fmt.Errorf("chip_rate must be > 0, got %v", *r.ChipRate)
	}
	if *r.CarrierFreq <= 0 {
		return fmt.Errorf("carrier_freq must be > 0, got %v", *r.CarrierFreq)
	}
	if r.NoisePower < 0 || r.NoisePower > 100 {
		return fmt.Errorf("noise_power must be in 0..100, got %v", r.NoisePower)
	}
	if *r.NoiseBandwidth <= 0 {
		return fmt.Errorf("noise_bandwidth must be > 0, got %v", *r.NoiseBandwidth)
	}
	if *r.Oversampling < 1 || *r.Oversampling > 64 {
		return fmt.Errorf("oversampling must be in 1..64, got %d", *r.Oversampling)
	}
	if !coding.Scheme(*r.CodingScheme).Valid() {
		return fmt.Errorf("unknown coding_scheme %q", *r.CodingScheme)
	}
	return nil
}

// params converts a validated request into engine parameters.
func (r *SimulationRequest) params() engine.Params {
	return engine.Params{
		Message:        r.Message,
		TxSecret:       r.TxSecret,
		RxSecret:       r.RxSecret,
		ChipRate:       *r.ChipRate,
		CarrierFreq:    *r.CarrierFreq,
		NoisePower:     r.NoisePower,
		NoiseBandwidth: *r.NoiseBandwidth,
		Oversampling:   *r.Oversampling,
		Scheme:         coding.Scheme(*r.CodingScheme),
	}
}

// WaveformSnapshot is a decimated time-domain view of one stage.
type WaveformSnapshot struct {
	Stage      string    `json:"stage"`
	Samples    []float64 `json:"samples"`
	SampleRate float64   `json:"sample_rate"`
}

// SpectrumSnapshot is a decimated one-sided magnitude spectrum of one
// stage.
type SpectrumSnapshot struct {
	Stage       string    `json:"stage"`
	Frequencies []float64 `json:"frequencies"`
	Magnitudes  []float64 `json:"magnitudes"`
	SampleRate  float64   `json:"sample_rate"`
}

// SimulationResponse is the POST /api/simulate reply.
type SimulationResponse struct {
	SimulationID    string             `json:"simulation_id"`
	DecodedMessage  string             `json:"decoded_message"`
	Status          string             `json:"status"`
	Mismatch        bool               `json:"mismatch"`
	CodingScheme    string             `json:"coding_scheme"`
	NoiseBandwidth  float64            `json:"noise_bandwidth"`
	AvailableStages []string           `json:"available_stages"`
	InlineSpectra   []SpectrumSnapshot `json:"inline_spectra,omitempty"`
}

// StageDetailResponse is the GET /api/spectra/{stage} reply.
type StageDetailResponse struct {
	Stage    string           `json:"stage"`
	Waveform WaveformSnapshot `json:"waveform"`
	Spectrum SpectrumSnapshot `json:"spectrum"`
}

// ErrorResponse carries a human-readable failure detail.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// toWaveform builds the transport view of a snapshot, decimated to at
// most maxPoints samples.
func toWaveform(stage stagecache.Stage, snap stagecache.Snapshot, maxPoints int) WaveformSnapshot {
	return WaveformSnapshot{
		Stage:      string(stage),
		Samples:    spectrum.Decimate(snap.Waveform, maxPoints),
		SampleRate: snap.SampleRate,
	}
}

// toSpectrum analyzes a snapshot and decimates both axes to at most
// maxPoints bins.
func toSpectrum(stage stagecache.Stage, snap stagecache.Snapshot, maxPoints int) SpectrumSnapshot {
	a := spectrum.Compute(snap.Waveform, snap.SampleRate)
	return SpectrumSnapshot{
		Stage:       string(stage),
		Frequencies: spectrum.Decimate(a.Frequencies, maxPoints),
		Magnitudes:  spectrum.Decimate(a.Magnitudes, maxPoints),
		SampleRate:  snap.SampleRate,
	}
}
