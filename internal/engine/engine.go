// Package engine runs the end-to-end DSSS link: payload bits are coded,
// spread with the transmit secret's chip sequence, mixed onto a carrier,
// pushed through a noisy channel, and recovered with the receive
// secret's independently regenerated chips. The six pipeline taps of
// every run are captured and cached for later spectrum queries.
package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/signalworks/dsssim/internal/bitcodec"
	"github.com/signalworks/dsssim/internal/channel"
	"github.com/signalworks/dsssim/internal/coding"
	"github.com/signalworks/dsssim/internal/prnseq"
	"github.com/signalworks/dsssim/internal/spread"
	"github.com/signalworks/dsssim/internal/stagecache"
)

// Sentinel errors the serving layer maps to HTTP status codes.
var (
	// ErrInvalidArgument marks caller mistakes: an unsupported coding
	// scheme or a non-positive averaging window.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks queries for evicted or never-issued simulation
	// ids (or, under cache corruption, a missing stage).
	ErrNotFound = errors.New("not found")
)

// Config holds tunable engine parameters.
type Config struct {
	// CacheCapacity bounds how many simulations keep their stage
	// snapshots queryable. Default: stagecache.DefaultCapacity.
	CacheCapacity int

	// NoiseSeed, when non-nil, makes channel noise reproducible.
	// Left nil, noise differs on every run, matching a real channel.
	NoiseSeed *uint64
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{CacheCapacity: stagecache.DefaultCapacity}
}

// Params describes one simulation run. The serving layer validates
// field ranges; the engine assumes structurally sane inputs and only
// rejects what it can detect itself (an unknown scheme).
type Params struct {
	Message        string
	TxSecret       string
	RxSecret       string
	ChipRate       float64
	CarrierFreq    float64
	NoisePower     float64
	NoiseBandwidth float64
	Oversampling   int
	Scheme         coding.Scheme
}

// Result is the outcome of one simulation run.
type Result struct {
	SimulationID   string
	DecodedMessage string
	Mismatch       bool
	Stages         map[stagecache.Stage]stagecache.Snapshot
}

// Engine owns the stage cache and the channel noise source. Construct
// one explicitly and hand it to the serving layer; there is no
// package-level instance.
type Engine struct {
	cache   *stagecache.Cache
	channel *channel.Model
}

// New creates an engine from the given configuration.
func New(cfg Config) *Engine {
	model := channel.NewModel()
	if cfg.NoiseSeed != nil {
		model = channel.NewSeededModel(*cfg.NoiseSeed)
	}
	return &Engine{
		cache:   stagecache.New(cfg.CacheCapacity),
		channel: model,
	}
}

// Simulate runs the full transmit/channel/receive pipeline and caches
// all six stage snapshots under a fresh simulation id. The cache is
// only touched after every stage has been computed, so a failed run
// leaves no partial state behind.
func (e *Engine) Simulate(p Params) (*Result, error) {
	messageBytes := []byte(p.Message)
	payloadBits := bitcodec.TextToBits(messageBytes)
	chipsPerBit := prnseq.ChipsPerBit(p.TxSecret)
	sampleRate := p.ChipRate * float64(p.Oversampling)

	encodedBits, meta, err := coding.Encode(payloadBits, p.Scheme)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	// Transmit side.
	txChips := prnseq.ChipSequence(p.TxSecret, chipsPerBit)
	spreadChips := spread.Bits(encodedBits, txChips, chipsPerBit)
	chipWaveform := spread.Repeat(spreadChips, p.Oversampling)
	sourceWaveform := buildSourceWaveform(encodedBits, chipsPerBit*p.Oversampling)

	carrier := channel.Carrier(len(chipWaveform), p.CarrierFreq, sampleRate)
	txSignal := channel.Mix(chipWaveform, carrier)
	channelOutput := e.channel.AddBandLimitedNoise(txSignal, p.NoisePower, p.NoiseBandwidth, sampleRate)

	// Receive side: same carrier, independently regenerated chips.
	rxDemod := channel.Mix(channelOutput, carrier)
	rxChips := prnseq.ChipSequence(p.RxSecret, chipsPerBit)
	recoveredBits, err := spread.Despread(rxDemod, rxChips, chipsPerBit, p.Oversampling, len(encodedBits))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	decodedBits, err := coding.Decode(recoveredBits, p.Scheme, meta)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	decoded := bitcodec.BitsToText(decodedBits, len(messageBytes))
	mismatch := decoded != p.Message

	decoderSymbols := decodedBits
	if len(decoderSymbols) == 0 {
		decoderSymbols = recoveredBits
	}
	decoderWaveform := spread.Repeat(spread.NRZ(decoderSymbols), chipsPerBit*p.Oversampling)

	stages := map[stagecache.Stage]stagecache.Snapshot{
		stagecache.StageSource:     {Waveform: sourceWaveform, SampleRate: sampleRate},
		stagecache.StageSpreader:   {Waveform: chipWaveform, SampleRate: sampleRate},
		stagecache.StageModulator:  {Waveform: txSignal, SampleRate: sampleRate},
		stagecache.StageChannel:    {Waveform: channelOutput, SampleRate: sampleRate},
		stagecache.StageCorrelator: {Waveform: rxDemod, SampleRate: sampleRate},
		stagecache.StageDecoder:    {Waveform: decoderWaveform, SampleRate: sampleRate},
	}

	id := newSimulationID()
	e.cache.Store(id, stages)

	return &Result{
		SimulationID:   id,
		DecodedMessage: decoded,
		Mismatch:       mismatch,
		Stages:         stages,
	}, nil
}

// GetStage returns the cached snapshot for one tap of a previous run.
func (e *Engine) GetStage(simulationID string, stage stagecache.Stage) (stagecache.Snapshot, error) {
	snapshot, err := e.cache.Get(simulationID, stage)
	if err != nil {
		return stagecache.Snapshot{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return snapshot, nil
}

// buildSourceWaveform renders the coded bits as an NRZ waveform on the
// same time base as the later stages. Zero coded bits still yield one
// placeholder symbol so the tap is plottable.
func buildSourceWaveform(bits []uint8, repeats int) []float64 {
	if len(bits) == 0 {
		n := repeats
		if n < 1 {
			n = 1
		}
		return make([]float64, n)
	}
	return spread.Repeat(spread.NRZ(bits), repeats)
}

// newSimulationID mints an opaque unique id (hex, no separators).
func newSimulationID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:])
}
