package stagecache

// Stage names one of the six pipeline taps captured per simulation.
type Stage string

const (
	StageSource     Stage = "source"
	StageSpreader   Stage = "spreader"
	StageModulator  Stage = "modulator"
	StageChannel    Stage = "channel"
	StageCorrelator Stage = "correlator"
	StageDecoder    Stage = "decoder"
)

// Stages lists every tap in pipeline order.
func Stages() []Stage {
	return []Stage{
		StageSource,
		StageSpreader,
		StageModulator,
		StageChannel,
		StageCorrelator,
		StageDecoder,
	}
}

// Valid reports whether s names a known tap.
func (s Stage) Valid() bool {
	switch s {
	case StageSource, StageSpreader, StageModulator, StageChannel, StageCorrelator, StageDecoder:
		return true
	}
	return false
}

// Snapshot is one captured waveform and the rate it was sampled at.
type Snapshot struct {
	Waveform   []float64
	SampleRate float64
}
