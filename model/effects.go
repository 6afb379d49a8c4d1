package model

// EffectSettings is the flat mix parameter record read on each render
// pass. All mixes and depths are 0..1; a value of 0 bypasses the stage
// exactly. PitchShift is in semitones, ToneTilt is -1 (dark) .. 1
// (bright), Gain is a linear multiplier with 1 meaning unity.
type EffectSettings struct {
	Gain         float64 `json:"gain" yaml:"gain"`
	ToneTilt     float64 `json:"toneTilt" yaml:"toneTilt"`
	VibratoDepth float64 `json:"vibratoDepth" yaml:"vibratoDepth"`
	TremoloDepth float64 `json:"tremoloDepth" yaml:"tremoloDepth"`
	ChorusMix    float64 `json:"chorusMix" yaml:"chorusMix"`
	PhaserMix    float64 `json:"phaserMix" yaml:"phaserMix"`
	FilterMix    float64 `json:"filterMix" yaml:"filterMix"`
	DelayMix     float64 `json:"delayMix" yaml:"delayMix"`
	ReverbMix    float64 `json:"reverbMix" yaml:"reverbMix"`
	Distortion   float64 `json:"distortion" yaml:"distortion"`
	PitchShift   float64 `json:"pitchShift" yaml:"pitchShift"`
}

// DefaultEffectSettings is a clean patch: unity gain, everything else off.
func DefaultEffectSettings() EffectSettings {
	return EffectSettings{Gain: 1}
}
