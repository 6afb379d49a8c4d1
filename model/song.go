package model

// TimeSignature is a [numerator, denominator] pair, e.g. 4/4 or 6/8.
type TimeSignature struct {
	Numerator   uint8 `json:"numerator" yaml:"numerator"`
	Denominator uint8 `json:"denominator" yaml:"denominator"`
}

// BeatsPerMeasure derives the measure length in quarter-note beats:
// numerator * (4 / denominator). 6/8 yields 3 beats, 4/4 yields 4.
func (ts TimeSignature) BeatsPerMeasure() float64 {
	if ts.Denominator == 0 {
		return 0
	}
	return float64(ts.Numerator) * 4.0 / float64(ts.Denominator)
}

// Beat is a single timeline slot. Chord is nil for a rest.
type Beat struct {
	ID       string  `json:"id" yaml:"id"`
	Chord    *Chord  `json:"chord,omitempty" yaml:"chord,omitempty"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// Measure owns an ordered run of beats whose durations sum to the
// measure's beat count.
type Measure struct {
	Beats []Beat `json:"beats" yaml:"beats"`
}

// Section groups measures and may override the song's time signature.
type Section struct {
	Name     string         `json:"name,omitempty" yaml:"name,omitempty"`
	TimeSig  *TimeSignature `json:"timeSignature,omitempty" yaml:"timeSignature,omitempty"`
	Measures []Measure      `json:"measures" yaml:"measures"`
}

// Song is the root of the consumed data model. The engine only reads
// songs; sections, measures and beats are exclusively owned here.
type Song struct {
	Title    string        `json:"title,omitempty" yaml:"title,omitempty"`
	Tempo    int           `json:"tempo" yaml:"tempo"`
	TimeSig  TimeSignature `json:"timeSignature" yaml:"timeSignature"`
	Sections []Section     `json:"sections" yaml:"sections"`
}

// SectionTimeSig resolves the effective time signature for a section.
func (s *Song) SectionTimeSig(sec *Section) TimeSignature {
	if sec.TimeSig != nil {
		return *sec.TimeSig
	}
	return s.TimeSig
}

// TotalBeats sums every beat duration in the song.
func (s *Song) TotalBeats() float64 {
	var total float64
	for i := range s.Sections {
		for j := range s.Sections[i].Measures {
			for _, b := range s.Sections[i].Measures[j].Beats {
				total += b.Duration
			}
		}
	}
	return total
}

// SecondsPerBeat converts the song tempo to seconds per quarter note.
func (s *Song) SecondsPerBeat() float64 {
	if s.Tempo <= 0 {
		return 0
	}
	return 60.0 / float64(s.Tempo)
}
