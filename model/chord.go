package model

import (
	"github.com/shhawkins/chord-wheel-writer/util"
)

// PitchClass is a chromatic pitch class, 0 = C through 11 = B.
type PitchClass uint8

// Pitch is a pitch class with an assigned octave and a spelled name.
// Octave UnvoicedOctave means "not yet voiced"; the voicing engine
// fills it in.
type Pitch struct {
	Class  PitchClass `json:"class" yaml:"class"`
	Octave int        `json:"octave" yaml:"octave"`
	Name   string     `json:"name" yaml:"name"`
}

// UnvoicedOctave marks a pitch whose octave has not been assigned.
const UnvoicedOctave = -128

// MIDINote converts the pitch to a MIDI note number (C4 = 60).
func (p Pitch) MIDINote() uint8 {
	n := (p.Octave+1)*12 + int(p.Class)
	return uint8(util.Clamp(n, 0, 127))
}

// Voiced reports whether the pitch carries an explicit octave.
func (p Pitch) Voiced() bool {
	return p.Octave != UnvoicedOctave
}

// Quality identifies a chord formula.
type Quality string

const (
	QualityMajor      Quality = "major"
	QualityMinor      Quality = "minor"
	QualityDiminished Quality = "diminished"
	QualityAugmented  Quality = "augmented"
	QualityMajor7     Quality = "major7"
	QualityMinor7     Quality = "minor7"
	QualityDominant7  Quality = "dominant7"
	QualityHalfDim7   Quality = "halfDiminished7"
	QualityDim7       Quality = "diminished7"
	QualitySus2       Quality = "sus2"
	QualitySus4       Quality = "sus4"
	QualitySixth      Quality = "sixth"
	QualityMinor6     Quality = "minor6"
	QualityAdd9       Quality = "add9"
	QualityMajor9     Quality = "major9"
	QualityMinor9     Quality = "minor9"
	QualityDominant9  Quality = "dominant9"
	QualityDominant11 Quality = "dominant11"
	QualityDominant13 Quality = "dominant13"
)

// Chord is an immutable chord value. Variant changes (quality swaps,
// revoicings) produce a new Chord rather than mutating in place.
// When Quality is set, Notes is non-empty and Notes[0].Class == Root.
type Chord struct {
	Root    PitchClass `json:"root" yaml:"root"`
	Quality Quality    `json:"quality" yaml:"quality"`
	Notes   []Pitch    `json:"notes" yaml:"notes"`
	Numeral string     `json:"numeral,omitempty" yaml:"numeral,omitempty"`
	Symbol  string     `json:"symbol" yaml:"symbol"`
}

// WithNotes returns a copy of the chord carrying the given note sequence.
func (c Chord) WithNotes(notes []Pitch) Chord {
	next := c
	next.Notes = make([]Pitch, len(notes))
	copy(next.Notes, notes)
	return next
}
