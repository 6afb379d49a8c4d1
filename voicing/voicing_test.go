package voicing

import (
	"testing"

	"github.com/shhawkins/chord-wheel-writer/model"
	"github.com/shhawkins/chord-wheel-writer/theory"
	"github.com/stretchr/testify/assert"
)

func unvoiced(classes ...model.PitchClass) []model.Pitch {
	notes := make([]model.Pitch, len(classes))
	for i, c := range classes {
		notes[i] = model.Pitch{Class: c, Octave: model.UnvoicedOctave}
	}
	return notes
}

func octaves(notes []model.Pitch) []int {
	res := make([]int, len(notes))
	for i, n := range notes {
		res[i] = n.Octave
	}
	return res
}

func TestRootLandsInBaseOctave(t *testing.T) {
	// C major: C E G, all at or above the root's octave.
	voiced := Voice(unvoiced(0, 4, 7), 4)

	assert := assert.New(t)
	assert.Equal([]int{4, 4, 4}, octaves(voiced))
	assert.Equal(uint8(60), voiced[0].MIDINote())
}

func TestNotesBehindRootArePushedUp(t *testing.T) {
	// G major: G(7) B(11) D(2). D's pitch class is behind G, so it rings
	// above the root instead of a fifth below it.
	voiced := Voice(unvoiced(7, 11, 2), 4)

	assert := assert.New(t)
	assert.Equal([]int{4, 4, 5}, octaves(voiced))
	assert.True(voiced[2].MIDINote() > voiced[0].MIDINote())
}

func TestExtensionsClimbOctaves(t *testing.T) {
	// C13: C E G Bb D A. The 9th goes up one octave, the 13th two.
	notes, err := theory.ChordNotes(0, model.QualityDominant13, theory.SpellSharps)
	voiced := Voice(notes, 4)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal([]int{4, 4, 4, 4, 5, 6}, octaves(voiced))
}

func TestExplicitOctavePassesThrough(t *testing.T) {
	notes := unvoiced(0, 4, 7)
	notes[1].Octave = 2 // manual override below the root

	voiced := Voice(notes, 4)

	assert := assert.New(t)
	assert.Equal(2, voiced[1].Octave)
	assert.Equal(4, voiced[0].Octave)
}

func TestVoicingIsDeterministic(t *testing.T) {
	notes, _ := theory.ChordNotes(9, model.QualityMinor9, theory.SpellSharps)

	first := Voice(notes, 4)
	second := Voice(notes, 4)

	assert.Equal(t, first, second)
}

func TestVoiceDoesNotMutateInput(t *testing.T) {
	notes := unvoiced(0, 4, 7)
	Voice(notes, 4)

	assert.Equal(t, model.UnvoicedOctave, notes[0].Octave)
}

func TestVoiceChordKeepsChordImmutable(t *testing.T) {
	c, _ := theory.BuildChord(0, model.QualityMajor, theory.SpellSharps)
	voiced := VoiceChord(c)

	assert := assert.New(t)
	assert.Equal(model.UnvoicedOctave, c.Notes[0].Octave)
	assert.Equal(4, voiced.Notes[0].Octave)
	assert.Equal(c.Root, voiced.Notes[0].Class)
}
