package theory

import (
	"github.com/shhawkins/chord-wheel-writer/errs"
	"github.com/shhawkins/chord-wheel-writer/model"
)

// Spelling selects which enharmonic name table to use. Branching on the
// key-signature class here (instead of ad hoc string checks at call
// sites) keeps flat and sharp contexts from drifting apart.
type Spelling uint8

const (
	SpellSharps Spelling = iota
	SpellFlats
)

var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
var flatNames = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// SpellingForKey picks flat names for flat keys, sharp names otherwise.
func SpellingForKey(key model.PitchClass) Spelling {
	if UsesFlats(key) {
		return SpellFlats
	}
	return SpellSharps
}

// NoteName spells a pitch class under the given spelling.
func NoteName(pc model.PitchClass, spell Spelling) string {
	if spell == SpellFlats {
		return flatNames[pc%12]
	}
	return sharpNames[pc%12]
}

// Interval formulas in semitones above the root. Extensions stay above
// 12 so their position in the stack survives into voicing order.
var chordFormulas = map[model.Quality][]int{
	model.QualityMajor:      {0, 4, 7},
	model.QualityMinor:      {0, 3, 7},
	model.QualityDiminished: {0, 3, 6},
	model.QualityAugmented:  {0, 4, 8},
	model.QualityMajor7:     {0, 4, 7, 11},
	model.QualityMinor7:     {0, 3, 7, 10},
	model.QualityDominant7:  {0, 4, 7, 10},
	model.QualityHalfDim7:   {0, 3, 6, 10},
	model.QualityDim7:       {0, 3, 6, 9},
	model.QualitySus2:       {0, 2, 7},
	model.QualitySus4:       {0, 5, 7},
	model.QualitySixth:      {0, 4, 7, 9},
	model.QualityMinor6:     {0, 3, 7, 9},
	model.QualityAdd9:       {0, 4, 7, 14},
	model.QualityMajor9:     {0, 4, 7, 11, 14},
	model.QualityMinor9:     {0, 3, 7, 10, 14},
	model.QualityDominant9:  {0, 4, 7, 10, 14},
	model.QualityDominant11: {0, 4, 7, 10, 14, 17},
	model.QualityDominant13: {0, 4, 7, 10, 14, 21},
}

var qualitySuffixes = map[model.Quality]string{
	model.QualityMajor:      "",
	model.QualityMinor:      "m",
	model.QualityDiminished: "dim",
	model.QualityAugmented:  "aug",
	model.QualityMajor7:     "maj7",
	model.QualityMinor7:     "m7",
	model.QualityDominant7:  "7",
	model.QualityHalfDim7:   "m7b5",
	model.QualityDim7:       "dim7",
	model.QualitySus2:       "sus2",
	model.QualitySus4:       "sus4",
	model.QualitySixth:      "6",
	model.QualityMinor6:     "m6",
	model.QualityAdd9:       "add9",
	model.QualityMajor9:     "maj9",
	model.QualityMinor9:     "m9",
	model.QualityDominant9:  "9",
	model.QualityDominant11: "11",
	model.QualityDominant13: "13",
}

// ChordNotes applies a quality's interval formula to a root and returns
// the stack as unvoiced pitches, root first. An unknown quality falls
// back to a plain major triad and reports errs.ErrUnknownChordQuality
// alongside the fallback notes.
func ChordNotes(root model.PitchClass, quality model.Quality, spell Spelling) ([]model.Pitch, error) {
	formula, ok := chordFormulas[quality]
	var fallbackErr error
	if !ok {
		formula = chordFormulas[model.QualityMajor]
		fallbackErr = errs.ErrUnknownChordQuality
	}

	notes := make([]model.Pitch, len(formula))
	for i, interval := range formula {
		pc := pcAdd(root, interval)
		notes[i] = model.Pitch{
			Class:  pc,
			Octave: model.UnvoicedOctave,
			Name:   NoteName(pc, spell),
		}
	}
	return notes, fallbackErr
}

// Symbol renders a chord symbol like "Abmaj7" or "F#m7b5".
func Symbol(root model.PitchClass, quality model.Quality, spell Spelling) string {
	suffix, ok := qualitySuffixes[quality]
	if !ok {
		suffix = ""
	}
	return NoteName(root, spell) + suffix
}

// BuildChord materializes a full chord value: notes, symbol, spelling.
// The returned chord is usable even when the quality was unknown; the
// error tells the caller a major triad was substituted.
func BuildChord(root model.PitchClass, quality model.Quality, spell Spelling) (model.Chord, error) {
	notes, err := ChordNotes(root, quality, spell)
	q := quality
	if err != nil {
		q = model.QualityMajor
	}
	return model.Chord{
		Root:    root,
		Quality: q,
		Notes:   notes,
		Symbol:  Symbol(root, q, spell),
	}, err
}

// BuildDiatonicChord materializes the chord for one membership entry,
// spelled according to the key it belongs to, numeral attached.
func BuildDiatonicChord(key model.PitchClass, m Membership) (model.Chord, error) {
	c, err := BuildChord(m.Root, m.Quality, SpellingForKey(key))
	c.Numeral = m.Numeral
	return c, err
}
