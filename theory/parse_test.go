package theory

import (
	"testing"

	"github.com/shhawkins/chord-wheel-writer/model"
	"github.com/stretchr/testify/assert"
)

func TestParsePitchClass(t *testing.T) {
	assert := assert.New(t)

	// note letters are case-folded, so "b" is B natural, not an accidental
	cases := map[string]model.PitchClass{
		"C": 0, "c": 0, "C#": 1, "Db": 1, "D": 2,
		"Eb": 3, "E": 4, "F": 5, "F#": 6, "Gb": 6,
		"G": 7, "Ab": 8, "A": 9, "Bb": 10, "B": 11,
		"b": 11, "Cb": 11, "B#": 0, " G ": 7,
	}
	for name, want := range cases {
		got, err := ParsePitchClass(name)
		assert.NoError(err, name)
		assert.Equal(want, got, name)
	}

	for _, bad := range []string{"", "H", "C##", "Cx", "#"} {
		_, err := ParsePitchClass(bad)
		assert.Error(err, bad)
	}
}

func TestParseSymbol(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		symbol  string
		root    model.PitchClass
		quality model.Quality
	}{
		{"C", 0, model.QualityMajor},
		{"Am", 9, model.QualityMinor},
		{"G7", 7, model.QualityDominant7},
		{"Abmaj7", 8, model.QualityMajor7},
		{"F#m7b5", 6, model.QualityHalfDim7},
		{"Bdim", 11, model.QualityDiminished},
		{"Ddim7", 2, model.QualityDim7},
		{"Esus4", 4, model.QualitySus4},
		{"Bb", 10, model.QualityMajor},
		{"C6", 0, model.QualitySixth},
		{"Dm6", 2, model.QualityMinor6},
		{"Gadd9", 7, model.QualityAdd9},
		{"E13", 4, model.QualityDominant13},
	}
	for _, c := range cases {
		root, quality, err := ParseSymbol(c.symbol)
		assert.NoError(err, c.symbol)
		assert.Equal(c.root, root, c.symbol)
		assert.Equal(c.quality, quality, c.symbol)
	}

	for _, bad := range []string{"", "Hm", "Cmaj13", "C minor"} {
		_, _, err := ParseSymbol(bad)
		assert.Error(err, bad)
	}
}

func TestParseSymbolRoundTripsRenderedSymbols(t *testing.T) {
	assert := assert.New(t)

	for pc := 0; pc < 12; pc++ {
		root := model.PitchClass(pc)
		spell := SpellingForKey(root)
		for quality := range chordFormulas {
			symbol := Symbol(root, quality, spell)
			gotRoot, gotQuality, err := ParseSymbol(symbol)
			assert.NoError(err, symbol)
			assert.Equal(root, gotRoot, symbol)
			assert.Equal(quality, gotQuality, symbol)
		}
	}
}
