package songfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shhawkins/chord-wheel-writer/model"
	"github.com/stretchr/testify/assert"
)

const sampleDoc = `title: Night Drive
tempo: 96
time_signature:
  numerator: 4
  denominator: 4
instrument: default
effects:
  gain: 1
  reverbMix: 0.25
sections:
  - name: verse
    measures:
      - beats:
          - chord: Am
          - chord: F
          - chord: C
          - chord: G7
      - beats:
          - chord: Am
          - {}
          - chord: Esus4
            duration: 2
  - name: bridge
    time_signature:
      numerator: 3
      denominator: 4
    measures:
      - beats:
          - chord: F#m7b5
          - chord: Bb
          - chord: Ebmaj7
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadResolvesSymbols(t *testing.T) {
	song, effects, instrument, err := Load(writeTemp(t, sampleDoc))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal("Night Drive", song.Title)
	assert.Equal(96, song.Tempo)
	assert.Equal("default", instrument)
	assert.Equal(0.25, effects.ReverbMix)

	first := song.Sections[0].Measures[0].Beats[0]
	assert.Equal(model.PitchClass(9), first.Chord.Root)
	assert.Equal(model.QualityMinor, first.Chord.Quality)
	assert.Equal("Am", first.Chord.Symbol)
	assert.Len(first.Chord.Notes, 3)
	assert.NotEmpty(first.ID)

	halfDim := song.Sections[1].Measures[0].Beats[0]
	assert.Equal(model.QualityHalfDim7, halfDim.Chord.Quality)
	assert.Equal(model.PitchClass(6), halfDim.Chord.Root)
}

func TestLoadRestAndDurationDefaults(t *testing.T) {
	song, _, _, err := Load(writeTemp(t, sampleDoc))
	assert.NoError(t, err)

	rest := song.Sections[0].Measures[1].Beats[1]
	assert.Nil(t, rest.Chord)
	assert.Equal(t, 1.0, rest.Duration)
	assert.NotEmpty(t, rest.ID)

	held := song.Sections[0].Measures[1].Beats[2]
	assert.Equal(t, 2.0, held.Duration)
}

func TestLoadSectionTimeSigOverride(t *testing.T) {
	song, _, _, err := Load(writeTemp(t, sampleDoc))
	assert.NoError(t, err)

	bridge := song.Sections[1]
	assert.NotNil(t, bridge.TimeSig)
	assert.Equal(t, uint8(3), bridge.TimeSig.Numerator)
	assert.Equal(t, model.TimeSignature{Numerator: 3, Denominator: 4},
		song.SectionTimeSig(&bridge))
}

func TestLoadRejectsBadSymbolWithLocation(t *testing.T) {
	doc := `tempo: 120
time_signature: {numerator: 4, denominator: 4}
sections:
  - name: verse
    measures:
      - beats:
          - chord: C
          - chord: Hm
`
	_, _, _, err := Load(writeTemp(t, doc))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "measure 0 beat 1")
}

func TestLoadRejectsBadTempoAndMeter(t *testing.T) {
	_, _, _, err := Load(writeTemp(t, "tempo: 0\ntime_signature: {numerator: 4, denominator: 4}\n"))
	assert.Error(t, err)

	_, _, _, err = Load(writeTemp(t, "tempo: 120\ntime_signature: {numerator: 4, denominator: 0}\n"))
	assert.Error(t, err)
}

func TestDocumentDecodesFromJSON(t *testing.T) {
	// the song endpoint receives the same document shape as JSON
	payload := `{
		"title": "Night Drive",
		"tempo": 96,
		"time_signature": {"numerator": 4, "denominator": 4},
		"sections": [
			{"name": "verse", "measures": [
				{"beats": [{"chord": "Am"}, {}, {"chord": "G7", "duration": 2}]}
			]}
		]
	}`

	var doc Document
	assert := assert.New(t)
	assert.NoError(json.Unmarshal([]byte(payload), &doc))
	assert.Equal(uint8(4), doc.TimeSig.Denominator)

	song, err := doc.Song()
	assert.NoError(err)
	assert.Equal(96, song.Tempo)
	assert.Equal(model.QualityDominant7, song.Sections[0].Measures[0].Beats[2].Chord.Quality)
	assert.Equal(2.0, song.Sections[0].Measures[0].Beats[2].Duration)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	song, effects, instrument, err := Load(writeTemp(t, sampleDoc))
	assert.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.yaml")
	assert.NoError(t, Save(path, song, effects, instrument))

	back, backFx, backInstrument, err := Load(path)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(song.Title, back.Title)
	assert.Equal(song.Tempo, back.Tempo)
	assert.Equal(instrument, backInstrument)
	assert.Equal(effects.ReverbMix, backFx.ReverbMix)
	assert.Equal(song.TotalBeats(), back.TotalBeats())

	for si := range song.Sections {
		for mi := range song.Sections[si].Measures {
			for bi, beat := range song.Sections[si].Measures[mi].Beats {
				got := back.Sections[si].Measures[mi].Beats[bi]
				if beat.Chord == nil {
					assert.Nil(got.Chord)
					continue
				}
				assert.Equal(beat.Chord.Symbol, got.Chord.Symbol)
				assert.Equal(beat.Chord.Quality, got.Chord.Quality)
			}
		}
	}
}
