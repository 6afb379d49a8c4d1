package render

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/shhawkins/chord-wheel-writer/constants"
	"github.com/shhawkins/chord-wheel-writer/errs"
	"github.com/shhawkins/chord-wheel-writer/model"
	"github.com/shhawkins/chord-wheel-writer/registry"
	"github.com/stretchr/testify/assert"
)

func quarterBeat(root model.PitchClass, quality model.Quality) model.Beat {
	return model.Beat{
		Chord:    &model.Chord{Root: root, Quality: quality},
		Duration: 1,
	}
}

func restBeat() model.Beat {
	return model.Beat{Duration: 1}
}

func fourFourMeasure(beats ...model.Beat) model.Measure {
	return model.Measure{Beats: beats}
}

// two sections, four measures total, 4/4 at 120 BPM. Each beat owns its
// chord; mutating one beat must never reach through to another.
func testSong() *model.Song {
	c := func() model.Beat { return quarterBeat(0, model.QualityMajor) }
	f := func() model.Beat { return quarterBeat(5, model.QualityMajor) }
	g := func() model.Beat { return quarterBeat(7, model.QualityDominant7) }
	am := func() model.Beat { return quarterBeat(9, model.QualityMinor) }

	return &model.Song{
		Tempo:   120,
		TimeSig: model.TimeSignature{Numerator: 4, Denominator: 4},
		Sections: []model.Section{
			{
				Name: "verse",
				Measures: []model.Measure{
					fourFourMeasure(c(), c(), f(), f()),
					fourFourMeasure(g(), g(), restBeat(), am()),
				},
			},
			{
				Name: "chorus",
				Measures: []model.Measure{
					fourFourMeasure(f(), f(), c(), c()),
					fourFourMeasure(g(), g(), g(), c()),
				},
			},
		},
	}
}

func TestSongEventsWalkOrderAndOffsets(t *testing.T) {
	events, err := SongEvents(testSong())

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(events, 16)

	assert.Equal(0.0, events[0].StartBeats)
	assert.Equal(4.0, events[4].StartBeats) // second measure starts at beat 4
	assert.Equal(8.0, events[8].StartBeats) // second section starts at beat 8

	// rest slot carried through with no chord
	assert.Nil(events[6].Chord)
	assert.Equal(0, events[6].Section)
	assert.Equal(1, events[6].Measure)
	assert.Equal(2, events[6].Beat)
}

func TestSongEventsDerivesNotesWithoutMutatingSong(t *testing.T) {
	song := testSong()
	events, err := SongEvents(song)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(events[0].Chord.Notes, 3)
	assert.Equal("C", events[0].Chord.Symbol)

	// the consumed song structures are never written to
	assert.Empty(song.Sections[0].Measures[0].Beats[0].Chord.Notes)
}

func TestSongEventsReportsUnknownQualityWithLocation(t *testing.T) {
	song := testSong()
	song.Sections[1].Measures[0].Beats[1].Chord.Quality = "mystery"

	events, err := SongEvents(song)

	assert := assert.New(t)
	assert.True(errors.Is(err, errs.ErrUnknownChordQuality))

	var songErr *errs.SongError
	assert.True(errors.As(err, &songErr))
	assert.Equal(1, songErr.Section)
	assert.Equal(0, songErr.Measure)
	assert.Equal(1, songErr.Beat)

	// the same symbol elsewhere in the song is untouched
	assert.Equal(model.QualityMajor, song.Sections[0].Measures[0].Beats[2].Chord.Quality)

	// the event still carries the major-triad fallback
	assert.Len(events[9].Chord.Notes, 3)
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewRenderer(registry.New())
	settings := model.EffectSettings{Gain: 1, ReverbMix: 0.3, DelayMix: 0.2}

	first, err := r.Render(context.Background(), testSong(), settings, "")
	assert.NoError(t, err)
	second, err := r.Render(context.Background(), testSong(), settings, "")
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderLengthMatchesDurationFormula(t *testing.T) {
	song := testSong()
	r := NewRenderer(registry.New())

	samples, err := r.Render(context.Background(), song, model.DefaultEffectSettings(), "")
	assert.NoError(t, err)

	// 16 beats at 0.5 s/beat + 2 s tail = 10 s
	wantFrames := int(10.0 * constants.SampleRate)
	assert.Equal(t, wantFrames*constants.NumChannels, len(samples))
}

func TestRenderProducesAudibleOutput(t *testing.T) {
	r := NewRenderer(registry.New())
	samples, err := r.Render(context.Background(), testSong(), model.DefaultEffectSettings(), "")
	assert.NoError(t, err)

	var peak int16
	for _, s := range samples {
		if s > peak {
			peak = s
		}
	}
	assert.Greater(t, peak, int16(1000), "render came out silent")
}

func TestRenderEmptySongFails(t *testing.T) {
	song := &model.Song{Tempo: 120, TimeSig: model.TimeSignature{Numerator: 4, Denominator: 4}}
	r := NewRenderer(registry.New())

	_, err := r.Render(context.Background(), song, model.DefaultEffectSettings(), "")
	assert.True(t, errors.Is(err, errs.ErrRenderBufferUnavailable))
}

func TestSecondRenderInFlightIsRejected(t *testing.T) {
	r := NewRenderer(registry.New())
	r.inFlight.Store(true)

	_, err := r.Render(context.Background(), testSong(), model.DefaultEffectSettings(), "")
	assert.True(t, errors.Is(err, errs.ErrRenderInFlight))
}

func TestRenderFallsBackToDefaultVoiceOnLoadFailure(t *testing.T) {
	reg := registry.New()
	ready := reg.RegisterAsync("broken", func() (*registry.Definition, error) {
		return nil, errors.New("corrupt sample bank")
	})
	<-ready

	r := NewRenderer(reg)
	samples, err := r.Render(context.Background(), testSong(), model.DefaultEffectSettings(), "broken")

	// the render still produces sound with the substitute voice, and the
	// substitution comes back alongside the buffer
	assert.True(t, errors.Is(err, errs.ErrInstrumentLoadFailed))
	assert.NotEmpty(t, samples)
}

func TestRenderReportsUnknownQualityWithBuffer(t *testing.T) {
	song := testSong()
	song.Sections[0].Measures[0].Beats[0].Chord.Quality = "mystery"

	r := NewRenderer(registry.New())
	samples, err := r.Render(context.Background(), song, model.DefaultEffectSettings(), "")

	assert.True(t, errors.Is(err, errs.ErrUnknownChordQuality))
	assert.NotEmpty(t, samples)
}

func TestQuantizeClampsWithoutWrapping(t *testing.T) {
	out := Quantize([]float64{0, 1, -1, 2.5, -2.5, 0.5})

	assert := assert.New(t)
	assert.Equal(int16(0), out[0])
	assert.Equal(int16(32767), out[1])
	assert.Equal(int16(-32767), out[2])
	assert.Equal(int16(32767), out[3])
	assert.Equal(int16(-32768), out[4])
	assert.Equal(int16(16383), out[5])
}

func TestEncodeWAVHeaderLayout(t *testing.T) {
	var buf bytes.Buffer
	samples := []int16{0, 100, -100, 32767}
	err := EncodeWAV(&buf, samples, 44100, 2)

	assert := assert.New(t)
	assert.NoError(err)

	raw := buf.Bytes()
	assert.Len(raw, 44+len(samples)*2)

	assert.Equal("RIFF", string(raw[0:4]))
	assert.Equal(uint32(36+8), binary.LittleEndian.Uint32(raw[4:8]))
	assert.Equal("WAVE", string(raw[8:12]))
	assert.Equal("fmt ", string(raw[12:16]))
	assert.Equal(uint32(16), binary.LittleEndian.Uint32(raw[16:20]))
	assert.Equal(uint16(1), binary.LittleEndian.Uint16(raw[20:22]))
	assert.Equal(uint16(2), binary.LittleEndian.Uint16(raw[22:24]))
	assert.Equal(uint32(44100), binary.LittleEndian.Uint32(raw[24:28]))
	assert.Equal(uint32(44100*2*2), binary.LittleEndian.Uint32(raw[28:32]))
	assert.Equal(uint16(4), binary.LittleEndian.Uint16(raw[32:34]))
	assert.Equal(uint16(16), binary.LittleEndian.Uint16(raw[34:36]))
	assert.Equal("data", string(raw[36:40]))
	assert.Equal(uint32(8), binary.LittleEndian.Uint32(raw[40:44]))

	assert.Equal(uint16(100), binary.LittleEndian.Uint16(raw[46:48]))
}
