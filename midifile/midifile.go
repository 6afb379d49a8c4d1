package midifile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/shhawkins/chord-wheel-writer/constants"
	"github.com/shhawkins/chord-wheel-writer/errs"
	"github.com/shhawkins/chord-wheel-writer/model"
	"github.com/shhawkins/chord-wheel-writer/render"
)

// All exported notes go on a single channel; the format carries the
// arrangement, not an orchestration.
const exportChannel = 0

type timedMessage struct {
	tick uint32
	// note-offs sort ahead of note-ons at the same tick so a chord
	// ending exactly where the next begins never leaves hung notes
	order int
	msg   smf.Message
}

// Export builds a Standard MIDI File from a song: track 0 carries the
// tempo and meter metadata, track 1 the chord notes. Rests advance the
// clock without emitting anything. Unknown chord qualities export as
// their major-triad fallback, reported through the returned error the
// same way the renderer does.
func Export(song *model.Song) (*smf.SMF, error) {
	if song.Tempo <= 0 {
		return nil, fmt.Errorf("song tempo must be positive, got %v", song.Tempo)
	}

	events, derivationErr := render.SongEvents(song)
	if derivationErr != nil && !errors.Is(derivationErr, errs.ErrUnknownChordQuality) {
		return nil, derivationErr
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(constants.TicksPerQuarter)

	totalTicks := TotalTicks(song)

	if err := sm.Add(metaTrack(song)); err != nil {
		return nil, fmt.Errorf("adding meta track: %w", err)
	}
	if err := sm.Add(noteTrack(events, totalTicks)); err != nil {
		return nil, fmt.Errorf("adding note track: %w", err)
	}

	return sm, derivationErr
}

// WriteTo exports the song and streams the encoded file to w.
func WriteTo(song *model.Song, w io.Writer) error {
	sm, err := Export(song)
	if err != nil && sm == nil {
		return err
	}
	if _, werr := sm.WriteTo(w); werr != nil {
		return fmt.Errorf("writing midi stream: %w", werr)
	}
	return err
}

// WriteFile exports fully before creating path, so a song that fails
// derivation never leaves a partial file behind.
func WriteFile(song *model.Song, path string) error {
	sm, err := Export(song)
	if err != nil && sm == nil {
		return err
	}

	f, cerr := os.Create(path)
	if cerr != nil {
		return fmt.Errorf("creating %v: %w", path, cerr)
	}
	defer f.Close()

	if _, werr := sm.WriteTo(f); werr != nil {
		return fmt.Errorf("writing %v: %w", path, werr)
	}
	return err
}

// metaTrack emits the song title, the initial tempo, and a meter event
// wherever a section changes the time signature.
func metaTrack(song *model.Song) smf.Track {
	var track smf.Track
	if song.Title != "" {
		track.Add(0, smf.MetaTrackSequenceName(song.Title))
	}
	track.Add(0, smf.MetaTempo(float64(song.Tempo)))
	track.Add(0, smf.MetaMeter(song.TimeSig.Numerator, song.TimeSig.Denominator))

	current := song.TimeSig
	var cursorBeats float64
	var lastTick uint32
	for si := range song.Sections {
		sec := &song.Sections[si]
		ts := song.SectionTimeSig(sec)
		if ts != current {
			tick := beatsToTicks(cursorBeats)
			track.Add(tick-lastTick, smf.MetaMeter(ts.Numerator, ts.Denominator))
			lastTick = tick
			current = ts
		}
		for mi := range sec.Measures {
			for _, beat := range sec.Measures[mi].Beats {
				cursorBeats += beat.Duration
			}
		}
	}

	track.Close(beatsToTicks(song.TotalBeats()) - lastTick)
	return track
}

func noteTrack(events []model.ChordEvent, totalTicks uint32) smf.Track {
	var msgs []timedMessage
	for _, n := range render.NoteEvents(events) {
		on := beatsToTicks(n.StartBeats)
		off := beatsToTicks(n.StartBeats + n.DurationBeats)
		msgs = append(msgs,
			timedMessage{tick: on, order: 1, msg: smf.Message(midi.NoteOn(exportChannel, n.MIDINote, n.Velocity))},
			timedMessage{tick: off, order: 0, msg: smf.Message(midi.NoteOff(exportChannel, n.MIDINote))})
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].order < msgs[j].order
	})

	var track smf.Track
	var lastTick uint32
	for _, m := range msgs {
		track.Add(m.tick-lastTick, m.msg)
		lastTick = m.tick
	}
	track.Close(totalTicks - lastTick)
	return track
}

// TotalTicks is the length of a song's export in SMF ticks.
func TotalTicks(song *model.Song) uint32 {
	return beatsToTicks(song.TotalBeats())
}

func beatsToTicks(beats float64) uint32 {
	return uint32(math.Round(beats * constants.TicksPerQuarter))
}
