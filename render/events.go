package render

import (
	"errors"

	"github.com/shhawkins/chord-wheel-writer/constants"
	"github.com/shhawkins/chord-wheel-writer/errs"
	"github.com/shhawkins/chord-wheel-writer/model"
	"github.com/shhawkins/chord-wheel-writer/theory"
	"github.com/shhawkins/chord-wheel-writer/voicing"
)

// SongEvents flattens a song into absolute-beat chord events. Chords
// that arrive without materialized notes get them derived here; chords
// that already carry notes pass through untouched (the song structure
// is read-only as far as the engine is concerned).
//
// Unknown qualities are not fatal: the event carries the major-triad
// fallback and the returned error (joined across all offending beats)
// tells the caller exactly which slots were substituted.
func SongEvents(song *model.Song) ([]model.ChordEvent, error) {
	var events []model.ChordEvent
	var derivationErrs []error
	var cursor float64

	for si := range song.Sections {
		sec := &song.Sections[si]
		for mi := range sec.Measures {
			for bi := range sec.Measures[mi].Beats {
				beat := &sec.Measures[mi].Beats[bi]
				ev := model.ChordEvent{
					StartBeats:    cursor,
					DurationBeats: beat.Duration,
					Section:       si,
					Measure:       mi,
					Beat:          bi,
				}
				cursor += beat.Duration

				if beat.Chord != nil {
					chord, err := materialize(*beat.Chord)
					if err != nil {
						derivationErrs = append(derivationErrs,
							errs.At(si, mi, bi, chord.Symbol, err))
					}
					ev.Chord = &chord
				}
				events = append(events, ev)
			}
		}
	}

	return events, errors.Join(derivationErrs...)
}

// NoteEvents expands chord events into voiced per-note events at the
// default base octave. Rests contribute nothing.
func NoteEvents(events []model.ChordEvent) []model.NoteEvent {
	var notes []model.NoteEvent
	for _, ev := range events {
		if ev.Chord == nil {
			continue
		}
		for _, p := range voicing.Voice(ev.Chord.Notes, constants.BaseOctave) {
			notes = append(notes, model.NoteEvent{
				MIDINote:      p.MIDINote(),
				Velocity:      NoteVelocity,
				StartBeats:    ev.StartBeats,
				DurationBeats: ev.DurationBeats,
			})
		}
	}
	return notes
}

func materialize(c model.Chord) (model.Chord, error) {
	if len(c.Notes) > 0 || c.Quality == "" {
		return c, nil
	}
	spell := theory.SpellingForKey(c.Root)
	notes, err := theory.ChordNotes(c.Root, c.Quality, spell)
	c.Notes = notes
	if c.Symbol == "" {
		c.Symbol = theory.Symbol(c.Root, c.Quality, spell)
	}
	return c, err
}
