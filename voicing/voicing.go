// Package voicing assigns octaves to chord pitch classes. The transform
// is deterministic and stateless: the same chord and base octave always
// produce the same voicing.
package voicing

import (
	"github.com/shhawkins/chord-wheel-writer/constants"
	"github.com/shhawkins/chord-wheel-writer/model"
	"github.com/shhawkins/chord-wheel-writer/util"
)

// Voice spreads a chord's pitch classes across octaves:
//
//   - the root lands in baseOctave,
//   - notes whose pitch class is behind the root in ascending order get
//     pushed up an octave so nothing sounds below the root,
//   - notes past the 4th voiced pitch (the 9th/11th/13th extensions) go
//     one, then two octaves above the base to keep dense chords open.
//
// Pitches that already carry an explicit octave pass through unchanged,
// which is the manual-override path.
func Voice(notes []model.Pitch, baseOctave int) []model.Pitch {
	if len(notes) == 0 {
		return nil
	}

	root := notes[0].Class
	voiced := make([]model.Pitch, len(notes))
	for i, n := range notes {
		if n.Voiced() {
			voiced[i] = n
			continue
		}

		octave := baseOctave
		if n.Class < root {
			octave++
		}
		if i >= constants.MaxTriadNotes {
			// 5th voiced note goes up one octave, everything past it two.
			octave += util.Min(i-constants.MaxTriadNotes+1, 2)
		}
		n.Octave = octave
		voiced[i] = n
	}
	return voiced
}

// VoiceChord returns a copy of the chord with its notes voiced at the
// default base octave.
func VoiceChord(c model.Chord) model.Chord {
	return c.WithNotes(Voice(c.Notes, constants.BaseOctave))
}
