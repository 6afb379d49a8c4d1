package theory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shhawkins/chord-wheel-writer/model"
)

var pitchClassByLetter = map[byte]model.PitchClass{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// suffixQualities is the reverse of qualitySuffixes, longest suffix
// first so "maj7" wins over "7" when scanning a symbol.
var suffixQualities = func() []struct {
	suffix  string
	quality model.Quality
} {
	out := make([]struct {
		suffix  string
		quality model.Quality
	}, 0, len(qualitySuffixes))
	for q, s := range qualitySuffixes {
		out = append(out, struct {
			suffix  string
			quality model.Quality
		}{s, q})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].suffix) != len(out[j].suffix) {
			return len(out[i].suffix) > len(out[j].suffix)
		}
		return out[i].suffix < out[j].suffix
	})
	return out
}()

// ParsePitchClass reads a note name like "C", "F#", or "Bb".
// Double accidentals are not accepted.
func ParsePitchClass(name string) (model.PitchClass, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, fmt.Errorf("empty note name")
	}

	pc, ok := pitchClassByLetter[s[0]&^0x20]
	if !ok {
		return 0, fmt.Errorf("invalid note name %q", name)
	}
	switch s[1:] {
	case "":
	case "#", "♯":
		pc = pcAdd(pc, 1)
	case "b", "♭":
		pc = pcAdd(pc, -1)
	default:
		return 0, fmt.Errorf("invalid note name %q", name)
	}
	return pc, nil
}

// ParseSymbol splits a chord symbol like "Abmaj7" or "F#m7b5" into its
// root and quality. A bare note name parses as a major triad.
func ParseSymbol(symbol string) (model.PitchClass, model.Quality, error) {
	s := strings.TrimSpace(symbol)
	if s == "" {
		return 0, "", fmt.Errorf("empty chord symbol")
	}

	rootLen := 1
	if len(s) > 1 && (s[1] == '#' || s[1] == 'b') {
		// "b" is only an accidental when a suffix or nothing follows;
		// a lone "Cb" root is still valid
		rootLen = 2
	}
	root, err := ParsePitchClass(s[:rootLen])
	if err != nil {
		return 0, "", fmt.Errorf("chord symbol %q: %w", symbol, err)
	}

	rest := s[rootLen:]
	for _, sq := range suffixQualities {
		if rest == sq.suffix {
			return root, sq.quality, nil
		}
	}
	return 0, "", fmt.Errorf("chord symbol %q: unknown quality suffix %q", symbol, rest)
}
