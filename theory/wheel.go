package theory

import (
	"github.com/shhawkins/chord-wheel-writer/model"
)

// NumPositions is the number of key centers around the wheel.
const NumPositions = 12

// WheelChords is the triple of chord roots shown at one wheel position:
// the major key center, its relative minor, and the diminished chord
// built on the leading tone of the key one position clockwise.
type WheelChords struct {
	Major      model.PitchClass
	Minor      model.PitchClass
	Diminished model.PitchClass
}

// Ring names which band of the wheel a chord sits in.
type Ring string

const (
	RingMajor      Ring = "major"
	RingMinor      Ring = "minor"
	RingDiminished Ring = "diminished"
)

// Membership places one diatonic numeral on the wheel.
type Membership struct {
	Numeral  string
	Position int
	Ring     Ring
	Root     model.PitchClass
	Quality  model.Quality
}

// MajorRootAt returns the major key center at a wheel position.
// Positions ascend by perfect fifths: 0=C, 1=G, 2=D, ... 11=F.
func MajorRootAt(position int) model.PitchClass {
	return model.PitchClass(normalize(position) * 7 % 12)
}

// PositionOf returns the wheel position whose major root is key.
func PositionOf(key model.PitchClass) int {
	// 7 is its own inverse mod 12, so the fifths mapping reverses itself.
	return int(key) * 7 % 12
}

// ChordsAtPosition derives the three chord roots shown at a position.
// The relative minor sits 3 semitones below the major root, and the
// diminished slot holds the leading tone of the key one position
// clockwise (a semitone below that key's root).
func ChordsAtPosition(position int) WheelChords {
	major := MajorRootAt(position)
	return WheelChords{
		Major:      major,
		Minor:      pcAdd(major, -3),
		Diminished: pcAdd(major, -1),
	}
}

// DiatonicMembership maps the seven scale-degree numerals of a key onto
// wheel positions and rings. A numeral's position is not always the
// position of its own root ring: ii lives in the minor slot one step
// counterclockwise, iii one step clockwise.
func DiatonicMembership(key model.PitchClass) [7]Membership {
	k := PositionOf(key)
	left := normalize(k - 1)
	right := normalize(k + 1)

	return [7]Membership{
		{Numeral: "I", Position: k, Ring: RingMajor, Root: MajorRootAt(k), Quality: model.QualityMajor},
		{Numeral: "ii", Position: left, Ring: RingMinor, Root: ChordsAtPosition(left).Minor, Quality: model.QualityMinor},
		{Numeral: "iii", Position: right, Ring: RingMinor, Root: ChordsAtPosition(right).Minor, Quality: model.QualityMinor},
		{Numeral: "IV", Position: left, Ring: RingMajor, Root: MajorRootAt(left), Quality: model.QualityMajor},
		{Numeral: "V", Position: right, Ring: RingMajor, Root: MajorRootAt(right), Quality: model.QualityMajor},
		{Numeral: "vi", Position: k, Ring: RingMinor, Root: ChordsAtPosition(k).Minor, Quality: model.QualityMinor},
		{Numeral: "vii°", Position: k, Ring: RingDiminished, Root: ChordsAtPosition(k).Diminished, Quality: model.QualityDiminished},
	}
}

// KeySignature counts accidentals for a major key by its distance from C
// along the fifths axis. Exactly one of sharps/flats is non-zero, except
// for C where both are zero. Position 6 (F#) is spelled with sharps;
// positions 7-11 flow around to the flat side.
func KeySignature(key model.PitchClass) (sharps, flats int) {
	k := PositionOf(key)
	if k == 0 {
		return 0, 0
	}
	if k <= 6 {
		return k, 0
	}
	return 0, 12 - k
}

// UsesFlats reports whether a key's signature is spelled with flats.
func UsesFlats(key model.PitchClass) bool {
	_, flats := KeySignature(key)
	return flats > 0
}

func normalize(position int) int {
	p := position % NumPositions
	if p < 0 {
		p += NumPositions
	}
	return p
}

func pcAdd(pc model.PitchClass, semitones int) model.PitchClass {
	v := (int(pc) + semitones) % 12
	if v < 0 {
		v += 12
	}
	return model.PitchClass(v)
}
