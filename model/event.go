package model

// NoteEvent is one scheduled note: an absolute start offset in beats
// from the top of the song plus a duration, both tempo-independent.
type NoteEvent struct {
	MIDINote      uint8
	Velocity      uint8
	StartBeats    float64
	DurationBeats float64
}

// ChordEvent is one materialized timeline slot headed for the scheduler
// or the offline renderer. Chord is nil for rests, which occupy time but
// trigger nothing. Section/Measure/Beat index the slot's origin so
// failures can say where they happened.
type ChordEvent struct {
	Chord         *Chord
	StartBeats    float64
	DurationBeats float64
	Section       int
	Measure       int
	Beat          int
}

// End returns the event's end position in beats.
func (e ChordEvent) End() float64 {
	return e.StartBeats + e.DurationBeats
}
