// Package registry is the instrument catalog the engine renders with.
// Callers own a Registry instance and pass it into the scheduler and
// the offline renderer explicitly; there is no shared global instrument
// state between playback and export.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/shhawkins/chord-wheel-writer/errs"
)

// SynthParams is a synthesis-parameter bundle for oscillator-backed
// instruments.
type SynthParams struct {
	Waveform   string
	AttackSec  float64
	ReleaseSec float64
	Gain       float64
}

// DefaultSynthParams is the substitute voice used when an instrument
// fails to load. Playback must never go silent on a load failure.
func DefaultSynthParams() *SynthParams {
	return &SynthParams{
		Waveform:   "triangle",
		AttackSec:  0.005,
		ReleaseSec: 0.35,
		Gain:       0.22,
	}
}

// SampleMap holds mono sample buffers keyed by a small set of reference
// MIDI notes. Playback pitch-shifts the nearest reference to cover the
// full range.
type SampleMap struct {
	SampleRate int
	Refs       map[uint8][]float64
}

// Nearest returns the reference note closest to midiNote and its buffer.
func (m *SampleMap) Nearest(midiNote uint8) (uint8, []float64) {
	var bestRef uint8
	var bestBuf []float64
	bestDist := 255
	for ref, buf := range m.Refs {
		dist := int(ref) - int(midiNote)
		if dist < 0 {
			dist = -dist
		}
		// tie-break low so the map iteration order cannot leak into output
		if dist < bestDist || (dist == bestDist && ref < bestRef) {
			bestDist = dist
			bestRef = ref
			bestBuf = buf
		}
	}
	return bestRef, bestBuf
}

// Definition describes one playable instrument: either a sample map or
// a synthesis bundle (Samples wins when both are present).
type Definition struct {
	ID          string
	DisplayName string
	Synth       *SynthParams
	Samples     *SampleMap
}

// DefaultInstrumentID is always registered and always ready.
const DefaultInstrumentID = "default"

type entry struct {
	def   *Definition
	ready chan struct{}
	err   error
}

// Registry resolves instrument identifiers to definitions. Sample-based
// instruments load asynchronously; Lookup reports a distinct not-ready
// condition until the readiness channel closes.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Registry {
	r := &Registry{entries: make(map[string]*entry)}
	r.Register(&Definition{
		ID:          DefaultInstrumentID,
		DisplayName: "Default Synth",
		Synth:       DefaultSynthParams(),
	})
	return r
}

// Register adds a definition that is immediately ready.
func (r *Registry) Register(def *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ready := make(chan struct{})
	close(ready)
	r.entries[def.ID] = &entry{def: def, ready: ready}
}

// RegisterAsync reserves an id and starts load in a goroutine. The
// returned channel closes when loading finishes, successfully or not.
func (r *Registry) RegisterAsync(id string, load func() (*Definition, error)) <-chan struct{} {
	e := &entry{ready: make(chan struct{})}
	r.mu.Lock()
	r.entries[id] = e
	r.mu.Unlock()

	go func() {
		def, err := load()
		r.mu.Lock()
		if err != nil {
			e.err = fmt.Errorf("%w: %s: %v", errs.ErrInstrumentLoadFailed, id, err)
		} else {
			e.def = def
		}
		close(e.ready)
		r.mu.Unlock()
	}()
	return e.ready
}

// Lookup resolves an id without waiting. While a load is in flight it
// returns ErrInstrumentNotReady; after a failed load it returns the
// load error. Unknown ids fail as load failures so the caller takes the
// same default-voice path either way.
func (r *Registry) Lookup(id string) (*Definition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown instrument %q", errs.ErrInstrumentLoadFailed, id)
	}
	select {
	case <-e.ready:
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrInstrumentNotReady, id)
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.def, nil
}

// Await blocks until the instrument is ready or ctx is done, then
// resolves it like Lookup.
func (r *Registry) Await(ctx context.Context, id string) (*Definition, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown instrument %q", errs.ErrInstrumentLoadFailed, id)
	}

	select {
	case <-e.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return r.Lookup(id)
}

// Resolve awaits id and falls back to the default synthesized voice if
// the instrument failed to load. The returned error still reports the
// failure so the caller can surface it; the definition is always usable.
func (r *Registry) Resolve(ctx context.Context, id string) (*Definition, error) {
	if id == "" {
		id = DefaultInstrumentID
	}
	def, err := r.Await(ctx, id)
	if err == nil {
		return def, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	fallback, _ := r.Lookup(DefaultInstrumentID)
	return fallback, err
}
