// Package synth renders instrument voices into sample buffers. It backs
// both the live transport and the offline renderer, so everything here
// is deterministic: no randomness, no wall-clock reads.
package synth

import (
	"math"
	"sync"

	"github.com/shhawkins/chord-wheel-writer/registry"
)

// Waveform is the oscillator shape for synthesized voices.
type Waveform uint8

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSaw
	WaveSquare
)

// WaveformByName maps instrument definition strings onto shapes.
func WaveformByName(name string) Waveform {
	switch name {
	case "triangle":
		return WaveTriangle
	case "saw":
		return WaveSaw
	case "square":
		return WaveSquare
	default:
		return WaveSine
	}
}

type voice struct {
	startFrame int64

	// oscillator path
	phase     float64
	phaseStep float64
	waveform  Waveform

	// sample path
	sample     []float64
	samplePos  float64
	sampleStep float64

	ageFrames     int
	attackFrames  int
	sustainFrames int
	releaseFrames int
	gain          float64
}

func (v *voice) done() bool {
	return v.ageFrames >= v.sustainFrames+v.releaseFrames
}

func (v *voice) next() float64 {
	env := v.envelope()
	var s float64
	if v.sample != nil {
		s = v.sampleAt()
		v.samplePos += v.sampleStep
	} else {
		s = waveSample(v.waveform, v.phase)
		v.phase += v.phaseStep
		if v.phase > math.Pi {
			v.phase -= 2 * math.Pi
		}
	}
	v.ageFrames++
	return s * env * v.gain
}

func (v *voice) envelope() float64 {
	if v.ageFrames < v.attackFrames {
		return float64(v.ageFrames) / float64(v.attackFrames)
	}
	if v.ageFrames < v.sustainFrames {
		return 1
	}
	rel := v.ageFrames - v.sustainFrames
	if rel >= v.releaseFrames {
		return 0
	}
	t := float64(rel) / float64(v.releaseFrames)
	// exponential-ish decay, flat enough to avoid a click
	return math.Pow(0.0001, t)
}

func (v *voice) sampleAt() float64 {
	pos := v.samplePos
	i := int(pos)
	if i >= len(v.sample)-1 {
		return 0
	}
	frac := pos - float64(i)
	return v.sample[i]*(1-frac) + v.sample[i+1]*frac
}

func waveSample(w Waveform, phase float64) float64 {
	switch w {
	case WaveTriangle:
		return (2 / math.Pi) * math.Asin(math.Sin(phase))
	case WaveSaw:
		return phase / math.Pi
	case WaveSquare:
		if math.Sin(phase) >= 0 {
			return 1
		}
		return -1
	default:
		return math.Sin(phase)
	}
}

// Engine mixes polyphonic voices for one instrument definition into
// mono buffers. Voices are triggered at absolute frame offsets, which
// makes offline rendering and live streaming share the same code path.
type Engine struct {
	mu         sync.Mutex
	sampleRate float64
	def        *registry.Definition
	voices     []*voice
	frame      int64
}

func NewEngine(sampleRate int, def *registry.Definition) *Engine {
	return &Engine{
		sampleRate: float64(sampleRate),
		def:        def,
	}
}

// NoteOnAt triggers a note starting at an absolute frame offset from
// the beginning of the render. Offsets in the past start immediately.
func (e *Engine) NoteOnAt(frameOffset int64, midiNote uint8, velocity uint8, durationSec float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	params := e.def.Synth
	if params == nil {
		params = registry.DefaultSynthParams()
	}

	v := &voice{
		startFrame:    frameOffset,
		attackFrames:  atLeastOne(params.AttackSec * e.sampleRate),
		sustainFrames: atLeastOne(durationSec * e.sampleRate),
		releaseFrames: atLeastOne(params.ReleaseSec * e.sampleRate),
		gain:          params.Gain * float64(velocity) / 127.0,
	}

	freq := 440.0 * math.Pow(2, (float64(midiNote)-69)/12)
	if sm := e.def.Samples; sm != nil {
		ref, buf := sm.Nearest(midiNote)
		if buf != nil {
			v.sample = buf
			v.sampleStep = math.Pow(2, (float64(midiNote)-float64(ref))/12) *
				float64(sm.SampleRate) / e.sampleRate
		}
	}
	if v.sample == nil {
		v.waveform = WaveformByName(params.Waveform)
		v.phaseStep = 2 * math.Pi * freq / e.sampleRate
	}

	e.voices = append(e.voices, v)
}

// NoteOn triggers a note at the engine's current stream position.
func (e *Engine) NoteOn(midiNote uint8, velocity uint8, durationSec float64) {
	e.NoteOnAt(e.CurrentFrame(), midiNote, velocity, durationSec)
}

// CurrentFrame is the number of frames processed so far.
func (e *Engine) CurrentFrame() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

// Process adds numFrames of mixed mono output into out and advances the
// stream position. len(out) must be >= numFrames.
func (e *Engine) Process(out []float64, numFrames int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := 0; i < numFrames; i++ {
		frame := e.frame + int64(i)
		var sum float64
		for _, v := range e.voices {
			if v.startFrame > frame || v.done() {
				continue
			}
			sum += v.next()
		}
		out[i] += sum
	}
	e.frame += int64(numFrames)

	live := e.voices[:0]
	for _, v := range e.voices {
		if !v.done() {
			live = append(live, v)
		}
	}
	e.voices = live
}

// Active reports whether any voice is still sounding or pending.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.voices) > 0
}

// Silence drops every voice immediately. Used by the transport's stop.
func (e *Engine) Silence() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voices = nil
}

func atLeastOne(frames float64) int {
	n := int(frames)
	if n < 1 {
		return 1
	}
	return n
}
