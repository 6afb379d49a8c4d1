// Package render runs a song through voicing, synthesis and the effects
// chain without real-time constraints, producing a sample buffer and
// encoding it as a WAV file. Given the same song, settings and registry
// state the output is byte-identical on every run.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/shhawkins/chord-wheel-writer/constants"
	"github.com/shhawkins/chord-wheel-writer/errs"
	"github.com/shhawkins/chord-wheel-writer/fx"
	"github.com/shhawkins/chord-wheel-writer/model"
	"github.com/shhawkins/chord-wheel-writer/registry"
	"github.com/shhawkins/chord-wheel-writer/synth"
)

const blockFrames = 1024

// NoteVelocity is the fixed velocity offline renders trigger with.
const NoteVelocity = 100

// Renderer owns the offline pass. It shares no transport state with the
// live scheduler; the in-flight guard keeps two exports from fighting
// over the same effects resources.
type Renderer struct {
	reg        *registry.Registry
	sampleRate int
	inFlight   atomic.Bool
}

func NewRenderer(reg *registry.Registry) *Renderer {
	return &Renderer{reg: reg, sampleRate: constants.SampleRate}
}

// TotalSeconds is the length of a song's render: every beat at the
// song's tempo plus the fixed decay tail.
func TotalSeconds(song *model.Song) float64 {
	return song.TotalBeats()*song.SecondsPerBeat() + constants.TailSeconds
}

// Render produces the interleaved 16-bit stereo buffer for a song. Only
// one render may be in flight per Renderer; a second concurrent call
// fails with ErrRenderInFlight rather than corrupting shared effects
// state.
//
// A non-nil buffer together with a non-nil error means the render
// completed with substitutions: a major triad for an unknown chord
// quality, or the default voice for an instrument that failed to load.
// The render failed only when the buffer is nil.
func (r *Renderer) Render(ctx context.Context, song *model.Song, settings model.EffectSettings, instrumentID string) ([]int16, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		return nil, errs.ErrRenderInFlight
	}
	defer r.inFlight.Store(false)

	if song.Tempo <= 0 {
		return nil, fmt.Errorf("song tempo must be positive, got %v", song.Tempo)
	}
	if song.TotalBeats() <= 0 {
		return nil, fmt.Errorf("%w: song has no beats", errs.ErrRenderBufferUnavailable)
	}

	events, derivationErr := SongEvents(song)
	if derivationErr != nil && !errors.Is(derivationErr, errs.ErrUnknownChordQuality) {
		return nil, derivationErr
	}
	soft := derivationErr

	def, err := r.reg.Resolve(ctx, instrumentID)
	if err != nil {
		if def == nil {
			return nil, err
		}
		// the default voice was substituted; report it with the buffer
		soft = errors.Join(soft, err)
	}

	chain, err := fx.NewChain(settings, r.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("building effects chain: %w", err)
	}
	defer chain.Dispose()

	engine := synth.NewEngine(r.sampleRate, def)
	spb := song.SecondsPerBeat()
	for _, n := range NoteEvents(events) {
		frameOffset := int64(n.StartBeats * spb * float64(r.sampleRate))
		engine.NoteOnAt(frameOffset, n.MIDINote, n.Velocity, n.DurationBeats*spb)
	}

	totalFrames := int(TotalSeconds(song) * float64(r.sampleRate))
	if totalFrames <= 0 {
		return nil, errs.ErrRenderBufferUnavailable
	}

	out := make([]int16, 0, totalFrames*constants.NumChannels)
	mono := make([]float64, blockFrames)
	stereo := make([]float64, blockFrames*constants.NumChannels)

	for rendered := 0; rendered < totalFrames; rendered += blockFrames {
		n := blockFrames
		if remaining := totalFrames - rendered; remaining < n {
			n = remaining
		}

		for i := range mono {
			mono[i] = 0
		}
		engine.Process(mono, n)

		for i := 0; i < n; i++ {
			stereo[i*2] = mono[i]
			stereo[i*2+1] = mono[i]
		}
		if err := chain.Process(stereo[:n*2]); err != nil {
			return nil, err
		}

		out = append(out, Quantize(stereo[:n*2])...)
	}

	return out, soft
}

// RenderWAV renders and encodes in one step. Substitution errors come
// back alongside a fully written stream, as with Render.
func (r *Renderer) RenderWAV(ctx context.Context, song *model.Song, settings model.EffectSettings, instrumentID string, w io.Writer) error {
	samples, err := r.Render(ctx, song, settings, instrumentID)
	if samples == nil {
		return err
	}
	if werr := EncodeWAV(w, samples, r.sampleRate, constants.NumChannels); werr != nil {
		return werr
	}
	return err
}

// RenderFile renders fully in memory first, then writes the file, so a
// failed render never leaves a partial file behind.
func (r *Renderer) RenderFile(ctx context.Context, song *model.Song, settings model.EffectSettings, instrumentID, path string) error {
	samples, err := r.Render(ctx, song, settings, instrumentID)
	if samples == nil {
		return err
	}

	f, cerr := os.Create(path)
	if cerr != nil {
		return fmt.Errorf("creating %v: %w", path, cerr)
	}
	defer f.Close()

	if werr := EncodeWAV(f, samples, r.sampleRate, constants.NumChannels); werr != nil {
		return werr
	}
	return err
}

// Quantize converts float samples to 16-bit signed integers with hard
// clamping; out-of-range values saturate instead of wrapping around.
func Quantize(buf []float64) []int16 {
	out := make([]int16, len(buf))
	for i, v := range buf {
		s := v * 32767
		if s > 32767 {
			s = 32767
		}
		if s < -32768 {
			s = -32768
		}
		out[i] = int16(s)
	}
	return out
}
