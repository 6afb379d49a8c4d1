// Package fx assembles the fixed-topology signal chain the engine runs
// instrument output through: tone shaping, then modulation effects,
// then time-based effects, with a limiter as the terminal stage. The
// chain is built fresh from an EffectSettings snapshot for each render
// pass; a parameter of zero means the stage is not built at all, which
// makes bypass bit-identical by construction.
package fx

import (
	"fmt"

	"github.com/shhawkins/chord-wheel-writer/errs"
	"github.com/shhawkins/chord-wheel-writer/model"
)

// Chain is a linear run of stages ending in the limiter. A chain is not
// safe for concurrent use; live playback and offline export must each
// build their own.
type Chain struct {
	stages   []Stage
	disposed bool
}

// NewChain builds the chain for one settings snapshot. Stage order is
// fixed: gain, tone tilt, distortion, vibrato, tremolo, chorus, phaser,
// filter, delay, reverb, pitch shift, limiter. If any stage fails to
// build, everything already built is released before the error returns.
func NewChain(settings model.EffectSettings, sampleRate int) (*Chain, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("effects chain needs a positive sample rate, got %v", sampleRate)
	}

	c := &Chain{}
	fail := func(err error) (*Chain, error) {
		c.Dispose()
		return nil, err
	}

	if settings.Gain != 1 && settings.Gain != 0 {
		c.stages = append(c.stages, &gainStage{gain: settings.Gain})
	}
	if settings.ToneTilt != 0 {
		c.stages = append(c.stages, newTiltStage(settings.ToneTilt, sampleRate))
	}
	if settings.Distortion > 0 {
		c.stages = append(c.stages, newDistortStage(settings.Distortion))
	}
	if settings.VibratoDepth > 0 {
		c.stages = append(c.stages, newVibratoStage(settings.VibratoDepth, sampleRate))
	}
	if settings.TremoloDepth > 0 {
		c.stages = append(c.stages, newTremoloStage(settings.TremoloDepth, sampleRate))
	}
	if settings.ChorusMix > 0 {
		c.stages = append(c.stages, newChorusStage(settings.ChorusMix, sampleRate))
	}
	if settings.PhaserMix > 0 {
		c.stages = append(c.stages, newPhaserStage(settings.PhaserMix, sampleRate))
	}
	if settings.FilterMix > 0 {
		c.stages = append(c.stages, newFilterStage(settings.FilterMix, sampleRate))
	}
	if settings.DelayMix > 0 {
		c.stages = append(c.stages, newDelayStage(settings.DelayMix, sampleRate))
	}
	if settings.ReverbMix > 0 {
		c.stages = append(c.stages, newReverbStage(settings.ReverbMix, sampleRate))
	}
	if settings.PitchShift != 0 {
		if settings.PitchShift < -24 || settings.PitchShift > 24 {
			return fail(fmt.Errorf("pitch shift %v semitones is out of range", settings.PitchShift))
		}
		c.stages = append(c.stages, newPitchStage(settings.PitchShift, sampleRate))
	}

	c.stages = append(c.stages, newLimiterStage(sampleRate))
	return c, nil
}

// Process runs an interleaved stereo buffer through every stage in
// place. Using a disposed chain is a lifecycle bug, reported as
// ErrEffectsChainDisposed.
func (c *Chain) Process(buf []float64) error {
	if c.disposed {
		return errs.ErrEffectsChainDisposed
	}
	for _, s := range c.stages {
		s.Process(buf)
	}
	return nil
}

// Reset clears all stage state without releasing buffers.
func (c *Chain) Reset() error {
	if c.disposed {
		return errs.ErrEffectsChainDisposed
	}
	for _, s := range c.stages {
		s.Reset()
	}
	return nil
}

// StageNames lists the built stages in processing order.
func (c *Chain) StageNames() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name()
	}
	return names
}

// Dispose releases every stage's buffers. Idempotent.
func (c *Chain) Dispose() {
	if c.disposed {
		return
	}
	for _, s := range c.stages {
		s.release()
	}
	c.stages = nil
	c.disposed = true
}
