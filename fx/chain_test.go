package fx

import (
	"errors"
	"math"
	"testing"

	"github.com/shhawkins/chord-wheel-writer/errs"
	"github.com/shhawkins/chord-wheel-writer/model"
	"github.com/stretchr/testify/assert"
)

func sineBuffer(frames int) []float64 {
	buf := make([]float64, frames*2)
	for i := 0; i < frames; i++ {
		v := 0.5 * math.Sin(2*math.Pi*220*float64(i)/44100)
		buf[i*2] = v
		buf[i*2+1] = v
	}
	return buf
}

func TestZeroSettingsChainIsBitIdenticalToBypass(t *testing.T) {
	chain, err := NewChain(model.EffectSettings{Gain: 1}, 44100)
	assert.NoError(t, err)
	defer chain.Dispose()

	original := sineBuffer(2048)
	processed := make([]float64, len(original))
	copy(processed, original)

	assert.NoError(t, chain.Process(processed))
	assert.Equal(t, original, processed)
}

func TestOnlyLimiterBuiltForCleanSettings(t *testing.T) {
	chain, err := NewChain(model.DefaultEffectSettings(), 44100)
	assert.NoError(t, err)
	defer chain.Dispose()

	assert.Equal(t, []string{"limiter"}, chain.StageNames())
}

func TestStageOrderIsFixed(t *testing.T) {
	chain, err := NewChain(model.EffectSettings{
		Gain:         0.8,
		ToneTilt:     0.3,
		Distortion:   0.2,
		VibratoDepth: 0.1,
		TremoloDepth: 0.1,
		ChorusMix:    0.4,
		PhaserMix:    0.3,
		FilterMix:    0.2,
		DelayMix:     0.25,
		ReverbMix:    0.3,
		PitchShift:   -12,
	}, 44100)
	assert.NoError(t, err)
	defer chain.Dispose()

	assert.Equal(t, []string{
		"gain", "toneTilt", "distortion", "vibrato", "tremolo",
		"chorus", "phaser", "filter", "delay", "reverb",
		"pitchShift", "limiter",
	}, chain.StageNames())
}

func TestMixLevelIsMonotonic(t *testing.T) {
	// more distortion must not move the output closer to the dry signal
	dry := sineBuffer(1024)

	diffAt := func(amount float64) float64 {
		chain, err := NewChain(model.EffectSettings{Gain: 1, Distortion: amount}, 44100)
		assert.NoError(t, err)
		defer chain.Dispose()

		buf := make([]float64, len(dry))
		copy(buf, dry)
		assert.NoError(t, chain.Process(buf))

		var sum float64
		for i := range buf {
			sum += math.Abs(buf[i] - dry[i])
		}
		return sum
	}

	low := diffAt(0.2)
	mid := diffAt(0.5)
	high := diffAt(0.9)
	assert.Less(t, low, mid)
	assert.Less(t, mid, high)
}

func TestChainIsDeterministic(t *testing.T) {
	settings := model.EffectSettings{
		Gain: 1, ChorusMix: 0.5, DelayMix: 0.3, ReverbMix: 0.4, TremoloDepth: 0.2,
	}

	run := func() []float64 {
		chain, err := NewChain(settings, 44100)
		assert.NoError(t, err)
		defer chain.Dispose()

		buf := sineBuffer(4096)
		assert.NoError(t, chain.Process(buf))
		return buf
	}

	assert.Equal(t, run(), run())
}

func TestProcessAfterDisposeFails(t *testing.T) {
	chain, err := NewChain(model.EffectSettings{Gain: 1, ReverbMix: 0.5}, 44100)
	assert.NoError(t, err)

	chain.Dispose()
	chain.Dispose() // idempotent

	err = chain.Process(make([]float64, 64))
	assert.True(t, errors.Is(err, errs.ErrEffectsChainDisposed))
}

func TestPartialBuildFailureDisposesPrefix(t *testing.T) {
	// out-of-range pitch shift fails after earlier stages were built
	chain, err := NewChain(model.EffectSettings{
		Gain: 0.5, ReverbMix: 0.5, PitchShift: 99,
	}, 44100)

	assert.Error(t, err)
	assert.Nil(t, chain)
}

func TestLimiterHoldsCeiling(t *testing.T) {
	chain, err := NewChain(model.EffectSettings{Gain: 8}, 44100)
	assert.NoError(t, err)
	defer chain.Dispose()

	buf := sineBuffer(8192)
	assert.NoError(t, chain.Process(buf))

	for i := range buf {
		assert.LessOrEqual(t, math.Abs(buf[i]), 0.951)
	}
}
