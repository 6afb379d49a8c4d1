package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shhawkins/chord-wheel-writer/errs"
	"github.com/stretchr/testify/assert"
)

func TestDefaultVoiceIsAlwaysReady(t *testing.T) {
	r := New()
	def, err := r.Lookup(DefaultInstrumentID)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(DefaultInstrumentID, def.ID)
	assert.NotNil(def.Synth)
}

func TestLookupWhileLoadingReportsNotReady(t *testing.T) {
	r := New()
	release := make(chan struct{})
	ready := r.RegisterAsync("piano", func() (*Definition, error) {
		<-release
		return &Definition{ID: "piano", DisplayName: "Piano"}, nil
	})

	_, err := r.Lookup("piano")
	assert.True(t, errors.Is(err, errs.ErrInstrumentNotReady))

	close(release)
	<-ready

	def, err := r.Lookup("piano")
	assert.NoError(t, err)
	assert.Equal(t, "Piano", def.DisplayName)
}

func TestLookupAfterFailedLoad(t *testing.T) {
	r := New()
	ready := r.RegisterAsync("broken", func() (*Definition, error) {
		return nil, errors.New("file truncated")
	})
	<-ready

	_, err := r.Lookup("broken")
	assert.True(t, errors.Is(err, errs.ErrInstrumentLoadFailed))
	assert.Contains(t, err.Error(), "file truncated")
}

func TestLookupUnknownID(t *testing.T) {
	r := New()
	_, err := r.Lookup("ghost")
	assert.True(t, errors.Is(err, errs.ErrInstrumentLoadFailed))
}

func TestAwaitBlocksUntilReady(t *testing.T) {
	r := New()
	r.RegisterAsync("strings", func() (*Definition, error) {
		time.Sleep(10 * time.Millisecond)
		return &Definition{ID: "strings"}, nil
	})

	def, err := r.Await(context.Background(), "strings")
	assert.NoError(t, err)
	assert.Equal(t, "strings", def.ID)
}

func TestAwaitHonorsContext(t *testing.T) {
	r := New()
	r.RegisterAsync("stuck", func() (*Definition, error) {
		select {} // never completes
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Await(ctx, "stuck")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestResolveFallsBackToDefault(t *testing.T) {
	r := New()
	ready := r.RegisterAsync("broken", func() (*Definition, error) {
		return nil, errors.New("corrupt")
	})
	<-ready

	def, err := r.Resolve(context.Background(), "broken")

	assert := assert.New(t)
	assert.True(errors.Is(err, errs.ErrInstrumentLoadFailed))
	assert.NotNil(def)
	assert.Equal(DefaultInstrumentID, def.ID)
}

func TestResolveEmptyIDUsesDefault(t *testing.T) {
	r := New()
	def, err := r.Resolve(context.Background(), "")
	assert.NoError(t, err)
	assert.Equal(t, DefaultInstrumentID, def.ID)
}

func TestNearestPrefersLowerReferenceOnTie(t *testing.T) {
	m := &SampleMap{Refs: map[uint8][]float64{
		60: {0.1},
		64: {0.2},
	}}

	ref, _ := m.Nearest(62) // equidistant, low wins
	assert.Equal(t, uint8(60), ref)

	ref, data := m.Nearest(63)
	assert.Equal(t, uint8(64), ref)
	assert.Equal(t, []float64{0.2}, data)
}
