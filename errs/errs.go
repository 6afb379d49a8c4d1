package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected failure modes
var (
	// ErrUnknownChordQuality signals that a chord quality had no formula
	// and a plain major triad was substituted.
	ErrUnknownChordQuality = errors.New("unknown chord quality")

	// ErrInstrumentNotReady means samples are still loading. Deferred,
	// not fatal: wait on the registry's readiness signal and retry.
	ErrInstrumentNotReady = errors.New("instrument not ready")

	// ErrInstrumentLoadFailed is fatal for that instrument. Callers must
	// substitute the default synthesized voice, never go silent.
	ErrInstrumentLoadFailed = errors.New("instrument load failed")

	// ErrRenderBufferUnavailable means an offline render produced no
	// usable buffer. Fatal for that export; no partial file is written.
	ErrRenderBufferUnavailable = errors.New("render buffer unavailable")

	// ErrEffectsChainDisposed means a disposed chain was used. This is a
	// lifecycle bug in the caller, not a runtime condition.
	ErrEffectsChainDisposed = errors.New("effects chain disposed")

	// ErrRenderInFlight guards the single in-flight export slot.
	ErrRenderInFlight = errors.New("another render is already in flight")
)

// SongError locates a failure within the consumed song structure so the
// caller can present "section 2, measure 3, beat 1" instead of a bare kind.
type SongError struct {
	Section int
	Measure int
	Beat    int
	Symbol  string // chord symbol if one was involved
	Cause   error
}

func (e *SongError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("section %d measure %d beat %d (%s): %v",
			e.Section+1, e.Measure+1, e.Beat+1, e.Symbol, e.Cause)
	}
	return fmt.Sprintf("section %d measure %d beat %d: %v",
		e.Section+1, e.Measure+1, e.Beat+1, e.Cause)
}

func (e *SongError) Unwrap() error {
	return e.Cause
}

// At wraps err with its song location.
func At(section, measure, beat int, symbol string, err error) error {
	if err == nil {
		return nil
	}
	return &SongError{Section: section, Measure: measure, Beat: beat, Symbol: symbol, Cause: err}
}
