// Package transport is the live playback scheduler: one logical clock,
// explicit state transitions, cancellable per-event triggers. Triggers
// run on a single driving goroutine, never in parallel with each other.
package transport

import (
	"sort"
	"sync"
	"time"

	"github.com/shhawkins/chord-wheel-writer/constants"
	"github.com/shhawkins/chord-wheel-writer/model"
)

// Trigger receives one due event. It runs on the clock goroutine, so it
// must not block; hand real work (note-ons) to the audio engine.
type Trigger func(ev model.ChordEvent)

// Silencer is what Stop uses to cut currently sounding voices. The
// synth engine satisfies this.
type Silencer interface {
	Silence()
}

type scheduled struct {
	ev model.ChordEvent
	// wall-clock offset from playback start, frozen at Schedule time
	// with the tempo current at that moment. Later tempo changes do not
	// rescale these.
	at  time.Duration
	end time.Duration
	seq int
}

// Scheduler converts beat-relative events into timed triggers against a
// shared clock. All transitions are explicit: Play, Pause, Stop. The
// only implicit transition is Playing -> Stopped when the final event
// has finished and no loop is active.
type Scheduler struct {
	mu sync.Mutex

	tempo    int
	trigger  Trigger
	silencer Silencer

	queue   []scheduled
	nextSeq int
	fired   map[int]bool

	status  model.PlaybackStatus
	loop    *model.LoopRange
	elapsed time.Duration // position at last pause/stop
	started time.Time     // wall time corresponding to elapsed == 0

	cancel chan struct{} // closes to tear down the run loop
	gen    int           // run-loop generation, guards stale loops
}

// New creates a stopped scheduler. tempo is in BPM and must be > 0.
func New(tempo int, trigger Trigger, silencer Silencer) *Scheduler {
	if tempo <= 0 {
		tempo = 120
	}
	return &Scheduler{
		tempo:    tempo,
		trigger:  trigger,
		silencer: silencer,
	}
}

// SecondsPerBeat reflects the current tempo.
func (s *Scheduler) SecondsPerBeat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 60.0 / float64(s.tempo)
}

// SetTempo changes the tempo for events scheduled from now on. Events
// already in the queue keep the absolute times they were given; that is
// the documented contract, not an oversight.
func (s *Scheduler) SetTempo(bpm int) {
	if bpm <= 0 {
		return
	}
	s.mu.Lock()
	s.tempo = bpm
	s.mu.Unlock()
}

// SetLoop installs a loop over [startBeats, endBeats). A nil range
// disables looping.
func (s *Scheduler) SetLoop(startBeats, endBeats float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if endBeats <= startBeats {
		s.loop = nil
		return
	}
	s.loop = &model.LoopRange{
		StartTicks: beatsToTicks(startBeats),
		EndTicks:   beatsToTicks(endBeats),
	}
}

// Schedule adds events to the queue, converting beat offsets to
// wall-clock offsets at the current tempo. Submission order is
// preserved for events that land on the same instant.
func (s *Scheduler) Schedule(events []model.ChordEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spb := 60.0 / float64(s.tempo)
	for _, ev := range events {
		if ev.Chord == nil {
			// rests occupy time but never trigger
			continue
		}
		s.queue = append(s.queue, scheduled{
			ev:  ev,
			at:  time.Duration(ev.StartBeats * spb * float64(time.Second)),
			end: time.Duration(ev.End() * spb * float64(time.Second)),
			seq: s.nextSeq,
		})
		s.nextSeq++
	}
	sort.SliceStable(s.queue, func(i, j int) bool {
		if s.queue[i].at != s.queue[j].at {
			return s.queue[i].at < s.queue[j].at
		}
		return s.queue[i].seq < s.queue[j].seq
	})
}

// Play starts from the stopped position or resumes from a pause.
// Calling Play while already playing is a no-op.
func (s *Scheduler) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == model.PlaybackPlaying {
		return
	}
	if s.status == model.PlaybackStopped {
		s.fired = make(map[int]bool)
	}
	s.status = model.PlaybackPlaying
	s.started = time.Now().Add(-s.elapsed)
	s.cancel = make(chan struct{})
	s.gen++
	go s.run(s.gen, s.cancel)
}

// Pause freezes the position. In-flight notes ring out; nothing new
// fires until Play.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != model.PlaybackPlaying {
		return
	}
	s.status = model.PlaybackPaused
	s.elapsed = time.Since(s.started)
	close(s.cancel)
	s.cancel = nil
}

// Stop cancels every pending trigger and silences sounding voices.
// Safe from any state and idempotent: a second Stop is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.status == model.PlaybackStopped {
		return
	}
	s.status = model.PlaybackStopped
	s.elapsed = 0
	if s.cancel != nil {
		close(s.cancel)
		s.cancel = nil
	}
	if s.silencer != nil {
		s.silencer.Silence()
	}
}

// State snapshots the transport.
func (s *Scheduler) State() model.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.elapsed
	if s.status == model.PlaybackPlaying {
		pos = time.Since(s.started)
	}
	spb := 60.0 / float64(s.tempo)
	state := model.PlaybackState{
		Status:        s.status,
		PositionTicks: beatsToTicks(pos.Seconds() / spb),
	}
	if s.loop != nil {
		l := *s.loop
		state.Loop = &l
	}
	return state
}

// run is the clock goroutine. One instance per Play; generation and
// cancel channel keep a stale loop from firing after Stop or Pause.
func (s *Scheduler) run(gen int, cancel chan struct{}) {
	for {
		s.mu.Lock()
		if s.status != model.PlaybackPlaying || s.gen != gen {
			s.mu.Unlock()
			return
		}

		now := time.Since(s.started)
		due, next, done := s.selectLocked(now)

		if done {
			// natural completion: last event has rung out, no loop
			s.stopLocked()
			s.mu.Unlock()
			return
		}

		trigger := s.trigger
		s.mu.Unlock()

		for _, ev := range due {
			select {
			case <-cancel:
				return
			default:
			}
			if trigger != nil {
				trigger(ev)
			}
		}

		timer := time.NewTimer(next)
		select {
		case <-cancel:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// selectLocked picks the events due at position now, the wait until the
// next wakeup, and whether playback has naturally completed. When a
// loop is active the transport position wraps from loop end back to
// loop start by shifting the start reference; in-flight notes are not
// cut at the seam.
func (s *Scheduler) selectLocked(now time.Duration) (due []model.ChordEvent, next time.Duration, done bool) {
	spb := 60.0 / float64(s.tempo)

	var loopStart, loopEnd time.Duration
	looping := s.loop != nil
	if looping {
		loopStart = time.Duration(ticksToBeats(s.loop.StartTicks) * spb * float64(time.Second))
		loopEnd = time.Duration(ticksToBeats(s.loop.EndTicks) * spb * float64(time.Second))
		if now >= loopEnd {
			// wrap: move the start reference forward one loop length and
			// let every loop event fire again on the new pass
			s.started = s.started.Add(loopEnd - loopStart)
			now -= loopEnd - loopStart
			s.fired = make(map[int]bool)
		}
	}

	const fireSlack = time.Millisecond
	var lastEnd time.Duration
	next = -1

	for _, sc := range s.queue {
		if looping && (sc.at < loopStart || sc.at >= loopEnd) {
			continue
		}
		if sc.end > lastEnd {
			lastEnd = sc.end
		}
		switch {
		case sc.at <= now+fireSlack:
			if !s.fired[sc.seq] {
				s.fired[sc.seq] = true
				due = append(due, sc.ev)
			}
		default:
			if next < 0 || sc.at-now < next {
				next = sc.at - now
			}
		}
	}

	if looping {
		if wait := loopEnd - now; next < 0 || wait < next {
			next = wait
		}
		if next < 0 {
			next = time.Millisecond * 10
		}
		return due, next, false
	}

	if next < 0 {
		if now >= lastEnd {
			return due, 0, len(due) == 0
		}
		next = lastEnd - now
	}
	return due, next, false
}

func beatsToTicks(beats float64) int64 {
	return int64(beats * constants.TicksPerQuarter)
}

func ticksToBeats(ticks int64) float64 {
	return float64(ticks) / constants.TicksPerQuarter
}
