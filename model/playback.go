package model

// PlaybackStatus is the transport state.
type PlaybackStatus uint8

const (
	PlaybackStopped PlaybackStatus = iota
	PlaybackPlaying
	PlaybackPaused
)

func (s PlaybackStatus) String() string {
	switch s {
	case PlaybackPlaying:
		return "playing"
	case PlaybackPaused:
		return "paused"
	default:
		return "stopped"
	}
}

// LoopRange is a half-open [Start, End) tick region.
type LoopRange struct {
	StartTicks int64 `json:"startTicks" yaml:"startTicks"`
	EndTicks   int64 `json:"endTicks" yaml:"endTicks"`
}

// PlaybackState is owned by the scheduler and only mutated through its
// transitions. Position is measured in SMF-resolution ticks.
type PlaybackState struct {
	Status        PlaybackStatus `json:"status"`
	PositionTicks int64          `json:"positionTicks"`
	Loop          *LoopRange     `json:"loop,omitempty"`
}
