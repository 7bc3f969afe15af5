package player

// State is the lifecycle state of a playback session. The first five
// values are the ones reported to the host in "state" events; Errored and
// Disposed are internal phases.
type State int

const (
	// StateIdle indicates the player exists but has no media prepared.
	StateIdle State = iota

	// StateBuffering indicates the player is waiting for media data.
	StateBuffering

	// StatePlaying indicates playback is running (or has been requested).
	StatePlaying

	// StatePaused indicates the player is ready and paused.
	StatePaused

	// StateCompleted indicates playback reached the end of the media.
	StateCompleted

	// StateErrored indicates an unrecoverable failure. The session stays
	// alive until disposed or replaced.
	StateErrored

	// StateDisposed indicates the session released its resources.
	StateDisposed
)

// String returns a human-readable label for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateBuffering:
		return "Buffering"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateCompleted:
		return "Completed"
	case StateErrored:
		return "Errored"
	case StateDisposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}

// WireName returns the string carried by a "state" event, or "" for
// states that are never reported.
func (s State) WireName() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuffering:
		return "buffering"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	default:
		return ""
	}
}

// ParseState maps a wire name back to a State.
func ParseState(name string) (State, bool) {
	switch name {
	case "idle":
		return StateIdle, true
	case "buffering":
		return StateBuffering, true
	case "playing":
		return StatePlaying, true
	case "paused":
		return StatePaused, true
	case "completed":
		return StateCompleted, true
	default:
		return StateIdle, false
	}
}
