package player

import "errors"

// Error codes carried in "error" events. Native adapters do not choose
// these; the session picks the code from where the failure happened.
const (
	// CodeInitializationError means the session could not acquire what it
	// needs before building a player (e.g. no texture).
	CodeInitializationError = "initialization_error"

	// CodePlayerSetupError means the native player could not be built or
	// could not accept the source.
	CodePlayerSetupError = "player_setup_error"

	// CodePlaybackError means the native player failed after setup.
	CodePlaybackError = "playback_error"

	// CodeInvalidURL means the source is not a usable URL.
	CodeInvalidURL = "invalid_url"
)

// Sentinel errors returned by Session methods.
var (
	ErrDisposed           = errors.New("player: session disposed")
	ErrInvalidSource      = errors.New("player: invalid source")
	ErrAlreadyInitialized = errors.New("player: session already initialized")
)
