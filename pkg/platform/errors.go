package platform

import "errors"

// Sentinel errors for bridge state.
var (
	// ErrClosed is returned when operating on a closed channel or sink.
	ErrClosed = errors.New("platform: channel closed")

	// ErrNotConnected is returned when no host bridge has been installed.
	ErrNotConnected = errors.New("platform: not connected")
)
