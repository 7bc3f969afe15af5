package player

import "github.com/go-drift/nativevideo/pkg/texture"

// NativePlayer is the capability the session needs from a platform media
// engine (an OS media framework or the in-process simulator). Methods are
// called on the session's scheduler and must not block; outcomes are
// reported later through the [Listener] given to the [Factory].
type NativePlayer interface {
	// SetSource loads and prepares uri. Readiness arrives via OnReady.
	SetSource(uri string) error

	Play()
	Pause()

	// SeekTo requests a seek. done, if non-nil, is called once the seek
	// settles; finished is false when it was superseded.
	SeekTo(positionMs int64, done func(finished bool))

	SetVolume(volume float64)
	SetSpeed(speed float64)
	SetLooping(enabled bool)

	// LoopsNatively reports whether the engine restarts media by itself
	// when looping is on. If false the session restarts it on OnEnded.
	LoopsNatively() bool

	// AttachSurface directs video output to s.
	AttachSurface(s texture.Surface) error
	// DetachSurface stops video output without tearing the player down.
	DetachSurface()

	// Position, Buffered and Duration are in milliseconds. Duration is 0
	// while unknown.
	Position() int64
	Buffered() int64
	Duration() int64

	// VideoSize is 0x0 while unknown.
	VideoSize() (width, height int)

	// Rate is the current playback rate; 0 means not advancing.
	Rate() float64
	IsPlaying() bool

	// Release frees the engine. No callbacks may follow.
	Release()
}

// Listener receives native player callbacks. Engines may call it from any
// goroutine; the session never receives these calls directly but through
// a proxy that marshals them onto its scheduler.
type Listener interface {
	OnReady()
	OnBuffering()
	OnIdle()
	OnEnded()
	OnError(err error)
	OnPositionTick()
	OnVideoSizeKnown(width, height int)
	OnBufferedChanged()
}

// Factory builds native players.
type Factory interface {
	NewPlayer(l Listener) (NativePlayer, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(l Listener) (NativePlayer, error)

// NewPlayer implements Factory.
func (f FactoryFunc) NewPlayer(l Listener) (NativePlayer, error) { return f(l) }
