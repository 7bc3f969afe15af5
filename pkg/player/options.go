package player

import "time"

// SeekMode selects when the post-seek position sample is emitted.
type SeekMode int

const (
	// SeekOnCompletion emits once the native seek reports completion.
	SeekOnCompletion SeekMode = iota
	// SeekDelayed emits a best-effort sample SeekDelay after issuing the seek.
	SeekDelayed
)

// String returns the configuration name of the mode.
func (m SeekMode) String() string {
	if m == SeekDelayed {
		return "delayed"
	}
	return "completion"
}

// Options tunes session behavior.
type Options struct {
	// PositionInterval is the cadence of "position" samples.
	PositionInterval time.Duration

	// GatePositionOnPlaying suppresses samples while the native player is
	// not actually playing.
	GatePositionOnPlaying bool

	// IncludeDuration adds "duration" to position payloads.
	IncludeDuration bool

	// EmitBuffered enables separate "buffered" events.
	EmitBuffered bool

	SeekMode  SeekMode
	SeekDelay time.Duration

	// PlaceholderWidth and PlaceholderHeight size the surface before the
	// real video dimensions are known.
	PlaceholderWidth  int
	PlaceholderHeight int

	// ValidateSource rejects malformed sources with an invalid_url error
	// before any native resource is created.
	ValidateSource bool
}

// DefaultOptions returns the stock settings: 100ms samples, completion
// seeks, a 1920x1080 placeholder.
func DefaultOptions() Options {
	return Options{
		PositionInterval:  100 * time.Millisecond,
		IncludeDuration:   true,
		EmitBuffered:      true,
		SeekMode:          SeekOnCompletion,
		SeekDelay:         100 * time.Millisecond,
		PlaceholderWidth:  1920,
		PlaceholderHeight: 1080,
		ValidateSource:    true,
	}
}

// normalized fills zero values with defaults.
func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.PositionInterval <= 0 {
		o.PositionInterval = d.PositionInterval
	}
	if o.SeekDelay <= 0 {
		o.SeekDelay = d.SeekDelay
	}
	if o.PlaceholderWidth <= 0 || o.PlaceholderHeight <= 0 {
		o.PlaceholderWidth, o.PlaceholderHeight = d.PlaceholderWidth, d.PlaceholderHeight
	}
	return o
}
