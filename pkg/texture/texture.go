// Package texture abstracts the host's texture registry: the source of
// drawable surfaces into which a native player presents decoded frames.
//
// A [Registry] issues [SurfaceProducer] values. A producer owns a texture id
// that the host composites on screen; the [Surface] behind it may come and
// go (view recycling), which the producer reports through its
// [SurfaceCallback].
package texture

import (
	"errors"
	"image"
)

// Registry issues surface producers.
type Registry interface {
	CreateSurfaceProducer() (SurfaceProducer, error)
}

// SurfaceProducer is one registered texture and its current drawable surface.
type SurfaceProducer interface {
	// ID is the texture id handed back to the host.
	ID() int64

	// SetSize requests a surface of the given pixel size. The first call
	// prompts the host to allocate the surface.
	SetSize(width, height int)

	// Size returns the last requested size.
	Size() (width, height int)

	// Surface returns the current surface, or nil while none exists.
	Surface() Surface

	// SetCallback installs the availability callback, replacing any
	// previous one.
	SetCallback(cb SurfaceCallback)

	// Release unregisters the texture. The producer is unusable afterwards.
	Release()
}

// Surface is a drawable target owned by the host.
type Surface interface {
	IsValid() bool
}

// FrameWriter is implemented by surfaces that accept frames from Go code
// rather than from a hardware decoder.
type FrameWriter interface {
	WriteFrame(frame image.Image) error
}

// SurfaceCallback receives surface lifecycle notifications. Both methods
// are delivered on the host's main context.
type SurfaceCallback interface {
	OnSurfaceAvailable()
	OnSurfaceDestroyed()
}

// Errors returned by surfaces and registries.
var (
	ErrReleased       = errors.New("texture: producer released")
	ErrInvalidSurface = errors.New("texture: surface is not valid")
)
