package texture

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"golang.org/x/image/draw"
)

// MemoryRegistry is an in-process texture registry whose surfaces are RGBA
// frame buffers. It stands in for a host compositor in the host simulator
// and in tests, including host-driven surface destruction.
type MemoryRegistry struct {
	nextID   atomic.Int64
	dispatch func(func())

	mu        sync.Mutex
	producers map[int64]*MemoryProducer
	failNext  error
}

// NewMemoryRegistry creates a registry. Surface callbacks are delivered
// through dispatch, which should post onto the host's main context; nil
// delivers them synchronously.
func NewMemoryRegistry(dispatch func(func())) *MemoryRegistry {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &MemoryRegistry{
		dispatch:  dispatch,
		producers: make(map[int64]*MemoryProducer),
	}
}

// CreateSurfaceProducer implements Registry.
func (r *MemoryRegistry) CreateSurfaceProducer() (SurfaceProducer, error) {
	r.mu.Lock()
	if err := r.failNext; err != nil {
		r.failNext = nil
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()

	p := &MemoryProducer{id: r.nextID.Add(1), registry: r}

	r.mu.Lock()
	r.producers[p.id] = p
	r.mu.Unlock()
	return p, nil
}

// FailNext makes the next CreateSurfaceProducer call return err.
func (r *MemoryRegistry) FailNext(err error) {
	r.mu.Lock()
	r.failNext = err
	r.mu.Unlock()
}

// Producer returns a live producer by texture id.
func (r *MemoryRegistry) Producer(id int64) *MemoryProducer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.producers[id]
}

// Len reports the number of registered (unreleased) textures.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.producers)
}

// Destroy simulates the host tearing down the surface behind texture id,
// as happens when a view is recycled. The texture stays registered.
func (r *MemoryRegistry) Destroy(id int64) error {
	p := r.Producer(id)
	if p == nil {
		return fmt.Errorf("texture %d: %w", id, ErrReleased)
	}
	p.destroySurface()
	return nil
}

// Recreate simulates the host allocating a fresh surface for texture id.
func (r *MemoryRegistry) Recreate(id int64) error {
	p := r.Producer(id)
	if p == nil {
		return fmt.Errorf("texture %d: %w", id, ErrReleased)
	}
	p.createSurface()
	return nil
}

func (r *MemoryRegistry) remove(id int64) {
	r.mu.Lock()
	delete(r.producers, id)
	r.mu.Unlock()
}

// MemoryProducer is the SurfaceProducer issued by MemoryRegistry.
type MemoryProducer struct {
	id       int64
	registry *MemoryRegistry

	mu       sync.Mutex
	width    int
	height   int
	surface  *MemorySurface
	cb       SurfaceCallback
	released bool
	sized    bool
}

// ID implements SurfaceProducer.
func (p *MemoryProducer) ID() int64 { return p.id }

// SetSize implements SurfaceProducer. The first call allocates the surface;
// later calls rescale the existing frame buffer.
func (p *MemoryProducer) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return
	}
	p.width, p.height = width, height
	first := !p.sized
	p.sized = true
	s := p.surface
	p.mu.Unlock()

	if first {
		p.createSurface()
		return
	}
	if s != nil {
		s.resize(width, height)
	}
}

// Size implements SurfaceProducer.
func (p *MemoryProducer) Size() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// Surface implements SurfaceProducer.
func (p *MemoryProducer) Surface() Surface {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.surface == nil {
		return nil
	}
	return p.surface
}

// MemorySurface returns the concrete surface, or nil.
func (p *MemoryProducer) MemorySurface() *MemorySurface {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.surface
}

// SetCallback implements SurfaceProducer.
func (p *MemoryProducer) SetCallback(cb SurfaceCallback) {
	p.mu.Lock()
	p.cb = cb
	p.mu.Unlock()
}

// Release implements SurfaceProducer.
func (p *MemoryProducer) Release() {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return
	}
	p.released = true
	s := p.surface
	p.surface = nil
	p.cb = nil
	p.mu.Unlock()

	if s != nil {
		s.valid.Store(false)
	}
	p.registry.remove(p.id)
}

// Released reports whether Release has been called.
func (p *MemoryProducer) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

func (p *MemoryProducer) createSurface() {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return
	}
	if p.surface != nil {
		p.surface.valid.Store(false)
	}
	s := newMemorySurface(p.width, p.height)
	p.surface = s
	p.mu.Unlock()

	p.registry.dispatch(func() {
		if cb := p.callback(); cb != nil && s.IsValid() {
			cb.OnSurfaceAvailable()
		}
	})
}

func (p *MemoryProducer) destroySurface() {
	p.mu.Lock()
	s := p.surface
	p.surface = nil
	p.mu.Unlock()
	if s == nil {
		return
	}
	s.valid.Store(false)

	p.registry.dispatch(func() {
		if cb := p.callback(); cb != nil {
			cb.OnSurfaceDestroyed()
		}
	})
}

func (p *MemoryProducer) callback() SurfaceCallback {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return nil
	}
	return p.cb
}

// MemorySurface is an RGBA frame buffer.
type MemorySurface struct {
	valid  atomic.Bool
	frames atomic.Int64

	mu  sync.Mutex
	img *image.RGBA
}

func newMemorySurface(width, height int) *MemorySurface {
	s := &MemorySurface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	s.valid.Store(true)
	return s
}

// IsValid implements Surface.
func (s *MemorySurface) IsValid() bool { return s.valid.Load() }

// WriteFrame implements FrameWriter. The frame is scaled to the surface size.
func (s *MemorySurface) WriteFrame(frame image.Image) error {
	if !s.IsValid() {
		return ErrInvalidSurface
	}
	s.mu.Lock()
	draw.ApproxBiLinear.Scale(s.img, s.img.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	s.mu.Unlock()
	s.frames.Add(1)
	return nil
}

// Frames reports how many frames have been written.
func (s *MemorySurface) Frames() int64 { return s.frames.Load() }

// Snapshot returns a copy of the current frame buffer.
func (s *MemorySurface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := image.NewRGBA(s.img.Bounds())
	draw.Draw(out, out.Bounds(), s.img, s.img.Bounds().Min, draw.Src)
	return out
}

// Bounds returns the surface pixel rectangle.
func (s *MemorySurface) Bounds() image.Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img.Bounds()
}

// resize reallocates the buffer and rescales the current contents into it.
func (s *MemorySurface) resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img.Bounds().Dx() == width && s.img.Bounds().Dy() == height {
		return
	}
	next := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(next, next.Bounds(), s.img, s.img.Bounds(), draw.Src, nil)
	s.img = next
}
