package texture

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

type recordingCallback struct {
	available, destroyed int
}

func (c *recordingCallback) OnSurfaceAvailable() { c.available++ }
func (c *recordingCallback) OnSurfaceDestroyed() { c.destroyed++ }

func TestMemoryRegistry_FirstSizeAllocates(t *testing.T) {
	r := NewMemoryRegistry(nil)
	p, err := r.CreateSurfaceProducer()
	if err != nil {
		t.Fatalf("CreateSurfaceProducer: %v", err)
	}
	cb := &recordingCallback{}
	p.SetCallback(cb)

	if p.Surface() != nil {
		t.Fatal("surface should not exist before SetSize")
	}
	p.SetSize(320, 240)
	p.SetSize(640, 480)

	if cb.available != 1 {
		t.Errorf("OnSurfaceAvailable calls: got %d, want 1", cb.available)
	}
	s := r.Producer(p.ID()).MemorySurface()
	if got := s.Bounds(); got.Dx() != 640 || got.Dy() != 480 {
		t.Errorf("bounds after resize: got %v", got)
	}
}

func TestMemoryRegistry_IDsAreUnique(t *testing.T) {
	r := NewMemoryRegistry(nil)
	a, _ := r.CreateSurfaceProducer()
	b, _ := r.CreateSurfaceProducer()
	if a.ID() == b.ID() {
		t.Errorf("duplicate texture id %d", a.ID())
	}
	if r.Len() != 2 {
		t.Errorf("Len(): got %d, want 2", r.Len())
	}
}

func TestMemoryRegistry_FailNext(t *testing.T) {
	r := NewMemoryRegistry(nil)
	want := errors.New("out of textures")
	r.FailNext(want)

	if _, err := r.CreateSurfaceProducer(); !errors.Is(err, want) {
		t.Errorf("first create: got %v, want %v", err, want)
	}
	if _, err := r.CreateSurfaceProducer(); err != nil {
		t.Errorf("second create: %v", err)
	}
}

func TestMemoryRegistry_DestroyRecreate(t *testing.T) {
	r := NewMemoryRegistry(nil)
	p, _ := r.CreateSurfaceProducer()
	cb := &recordingCallback{}
	p.SetCallback(cb)
	p.SetSize(16, 16)
	first := p.Surface()

	if err := r.Destroy(p.ID()); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if first.IsValid() {
		t.Error("destroyed surface still valid")
	}
	if p.Surface() != nil {
		t.Error("producer still reports a surface")
	}

	if err := r.Recreate(p.ID()); err != nil {
		t.Fatalf("Recreate: %v", err)
	}
	if s := p.Surface(); s == nil || !s.IsValid() || s == first {
		t.Error("expected a fresh valid surface")
	}
	if cb.available != 2 || cb.destroyed != 1 {
		t.Errorf("callbacks: available=%d destroyed=%d", cb.available, cb.destroyed)
	}
}

func TestMemoryProducer_Release(t *testing.T) {
	r := NewMemoryRegistry(nil)
	p, _ := r.CreateSurfaceProducer()
	cb := &recordingCallback{}
	p.SetCallback(cb)
	p.SetSize(8, 8)
	s := p.Surface()

	p.Release()
	p.Release()

	if r.Len() != 0 {
		t.Errorf("Len(): got %d, want 0", r.Len())
	}
	if s.IsValid() {
		t.Error("surface valid after release")
	}
	if err := r.Destroy(p.ID()); !errors.Is(err, ErrReleased) {
		t.Errorf("Destroy after release: got %v, want ErrReleased", err)
	}
	p.SetSize(32, 32)
	if cb.available != 1 {
		t.Error("released producer must not allocate again")
	}
}

func TestMemoryRegistry_DispatchDefersCallbacks(t *testing.T) {
	var queued []func()
	r := NewMemoryRegistry(func(fn func()) { queued = append(queued, fn) })
	p, _ := r.CreateSurfaceProducer()
	cb := &recordingCallback{}
	p.SetCallback(cb)

	p.SetSize(4, 4)
	if cb.available != 0 {
		t.Fatal("callback should wait for dispatch")
	}
	for _, fn := range queued {
		fn()
	}
	if cb.available != 1 {
		t.Errorf("OnSurfaceAvailable calls: got %d, want 1", cb.available)
	}
}

func TestMemorySurface_WriteFrameScales(t *testing.T) {
	r := NewMemoryRegistry(nil)
	p, _ := r.CreateSurfaceProducer()
	p.SetSize(8, 8)
	s := r.Producer(p.ID()).MemorySurface()

	frame := image.NewRGBA(image.Rect(0, 0, 2, 2))
	red := color.RGBA{R: 255, A: 255}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			frame.Set(x, y, red)
		}
	}

	if err := s.WriteFrame(frame); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if s.Frames() != 1 {
		t.Errorf("Frames(): got %d, want 1", s.Frames())
	}
	snap := s.Snapshot()
	if got := snap.RGBAAt(4, 4); got != red {
		t.Errorf("center pixel: got %v, want %v", got, red)
	}

	r.Destroy(p.ID())
	if err := s.WriteFrame(frame); !errors.Is(err, ErrInvalidSurface) {
		t.Errorf("write to destroyed surface: got %v, want ErrInvalidSurface", err)
	}
}
