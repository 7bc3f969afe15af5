package simulator_test

import (
	"testing"
	"time"

	"github.com/go-drift/nativevideo/pkg/platform"
	"github.com/go-drift/nativevideo/pkg/player"
	"github.com/go-drift/nativevideo/pkg/simulator"
	vtest "github.com/go-drift/nativevideo/pkg/testing"
	"github.com/go-drift/nativevideo/pkg/texture"
)

func TestSessionOverSimulator(t *testing.T) {
	loop := platform.NewManualLooper()
	textures := texture.NewMemoryRegistry(loop.Post)
	sink := &vtest.RecordingSink{}
	s := player.NewSession(player.DefaultOptions(), player.Deps{
		Factory:   &simulator.Factory{Scheduler: loop, Clock: loop},
		Textures:  textures,
		Sink:      sink,
		Scheduler: loop,
	})
	defer s.Dispose()

	id, err := s.Initialize("sim://clip?duration=600&width=640&height=360&buffer=100")
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	s.Play()
	loop.Advance(time.Second)

	init := sink.Of(player.EventInitialized)
	if len(init) != 1 {
		t.Fatalf("initialized events: got %d, want 1", len(init))
	}
	if got := init[0].Data.(player.Initialized); got != (player.Initialized{Duration: 600, Width: 640, Height: 360}) {
		t.Errorf("initialized: got %+v", got)
	}

	want := []string{"buffering", "playing", "completed"}
	got := sink.States()
	if len(got) != len(want) {
		t.Fatalf("states: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("states[%d]: got %q, want %q", i, got[i], want[i])
		}
	}

	if w, h := textures.Producer(id).Size(); w != 640 || h != 360 {
		t.Errorf("texture size: %dx%d", w, h)
	}
	if textures.Producer(id).MemorySurface().Frames() == 0 {
		t.Error("no frames reached the texture")
	}
	if n := len(sink.Of(player.EventPosition)); n < 5 {
		t.Errorf("position events: got %d", n)
	}
}
