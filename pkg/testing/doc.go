// Package testing provides test doubles for the video player plugin.
//
// # Quick Start
//
// Drive a session with a fake engine and virtual time:
//
//	func TestReady(t *testing.T) {
//	    loop := platform.NewManualLooper()
//	    factory := &vtest.FakeFactory{}
//	    sink := &vtest.RecordingSink{}
//	    s := player.NewSession(player.DefaultOptions(), player.Deps{
//	        Factory:   factory,
//	        Textures:  texture.NewMemoryRegistry(nil),
//	        Sink:      sink,
//	        Scheduler: loop,
//	    })
//	    s.Initialize("https://example.com/a.mp4")
//
//	    factory.Last().Ready()
//	    loop.RunPending()
//
//	    if got := sink.Names(); got[0] != "initialized" {
//	        t.Errorf("first event = %q", got[0])
//	    }
//	}
//
// Fake players fire listener callbacks synchronously; the session's
// marshaling proxy posts them, so call RunPending (or Advance) afterwards.
package testing
