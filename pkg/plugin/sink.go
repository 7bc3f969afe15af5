package plugin

import (
	"sync"

	"github.com/go-drift/nativevideo/pkg/errors"
	"github.com/go-drift/nativevideo/pkg/platform"
	"github.com/go-drift/nativevideo/pkg/player"
)

// eventSink publishes session events on the event channel. Events sent
// while the host is not listening are dropped.
type eventSink struct {
	channel string

	mu   sync.Mutex
	sink platform.EventSink
}

func (s *eventSink) attach(sink platform.EventSink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

func (s *eventSink) detach() {
	s.mu.Lock()
	s.sink = nil
	s.mu.Unlock()
}

// Send implements player.Sink.
func (s *eventSink) Send(e player.Event) {
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	if sink == nil {
		return
	}
	if err := sink.Success(e); err != nil && !errors.Is(err, platform.ErrClosed) {
		errors.Report(&errors.PluginError{
			Op:      "plugin.eventSink.Send",
			Kind:    errors.KindPlatform,
			Channel: s.channel,
			Err:     err,
		})
	}
}
