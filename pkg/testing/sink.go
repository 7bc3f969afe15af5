package testing

import (
	"sync"

	"github.com/samber/lo"

	"github.com/go-drift/nativevideo/pkg/player"
)

// RecordingSink is a player.Sink that keeps every event.
type RecordingSink struct {
	mu     sync.Mutex
	events []player.Event
}

// Send implements player.Sink.
func (s *RecordingSink) Send(e player.Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (s *RecordingSink) Events() []player.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]player.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Names returns the event names in order.
func (s *RecordingSink) Names() []string {
	return lo.Map(s.Events(), func(e player.Event, _ int) string { return e.Name })
}

// Of returns the events named name.
func (s *RecordingSink) Of(name string) []player.Event {
	return lo.Filter(s.Events(), func(e player.Event, _ int) bool { return e.Name == name })
}

// States returns the payloads of "state" events in order.
func (s *RecordingSink) States() []string {
	return lo.FilterMap(s.Events(), func(e player.Event, _ int) (string, bool) {
		if e.Name != player.EventState {
			return "", false
		}
		st, ok := e.Data.(string)
		return st, ok
	})
}

// Len returns the number of recorded events.
func (s *RecordingSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Reset discards recorded events.
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	s.events = nil
	s.mu.Unlock()
}
