// Package host exposes a plugin instance over HTTP: method calls as POST
// requests and event channels as server-sent event streams.
package host

import "sync"

const subBufferSize = 64

// Message kinds carried on the bus.
const (
	KindEvent = "event"
	KindError = "error"
	KindEnd   = "end"
)

// Message is one outbound item on an event channel.
type Message struct {
	Kind string
	Data []byte
}

// Bus fans event channel traffic out to SSE subscribers. Publishing never
// blocks: a subscriber that falls behind loses messages.
type Bus struct {
	mu   sync.Mutex
	subs map[string]map[string]chan Message
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[string]chan Message)}
}

// Subscribe registers id on channel. first reports whether id is the only
// subscriber, i.e. whether the host should start listening.
func (b *Bus) Subscribe(channel, id string) (ch <-chan Message, first bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.subs[channel]
	if !ok {
		subs = make(map[string]chan Message)
		b.subs[channel] = subs
	}
	c := make(chan Message, subBufferSize)
	subs[id] = c
	return c, len(subs) == 1
}

// Unsubscribe removes id and closes its channel. last reports whether the
// channel has no subscribers left.
func (b *Bus) Unsubscribe(channel, id string) (last bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[channel]
	if c, ok := subs[id]; ok {
		delete(subs, id)
		close(c)
	} else {
		return false
	}
	if len(subs) == 0 {
		delete(b.subs, channel)
		return true
	}
	return false
}

// Publish delivers m to every subscriber of channel.
func (b *Bus) Publish(channel string, m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.subs[channel] {
		select {
		case c <- m:
		default:
		}
	}
}

// SubscriberCount returns the number of subscribers on channel.
func (b *Bus) SubscriberCount(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[channel])
}
