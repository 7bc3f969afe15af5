package platform

import (
	"sync"
	"sync/atomic"
)

// MethodHandler handles incoming method calls on a channel.
type MethodHandler func(method string, args any) (any, error)

// MethodChannel receives request/response method calls from the host.
type MethodChannel struct {
	name  string
	codec MessageCodec

	mu      sync.RWMutex
	handler MethodHandler
}

// NewMethodChannel creates a method channel and registers it under name.
// Registering a second channel with the same name replaces the first.
func NewMethodChannel(name string) *MethodChannel {
	ch := &MethodChannel{
		name:  name,
		codec: DefaultCodec,
	}
	registry.registerMethod(name, ch)
	return ch
}

// Name returns the channel name.
func (c *MethodChannel) Name() string {
	return c.name
}

// SetHandler sets the handler for incoming method calls. A nil handler makes
// every call fail with [ErrMethodNotImplemented].
func (c *MethodChannel) SetHandler(handler MethodHandler) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

// Unregister removes the channel from the registry and drops its handler.
func (c *MethodChannel) Unregister() {
	c.SetHandler(nil)
	registry.unregisterMethod(c.name, c)
}

func (c *MethodChannel) handleCall(method string, args any) (any, error) {
	c.mu.RLock()
	h := c.handler
	c.mu.RUnlock()
	if h == nil {
		return nil, ErrMethodNotImplemented
	}
	return h(method, args)
}

// EventSink pushes events to the host while a listener is attached.
type EventSink interface {
	// Success sends one event payload.
	Success(data any) error
	// Error sends an error on the stream. The stream stays open.
	Error(code, message string, details any) error
	// EndOfStream closes the stream from the plugin side.
	EndOfStream()
}

// StreamHandler is notified when the host starts or stops listening to an
// event channel.
type StreamHandler struct {
	// OnListen receives the sink to publish into. The sink stays valid until
	// OnCancel is called or the sink is closed with EndOfStream.
	OnListen func(sink EventSink)
	// OnCancel reports that the host stopped listening.
	OnCancel func()
}

// EventChannel is a push-only stream from the plugin to the host.
type EventChannel struct {
	name  string
	codec MessageCodec

	mu      sync.Mutex
	handler *StreamHandler
	sink    *channelSink
}

// NewEventChannel creates an event channel and registers it under name.
func NewEventChannel(name string) *EventChannel {
	ch := &EventChannel{
		name:  name,
		codec: DefaultCodec,
	}
	registry.registerEvent(name, ch)
	return ch
}

// Name returns the channel name.
func (c *EventChannel) Name() string {
	return c.name
}

// SetStreamHandler installs the listen/cancel handler. Passing nil cancels
// any active listener.
func (c *EventChannel) SetStreamHandler(h *StreamHandler) {
	c.mu.Lock()
	prev := c.handler
	sink := c.sink
	c.handler = h
	if h == nil {
		c.sink = nil
	}
	c.mu.Unlock()

	if h == nil && sink != nil {
		sink.closed.Store(true)
		if prev != nil && prev.OnCancel != nil {
			prev.OnCancel()
		}
	}
}

// Unregister cancels the listener and removes the channel from the registry.
func (c *EventChannel) Unregister() {
	c.SetStreamHandler(nil)
	registry.unregisterEvent(c.name, c)
}

// Listening reports whether a host listener is attached.
func (c *EventChannel) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sink != nil && !c.sink.closed.Load()
}

// listen attaches a fresh sink. A second listen replaces the first sink,
// which is closed.
func (c *EventChannel) listen() {
	c.mu.Lock()
	old := c.sink
	sink := &channelSink{channel: c}
	c.sink = sink
	h := c.handler
	c.mu.Unlock()

	if old != nil {
		old.closed.Store(true)
	}
	if h != nil && h.OnListen != nil {
		h.OnListen(sink)
	}
}

func (c *EventChannel) cancel() {
	c.mu.Lock()
	sink := c.sink
	c.sink = nil
	h := c.handler
	c.mu.Unlock()

	if sink == nil {
		return
	}
	sink.closed.Store(true)
	if h != nil && h.OnCancel != nil {
		h.OnCancel()
	}
}

// channelSink encodes events and forwards them through the host bridge.
type channelSink struct {
	channel *EventChannel
	closed  atomic.Bool
}

func (s *channelSink) Success(data any) error {
	if s.closed.Load() {
		return ErrClosed
	}
	payload, err := s.channel.codec.Encode(data)
	if err != nil {
		return err
	}
	return sendEvent(s.channel.name, payload)
}

func (s *channelSink) Error(code, message string, details any) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return sendEventError(s.channel.name, &ChannelError{Code: code, Message: message, Details: details})
}

func (s *channelSink) EndOfStream() {
	if s.closed.CompareAndSwap(false, true) {
		sendEndOfStream(s.channel.name)
	}
}
