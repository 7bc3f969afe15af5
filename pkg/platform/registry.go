package platform

import (
	"fmt"
	"sync"

	"github.com/go-drift/nativevideo/pkg/errors"
)

// channelRegistry manages all registered channels.
type channelRegistry struct {
	methodChannels map[string]*MethodChannel
	eventChannels  map[string]*EventChannel
	mu             sync.RWMutex
}

var registry = &channelRegistry{
	methodChannels: make(map[string]*MethodChannel),
	eventChannels:  make(map[string]*EventChannel),
}

func (r *channelRegistry) registerMethod(name string, ch *MethodChannel) {
	r.mu.Lock()
	r.methodChannels[name] = ch
	r.mu.Unlock()
}

func (r *channelRegistry) registerEvent(name string, ch *EventChannel) {
	r.mu.Lock()
	r.eventChannels[name] = ch
	r.mu.Unlock()
}

// unregisterMethod removes name only if it still maps to ch, so a stale
// channel cannot evict its replacement.
func (r *channelRegistry) unregisterMethod(name string, ch *MethodChannel) {
	r.mu.Lock()
	if r.methodChannels[name] == ch {
		delete(r.methodChannels, name)
	}
	r.mu.Unlock()
}

func (r *channelRegistry) unregisterEvent(name string, ch *EventChannel) {
	r.mu.Lock()
	if r.eventChannels[name] == ch {
		delete(r.eventChannels, name)
	}
	r.mu.Unlock()
}

func (r *channelRegistry) getMethodChannel(name string) *MethodChannel {
	r.mu.RLock()
	ch := r.methodChannels[name]
	r.mu.RUnlock()
	return ch
}

func (r *channelRegistry) getEventChannel(name string) *EventChannel {
	r.mu.RLock()
	ch := r.eventChannels[name]
	r.mu.RUnlock()
	return ch
}

// HostBridge is the outbound half of the connection to the host: the way
// events leave the plugin. The inbound half is the set of Handle* functions
// in this package, which the host calls.
type HostBridge interface {
	// SendEvent delivers an encoded event on the named channel.
	SendEvent(channel string, data []byte) error

	// SendEventError delivers a stream error on the named channel.
	SendEventError(channel string, err *ChannelError) error

	// SendEndOfStream tells the host the named stream has ended.
	SendEndOfStream(channel string) error
}

var (
	bridgeMu   sync.RWMutex
	hostBridge HostBridge
)

// SetHostBridge installs the host bridge. Passing nil disconnects.
func SetHostBridge(bridge HostBridge) {
	bridgeMu.Lock()
	hostBridge = bridge
	bridgeMu.Unlock()
}

func currentBridge() HostBridge {
	bridgeMu.RLock()
	defer bridgeMu.RUnlock()
	return hostBridge
}

func sendEvent(channel string, data []byte) error {
	b := currentBridge()
	if b == nil {
		return ErrNotConnected
	}
	if err := b.SendEvent(channel, data); err != nil {
		errors.Report(&errors.PluginError{
			Op:      "platform.sendEvent",
			Kind:    errors.KindPlatform,
			Channel: channel,
			Err:     err,
		})
		return err
	}
	return nil
}

func sendEventError(channel string, ce *ChannelError) error {
	b := currentBridge()
	if b == nil {
		return ErrNotConnected
	}
	return b.SendEventError(channel, ce)
}

func sendEndOfStream(channel string) {
	b := currentBridge()
	if b == nil {
		return
	}
	if err := b.SendEndOfStream(channel); err != nil {
		errors.Report(&errors.PluginError{
			Op:      "platform.sendEndOfStream",
			Kind:    errors.KindPlatform,
			Channel: channel,
			Err:     err,
		})
	}
}

// HandleMethodCall is called by the host to invoke a plugin method.
// The returned error is either a sentinel from this package or a
// [*ChannelError]; [AsChannelError] normalizes both for the wire.
func HandleMethodCall(channel, method string, argsData []byte) ([]byte, error) {
	ch := registry.getMethodChannel(channel)
	if ch == nil {
		return nil, ErrChannelNotFound
	}

	args, err := DefaultCodec.Decode(argsData)
	if err != nil {
		errors.Report(&errors.PluginError{
			Op:      "platform.HandleMethodCall",
			Kind:    errors.KindParsing,
			Channel: channel,
			Err:     err,
		})
		return nil, NewChannelError(CodeInvalidArgument, "arguments are not valid JSON")
	}
	if _, ok := args.(map[string]any); args != nil && !ok {
		errors.Report(&errors.PluginError{
			Op:      "platform.HandleMethodCall",
			Kind:    errors.KindParsing,
			Channel: channel,
			Err:     &errors.ParseError{Channel: channel, DataType: "arguments object", Got: args},
		})
	}

	result, err := ch.handleCall(method, args)
	if err != nil {
		return nil, err
	}

	return DefaultCodec.Encode(result)
}

// ErrChannelNotRegistered is returned when the host listens to an
// unregistered event channel.
var ErrChannelNotRegistered = fmt.Errorf("event channel not registered")

// HandleListen is called by the host when it subscribes to an event channel.
func HandleListen(channel string) error {
	ch := registry.getEventChannel(channel)
	if ch == nil {
		err := fmt.Errorf("%w: %s", ErrChannelNotRegistered, channel)
		errors.Report(&errors.PluginError{
			Op:      "platform.HandleListen",
			Kind:    errors.KindPlatform,
			Channel: channel,
			Err:     err,
		})
		return err
	}
	ch.listen()
	return nil
}

// HandleCancel is called by the host when it unsubscribes from an event channel.
func HandleCancel(channel string) error {
	ch := registry.getEventChannel(channel)
	if ch == nil {
		return fmt.Errorf("%w: %s", ErrChannelNotRegistered, channel)
	}
	ch.cancel()
	return nil
}

// ResetForTest clears the bridge, dispatch hook and every registered
// channel. It should only be called from tests.
func ResetForTest() {
	SetHostBridge(nil)

	registry.mu.Lock()
	registry.methodChannels = make(map[string]*MethodChannel)
	registry.eventChannels = make(map[string]*EventChannel)
	registry.mu.Unlock()

	dispatchMu.Lock()
	dispatchFunc = nil
	dispatchMu.Unlock()
}
