package host

import (
	"encoding/json"

	"github.com/go-drift/nativevideo/pkg/platform"
)

// Bridge is the platform.HostBridge of the HTTP host: outbound plugin
// traffic goes onto the bus.
type Bridge struct {
	bus *Bus
}

// NewBridge creates a bridge publishing to bus.
func NewBridge(bus *Bus) *Bridge {
	return &Bridge{bus: bus}
}

// SendEvent implements platform.HostBridge.
func (b *Bridge) SendEvent(channel string, data []byte) error {
	b.bus.Publish(channel, Message{Kind: KindEvent, Data: data})
	return nil
}

// SendEventError implements platform.HostBridge.
func (b *Bridge) SendEventError(channel string, ce *platform.ChannelError) error {
	data, err := json.Marshal(ce)
	if err != nil {
		return err
	}
	b.bus.Publish(channel, Message{Kind: KindError, Data: data})
	return nil
}

// SendEndOfStream implements platform.HostBridge.
func (b *Bridge) SendEndOfStream(channel string) error {
	b.bus.Publish(channel, Message{Kind: KindEnd, Data: []byte("null")})
	return nil
}
