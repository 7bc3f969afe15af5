package player

// Event names used in the envelope.
const (
	EventInitialized = "initialized"
	EventState       = "state"
	EventPosition    = "position"
	EventBuffered    = "buffered"
	EventError       = "error"
)

// Event is the uniform envelope for every asynchronous notification.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Initialized is the payload of the one-time "initialized" event.
type Initialized struct {
	Duration int64 `json:"duration"`
	Width    int   `json:"width"`
	Height   int   `json:"height"`
}

// Position is the payload of "position" events.
type Position struct {
	Position         int64  `json:"position"`
	BufferedPosition int64  `json:"bufferedPosition"`
	Duration         *int64 `json:"duration,omitempty"`
}

// ErrorData is the payload of "error" events.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Sink receives events from a session.
type Sink interface {
	Send(e Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Send implements Sink.
func (f SinkFunc) Send(e Event) { f(e) }
