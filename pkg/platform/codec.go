// Package platform provides the channel layer between the plugin and its host.
// The host invokes plugin methods over a [MethodChannel] and receives
// asynchronous notifications from an [EventChannel]. Messages cross the
// boundary as bytes produced by a [MessageCodec].
package platform

import (
	"bytes"
	"encoding/json"
	"errors"
)

// MessageCodec encodes and decodes messages for channel communication.
type MessageCodec interface {
	// Encode converts a Go value to bytes for transmission to the host.
	Encode(value any) ([]byte, error)

	// Decode converts bytes received from the host to a Go value.
	Decode(data []byte) (any, error)
}

// JsonCodec implements MessageCodec using JSON encoding. Numbers are
// decoded as [json.Number] so integer arguments such as millisecond
// positions survive without float rounding.
type JsonCodec struct{}

// Encode serializes the value to JSON bytes.
func (c JsonCodec) Encode(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Decode deserializes JSON bytes to a Go value.
func (c JsonCodec) Decode(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var result any
	if err := dec.Decode(&result); err != nil {
		return nil, err
	}
	return result, nil
}

// DefaultCodec is the codec used by channels.
var DefaultCodec MessageCodec = JsonCodec{}

// Standard errors for channel operations.
var (
	// ErrChannelNotFound indicates the requested channel is not registered.
	ErrChannelNotFound = errors.New("platform channel not found")

	// ErrMethodNotImplemented indicates the plugin has no handler for the method.
	ErrMethodNotImplemented = errors.New("method not implemented")
)

// Error codes carried by [ChannelError] results.
const (
	// CodeInvalidArgument marks a command whose required argument was
	// missing or had the wrong type.
	CodeInvalidArgument = "INVALID_ARGUMENT"

	// CodeNotImplemented marks an unknown command name.
	CodeNotImplemented = "NOT_IMPLEMENTED"

	// CodeInternal marks a handler failure that was recovered.
	CodeInternal = "INTERNAL"
)

// ChannelError is an error result returned to the host for a method call.
type ChannelError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *ChannelError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// NewChannelError creates a new ChannelError with the given code and message.
func NewChannelError(code, message string) *ChannelError {
	return &ChannelError{Code: code, Message: message}
}

// AsChannelError converts any handler error into the structured form sent
// back to the host.
func AsChannelError(err error) *ChannelError {
	if err == nil {
		return nil
	}
	var ce *ChannelError
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, ErrMethodNotImplemented) {
		return NewChannelError(CodeNotImplemented, err.Error())
	}
	return NewChannelError(CodeInternal, err.Error())
}
