// Package errors provides structured error handling for the video player plugin.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindPlatform indicates a host channel or bridge error.
	KindPlatform
	// KindParsing indicates a failure to decode host-supplied data.
	KindParsing
	// KindInit indicates a session could not be initialized (bad source,
	// surface acquisition failure).
	KindInit
	// KindSetup indicates the native player could not be constructed.
	KindSetup
	// KindPlayback indicates a native failure during playback.
	KindPlayback
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindParsing:
		return "parsing"
	case KindInit:
		return "init"
	case KindSetup:
		return "setup"
	case KindPlayback:
		return "playback"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// PluginError represents a structured error raised inside the plugin.
type PluginError struct {
	// Op is the operation that failed (e.g., "player.Session.Initialize").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Channel is the host channel name, if applicable.
	Channel string
	// Session is the playback session id, if applicable.
	Session string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *PluginError) Error() string {
	switch {
	case e.Channel != "":
		return fmt.Sprintf("%s [%s] channel=%s: %v", e.Op, e.Kind, e.Channel, e.Err)
	case e.Session != "":
		return fmt.Sprintf("%s [%s] session=%s: %v", e.Op, e.Kind, e.Session, e.Err)
	default:
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "plugin.HandleMethodCall").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ParseError represents a failure to decode a host message.
type ParseError struct {
	// Channel is the channel that received the message.
	Channel string
	// DataType is the expected type name.
	DataType string
	// Got is the actual data received.
	Got any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s from channel %s: got %T", e.DataType, e.Channel, e.Got)
}

// ErrorHandler receives errors reported by the plugin.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *PluginError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
