package errors

import (
	"github.com/sirupsen/logrus"

	"github.com/go-drift/nativevideo/pkg/logging"
)

// LogHandler is an ErrorHandler that writes errors through the shared
// logrus logger.
type LogHandler struct {
	// Verbose attaches stack traces to the log entries.
	Verbose bool
}

// HandleError logs a PluginError at error level.
func (h *LogHandler) HandleError(err *PluginError) {
	if err == nil {
		return
	}
	fields := logrus.Fields{
		"op":   err.Op,
		"kind": err.Kind.String(),
	}
	if err.Channel != "" {
		fields["channel"] = err.Channel
	}
	if err.Session != "" {
		fields["session"] = err.Session
	}
	if h.Verbose && err.StackTrace != "" {
		fields["stack"] = err.StackTrace
	}
	logging.For("errors").WithFields(fields).WithError(err.Err).Error("plugin error")
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	entry := logging.For("errors").WithField("value", err.Value)
	if err.Op != "" {
		entry = entry.WithField("op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		entry = entry.WithField("stack", err.StackTrace)
	}
	entry.Error("recovered panic")
}
