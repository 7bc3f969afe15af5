// Package logging configures the plugin-wide logrus logger.
//
// Components obtain a tagged entry with [For] and log through it; the
// global level and formatter are set once by [Setup] (usually from the
// host CLI after the configuration file has been resolved).
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Options controls logger output.
type Options struct {
	// Level is a logrus level name ("debug", "info", "warn", ...).
	// Unknown or empty values fall back to info.
	Level string
	// JSON switches the formatter from text to JSON.
	JSON bool
	// Output defaults to stderr.
	Output io.Writer
}

var (
	mu     sync.RWMutex
	logger = newLogger()
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Setup applies opts to the shared logger.
func Setup(opts Options) {
	mu.Lock()
	defer mu.Unlock()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	if opts.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logger.SetLevel(ParseLevel(opts.Level))
}

// SetLevel changes only the level, leaving output and formatter alone.
// Used by configuration reload.
func SetLevel(level string) {
	mu.Lock()
	logger.SetLevel(ParseLevel(level))
	mu.Unlock()
}

// ParseLevel maps a level name to a logrus level, defaulting to info.
func ParseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// Logger returns the shared logger.
func Logger() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// For returns an entry tagged with the component name.
func For(component string) *logrus.Entry {
	return Logger().WithField("component", component)
}
