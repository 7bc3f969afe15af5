package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{" warn ", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"bogus", logrus.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Level: "debug", JSON: true, Output: &buf})
	defer Setup(Options{})

	For("session").WithField("source", "a.mp4").Debug("ready")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if line["component"] != "session" {
		t.Errorf("component = %v, want session", line["component"])
	}
	if line["msg"] != "ready" {
		t.Errorf("msg = %v, want ready", line["msg"])
	}
}

func TestSetLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Level: "info", Output: &buf})
	defer Setup(Options{})

	For("plugin").Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %q", buf.String())
	}

	SetLevel("debug")
	For("plugin").Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected debug line after SetLevel, got %q", buf.String())
	}
}
