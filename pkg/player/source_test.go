package player

import (
	"errors"
	"testing"
)

func TestValidateSource(t *testing.T) {
	tests := []struct {
		source string
		valid  bool
	}{
		{"https://example.com/video.mp4", true},
		{"http://10.0.0.2:8080/live.m3u8", true},
		{"file:///sdcard/movie.mp4", true},
		{"asset://videos/intro.mp4", true},
		{"sim://clip?duration=5000", true},
		{"/var/media/clip.mp4", true},
		{"", false},
		{"   ", false},
		{" https://example.com/a.mp4", false},
		{"not a url", false},
		{"https:///nohost.mp4", false},
		{"relative/path.mp4", false},
	}

	for _, tt := range tests {
		err := ValidateSource(tt.source)
		if tt.valid && err != nil {
			t.Errorf("ValidateSource(%q): unexpected error %v", tt.source, err)
		}
		if !tt.valid {
			if err == nil {
				t.Errorf("ValidateSource(%q): expected error", tt.source)
			} else if !errors.Is(err, ErrInvalidSource) {
				t.Errorf("ValidateSource(%q): error %v does not wrap ErrInvalidSource", tt.source, err)
			}
		}
	}
}

func TestStateWireNames(t *testing.T) {
	for _, st := range []State{StateIdle, StateBuffering, StatePlaying, StatePaused, StateCompleted} {
		got, ok := ParseState(st.WireName())
		if !ok || got != st {
			t.Errorf("ParseState(%q): got %v, %v", st.WireName(), got, ok)
		}
	}
	if StateErrored.WireName() != "" || StateDisposed.WireName() != "" {
		t.Error("internal states must not have wire names")
	}
}
