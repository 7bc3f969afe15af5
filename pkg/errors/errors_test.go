package errors

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/go-drift/nativevideo/pkg/logging"
)

func TestPluginErrorString(t *testing.T) {
	base := fmt.Errorf("boom")
	tests := []struct {
		name string
		err  *PluginError
		want string
	}{
		{
			name: "plain",
			err:  &PluginError{Op: "player.Play", Kind: KindPlayback, Err: base},
			want: "player.Play [playback]: boom",
		},
		{
			name: "channel",
			err:  &PluginError{Op: "platform.HandleListen", Kind: KindPlatform, Channel: "native_core_video_player/events", Err: base},
			want: "platform.HandleListen [platform] channel=native_core_video_player/events: boom",
		},
		{
			name: "session",
			err:  &PluginError{Op: "player.Session.Initialize", Kind: KindInit, Session: "abc", Err: base},
			want: "player.Session.Initialize [init] session=abc: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPluginErrorUnwrap(t *testing.T) {
	inner := &ParseError{Channel: "c", DataType: "Event", Got: 1}
	err := Wrap("op", KindParsing, inner)
	var pe *ParseError
	if !As(err, &pe) {
		t.Fatal("expected errors.As to find ParseError")
	}
	if pe.DataType != "Event" {
		t.Errorf("DataType = %q, want Event", pe.DataType)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindPlatform, "platform"},
		{KindParsing, "parsing"},
		{KindInit, "init"},
		{KindSetup, "setup"},
		{KindPlayback, "playback"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	if got := (&PanicError{Value: "x"}).Error(); got != "panic: x" {
		t.Errorf("got %q", got)
	}
	if got := (&PanicError{Op: "plugin.dispatch", Value: "x"}).Error(); got != "panic in plugin.dispatch: x" {
		t.Errorf("got %q", got)
	}
}

func TestReportSetsTimestamp(t *testing.T) {
	var captured *PluginError
	prev := SetHandler(&testHandler{onError: func(err *PluginError) { captured = err }})
	defer SetHandler(prev)

	Report(&PluginError{Op: "test.op", Kind: KindInit, Err: fmt.Errorf("x")})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestReportNil(t *testing.T) {
	called := false
	prev := SetHandler(&testHandler{onError: func(*PluginError) { called = true }})
	defer SetHandler(prev)

	Report(nil)
	ReportPanic(nil)
	if called {
		t.Error("nil errors must not reach the handler")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	prev := SetHandler(&testHandler{onPanic: func(err *PanicError) { captured = err }})
	defer SetHandler(prev)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be captured")
	}
	if captured.Op != "test.recover" || captured.Value != "intentional test panic" {
		t.Errorf("captured = %+v", captured)
	}
	if captured.StackTrace == "" {
		t.Error("expected stack trace")
	}
}

func TestRecoverWithCallback(t *testing.T) {
	prev := SetHandler(&testHandler{})
	defer SetHandler(prev)

	var got any
	func() {
		defer RecoverWithCallback("test.callback", func(r any) { got = r })
		panic(42)
	}()
	if got != 42 {
		t.Errorf("callback value = %v, want 42", got)
	}
}

func TestSetHandlerNil(t *testing.T) {
	prev := SetHandler(nil)
	defer SetHandler(prev)
	if _, ok := Handler().(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should install LogHandler, got %T", Handler())
	}
}

func TestLogHandlerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	logging.Setup(logging.Options{Output: &buf})
	defer logging.Setup(logging.Options{})

	h := &LogHandler{}
	h.HandleError(&PluginError{Op: "player.SeekTo", Kind: KindPlayback, Session: "s1", Err: fmt.Errorf("decoder stalled")})

	out := buf.String()
	for _, want := range []string{"player.SeekTo", "playback", "s1", "decoder stalled"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

type testHandler struct {
	onError func(*PluginError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *PluginError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
