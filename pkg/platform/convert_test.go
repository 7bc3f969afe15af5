package platform

import (
	"encoding/json"
	"math"
	"testing"
)

func TestArgs_Lookups(t *testing.T) {
	decoded, err := DefaultCodec.Decode([]byte(`{"source":"a.mp4","position":9007199254740993,"volume":0.5,"looping":true,"speed":"fast"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	args := ArgsFrom(decoded)

	if s, ok := args.String("source"); !ok || s != "a.mp4" {
		t.Errorf("source: got %q, %v", s, ok)
	}
	if p, ok := args.Int64("position"); !ok || p != 9007199254740993 {
		t.Errorf("position: got %d, %v", p, ok)
	}
	if v, ok := args.Float64("volume"); !ok || v != 0.5 {
		t.Errorf("volume: got %v, %v", v, ok)
	}
	if b, ok := args.Bool("looping"); !ok || !b {
		t.Errorf("looping: got %v, %v", b, ok)
	}
	if _, ok := args.Float64("speed"); ok {
		t.Error("string speed should not convert")
	}
	if _, ok := args.String("missing"); ok {
		t.Error("missing key should not be found")
	}
}

func TestArgs_Require(t *testing.T) {
	args := ArgsFrom(nil)

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"source", func() error { _, err := args.RequireString("source"); return err }, "Source is required"},
		{"position", func() error { _, err := args.RequireInt64("position"); return err }, "Position is required"},
		{"volume", func() error { _, err := args.RequireFloat64("volume"); return err }, "Volume is required"},
		{"looping", func() error { _, err := args.RequireBool("looping"); return err }, "Looping is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := AsChannelError(tt.call())
			if ce == nil {
				t.Fatal("expected error")
			}
			if ce.Code != CodeInvalidArgument || ce.Message != tt.want {
				t.Errorf("got %s / %q, want INVALID_ARGUMENT / %q", ce.Code, ce.Message, tt.want)
			}
		})
	}
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		in   any
		want int64
		ok   bool
	}{
		{int(5), 5, true},
		{int64(-7), -7, true},
		{float64(12.9), 12, true},
		{json.Number("42"), 42, true},
		{json.Number("2.5"), 2, true},
		{math.NaN(), 0, false},
		{math.Inf(1), 0, false},
		{float64(1e300), 0, false},
		{float64(-1e19), 0, false},
		{json.Number("1e300"), 0, false},
		{json.Number("9223372036854775808"), 0, false},
		{float64(-(1 << 63)), math.MinInt64, true},
		{uint64(math.MaxUint64), 0, false},
		{"5", 0, false},
		{nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := toInt64(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("toInt64(%#v): got (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestArgsFrom_NonObject(t *testing.T) {
	for _, v := range []any{nil, "x", []any{1}, json.Number("3")} {
		if len(ArgsFrom(v)) != 0 {
			t.Errorf("ArgsFrom(%#v) should be empty", v)
		}
	}
	m := ArgsFrom(map[any]any{"a": 1, 2: "skip"})
	if len(m) != 1 || m["a"] != 1 {
		t.Errorf("map[any]any conversion: got %#v", m)
	}
}

func TestAsChannelError(t *testing.T) {
	if AsChannelError(nil) != nil {
		t.Error("nil error should map to nil")
	}
	ce := AsChannelError(json.Unmarshal([]byte("{"), new(any)))
	if ce.Code != CodeInternal {
		t.Errorf("generic error code: got %q, want %q", ce.Code, CodeInternal)
	}
	orig := NewChannelError(CodeInvalidArgument, "Source is required")
	if AsChannelError(orig) != orig {
		t.Error("ChannelError should pass through unchanged")
	}
	if orig.Error() != "INVALID_ARGUMENT: Source is required" {
		t.Errorf("Error(): got %q", orig.Error())
	}
}
