package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-drift/nativevideo/pkg/player"
	"github.com/go-drift/nativevideo/pkg/plugin"
)

func TestParse_EmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Channels.Method != plugin.DefaultMethodChannel || cfg.Channels.Events != plugin.DefaultEventChannel {
		t.Errorf("channels: got %+v", cfg.Channels)
	}
	if got, want := cfg.PlayerOptions(), player.DefaultOptions(); got != want {
		t.Errorf("PlayerOptions():\n got %+v\nwant %+v", got, want)
	}
	if cfg.Host.Addr != ":8080" || cfg.Log.Level != "info" {
		t.Errorf("host/log defaults: %+v %+v", cfg.Host, cfg.Log)
	}
}

func TestParse_Full(t *testing.T) {
	data := `
channels:
  method: video/methods
  events: video/events
playback:
  positionIntervalMs: 250
  gatePositionOnPlaying: true
  includeDuration: false
  emitBuffered: false
  seekMode: Delayed
  seekDelayMs: 50
  placeholder:
    width: 1280
    height: 720
log:
  level: debug
  json: true
host:
  addr: 127.0.0.1:9000
  minVersion: 1.2.0
  commandRate: 5
  commandBurst: 2
`
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := player.Options{
		PositionInterval:      250 * time.Millisecond,
		GatePositionOnPlaying: true,
		IncludeDuration:       false,
		EmitBuffered:          false,
		SeekMode:              player.SeekDelayed,
		SeekDelay:             50 * time.Millisecond,
		PlaceholderWidth:      1280,
		PlaceholderHeight:     720,
		ValidateSource:        true,
	}
	if got := cfg.PlayerOptions(); got != want {
		t.Errorf("PlayerOptions():\n got %+v\nwant %+v", got, want)
	}
	pc := cfg.PluginConfig()
	if pc.MethodChannel != "video/methods" || pc.EventChannel != "video/events" {
		t.Errorf("PluginConfig(): %+v", pc)
	}
	if !cfg.Log.JSON || cfg.Log.Level != "debug" {
		t.Errorf("log: %+v", cfg.Log)
	}
	if cfg.Host.CommandRate != 5 || cfg.Host.CommandBurst != 2 || cfg.Host.Addr != "127.0.0.1:9000" {
		t.Errorf("host: %+v", cfg.Host)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"syntax", "playback: [", "failed to parse"},
		{"negative interval", "playback:\n  positionIntervalMs: -5", "positionIntervalMs"},
		{"seek mode", "playback:\n  seekMode: eventually", "seekMode"},
		{"placeholder", "playback:\n  placeholder:\n    width: 100", "placeholder"},
		{"same channels", "channels:\n  method: a\n  events: a", "must differ"},
		{"min version", "host:\n  minVersion: latest", "minVersion"},
		{"negative rate", "host:\n  commandRate: -1", "commandRate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCheckHostVersion(t *testing.T) {
	tests := []struct {
		min     string
		version string
		ok      bool
	}{
		{"", "", true},
		{"", "garbage", true},
		{"1.2.0", "1.2.0", true},
		{"1.2.0", "v1.10.0", true},
		{"v1.2.0", "1.1.9", false},
		{"1.2.0", "2.0.0-beta.1", true},
		{"1.2.0", "", false},
		{"1.2.0", "one", false},
	}

	for _, tt := range tests {
		cfg := Defaults()
		cfg.Host.MinVersion = tt.min
		err := cfg.CheckHostVersion(tt.version)
		if tt.ok && err != nil {
			t.Errorf("min=%q version=%q: unexpected %v", tt.min, tt.version, err)
		}
		if !tt.ok && !errors.Is(err, ErrHostTooOld) {
			t.Errorf("min=%q version=%q: got %v, want ErrHostTooOld", tt.min, tt.version, err)
		}
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadOptional(dir)
	if err != nil {
		t.Fatalf("LoadOptional (missing): %v", err)
	}
	if cfg.Playback.PositionIntervalMs != 100 {
		t.Errorf("default interval: got %d", cfg.Playback.PositionIntervalMs)
	}

	writeFile(t, filepath.Join(dir, FileName), "playback:\n  positionIntervalMs: 40\n")
	cfg, err = LoadOptional(dir)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.Playback.PositionIntervalMs != 40 {
		t.Errorf("interval: got %d, want 40", cfg.Playback.PositionIntervalMs)
	}
}

func TestResolve_EnvOverrides(t *testing.T) {
	t.Setenv("NATIVEVIDEO_ADDR", ":9999")
	t.Setenv("NATIVEVIDEO_LOG_LEVEL", "warn")

	cfg, err := Resolve(t.TempDir())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Host.Addr != ":9999" || cfg.Log.Level != "warn" {
		t.Errorf("overrides not applied: %+v %+v", cfg.Host, cfg.Log)
	}
}

func TestWatch_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeFile(t, path, "playback:\n  positionIntervalMs: 100\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) {
			select {
			case reloaded <- c:
			default:
			}
		})
	}()

	// The watcher starts asynchronously; keep rewriting until it reports.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cfg := <-reloaded:
			// A reload can observe the file mid-write.
			if cfg.Playback.PositionIntervalMs != 300 {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch: %v", err)
			}
			return
		case <-tick.C:
			writeFile(t, path, "playback:\n  positionIntervalMs: 300\n")
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
