// Package config loads the optional nativevideo.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/nativevideo/pkg/player"
	"github.com/go-drift/nativevideo/pkg/plugin"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "nativevideo.yaml"

// Config represents nativevideo.yaml.
type Config struct {
	Channels ChannelsConfig `yaml:"channels"`
	Playback PlaybackConfig `yaml:"playback"`
	Log      LogConfig      `yaml:"log"`
	Host     HostConfig     `yaml:"host"`
}

// ChannelsConfig names the host channels.
type ChannelsConfig struct {
	Method string `yaml:"method,omitempty"`
	Events string `yaml:"events,omitempty"`
}

// PlaybackConfig tunes sessions. Pointer fields distinguish "unset" from
// an explicit false.
type PlaybackConfig struct {
	PositionIntervalMs    int               `yaml:"positionIntervalMs,omitempty"`
	GatePositionOnPlaying bool              `yaml:"gatePositionOnPlaying,omitempty"`
	IncludeDuration       *bool             `yaml:"includeDuration,omitempty"`
	EmitBuffered          *bool             `yaml:"emitBuffered,omitempty"`
	SeekMode              string            `yaml:"seekMode,omitempty"`
	SeekDelayMs           int               `yaml:"seekDelayMs,omitempty"`
	Placeholder           PlaceholderConfig `yaml:"placeholder,omitempty"`
	ValidateSource        *bool             `yaml:"validateSource,omitempty"`
}

// PlaceholderConfig is the surface size used before the video size is known.
type PlaceholderConfig struct {
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	JSON  bool   `yaml:"json,omitempty"`
}

// HostConfig configures the HTTP host.
type HostConfig struct {
	Addr         string  `yaml:"addr,omitempty"`
	MinVersion   string  `yaml:"minVersion,omitempty"`
	CommandRate  float64 `yaml:"commandRate,omitempty"`
	CommandBurst int     `yaml:"commandBurst,omitempty"`
}

// Defaults returns a Config with every field set to its default.
func Defaults() *Config {
	opts := player.DefaultOptions()
	return &Config{
		Channels: ChannelsConfig{
			Method: plugin.DefaultMethodChannel,
			Events: plugin.DefaultEventChannel,
		},
		Playback: PlaybackConfig{
			PositionIntervalMs: int(opts.PositionInterval / time.Millisecond),
			IncludeDuration:    ptr(opts.IncludeDuration),
			EmitBuffered:       ptr(opts.EmitBuffered),
			SeekMode:           opts.SeekMode.String(),
			SeekDelayMs:        int(opts.SeekDelay / time.Millisecond),
			Placeholder: PlaceholderConfig{
				Width:  opts.PlaceholderWidth,
				Height: opts.PlaceholderHeight,
			},
			ValidateSource: ptr(opts.ValidateSource),
		},
		Log: LogConfig{Level: "info"},
		Host: HostConfig{
			Addr:         ":8080",
			CommandRate:  50,
			CommandBurst: 20,
		},
	}
}

// Load reads and resolves the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return Parse(data)
}

// LoadOptional reads nativevideo.yaml from dir if present; a missing file
// yields the defaults.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	return cfg, err
}

// Parse decodes YAML, fills defaults and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve loads the optional file in dir, then applies overrides from the
// environment: NATIVEVIDEO_ADDR and NATIVEVIDEO_LOG_LEVEL.
func Resolve(dir string) (*Config, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(os.Getenv("NATIVEVIDEO_ADDR")); v != "" {
		cfg.Host.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("NATIVEVIDEO_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyDefaults() {
	d := Defaults()
	c.Channels.Method = orDefault(strings.TrimSpace(c.Channels.Method), d.Channels.Method)
	c.Channels.Events = orDefault(strings.TrimSpace(c.Channels.Events), d.Channels.Events)

	p := &c.Playback
	if p.PositionIntervalMs == 0 {
		p.PositionIntervalMs = d.Playback.PositionIntervalMs
	}
	if p.IncludeDuration == nil {
		p.IncludeDuration = d.Playback.IncludeDuration
	}
	if p.EmitBuffered == nil {
		p.EmitBuffered = d.Playback.EmitBuffered
	}
	p.SeekMode = orDefault(strings.ToLower(strings.TrimSpace(p.SeekMode)), d.Playback.SeekMode)
	if p.SeekDelayMs == 0 {
		p.SeekDelayMs = d.Playback.SeekDelayMs
	}
	if p.Placeholder.Width == 0 && p.Placeholder.Height == 0 {
		p.Placeholder = d.Playback.Placeholder
	}
	if p.ValidateSource == nil {
		p.ValidateSource = d.Playback.ValidateSource
	}

	c.Log.Level = orDefault(strings.TrimSpace(c.Log.Level), d.Log.Level)

	c.Host.Addr = orDefault(strings.TrimSpace(c.Host.Addr), d.Host.Addr)
	c.Host.MinVersion = strings.TrimSpace(c.Host.MinVersion)
	if c.Host.CommandRate == 0 {
		c.Host.CommandRate = d.Host.CommandRate
	}
	if c.Host.CommandBurst == 0 {
		c.Host.CommandBurst = d.Host.CommandBurst
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	p := c.Playback
	switch {
	case c.Channels.Method == c.Channels.Events:
		return fmt.Errorf("channels.method and channels.events must differ (both %q)", c.Channels.Method)
	case p.PositionIntervalMs < 0:
		return fmt.Errorf("playback.positionIntervalMs must be positive, got %d", p.PositionIntervalMs)
	case p.SeekDelayMs < 0:
		return fmt.Errorf("playback.seekDelayMs must be positive, got %d", p.SeekDelayMs)
	case p.SeekMode != player.SeekOnCompletion.String() && p.SeekMode != player.SeekDelayed.String():
		return fmt.Errorf("playback.seekMode must be %q or %q, got %q",
			player.SeekOnCompletion, player.SeekDelayed, p.SeekMode)
	case p.Placeholder.Width <= 0 || p.Placeholder.Height <= 0:
		return fmt.Errorf("playback.placeholder must have a positive size, got %dx%d",
			p.Placeholder.Width, p.Placeholder.Height)
	case c.Host.CommandRate < 0 || c.Host.CommandBurst < 0:
		return fmt.Errorf("host.commandRate and host.commandBurst must not be negative")
	}
	if v := c.Host.MinVersion; v != "" && !semver.IsValid(canonicalVersion(v)) {
		return fmt.Errorf("host.minVersion %q is not a semantic version", v)
	}
	return nil
}

// PlayerOptions converts the playback section to session options.
func (c *Config) PlayerOptions() player.Options {
	p := c.Playback
	opts := player.Options{
		PositionInterval:      time.Duration(p.PositionIntervalMs) * time.Millisecond,
		GatePositionOnPlaying: p.GatePositionOnPlaying,
		IncludeDuration:       deref(p.IncludeDuration, true),
		EmitBuffered:          deref(p.EmitBuffered, true),
		SeekMode:              player.SeekOnCompletion,
		SeekDelay:             time.Duration(p.SeekDelayMs) * time.Millisecond,
		PlaceholderWidth:      p.Placeholder.Width,
		PlaceholderHeight:     p.Placeholder.Height,
		ValidateSource:        deref(p.ValidateSource, true),
	}
	if p.SeekMode == player.SeekDelayed.String() {
		opts.SeekMode = player.SeekDelayed
	}
	return opts
}

// PluginConfig converts the channel and playback sections.
func (c *Config) PluginConfig() plugin.Config {
	return plugin.Config{
		MethodChannel: c.Channels.Method,
		EventChannel:  c.Channels.Events,
		Options:       c.PlayerOptions(),
	}
}

// ErrHostTooOld is returned by CheckHostVersion.
var ErrHostTooOld = errors.New("host version is older than host.minVersion")

// CheckHostVersion verifies that a connecting host's version satisfies
// host.minVersion. An empty minimum accepts any host; with a minimum set,
// a missing or malformed version is rejected.
func (c *Config) CheckHostVersion(version string) error {
	minimum := c.Host.MinVersion
	if minimum == "" {
		return nil
	}
	v := canonicalVersion(strings.TrimSpace(version))
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrHostTooOld, version)
	}
	if semver.Compare(v, canonicalVersion(minimum)) < 0 {
		return fmt.Errorf("%w: %s < %s", ErrHostTooOld, version, minimum)
	}
	return nil
}

// canonicalVersion adds the "v" prefix semver expects.
func canonicalVersion(v string) string {
	if v != "" && !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
