// Package plugin is the host-facing side of the video player: it registers
// the method and event channels, validates and routes commands, and owns
// the single live playback session.
//
// All Plugin methods, and the channel handlers it installs, expect to run
// on the scheduler given in [Deps]; hosts route calls there (see
// [platform.Looper.Sync]).
package plugin

import (
	"github.com/sirupsen/logrus"

	"github.com/go-drift/nativevideo/pkg/logging"
	"github.com/go-drift/nativevideo/pkg/platform"
	"github.com/go-drift/nativevideo/pkg/player"
	"github.com/go-drift/nativevideo/pkg/texture"
)

// Default channel names.
const (
	DefaultMethodChannel = "native_core_video_player"
	DefaultEventChannel  = "native_core_video_player/events"
)

// Config selects channel names and the options given to new sessions.
type Config struct {
	MethodChannel string
	EventChannel  string
	Options       player.Options
}

// DefaultConfig returns the stock channel names and player options.
func DefaultConfig() Config {
	return Config{
		MethodChannel: DefaultMethodChannel,
		EventChannel:  DefaultEventChannel,
		Options:       player.DefaultOptions(),
	}
}

// Deps are the host services a plugin builds sessions from.
type Deps struct {
	Factory   player.Factory
	Textures  texture.Registry
	Scheduler platform.Scheduler
}

// Plugin is one plugin instance. It holds at most one session; commands
// other than initialize are ignored while there is none.
type Plugin struct {
	cfg  Config
	deps Deps
	log  *logrus.Entry

	methods *platform.MethodChannel
	events  *platform.EventChannel
	sink    *eventSink

	session  *player.Session
	commands map[string]command
}

// New creates a detached plugin.
func New(cfg Config, deps Deps) *Plugin {
	if cfg.MethodChannel == "" {
		cfg.MethodChannel = DefaultMethodChannel
	}
	if cfg.EventChannel == "" {
		cfg.EventChannel = DefaultEventChannel
	}
	p := &Plugin{
		cfg:  cfg,
		deps: deps,
		log:  logging.For("plugin"),
		sink: &eventSink{},
	}
	p.commands = p.commandTable()
	return p
}

// Attach registers the plugin's channels with the host. Attaching twice
// is a no-op.
func (p *Plugin) Attach() {
	if p.methods != nil {
		return
	}
	p.methods = platform.NewMethodChannel(p.cfg.MethodChannel)
	p.methods.SetHandler(p.handle)

	p.events = platform.NewEventChannel(p.cfg.EventChannel)
	p.sink.channel = p.cfg.EventChannel
	p.events.SetStreamHandler(&platform.StreamHandler{
		OnListen: p.sink.attach,
		OnCancel: p.sink.detach,
	})
	p.log.WithFields(logrus.Fields{
		"methods": p.cfg.MethodChannel,
		"events":  p.cfg.EventChannel,
	}).Info("attached")
}

// Detach disposes the session and unregisters both channels.
func (p *Plugin) Detach() {
	p.disposeSession()
	if p.methods != nil {
		p.methods.Unregister()
		p.methods = nil
	}
	if p.events != nil {
		p.events.Unregister()
		p.events = nil
	}
	p.log.Info("detached")
}

// OnActivityDetached pauses playback when the hosting activity goes away.
// The session survives so playback can resume on reattach.
func (p *Plugin) OnActivityDetached() {
	if p.session != nil {
		p.session.Pause()
	}
}

// OnEnterBackground pauses playback when the app is backgrounded.
func (p *Plugin) OnEnterBackground() {
	if p.session != nil {
		p.session.Pause()
	}
}

// SetOptions replaces the options used by sessions created afterwards.
// The live session keeps the options it was built with.
func (p *Plugin) SetOptions(opts player.Options) {
	p.cfg.Options = opts
}

// Session returns the live session, or nil.
func (p *Plugin) Session() *player.Session {
	return p.session
}

// Listening reports whether the host is subscribed to events.
func (p *Plugin) Listening() bool {
	return p.events != nil && p.events.Listening()
}

func (p *Plugin) newSession() *player.Session {
	return player.NewSession(p.cfg.Options, player.Deps{
		Factory:   p.deps.Factory,
		Textures:  p.deps.Textures,
		Sink:      p.sink,
		Scheduler: p.deps.Scheduler,
	})
}

// disposeSession tears down the live session before anything replaces it,
// so its timers and callbacks cannot overlap a successor.
func (p *Plugin) disposeSession() {
	if p.session == nil {
		return
	}
	p.session.Dispose()
	p.session = nil
}
