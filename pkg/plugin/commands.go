package plugin

import (
	"fmt"

	"github.com/go-drift/nativevideo/pkg/errors"
	"github.com/go-drift/nativevideo/pkg/platform"
)

// Command names accepted on the method channel.
const (
	MethodInitialize       = "initialize"
	MethodPlay             = "play"
	MethodPause            = "pause"
	MethodSeekTo           = "seekTo"
	MethodSetVolume        = "setVolume"
	MethodSetPlaybackSpeed = "setPlaybackSpeed"
	MethodSetLooping       = "setLooping"
	MethodDispose          = "dispose"
)

// command validates its arguments and then acts. Validation errors are
// returned before the session is touched.
type command func(args platform.Args) (any, error)

func (p *Plugin) commandTable() map[string]command {
	return map[string]command{
		MethodInitialize:       p.initialize,
		MethodPlay:             p.play,
		MethodPause:            p.pause,
		MethodSeekTo:           p.seekTo,
		MethodSetVolume:        p.setVolume,
		MethodSetPlaybackSpeed: p.setPlaybackSpeed,
		MethodSetLooping:       p.setLooping,
		MethodDispose:          p.dispose,
	}
}

// handle is the method channel handler. Panics become INTERNAL results.
func (p *Plugin) handle(method string, raw any) (result any, err error) {
	defer errors.RecoverWithCallback("plugin.handle", func(r any) {
		result = nil
		err = platform.NewChannelError(platform.CodeInternal, fmt.Sprintf("%s: %v", method, r))
	})

	cmd, ok := p.commands[method]
	if !ok {
		p.log.WithField("method", method).Debug("unknown command")
		return nil, fmt.Errorf("%s: %w", method, platform.ErrMethodNotImplemented)
	}
	return cmd(platform.ArgsFrom(raw))
}

// initialize replaces any live session. A session that fails to start
// still becomes the live one; its failure has already been sent as an
// "error" event and the result is -1.
func (p *Plugin) initialize(args platform.Args) (any, error) {
	source, err := args.RequireString("source")
	if err != nil {
		return nil, err
	}
	p.disposeSession()
	p.session = p.newSession()
	id, err := p.session.Initialize(source)
	if err != nil {
		p.log.WithError(err).WithField("source", source).Warn("initialize failed")
		return int64(-1), nil
	}
	return id, nil
}

func (p *Plugin) play(platform.Args) (any, error) {
	if p.session != nil {
		p.session.Play()
	}
	return nil, nil
}

func (p *Plugin) pause(platform.Args) (any, error) {
	if p.session != nil {
		p.session.Pause()
	}
	return nil, nil
}

func (p *Plugin) seekTo(args platform.Args) (any, error) {
	pos, err := args.RequireInt64("position")
	if err != nil {
		return nil, err
	}
	if p.session != nil {
		p.session.SeekTo(pos)
	}
	return nil, nil
}

func (p *Plugin) setVolume(args platform.Args) (any, error) {
	v, err := args.RequireFloat64("volume")
	if err != nil {
		return nil, err
	}
	if p.session != nil {
		p.session.SetVolume(v)
	}
	return nil, nil
}

func (p *Plugin) setPlaybackSpeed(args platform.Args) (any, error) {
	s, err := args.RequireFloat64("speed")
	if err != nil {
		return nil, err
	}
	if p.session != nil {
		p.session.SetPlaybackSpeed(s)
	}
	return nil, nil
}

func (p *Plugin) setLooping(args platform.Args) (any, error) {
	on, err := args.RequireBool("looping")
	if err != nil {
		return nil, err
	}
	if p.session != nil {
		p.session.SetLooping(on)
	}
	return nil, nil
}

func (p *Plugin) dispose(platform.Args) (any, error) {
	p.disposeSession()
	return nil, nil
}
