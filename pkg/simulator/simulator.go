// Package simulator is a software media engine implementing
// [player.Factory]. It advances position on a clock, prerolls before
// reporting ready, ramps its buffer ahead of the playhead, loops, and paints
// frames into surfaces that accept them. It lets the plugin run end to end
// without an OS media framework.
package simulator

import (
	"image"
	"image/color"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/go-drift/nativevideo/pkg/logging"
	"github.com/go-drift/nativevideo/pkg/platform"
	"github.com/go-drift/nativevideo/pkg/player"
	"github.com/go-drift/nativevideo/pkg/texture"
)

// Clock reports the current time. [platform.ManualLooper] satisfies it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

const (
	defaultFrameInterval = 40 * time.Millisecond
	seekLatency          = 20 * time.Millisecond
	bufferAhead          = 5 * time.Second
	bufferNotifyStep     = 500 * time.Millisecond
	frameWidth           = 64
)

// Factory builds simulated players. Players run their timers on Scheduler
// and must only be used from it.
type Factory struct {
	Scheduler platform.Scheduler

	// Clock defaults to wall time.
	Clock Clock

	// FrameInterval is the engine tick; defaults to 40ms.
	FrameInterval time.Duration

	// NativeLooping makes players loop by themselves, like engines with
	// a built-in repeat mode. When false they report end of media and
	// leave the restart to the session.
	NativeLooping bool
}

// NewPlayer implements player.Factory.
func (f *Factory) NewPlayer(l player.Listener) (player.NativePlayer, error) {
	clock := f.Clock
	if clock == nil {
		clock = systemClock{}
	}
	interval := f.FrameInterval
	if interval <= 0 {
		interval = defaultFrameInterval
	}
	return &Player{
		listener:      l,
		sched:         f.Scheduler,
		clock:         clock,
		interval:      interval,
		nativeLooping: f.NativeLooping,
		volume:        1,
		speed:         1,
		log:           logging.For("simulator"),
	}, nil
}

// Player is a simulated native player.
type Player struct {
	listener      player.Listener
	sched         platform.Scheduler
	clock         Clock
	interval      time.Duration
	nativeLooping bool
	log           *logrus.Entry

	media    Media
	prepared bool
	ready    bool
	released bool

	playing bool
	volume  float64
	speed   float64
	looping bool

	// position is the playhead at anchor; while playing it advances from
	// there at speed.
	position time.Duration
	anchor   time.Time
	played   time.Duration
	readyAt  time.Time

	lastBuffered time.Duration
	surface      texture.Surface
	frames       int64

	preroll  platform.Task
	ticker   platform.Task
	seekDone func(bool)
	seekTask platform.Task
}

// SetSource implements player.NativePlayer.
func (p *Player) SetSource(uri string) error {
	if p.released {
		return ErrReleased
	}
	media, err := ParseSource(uri)
	if err != nil {
		return err
	}
	p.media = media
	p.prepared = true
	p.log.WithFields(logrus.Fields{
		"source":   uri,
		"duration": media.Duration,
	}).Debug("preparing")

	p.listener.OnBuffering()
	p.preroll = p.sched.PostDelayed(p.becomeReady, media.Preroll)
	return nil
}

func (p *Player) becomeReady() {
	if p.released {
		return
	}
	p.preroll = nil
	p.ready = true
	p.readyAt = p.clock.Now()
	p.listener.OnVideoSizeKnown(p.media.Width, p.media.Height)
	p.listener.OnReady()
	if p.playing {
		p.startTicker()
	}
}

// Play implements player.NativePlayer.
func (p *Player) Play() {
	if p.released || p.playing {
		return
	}
	p.playing = true
	p.anchor = p.clock.Now()
	if p.ready {
		p.startTicker()
	}
}

// Pause implements player.NativePlayer.
func (p *Player) Pause() {
	if p.released || !p.playing {
		return
	}
	p.position = p.currentPosition()
	p.playing = false
	p.stopTicker()
}

// SeekTo implements player.NativePlayer. A seek issued while another is
// settling supersedes it.
func (p *Player) SeekTo(positionMs int64, done func(bool)) {
	if p.released {
		return
	}
	target := time.Duration(positionMs) * time.Millisecond
	if target < 0 {
		target = 0
	}
	if p.media.Duration > 0 && target > p.media.Duration {
		target = p.media.Duration
	}
	p.position = target
	p.anchor = p.clock.Now()

	if p.seekTask != nil {
		p.seekTask.Cancel()
		p.seekTask = nil
	}
	if prev := p.seekDone; prev != nil {
		p.seekDone = nil
		prev(false)
	}
	if done == nil {
		return
	}
	p.seekDone = done
	p.seekTask = p.sched.PostDelayed(func() {
		p.seekTask = nil
		if cb := p.seekDone; cb != nil && !p.released {
			p.seekDone = nil
			cb(true)
		}
	}, seekLatency)
}

// SetVolume implements player.NativePlayer.
func (p *Player) SetVolume(v float64) { p.volume = v }

// SetSpeed implements player.NativePlayer. Non-positive speeds are ignored.
func (p *Player) SetSpeed(s float64) {
	if s <= 0 {
		return
	}
	if p.playing {
		p.position = p.currentPosition()
		p.anchor = p.clock.Now()
	}
	p.speed = s
}

// SetLooping implements player.NativePlayer.
func (p *Player) SetLooping(enabled bool) { p.looping = enabled }

// LoopsNatively implements player.NativePlayer.
func (p *Player) LoopsNatively() bool { return p.nativeLooping }

// AttachSurface implements player.NativePlayer.
func (p *Player) AttachSurface(s texture.Surface) error {
	if p.released {
		return ErrReleased
	}
	if s == nil || !s.IsValid() {
		return texture.ErrInvalidSurface
	}
	p.surface = s
	return nil
}

// DetachSurface implements player.NativePlayer.
func (p *Player) DetachSurface() { p.surface = nil }

// Position implements player.NativePlayer.
func (p *Player) Position() int64 { return p.currentPosition().Milliseconds() }

// Buffered implements player.NativePlayer.
func (p *Player) Buffered() int64 { return p.buffered().Milliseconds() }

// Duration implements player.NativePlayer.
func (p *Player) Duration() int64 {
	if !p.ready {
		return 0
	}
	return p.media.Duration.Milliseconds()
}

// VideoSize implements player.NativePlayer.
func (p *Player) VideoSize() (int, int) {
	if !p.ready {
		return 0, 0
	}
	return p.media.Width, p.media.Height
}

// Rate implements player.NativePlayer.
func (p *Player) Rate() float64 {
	if p.playing && p.ready {
		return p.speed
	}
	return 0
}

// IsPlaying implements player.NativePlayer.
func (p *Player) IsPlaying() bool { return p.playing && p.ready }

// Frames reports how many frames were painted.
func (p *Player) Frames() int64 { return p.frames }

// Volume returns the last volume set.
func (p *Player) Volume() float64 { return p.volume }

// Release implements player.NativePlayer.
func (p *Player) Release() {
	if p.released {
		return
	}
	p.released = true
	p.playing = false
	p.stopTicker()
	for _, t := range []platform.Task{p.preroll, p.seekTask} {
		if t != nil {
			t.Cancel()
		}
	}
	p.preroll, p.seekTask, p.seekDone = nil, nil, nil
	p.surface = nil
}

func (p *Player) currentPosition() time.Duration {
	pos := p.position
	if p.playing && p.ready {
		pos += time.Duration(float64(p.clock.Now().Sub(p.anchor)) * p.speed)
	}
	if p.media.Duration > 0 && pos > p.media.Duration {
		pos = p.media.Duration
	}
	return pos
}

// buffered ramps from the playhead towards bufferAhead at twice real time.
func (p *Player) buffered() time.Duration {
	if !p.ready {
		return 0
	}
	ahead := 2 * p.clock.Now().Sub(p.readyAt)
	if ahead > bufferAhead {
		ahead = bufferAhead
	}
	b := p.currentPosition() + ahead
	if b > p.media.Duration {
		b = p.media.Duration
	}
	return b
}

func (p *Player) startTicker() {
	if p.ticker != nil {
		return
	}
	p.anchor = p.clock.Now()
	p.ticker = p.sched.PostDelayed(p.tick, p.interval)
}

func (p *Player) stopTicker() {
	if p.ticker != nil {
		p.ticker.Cancel()
		p.ticker = nil
	}
}

func (p *Player) tick() {
	p.ticker = nil
	if p.released || !p.playing {
		return
	}

	pos := p.currentPosition()
	p.played += p.interval
	if f := p.media.FailAfter; f > 0 && p.played >= f {
		p.playing = false
		p.position = pos
		p.listener.OnError(ErrPlaybackFailed)
		return
	}

	p.paint(pos)
	if b := p.buffered(); b-p.lastBuffered >= bufferNotifyStep || (b == p.media.Duration && b != p.lastBuffered) {
		p.lastBuffered = b
		p.listener.OnBufferedChanged()
	}

	if pos >= p.media.Duration {
		if p.looping && p.nativeLooping {
			p.position = 0
			p.anchor = p.clock.Now()
			p.listener.OnPositionTick()
		} else {
			p.position = p.media.Duration
			p.playing = false
			p.listener.OnEnded()
			return
		}
	}
	p.ticker = p.sched.PostDelayed(p.tick, p.interval)
}

// paint writes a flat frame whose hue tracks the playhead, for surfaces
// that accept frames from Go.
func (p *Player) paint(pos time.Duration) {
	w, ok := p.surface.(texture.FrameWriter)
	if !ok || p.surface == nil || !p.surface.IsValid() {
		return
	}
	h := frameWidth * p.media.Height / p.media.Width
	if h <= 0 {
		h = 1
	}
	frame := image.NewRGBA(image.Rect(0, 0, frameWidth, h))
	frac := float64(pos) / float64(p.media.Duration)
	c := color.RGBA{R: uint8(255 * frac), G: 64, B: uint8(255 * (1 - frac)), A: 255}
	for i := 0; i < len(frame.Pix); i += 4 {
		frame.Pix[i], frame.Pix[i+1], frame.Pix[i+2], frame.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	if err := w.WriteFrame(frame); err != nil {
		p.log.WithError(err).Debug("frame dropped")
		return
	}
	p.frames++
}
