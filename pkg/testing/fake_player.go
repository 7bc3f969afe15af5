package testing

import (
	"errors"
	"sync"

	"github.com/go-drift/nativevideo/pkg/player"
	"github.com/go-drift/nativevideo/pkg/texture"
)

// FakePlayer is a scriptable player.NativePlayer. Tests set the readable
// fields (position, size, rate) directly and fire callbacks with the
// trigger methods (Ready, Buffer, End, ...).
type FakePlayer struct {
	mu sync.Mutex

	listener player.Listener

	// Values reported back to the session.
	PositionMs int64
	BufferedMs int64
	DurationMs int64
	Width      int
	Height     int

	// Loops makes LoopsNatively report true.
	Loops bool

	// SourceErr and AttachErr make SetSource / AttachSurface fail.
	SourceErr error
	AttachErr error

	// Recorded inputs.
	Source   string
	Volume   float64
	Speed    float64
	Looping  bool
	Playing  bool
	rate     float64
	Seeks    []int64
	Attached texture.Surface
	Attaches int
	Detaches int
	Released bool
	calls    []string
	seekDone func(bool)
}

func (p *FakePlayer) record(call string) {
	p.calls = append(p.calls, call)
}

// Calls returns the method names invoked so far, in order.
func (p *FakePlayer) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

// SetSource implements player.NativePlayer.
func (p *FakePlayer) SetSource(uri string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("SetSource")
	if p.SourceErr != nil {
		return p.SourceErr
	}
	p.Source = uri
	return nil
}

// Play implements player.NativePlayer.
func (p *FakePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("Play")
	p.Playing = true
	p.rate = 1
}

// Pause implements player.NativePlayer.
func (p *FakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("Pause")
	p.Playing = false
	p.rate = 0
}

// SeekTo implements player.NativePlayer. The completion callback is held
// until CompleteSeek.
func (p *FakePlayer) SeekTo(positionMs int64, done func(bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("SeekTo")
	p.Seeks = append(p.Seeks, positionMs)
	p.PositionMs = positionMs
	p.seekDone = done
}

// SetVolume implements player.NativePlayer.
func (p *FakePlayer) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("SetVolume")
	p.Volume = v
}

// SetSpeed implements player.NativePlayer.
func (p *FakePlayer) SetSpeed(s float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("SetSpeed")
	p.Speed = s
}

// SetLooping implements player.NativePlayer.
func (p *FakePlayer) SetLooping(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("SetLooping")
	p.Looping = enabled
}

// LoopsNatively implements player.NativePlayer.
func (p *FakePlayer) LoopsNatively() bool { return p.Loops }

// AttachSurface implements player.NativePlayer.
func (p *FakePlayer) AttachSurface(s texture.Surface) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("AttachSurface")
	if p.AttachErr != nil {
		return p.AttachErr
	}
	p.Attached = s
	p.Attaches++
	return nil
}

// DetachSurface implements player.NativePlayer.
func (p *FakePlayer) DetachSurface() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("DetachSurface")
	p.Attached = nil
	p.Detaches++
}

// Position implements player.NativePlayer.
func (p *FakePlayer) Position() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.PositionMs
}

// Buffered implements player.NativePlayer.
func (p *FakePlayer) Buffered() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.BufferedMs
}

// Duration implements player.NativePlayer.
func (p *FakePlayer) Duration() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.DurationMs
}

// VideoSize implements player.NativePlayer.
func (p *FakePlayer) VideoSize() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Width, p.Height
}

// Rate implements player.NativePlayer.
func (p *FakePlayer) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// SetRate overrides the reported rate, e.g. to mimic an engine that
// autoplays.
func (p *FakePlayer) SetRate(r float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rate = r
}

// IsPlaying implements player.NativePlayer.
func (p *FakePlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Playing
}

// Release implements player.NativePlayer.
func (p *FakePlayer) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("Release")
	p.Released = true
}

// IsReleased reports whether Release was called.
func (p *FakePlayer) IsReleased() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Released
}

// Ready fires OnReady.
func (p *FakePlayer) Ready() { p.listener.OnReady() }

// Buffer fires OnBuffering.
func (p *FakePlayer) Buffer() { p.listener.OnBuffering() }

// Idle fires OnIdle.
func (p *FakePlayer) Idle() { p.listener.OnIdle() }

// End fires OnEnded.
func (p *FakePlayer) End() { p.listener.OnEnded() }

// Fail fires OnError.
func (p *FakePlayer) Fail(err error) { p.listener.OnError(err) }

// Tick fires OnPositionTick.
func (p *FakePlayer) Tick() { p.listener.OnPositionTick() }

// SizeKnown fires OnVideoSizeKnown.
func (p *FakePlayer) SizeKnown(w, h int) { p.listener.OnVideoSizeKnown(w, h) }

// BufferedChanged fires OnBufferedChanged.
func (p *FakePlayer) BufferedChanged() { p.listener.OnBufferedChanged() }

// CompleteSeek runs the completion callback of the last seek, if any.
func (p *FakePlayer) CompleteSeek(finished bool) {
	p.mu.Lock()
	done := p.seekDone
	p.seekDone = nil
	p.mu.Unlock()
	if done != nil {
		done(finished)
	}
}

// ErrFactory is returned by FakeFactory when Err is not set explicitly but
// FailNext is.
var ErrFactory = errors.New("fake factory: construction failed")

// FakeFactory builds FakePlayers and remembers them.
type FakeFactory struct {
	mu sync.Mutex

	// Err, when set, fails every construction.
	Err error
	// Configure, when set, runs on each new player before it is returned.
	Configure func(*FakePlayer)

	players []*FakePlayer
}

// NewPlayer implements player.Factory.
func (f *FakeFactory) NewPlayer(l player.Listener) (player.NativePlayer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	p := &FakePlayer{listener: l, Width: 1280, Height: 720, DurationMs: 60000}
	if f.Configure != nil {
		f.Configure(p)
	}
	f.players = append(f.players, p)
	return p, nil
}

// Players returns every player built so far.
func (f *FakeFactory) Players() []*FakePlayer {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*FakePlayer, len(f.players))
	copy(out, f.players)
	return out
}

// Last returns the most recently built player, or nil.
func (f *FakeFactory) Last() *FakePlayer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.players) == 0 {
		return nil
	}
	return f.players[len(f.players)-1]
}
