package player

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	perrors "github.com/go-drift/nativevideo/pkg/errors"
	"github.com/go-drift/nativevideo/pkg/logging"
	"github.com/go-drift/nativevideo/pkg/platform"
	"github.com/go-drift/nativevideo/pkg/texture"
)

// Deps are the collaborators a session borrows. None of them is owned by
// the session except the player and surface producer it creates.
type Deps struct {
	Factory   Factory
	Textures  texture.Registry
	Sink      Sink
	Scheduler platform.Scheduler
}

// Session owns one native player bound to one source, from Initialize to
// Dispose. A session is single-use: re-initializing means disposing it and
// creating another.
//
// Session is not safe for concurrent use. Every method, including the
// native callbacks it receives, must run on Deps.Scheduler; native
// callbacks are marshaled there automatically.
//
// State events echo intent: Play reports "playing" and Pause reports
// "paused" at once, without waiting for the engine to confirm. The only
// native-derived state report is on the ready transition, where "paused"
// is sent only if the engine is at rate zero and no play was requested.
type Session struct {
	id    string
	opts  Options
	deps  Deps
	log   *logrus.Entry
	state State

	source   string
	producer texture.SurfaceProducer
	binding  binding

	player    NativePlayer
	listener  *marshalingListener
	playerGen uint64

	initialized bool
	pendingPlay bool
	playIntent  bool
	pendingSeek *int64

	volume  float64
	speed   float64
	looping bool

	sampler    *positionSampler
	seekSample platform.Task
	disposed   bool
}

// NewSession creates an idle session. Nothing native is allocated until
// Initialize.
func NewSession(opts Options, deps Deps) *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		opts:   opts.normalized(),
		deps:   deps,
		log:    logging.For("session").WithField("session", id),
		state:  StateIdle,
		volume: 1,
		speed:  1,
	}
}

// ID returns the session's unique id, used in logs and error reports.
func (s *Session) ID() string { return s.id }

// Source returns the source given to Initialize.
func (s *Session) Source() string { return s.source }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Initialized reports whether the native player has reached ready.
func (s *Session) Initialized() bool { return s.initialized }

// Disposed reports whether Dispose has run.
func (s *Session) Disposed() bool { return s.disposed }

// TextureID returns the surface producer id, or -1 before one exists.
func (s *Session) TextureID() int64 {
	if s.producer == nil {
		return -1
	}
	return s.producer.ID()
}

// Initialize acquires a surface and starts loading source. No event is
// emitted synchronously; "initialized" follows once the native player
// reports ready. Failures are emitted as "error" events and also returned,
// in which case the texture id is -1 unless a texture had already been
// registered.
func (s *Session) Initialize(source string) (int64, error) {
	if s.disposed {
		return -1, ErrDisposed
	}
	if s.source != "" {
		return s.TextureID(), ErrAlreadyInitialized
	}
	s.source = source
	s.log = s.log.WithField("source", source)
	s.log.Debug("initializing")

	if s.opts.ValidateSource {
		if err := ValidateSource(source); err != nil {
			s.fail("player.Session.Initialize", perrors.KindInit, CodeInvalidURL, "Invalid video URL", err)
			return -1, err
		}
	}

	producer, err := s.deps.Textures.CreateSurfaceProducer()
	if err != nil {
		s.fail("player.Session.Initialize", perrors.KindInit, CodeInitializationError, messageOr(err, "Failed to initialize"), err)
		return -1, err
	}
	s.producer = producer

	producer.SetCallback(surfaceCallback{s})
	// Sizing the producer prompts the host to allocate a surface; the real
	// dimensions replace the placeholder once the engine knows them.
	producer.SetSize(s.opts.PlaceholderWidth, s.opts.PlaceholderHeight)

	// The surface may already exist, either because the registry delivers
	// availability synchronously or because it was allocated earlier.
	if surf := producer.Surface(); surf != nil && surf.IsValid() && s.player == nil {
		s.onSurfaceAvailable()
	}

	return producer.ID(), nil
}

// Play starts playback, or queues it until the player is ready.
func (s *Session) Play() {
	if s.disposed {
		return
	}
	if !s.initialized || s.player == nil {
		s.log.Debug("play queued until ready")
		s.pendingPlay = true
		s.playIntent = true
		return
	}
	if s.state == StateCompleted {
		s.player.SeekTo(0, nil)
	}
	s.startPlayback()
}

func (s *Session) startPlayback() {
	s.playIntent = true
	s.player.Play()
	s.emitState(StatePlaying)
}

// Pause stops playback and reports "paused". Calling it repeatedly is safe.
func (s *Session) Pause() {
	if s.disposed {
		return
	}
	s.pendingPlay = false
	s.playIntent = false
	if s.player != nil {
		s.player.Pause()
	}
	s.emitState(StatePaused)
}

// SeekTo requests a seek to positionMs; negative values seek to 0. A
// position sample follows once the seek settles (or after the configured
// delay in SeekDelayed mode). A seek issued before the player exists is
// applied when it is built.
func (s *Session) SeekTo(positionMs int64) {
	if s.disposed {
		return
	}
	if positionMs < 0 {
		positionMs = 0
	}
	if s.player == nil {
		s.pendingSeek = &positionMs
		return
	}
	s.seek(positionMs)
}

func (s *Session) seek(positionMs int64) {
	switch s.opts.SeekMode {
	case SeekDelayed:
		s.player.SeekTo(positionMs, nil)
		if s.seekSample != nil {
			s.seekSample.Cancel()
		}
		gen := s.playerGen
		s.seekSample = s.deps.Scheduler.PostDelayed(func() {
			s.seekSample = nil
			if s.current(gen) && s.initialized {
				s.emitPosition()
			}
		}, s.opts.SeekDelay)
	default:
		s.player.SeekTo(positionMs, s.listener.seekDone())
	}
}

// SetVolume clamps volume to [0, 1] and applies it. NaN counts as 0.
func (s *Session) SetVolume(volume float64) {
	if s.disposed {
		return
	}
	if math.IsNaN(volume) {
		volume = 0
	}
	s.volume = lo.Clamp(volume, 0, 1)
	if s.player != nil {
		s.player.SetVolume(s.volume)
	}
}

// Volume returns the effective (clamped) volume.
func (s *Session) Volume() float64 { return s.volume }

// SetPlaybackSpeed forwards speed to the engine as is.
func (s *Session) SetPlaybackSpeed(speed float64) {
	if s.disposed {
		return
	}
	s.speed = speed
	if s.player != nil {
		s.player.SetSpeed(speed)
	}
}

// SetLooping toggles restart at end of media.
func (s *Session) SetLooping(enabled bool) {
	if s.disposed {
		return
	}
	s.looping = enabled
	if s.player != nil {
		s.player.SetLooping(enabled)
	}
}

// Dispose stops position sampling and releases the player and the surface
// producer. It emits nothing and is safe to call more than once.
func (s *Session) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.log.Debug("disposing")

	if s.sampler != nil {
		s.sampler.stop()
		s.sampler = nil
	}
	if s.seekSample != nil {
		s.seekSample.Cancel()
		s.seekSample = nil
	}
	if s.player != nil {
		s.player.Release()
		s.player = nil
	}
	s.binding.clear()
	if s.producer != nil {
		s.producer.SetCallback(nil)
		s.producer.Release()
		s.producer = nil
	}
	s.state = StateDisposed
}

// current reports whether callbacks from the player generation gen may
// still touch the session.
func (s *Session) current(gen uint64) bool {
	return !s.disposed && s.player != nil && gen == s.playerGen
}

// setupPlayer builds the engine once a surface exists.
func (s *Session) setupPlayer() {
	s.playerGen++
	s.listener = &marshalingListener{sched: s.deps.Scheduler, session: s, gen: s.playerGen}

	p, err := s.deps.Factory.NewPlayer(s.listener)
	if err != nil {
		s.fail("player.Session.setupPlayer", perrors.KindSetup, CodePlayerSetupError, messageOr(err, "Failed to setup player"), err)
		return
	}
	s.player = p
	s.binding.player = p

	p.SetVolume(s.volume)
	p.SetSpeed(s.speed)
	p.SetLooping(s.looping)

	if err := p.SetSource(s.source); err != nil {
		s.player = nil
		s.binding.player = nil
		p.Release()
		s.fail("player.Session.setupPlayer", perrors.KindSetup, CodePlayerSetupError, messageOr(err, "Failed to setup player"), err)
		return
	}
	if s.pendingSeek != nil {
		pos := *s.pendingSeek
		s.pendingSeek = nil
		s.seek(pos)
	}
	s.log.Debug("native player prepared")
}

func (s *Session) onSurfaceAvailable() {
	if s.disposed || s.producer == nil {
		return
	}
	surf := s.producer.Surface()
	if surf == nil || !surf.IsValid() {
		return
	}
	s.binding.surface = surf
	if s.player == nil && s.state != StateErrored {
		s.setupPlayer()
	}
	if err := s.binding.reconcile(); err != nil {
		perrors.Report(&perrors.PluginError{
			Op:      "player.Session.onSurfaceAvailable",
			Kind:    perrors.KindSetup,
			Session: s.id,
			Err:     err,
		})
	}
}

func (s *Session) onSurfaceDestroyed() {
	if s.disposed {
		return
	}
	s.log.Debug("surface destroyed")
	s.binding.detach()
}

func (s *Session) onReady() {
	if !s.initialized {
		s.initialized = true
		width, height := s.player.VideoSize()
		s.emit(EventInitialized, Initialized{
			Duration: s.player.Duration(),
			Width:    width,
			Height:   height,
		})
		s.log.WithFields(logrus.Fields{"width": width, "height": height}).Debug("initialized")
		s.startSampler()
		if s.pendingPlay {
			s.pendingPlay = false
			s.startPlayback()
			return
		}
	}

	next := StatePlaying
	if !s.playIntent && s.player.Rate() == 0 {
		next = StatePaused
	}
	if next != s.state {
		s.emitState(next)
	}
}

func (s *Session) onBuffering() { s.emitState(StateBuffering) }

func (s *Session) onIdle() { s.emitState(StateIdle) }

func (s *Session) onEnded() {
	s.emitState(StateCompleted)
	if s.looping && !s.player.LoopsNatively() {
		s.player.SeekTo(0, nil)
		s.startPlayback()
		return
	}
	s.playIntent = false
}

func (s *Session) onError(err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	s.fail("player.Session.onError", perrors.KindPlayback, CodePlaybackError, fmt.Sprintf("Playback error: %v", err), err)
}

func (s *Session) onPositionTick() {
	if s.initialized {
		s.emitPosition()
	}
}

func (s *Session) onVideoSizeKnown(width, height int) {
	if width > 0 && height > 0 && s.producer != nil {
		s.producer.SetSize(width, height)
	}
}

func (s *Session) onBufferedChanged() {
	if s.opts.EmitBuffered && s.initialized {
		s.emit(EventBuffered, s.player.Buffered())
	}
}

func (s *Session) onSeekComplete(finished bool) {
	if finished && s.initialized {
		s.emitPosition()
	}
}

func (s *Session) startSampler() {
	if s.sampler != nil {
		s.sampler.stop()
	}
	s.sampler = newPositionSampler(s.deps.Scheduler, s.opts.PositionInterval, func() {
		if s.player == nil {
			return
		}
		if s.opts.GatePositionOnPlaying && !s.player.IsPlaying() {
			return
		}
		s.emitPosition()
	})
	s.sampler.start()
}

func (s *Session) emitPosition() {
	if s.player == nil {
		return
	}
	p := Position{
		Position:         s.player.Position(),
		BufferedPosition: s.player.Buffered(),
	}
	if s.opts.IncludeDuration {
		d := s.player.Duration()
		p.Duration = &d
	}
	s.emit(EventPosition, p)
}

func (s *Session) emitState(st State) {
	if s.disposed {
		return
	}
	s.state = st
	s.emit(EventState, st.WireName())
}

func (s *Session) emit(name string, data any) {
	if s.disposed || s.deps.Sink == nil {
		return
	}
	s.deps.Sink.Send(Event{Name: name, Data: data})
}

// fail records an unrecoverable error: the state becomes Errored, the error
// goes to the global handler, and an "error" event goes to the host.
func (s *Session) fail(op string, kind perrors.ErrorKind, code, message string, err error) {
	s.state = StateErrored
	pe := perrors.Wrap(op, kind, err)
	pe.Session = s.id
	perrors.Report(pe)
	s.emit(EventError, ErrorData{Code: code, Message: message})
}

func messageOr(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

// surfaceCallback forwards producer notifications to the session. The
// registry delivers them on the host main context, which is the session's
// scheduler.
type surfaceCallback struct{ s *Session }

func (c surfaceCallback) OnSurfaceAvailable() { c.s.onSurfaceAvailable() }
func (c surfaceCallback) OnSurfaceDestroyed() { c.s.onSurfaceDestroyed() }

// SurfaceBound reports whether the player is currently presenting into a
// host surface.
func (s *Session) SurfaceBound() bool { return s.binding.bound() }
