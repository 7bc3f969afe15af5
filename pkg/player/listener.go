package player

import "github.com/go-drift/nativevideo/pkg/platform"

// marshalingListener is the Listener handed to native players. Each
// callback is posted onto the session scheduler and dropped there if the
// player that raised it is no longer the session's current one.
type marshalingListener struct {
	sched   platform.Scheduler
	session *Session
	gen     uint64
}

func (l *marshalingListener) post(fn func(s *Session)) {
	l.sched.Post(func() {
		if !l.session.current(l.gen) {
			return
		}
		fn(l.session)
	})
}

func (l *marshalingListener) OnReady()           { l.post((*Session).onReady) }
func (l *marshalingListener) OnBuffering()       { l.post((*Session).onBuffering) }
func (l *marshalingListener) OnIdle()            { l.post((*Session).onIdle) }
func (l *marshalingListener) OnEnded()           { l.post((*Session).onEnded) }
func (l *marshalingListener) OnPositionTick()    { l.post((*Session).onPositionTick) }
func (l *marshalingListener) OnBufferedChanged() { l.post((*Session).onBufferedChanged) }

func (l *marshalingListener) OnError(err error) {
	l.post(func(s *Session) { s.onError(err) })
}

func (l *marshalingListener) OnVideoSizeKnown(width, height int) {
	l.post(func(s *Session) { s.onVideoSizeKnown(width, height) })
}

// seekDone wraps a seek completion so it is marshaled the same way.
func (l *marshalingListener) seekDone() func(bool) {
	return func(finished bool) {
		l.post(func(s *Session) { s.onSeekComplete(finished) })
	}
}
