package platform

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/nativevideo/pkg/errors"
)

// Scheduler serializes work onto a single execution context. Every
// playback session mutation and event emission runs through one.
type Scheduler interface {
	// Post queues fn to run after everything already queued.
	Post(fn func())

	// PostDelayed queues fn to run once d has elapsed. The returned task
	// can be cancelled until it starts running.
	PostDelayed(fn func(), d time.Duration) Task
}

// Task is a handle to delayed work.
type Task interface {
	// Cancel prevents the task from running. It reports whether the task
	// was still pending. Cancel is safe to call more than once.
	Cancel() bool
}

// Looper is a goroutine-backed [Scheduler]: a FIFO drained by one
// goroutine, in the manner of a UI main loop. Panics in posted functions
// are recovered and reported so one bad callback cannot stop the loop.
type Looper struct {
	mu       sync.Mutex
	queue    []func()
	quitting bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

// NewLooper starts a looper goroutine.
func NewLooper() *Looper {
	l := &Looper{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// Post implements Scheduler. Posting after Quit is a no-op.
func (l *Looper) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.quitting {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// PostDelayed implements Scheduler. The timer fires on a runtime goroutine
// and re-posts onto the loop; the cancellation check happens on the loop,
// so a Cancel issued from loop code always wins.
func (l *Looper) PostDelayed(fn func(), d time.Duration) Task {
	t := &looperTask{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.state.CompareAndSwap(taskPending, taskRan) {
				fn()
			}
		})
	})
	return t
}

// Sync runs fn on the loop and waits for it to return. It reports false
// if the looper has quit. Sync must not be called from the loop itself.
func (l *Looper) Sync(fn func()) bool {
	ran := make(chan struct{})
	l.mu.Lock()
	if l.quitting {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, func() {
		defer close(ran)
		fn()
	})
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}

	select {
	case <-ran:
		return true
	case <-l.done:
		return false
	}
}

// Quit stops the loop after the currently running function returns.
// Queued and delayed work is discarded. Quit blocks until the loop exits
// and is safe to call more than once.
func (l *Looper) Quit() {
	l.mu.Lock()
	if l.quitting {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.quitting = true
	l.queue = nil
	l.mu.Unlock()

	close(l.quit)
	<-l.done
}

func (l *Looper) run() {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			return
		case <-l.wake:
		}

		for {
			l.mu.Lock()
			if l.quitting || len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			fn := l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
			l.mu.Unlock()

			l.invoke(fn)
		}
	}
}

func (l *Looper) invoke(fn func()) {
	defer errors.Recover("platform.Looper")
	fn()
}

const (
	taskPending int32 = iota
	taskRan
	taskCancelled
)

type looperTask struct {
	timer *time.Timer
	state atomic.Int32
}

func (t *looperTask) Cancel() bool {
	if !t.state.CompareAndSwap(taskPending, taskCancelled) {
		return false
	}
	t.timer.Stop()
	return true
}
