package platform

import (
	"sort"
	"sync"
	"time"
)

// noopBridge is a HostBridge that accepts all events without side effects.
type noopBridge struct{}

func (noopBridge) SendEvent(string, []byte) error             { return nil }
func (noopBridge) SendEventError(string, *ChannelError) error { return nil }
func (noopBridge) SendEndOfStream(string) error               { return nil }

// SetupTestBridge installs a no-op host bridge and synchronous dispatch
// for testing. The cleanup function should be testing.T.Cleanup or
// equivalent; it registers a teardown that calls ResetForTest.
//
//	platform.SetupTestBridge(t.Cleanup)
func SetupTestBridge(cleanup func(func())) {
	SetHostBridge(noopBridge{})
	RegisterDispatch(func(cb func()) { cb() })
	cleanup(ResetForTest)
}

// RecordedEvent is one message captured by a [RecordingBridge].
type RecordedEvent struct {
	Channel string
	Data    any
	Err     *ChannelError
	Done    bool
}

// RecordingBridge is a HostBridge that decodes and keeps every outbound
// message, for assertions in tests.
type RecordingBridge struct {
	mu     sync.Mutex
	events []RecordedEvent
}

// SendEvent implements HostBridge.
func (b *RecordingBridge) SendEvent(channel string, data []byte) error {
	v, err := DefaultCodec.Decode(data)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.events = append(b.events, RecordedEvent{Channel: channel, Data: v})
	b.mu.Unlock()
	return nil
}

// SendEventError implements HostBridge.
func (b *RecordingBridge) SendEventError(channel string, ce *ChannelError) error {
	b.mu.Lock()
	b.events = append(b.events, RecordedEvent{Channel: channel, Err: ce})
	b.mu.Unlock()
	return nil
}

// SendEndOfStream implements HostBridge.
func (b *RecordingBridge) SendEndOfStream(channel string) error {
	b.mu.Lock()
	b.events = append(b.events, RecordedEvent{Channel: channel, Done: true})
	b.mu.Unlock()
	return nil
}

// Events returns a copy of everything recorded so far.
func (b *RecordingBridge) Events() []RecordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedEvent, len(b.events))
	copy(out, b.events)
	return out
}

// Reset discards recorded events.
func (b *RecordingBridge) Reset() {
	b.mu.Lock()
	b.events = nil
	b.mu.Unlock()
}

// ManualLooper is a deterministic [Scheduler] driven by virtual time.
// Nothing runs until the test calls [ManualLooper.RunPending] or
// [ManualLooper.Advance]. It also serves as a clock through
// [ManualLooper.Now], so simulated players can share its timeline.
type ManualLooper struct {
	mu      sync.Mutex
	epoch   time.Time
	elapsed time.Duration
	seq     uint64
	ready   []func()
	delayed []*manualTask
}

// NewManualLooper returns a ManualLooper starting at a fixed epoch.
func NewManualLooper() *ManualLooper {
	return &ManualLooper{epoch: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

type manualTask struct {
	due       time.Duration
	seq       uint64
	fn        func()
	cancelled bool
	ran       bool
	owner     *ManualLooper
}

func (t *manualTask) Cancel() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.cancelled || t.ran {
		return false
	}
	t.cancelled = true
	return true
}

// Post implements Scheduler.
func (m *ManualLooper) Post(fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.ready = append(m.ready, fn)
	m.mu.Unlock()
}

// PostDelayed implements Scheduler.
func (m *ManualLooper) PostDelayed(fn func(), d time.Duration) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{due: m.elapsed + d, seq: m.seq, fn: fn, owner: m}
	m.delayed = append(m.delayed, t)
	return t
}

// Now returns the virtual wall clock.
func (m *ManualLooper) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch.Add(m.elapsed)
}

// Elapsed returns virtual time since the looper was created.
func (m *ManualLooper) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsed
}

// RunPending runs posted work, including work posted while running,
// until the ready queue is empty. Delayed work is not touched.
func (m *ManualLooper) RunPending() {
	for {
		m.mu.Lock()
		if len(m.ready) == 0 {
			m.mu.Unlock()
			return
		}
		fn := m.ready[0]
		m.ready = m.ready[1:]
		m.mu.Unlock()
		fn()
	}
}

// Advance moves virtual time forward by d, running ready work and every
// delayed task that falls due, in due order.
func (m *ManualLooper) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.elapsed + d
	m.mu.Unlock()

	for {
		m.RunPending()
		t := m.nextDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	m.mu.Lock()
	m.elapsed = target
	m.mu.Unlock()
	m.RunPending()
}

// nextDue pops the earliest live task due at or before target and moves
// the clock to its due time.
func (m *ManualLooper) nextDue(target time.Duration) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.delayed[:0]
	for _, t := range m.delayed {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.delayed = live
	if len(m.delayed) == 0 {
		return nil
	}
	sort.Slice(m.delayed, func(i, j int) bool {
		if m.delayed[i].due != m.delayed[j].due {
			return m.delayed[i].due < m.delayed[j].due
		}
		return m.delayed[i].seq < m.delayed[j].seq
	})
	t := m.delayed[0]
	if t.due > target {
		return nil
	}
	m.delayed = m.delayed[1:]
	t.ran = true
	if t.due > m.elapsed {
		m.elapsed = t.due
	}
	return t
}

// PendingDelayed reports how many delayed tasks are still scheduled.
func (m *ManualLooper) PendingDelayed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.delayed {
		if !t.cancelled {
			n++
		}
	}
	return n
}
