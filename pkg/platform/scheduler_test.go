package platform

import (
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestManualLooper_Order(t *testing.T) {
	m := NewManualLooper()
	var got []string

	m.PostDelayed(func() { got = append(got, "late") }, 50*time.Millisecond)
	m.PostDelayed(func() { got = append(got, "early") }, 10*time.Millisecond)
	m.Post(func() {
		got = append(got, "now")
		m.Post(func() { got = append(got, "nested") })
	})

	m.RunPending()
	if !reflect.DeepEqual(got, []string{"now", "nested"}) {
		t.Fatalf("after RunPending: %v", got)
	}

	m.Advance(50 * time.Millisecond)
	want := []string{"now", "nested", "early", "late"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("after Advance: got %v, want %v", got, want)
	}
	if m.Elapsed() != 50*time.Millisecond {
		t.Errorf("Elapsed(): got %v", m.Elapsed())
	}
}

func TestManualLooper_Cancel(t *testing.T) {
	m := NewManualLooper()
	ran := false
	task := m.PostDelayed(func() { ran = true }, 10*time.Millisecond)

	if !task.Cancel() {
		t.Error("first Cancel should report pending")
	}
	if task.Cancel() {
		t.Error("second Cancel should report false")
	}
	if m.PendingDelayed() != 0 {
		t.Errorf("PendingDelayed(): got %d", m.PendingDelayed())
	}
	m.Advance(time.Second)
	if ran {
		t.Error("cancelled task ran")
	}
}

func TestManualLooper_RescheduleDuringAdvance(t *testing.T) {
	m := NewManualLooper()
	var at []time.Duration
	var tick func()
	tick = func() {
		at = append(at, m.Elapsed())
		m.PostDelayed(tick, 100*time.Millisecond)
	}
	m.PostDelayed(tick, 100*time.Millisecond)

	m.Advance(350 * time.Millisecond)

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}
	if !reflect.DeepEqual(at, want) {
		t.Errorf("ticks: got %v, want %v", at, want)
	}
}

func TestLooper_RunsInOrder(t *testing.T) {
	l := NewLooper()
	defer l.Quit()

	var got []int
	for i := 0; i < 5; i++ {
		l.Post(func() { got = append(got, i) })
	}
	l.Sync(func() {})

	if !reflect.DeepEqual(got, []int{0, 1, 2, 3, 4}) {
		t.Errorf("order: got %v", got)
	}
}

func TestLooper_PostDelayedAndCancel(t *testing.T) {
	l := NewLooper()
	defer l.Quit()

	fired := make(chan struct{})
	l.PostDelayed(func() { close(fired) }, 5*time.Millisecond)

	var cancelledRan atomic.Bool
	task := l.PostDelayed(func() { cancelledRan.Store(true) }, 5*time.Millisecond)
	task.Cancel()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("delayed task did not run")
	}
	time.Sleep(20 * time.Millisecond)
	l.Sync(func() {})
	if cancelledRan.Load() {
		t.Error("cancelled task ran")
	}
}

func TestLooper_RecoversPanics(t *testing.T) {
	l := NewLooper()
	defer l.Quit()

	l.Post(func() { panic("boom") })
	ok := false
	l.Sync(func() { ok = true })

	if !ok {
		t.Error("looper stopped after a panic")
	}
}

func TestLooper_QuitRejectsWork(t *testing.T) {
	l := NewLooper()
	l.Quit()
	l.Quit()

	if l.Sync(func() {}) {
		t.Error("Sync after Quit should report false")
	}
}

func TestDispatchTo(t *testing.T) {
	t.Cleanup(ResetForTest)
	m := NewManualLooper()
	DispatchTo(m)

	ran := false
	if !Dispatch(func() { ran = true }) {
		t.Fatal("Dispatch reported no dispatcher")
	}
	if ran {
		t.Error("dispatch should post, not run inline")
	}
	m.RunPending()
	if !ran {
		t.Error("posted callback did not run")
	}

	DispatchTo(nil)
	if Dispatch(func() {}) {
		t.Error("Dispatch should fail without a dispatcher")
	}
}
