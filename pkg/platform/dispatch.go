package platform

import "sync"

var (
	dispatchMu   sync.RWMutex
	dispatchFunc func(callback func())
)

// RegisterDispatch sets the function used to schedule callbacks on the
// host's main execution context. Hosts call this once during attach;
// [DispatchTo] is the usual way to route it to a [Scheduler].
func RegisterDispatch(fn func(callback func())) {
	dispatchMu.Lock()
	dispatchFunc = fn
	dispatchMu.Unlock()
}

// DispatchTo registers s.Post as the dispatch function.
func DispatchTo(s Scheduler) {
	if s == nil {
		RegisterDispatch(nil)
		return
	}
	RegisterDispatch(s.Post)
}

// Dispatch schedules a callback on the main context.
// Returns false if no dispatch function is registered or the callback is nil.
func Dispatch(callback func()) bool {
	dispatchMu.RLock()
	fn := dispatchFunc
	dispatchMu.RUnlock()
	if fn == nil || callback == nil {
		return false
	}
	fn(callback)
	return true
}
