package platform

import "sync"

var (
	dispatchMu   sync.RWMutex
	dispatchFunc func(callback func()) bool
)

// RegisterDispatch sets the dispatch function used to schedule native
// callbacks on the application's event queue. Pass nil to unregister.
//
// fn reports whether it accepted the callback. A dispatcher that can no
// longer run callbacks, such as a closed Queue, must return false so the
// caller can deliver the callback itself.
func RegisterDispatch(fn func(callback func()) bool) {
	dispatchMu.Lock()
	dispatchFunc = fn
	dispatchMu.Unlock()
}

// Dispatch schedules a callback on the application's event queue.
// It reports false if no dispatch function is registered, the callback is
// nil, or the registered function rejected the callback.
func Dispatch(callback func()) bool {
	dispatchMu.RLock()
	fn := dispatchFunc
	dispatchMu.RUnlock()
	if fn == nil || callback == nil {
		return false
	}
	return fn(callback)
}
