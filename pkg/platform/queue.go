package platform

import (
	"context"
	"sync"

	"github.com/go-drift/gpslocation/pkg/errors"
)

// Queue is a serial event loop. Callbacks posted to it run one at a time on
// the goroutine that calls Run, so callbacks never run concurrently with
// each other. Register it with RegisterDispatch(q.Dispatch).
type Queue struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool
	wake   chan struct{}
}

// NewQueue creates an empty, open queue.
func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Post appends fn to the queue. It reports false if fn is nil or the
// queue has been closed.
func (q *Queue) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
	q.notify()
	return true
}

// Dispatch posts fn and reports whether the queue accepted it. Its
// signature matches RegisterDispatch, so a closed queue hands callbacks
// back to the caller instead of dropping them.
func (q *Queue) Dispatch(fn func()) bool {
	return q.Post(fn)
}

// Close stops accepting callbacks. Run drains what was already posted and returns.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.notify()
}

// Run executes posted callbacks in order until the queue is closed and
// drained, or ctx ends. Panics in callbacks are recovered and reported.
func (q *Queue) Run(ctx context.Context) error {
	for {
		q.mu.Lock()
		tasks := q.tasks
		q.tasks = nil
		closed := q.closed
		q.mu.Unlock()

		for _, fn := range tasks {
			q.run(fn)
		}
		if len(tasks) > 0 {
			continue
		}
		if closed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
		}
	}
}

func (q *Queue) run(fn func()) {
	defer errors.Recover("platform.Queue")
	fn()
}

func (q *Queue) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
