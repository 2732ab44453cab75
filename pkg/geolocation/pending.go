package geolocation

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// PendingRequest is the per-call state of GetCurrentPosition. Whichever of
// native success, native failure or timer expiry settles it first wins; the
// others find it settled and are dropped.
type PendingRequest struct {
	// ID identifies the request in logs, traces and error reports.
	ID uuid.UUID
	// Options are the normalized options the request runs with.
	Options RequestOptions

	settled atomic.Bool
	done    chan struct{}

	mu    sync.Mutex
	timer Timer

	started  time.Time
	success  SuccessFunc
	failure  ErrorFunc
	span     trace.Span
	logger   *slog.Logger
	onCancel func()
}

func newPendingRequest(opts RequestOptions, started time.Time) *PendingRequest {
	return &PendingRequest{
		ID:      uuid.New(),
		Options: opts,
		done:    make(chan struct{}),
		started: started,
	}
}

// settle closes the gate. Only the first caller gets true.
func (r *PendingRequest) settle() bool {
	if !r.settled.CompareAndSwap(false, true) {
		return false
	}
	r.stopTimer()
	close(r.done)
	return true
}

// armTimer attaches the timeout timer. A timer attached after the request
// settled is stopped right away.
func (r *PendingRequest) armTimer(t Timer) {
	r.mu.Lock()
	r.timer = t
	r.mu.Unlock()
	if r.settled.Load() {
		r.stopTimer()
	}
}

func (r *PendingRequest) stopTimer() {
	r.mu.Lock()
	t := r.timer
	r.timer = nil
	r.mu.Unlock()
	if t != nil {
		t.Stop()
	}
}

// HasTimer reports whether a timeout timer is armed and has not been cleared.
func (r *PendingRequest) HasTimer() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer != nil
}

// Settled reports whether the request has resolved or been cancelled.
func (r *PendingRequest) Settled() bool {
	return r.settled.Load()
}

// Done is closed once the request has resolved or been cancelled.
func (r *PendingRequest) Done() <-chan struct{} {
	return r.done
}

// StopTimer clears the timeout timer but leaves the request open, so it
// still settles on the native answer however late that arrives. It reports
// false if no timer was armed, the timer already fired, or the request had
// already settled.
func (r *PendingRequest) StopTimer() bool {
	if r.settled.Load() {
		return false
	}
	r.mu.Lock()
	t := r.timer
	r.timer = nil
	r.mu.Unlock()
	if t == nil {
		return false
	}
	if !t.Stop() {
		return false
	}
	r.logger.Debug("timeout cleared; waiting for native answer")
	return true
}

// Cancel clears the timeout timer and closes the request without invoking
// either callback; native answers that arrive later are discarded. It
// reports false if the request had already settled.
func (r *PendingRequest) Cancel() bool {
	if !r.settle() {
		return false
	}
	if r.onCancel != nil {
		r.onCancel()
	}
	return true
}
