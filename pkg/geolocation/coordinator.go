package geolocation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-drift/gpslocation/pkg/errors"
	"github.com/go-drift/gpslocation/pkg/platform"
)

const tracerName = "github.com/go-drift/gpslocation/pkg/geolocation"

// Coordinator serves GetCurrentPosition requests: it normalizes options,
// answers from the cache when the cached position is fresh enough, and
// otherwise races the native layer against the request timeout.
type Coordinator struct {
	native   Native
	cache    Cache
	clock    Clock
	logger   *slog.Logger
	recorder Recorder
	tracer   trace.Tracer
	dispatch func(func()) bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithCache replaces the default MemoryCache.
func WithCache(cache Cache) Option {
	return func(c *Coordinator) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger for request tracing at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records request outcomes through r.
func WithMetrics(r Recorder) Option {
	return func(c *Coordinator) {
		c.recorder = r
	}
}

// WithTracerProvider sets the provider for request spans. The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Coordinator) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithDispatch sets how timer expiry is moved onto the application's event
// queue. fn reports false when it could not schedule the callback, in which
// case the callback runs on the timer goroutine. The default is
// platform.Dispatch; nil runs callbacks inline.
func WithDispatch(fn func(func()) bool) Option {
	return func(c *Coordinator) {
		c.dispatch = fn
	}
}

// New creates a Coordinator over the given native layer.
func New(native Native, opts ...Option) *Coordinator {
	c := &Coordinator{
		native:   native,
		cache:    NewMemoryCache(),
		clock:    SystemClock(),
		logger:   slog.Default(),
		tracer:   otel.GetTracerProvider().Tracer(tracerName),
		dispatch: platform.Dispatch,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LastPosition returns the most recently resolved position, if any.
func (c *Coordinator) LastPosition() (Position, bool) {
	return c.cache.Load()
}

// GetCurrentPosition acquires the current position asynchronously.
//
// success is required and is called at most once. failure is optional; when
// it is nil, errors are dropped silently. opts may be nil. Cache hits and
// zero timeouts resolve before GetCurrentPosition returns; every other
// outcome arrives later. Exactly one of success or failure fires unless the
// returned request is cancelled first.
func (c *Coordinator) GetCurrentPosition(success SuccessFunc, failure ErrorFunc, opts *PositionOptions) *PendingRequest {
	return c.start(context.Background(), success, failure, NormalizeOptions(opts))
}

// GetCurrentPositionRaw is GetCurrentPosition for loosely typed options; see ParseOptions.
func (c *Coordinator) GetCurrentPositionRaw(success SuccessFunc, failure ErrorFunc, opts map[string]any) *PendingRequest {
	return c.start(context.Background(), success, failure, ParseOptions(opts))
}

// CurrentPosition is the blocking form of GetCurrentPosition. It returns the
// position, the *PositionError, or ctx.Err() after cancelling the request
// when ctx ends first.
func (c *Coordinator) CurrentPosition(ctx context.Context, opts *PositionOptions) (Position, error) {
	type result struct {
		pos Position
		err *PositionError
	}
	results := make(chan result, 1)
	req := c.start(ctx,
		func(p Position) { results <- result{pos: p} },
		func(e *PositionError) { results <- result{err: e} },
		NormalizeOptions(opts),
	)

	var r result
	select {
	case r = <-results:
	case <-ctx.Done():
		if req.Cancel() {
			return Position{}, ctx.Err()
		}
		// Settled concurrently; its callback is already delivering.
		r = <-results
	}
	if r.err != nil {
		return Position{}, r.err
	}
	return r.pos, nil
}

func (c *Coordinator) start(ctx context.Context, success SuccessFunc, failure ErrorFunc, opts RequestOptions) *PendingRequest {
	if success == nil {
		panic("geolocation: GetCurrentPosition requires a success callback")
	}
	now := c.clock.Now()
	req := newPendingRequest(opts, now)
	req.success, req.failure = success, failure
	req.logger = c.logger.With("request_id", req.ID.String())
	_, req.span = c.tracer.Start(ctx, "geolocation.GetCurrentPosition", trace.WithAttributes(
		attribute.String("geolocation.request_id", req.ID.String()),
		attribute.Int64("geolocation.maximum_age_ms", opts.MaximumAge.Milliseconds()),
		attribute.Int64("geolocation.timeout_ms", timeoutMillis(opts)),
		attribute.Bool("geolocation.use_last_location", opts.UseLastLocation),
	))
	req.onCancel = func() { c.finish(req, OutcomeCancelled, nil) }
	req.logger.Debug("getCurrentPosition called", "options", opts.String())

	if pos, ok := c.cachedPosition(opts, now); ok {
		req.logger.Debug("returning cached position", "age", pos.Age(now))
		req.settle()
		c.finish(req, OutcomeCacheHit, nil)
		c.deliverSuccess(req, pos)
		return req
	}

	if opts.Timeout == 0 {
		req.logger.Debug("failing because timeout is 0")
		c.fail(req, NewPositionError(Timeout, msgZeroTimeout), OutcomeTimeout)
		return req
	}

	c.fetch(req)
	return req
}

// cachedPosition reports the cached position when it is no older than the
// requested maximum age. A zero maximum age never matches.
func (c *Coordinator) cachedPosition(opts RequestOptions, now time.Time) (Position, bool) {
	if opts.MaximumAge <= 0 {
		return Position{}, false
	}
	pos, ok := c.cache.Load()
	if !ok || pos.Age(now) > opts.MaximumAge {
		return Position{}, false
	}
	return pos, true
}

// fetch arms the timeout and runs permission check then location fetch.
func (c *Coordinator) fetch(req *PendingRequest) {
	if !req.Options.Unbounded() {
		req.armTimer(c.clock.AfterFunc(req.Options.Timeout, func() {
			c.post(func() {
				c.fail(req, NewPositionError(Timeout, msgTimedOut), OutcomeTimeout)
			})
		}))
	}

	req.logger.Debug("requesting native permission")
	c.native.RequestPermission(
		func() { c.onPermissionGranted(req) },
		func() {
			req.logger.Debug("native permission denied")
			c.fail(req, NewPositionError(PermissionDenied, msgIllegalAccess), OutcomePermissionDenied)
		},
	)
}

func (c *Coordinator) onPermissionGranted(req *PendingRequest) {
	if req.Settled() {
		req.logger.Debug("permission granted after request resolved; skipping fetch")
		return
	}
	req.logger.Debug("permission granted; fetching location",
		"maximum_age", req.Options.MaximumAge, "use_last_location", req.Options.UseLastLocation)
	c.native.FetchLocation(req.Options.MaximumAge, req.Options.UseLastLocation,
		func(raw RawPosition) { c.resolve(req, raw) },
		func(raw RawError) { c.fail(req, positionErrorFromRaw(raw), OutcomeError) },
	)
}

// resolve handles a native fix.
func (c *Coordinator) resolve(req *PendingRequest, raw RawPosition) {
	if !req.settle() {
		c.discard(req, OutcomeSuccess)
		return
	}
	pos, err := parsePosition(raw, c.clock.Now())
	if err != nil {
		errors.Report(&errors.OpError{
			Op:        "geolocation.resolve",
			Kind:      errors.KindParsing,
			Channel:   PluginChannel,
			RequestID: req.ID.String(),
			Err:       err,
		})
		perr := NewPositionError(PositionUnavailable, msgMalformedFix)
		c.finish(req, OutcomeError, perr)
		c.deliverFailure(req, perr)
		return
	}
	c.cache.Store(pos)
	c.finish(req, OutcomeSuccess, nil)
	c.deliverSuccess(req, pos)
}

// fail settles the request with perr. Late failures are discarded.
func (c *Coordinator) fail(req *PendingRequest, perr *PositionError, outcome string) {
	if !req.settle() {
		c.discard(req, outcome)
		return
	}
	c.finish(req, outcome, perr)
	c.deliverFailure(req, perr)
}

func (c *Coordinator) discard(req *PendingRequest, source string) {
	req.logger.Debug("request already resolved; discarding result", "source", source)
	if c.recorder != nil {
		c.recorder.ObserveDiscarded(source)
	}
}

func (c *Coordinator) finish(req *PendingRequest, outcome string, perr *PositionError) {
	elapsed := c.clock.Now().Sub(req.started)
	if c.recorder != nil {
		c.recorder.ObserveRequest(outcome, elapsed)
	}
	req.span.SetAttributes(attribute.String("geolocation.outcome", outcome))
	if perr != nil {
		req.span.SetAttributes(attribute.Int("geolocation.error_code", int(perr.Code)))
		req.span.SetStatus(codes.Error, perr.Message)
	}
	req.span.End()
	req.logger.Debug("request resolved", "outcome", outcome, "elapsed", elapsed)
}

func (c *Coordinator) deliverSuccess(req *PendingRequest, pos Position) {
	defer errors.Recover("geolocation.successCallback")
	req.success(pos)
}

func (c *Coordinator) deliverFailure(req *PendingRequest, perr *PositionError) {
	if req.failure == nil {
		req.logger.Debug("no error callback; dropping error", "code", perr.Code.String(), "message", perr.Message)
		return
	}
	defer errors.Recover("geolocation.errorCallback")
	req.failure(perr)
}

// post runs fn on the event queue when one is registered.
func (c *Coordinator) post(fn func()) {
	if c.dispatch != nil && c.dispatch(fn) {
		return
	}
	fn()
}

func timeoutMillis(opts RequestOptions) int64 {
	if opts.Unbounded() {
		return -1
	}
	return opts.Timeout.Milliseconds()
}
