package geolocation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Infinite is the Timeout of a request that never times out.
const Infinite time.Duration = math.MaxInt64

// PositionOptions is the caller's view of request options. Nil fields mean
// "not supplied" and fall back to defaults.
type PositionOptions struct {
	// MaximumAge bounds how old a cached position may be to satisfy the request.
	MaximumAge *time.Duration
	// Timeout bounds the total wait for the native layer.
	Timeout *time.Duration
	// UseLastLocation lets the native layer answer with its last known fix.
	UseLastLocation *bool
}

// Duration returns a pointer to d, for filling PositionOptions.
func Duration(d time.Duration) *time.Duration { return &d }

// Bool returns a pointer to b, for filling PositionOptions.
func Bool(b bool) *bool { return &b }

// RequestOptions is a fully populated, normalized options record.
type RequestOptions struct {
	MaximumAge      time.Duration
	Timeout         time.Duration
	UseLastLocation bool
}

// DefaultOptions returns {MaximumAge: 0, Timeout: Infinite, UseLastLocation: false}.
func DefaultOptions() RequestOptions {
	return RequestOptions{Timeout: Infinite}
}

// Unbounded reports whether the request has no timeout.
func (o RequestOptions) Unbounded() bool {
	return o.Timeout == Infinite
}

func (o RequestOptions) String() string {
	timeout := "Infinity"
	if !o.Unbounded() {
		timeout = o.Timeout.String()
	}
	return fmt.Sprintf("maximumAge=%s timeout=%s useLastLocation=%t", o.MaximumAge, timeout, o.UseLastLocation)
}

// NormalizeOptions fills in defaults. It never fails: a MaximumAge that is
// not positive is ignored, a negative Timeout is clamped to zero.
func NormalizeOptions(opts *PositionOptions) RequestOptions {
	o := DefaultOptions()
	if opts == nil {
		return o
	}
	if opts.MaximumAge != nil && *opts.MaximumAge > 0 {
		o.MaximumAge = *opts.MaximumAge
	}
	if opts.Timeout != nil {
		if *opts.Timeout < 0 {
			o.Timeout = 0
		} else {
			o.Timeout = *opts.Timeout
		}
	}
	if opts.UseLastLocation != nil {
		o.UseLastLocation = *opts.UseLastLocation
	}
	return o
}

// ParseOptions normalizes loosely typed options, as decoded from JSON, YAML
// or plugin arguments. Numeric values (and numeric strings) are milliseconds;
// anything else is silently replaced by its default.
//
//	ParseOptions(map[string]any{"maximumAge": 5000, "timeout": "abc"})
//	// maximumAge=5s timeout=Infinity useLastLocation=false
func ParseOptions(raw map[string]any) RequestOptions {
	if raw == nil {
		return DefaultOptions()
	}
	var opts PositionOptions
	if v, ok := raw["maximumAge"]; ok {
		if ms, ok := toNumber(v); ok && ms > 0 {
			opts.MaximumAge = Duration(millis(ms))
		}
	}
	if v, ok := raw["timeout"]; ok {
		if ms, ok := toNumber(v); ok {
			opts.Timeout = Duration(millis(ms))
		}
	}
	if v, ok := raw["useLastLocation"]; ok {
		opts.UseLastLocation = Bool(truthy(v))
	}
	return NormalizeOptions(&opts)
}

// toNumber accepts numbers and strings holding a number.
func toNumber(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		switch s {
		case "":
			return 0, false
		case "Infinity", "+Infinity", "inf", "+inf":
			return math.Inf(1), true
		case "-Infinity", "-inf":
			return math.Inf(-1), true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return toFloat64(v)
}

// millis converts milliseconds to a Duration, saturating at Infinite.
// Negative inputs only need to keep their sign.
func millis(ms float64) time.Duration {
	ns := ms * float64(time.Millisecond)
	switch {
	case ns >= float64(Infinite):
		return Infinite
	case ns <= -float64(Infinite):
		return -1
	}
	return time.Duration(ns)
}
