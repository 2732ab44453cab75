// Package simbridge implements a simulated SimpleGPSLocation plugin.
//
// The CLI and integration tests install a Bridge with
// platform.SetNativeBridge to run the full coordinator stack on machines
// without a location provider. It answers getPermission and getLocation the
// way the Android plugin does, including its error codes.
package simbridge

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-drift/gpslocation/pkg/platform"
)

// Channel is the plugin channel the bridge serves.
const Channel = "SimpleGPSLocation"

// Plugin error codes and messages.
const (
	codeIllegalAccess = "ILLEGAL_ACCESS_EXCEPTION"
	codeUnavailable   = "2"
	codeUnknownAction = "99"

	msgIllegalAccess = "Illegal Access"
	msgGPSDisabled   = "GPS is disabled on this device."
	msgUnknownAction = "unknown action"
)

// Config describes the simulated device.
type Config struct {
	Latitude  float64  `yaml:"latitude"`
	Longitude float64  `yaml:"longitude"`
	Altitude  *float64 `yaml:"altitude,omitempty"`
	Accuracy  *float64 `yaml:"accuracy,omitempty"`
	Heading   *float64 `yaml:"heading,omitempty"`
	Velocity  *float64 `yaml:"velocity,omitempty"`

	// Delay is how long a fresh fix takes.
	Delay time.Duration `yaml:"delay,omitempty"`
	// DenyPermission makes getPermission fail.
	DenyPermission bool `yaml:"denyPermission,omitempty"`
	// GPSDisabled makes getLocation fail with POSITION_UNAVAILABLE.
	GPSDisabled bool `yaml:"gpsDisabled,omitempty"`
	// LastKnownAge seeds a last known fix this old. Zero means the device
	// has no last known fix until it produces one.
	LastKnownAge time.Duration `yaml:"lastKnownAge,omitempty"`
}

// DefaultConfig places the device in Madrid with a 10 m fix taking 50 ms.
func DefaultConfig() Config {
	accuracy := 10.0
	return Config{
		Latitude:  40.4168,
		Longitude: -3.7038,
		Accuracy:  &accuracy,
		Delay:     50 * time.Millisecond,
	}
}

// Bridge is a platform.NativeBridge serving the SimpleGPSLocation channel.
type Bridge struct {
	cfg    Config
	now    func() time.Time
	logger *slog.Logger

	mu        sync.Mutex
	lastFix   time.Time
	hasLast   bool
	fresh     int
	lastKnown int
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithNow replaces time.Now.
func WithNow(now func() time.Time) Option {
	return func(b *Bridge) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets the logger for simulated calls.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a Bridge for cfg.
func New(cfg Config, opts ...Option) *Bridge {
	b := &Bridge{cfg: cfg, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	if cfg.LastKnownAge > 0 {
		b.lastFix = b.now().Add(-cfg.LastKnownAge)
		b.hasLast = true
	}
	return b
}

// InvokeMethod implements platform.NativeBridge.
func (b *Bridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	if channel != Channel {
		return nil, platform.ErrChannelNotFound
	}
	b.logger.Debug("simulated plugin call", "channel", channel, "method", method)

	switch method {
	case "getPermission":
		if b.cfg.DenyPermission {
			return nil, platform.NewChannelError(codeIllegalAccess, msgIllegalAccess)
		}
		return platform.DefaultCodec.Encode(true)
	case "getLocation":
		maximumAge, useLastLocation, err := decodeLocationArgs(args)
		if err != nil {
			return nil, err
		}
		if b.cfg.GPSDisabled {
			return nil, platform.NewChannelError(codeUnavailable, msgGPSDisabled)
		}
		return platform.DefaultCodec.Encode(b.locate(maximumAge, useLastLocation))
	}
	return nil, platform.NewChannelErrorWithDetails(codeUnknownAction, msgUnknownAction,
		map[string]any{"channel": channel, "method": method})
}

// Stats returns how many fresh and last known fixes the bridge has served.
func (b *Bridge) Stats() (fresh, lastKnown int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fresh, b.lastKnown
}

// locate serves the last known fix when allowed, otherwise waits Delay for a
// fresh one.
func (b *Bridge) locate(maximumAge time.Duration, useLastLocation bool) map[string]any {
	b.mu.Lock()
	if b.hasLast && (useLastLocation || b.now().Sub(b.lastFix) <= maximumAge) {
		b.lastKnown++
		at := b.lastFix
		b.mu.Unlock()
		b.logger.Debug("serving last known fix", "age", b.now().Sub(at))
		return b.payload(at)
	}
	b.mu.Unlock()

	if b.cfg.Delay > 0 {
		time.Sleep(b.cfg.Delay)
	}

	b.mu.Lock()
	at := b.now()
	b.lastFix, b.hasLast = at, true
	b.fresh++
	b.mu.Unlock()
	return b.payload(at)
}

func (b *Bridge) payload(at time.Time) map[string]any {
	return map[string]any{
		"latitude":  b.cfg.Latitude,
		"longitude": b.cfg.Longitude,
		"altitude":  nullable(b.cfg.Altitude),
		"accuracy":  nullable(b.cfg.Accuracy),
		"heading":   nullable(b.cfg.Heading),
		"velocity":  nullable(b.cfg.Velocity),
		"timestamp": at.UnixMilli(),
	}
}

func nullable(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// decodeLocationArgs reads [maximumAgeMillis, useLastLocation].
func decodeLocationArgs(data []byte) (time.Duration, bool, error) {
	decoded, err := platform.DefaultCodec.Decode(data)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", platform.ErrInvalidArguments, err)
	}
	args, ok := decoded.([]any)
	if !ok || len(args) != 2 {
		return 0, false, fmt.Errorf("%w: getLocation expects [maximumAge, useLastLocation], got %v", platform.ErrInvalidArguments, decoded)
	}
	ms, ok := args[0].(float64)
	if !ok {
		return 0, false, fmt.Errorf("%w: maximumAge must be a number, got %T", platform.ErrInvalidArguments, args[0])
	}
	useLast, _ := args[1].(bool)
	return time.Duration(ms) * time.Millisecond, useLast, nil
}
