package simbridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/gpslocation/pkg/geolocation"
	"github.com/go-drift/gpslocation/pkg/platform"
)

func invoke(t *testing.T, b *Bridge, method string, args any) (any, error) {
	t.Helper()
	data, err := platform.DefaultCodec.Encode(args)
	require.NoError(t, err)
	out, err := b.InvokeMethod(Channel, method, data)
	if err != nil {
		return nil, err
	}
	decoded, err := platform.DefaultCodec.Decode(out)
	require.NoError(t, err)
	return decoded, nil
}

func TestGetPermission(t *testing.T) {
	granted, err := invoke(t, New(DefaultConfig()), "getPermission", nil)
	require.NoError(t, err)
	assert.Equal(t, true, granted)

	cfg := DefaultConfig()
	cfg.DenyPermission = true
	_, err = invoke(t, New(cfg), "getPermission", nil)
	var chErr *platform.ChannelError
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, "ILLEGAL_ACCESS_EXCEPTION", chErr.Code)
}

func TestGetLocationFreshFix(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()
	cfg.Delay = 0
	b := New(cfg, WithNow(func() time.Time { return now }))

	result, err := invoke(t, b, "getLocation", []any{0, false})
	require.NoError(t, err)
	fix, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 40.4168, fix["latitude"])
	assert.Equal(t, 10.0, fix["accuracy"])
	assert.Nil(t, fix["altitude"])
	assert.Equal(t, float64(now.UnixMilli()), fix["timestamp"])

	fresh, lastKnown := b.Stats()
	assert.Equal(t, 1, fresh)
	assert.Equal(t, 0, lastKnown)
}

func TestGetLocationLastKnown(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()
	cfg.Delay = 0
	cfg.LastKnownAge = 10 * time.Second

	tests := []struct {
		name      string
		args      []any
		lastKnown bool
	}{
		{"use last location", []any{0, true}, true},
		{"fresh enough", []any{30000, false}, true},
		{"exactly maximum age", []any{10000, false}, true},
		{"too old", []any{5000, false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(cfg, WithNow(func() time.Time { return now }))
			result, err := invoke(t, b, "getLocation", tt.args)
			require.NoError(t, err)

			fix := result.(map[string]any)
			_, lastKnown := b.Stats()
			if tt.lastKnown {
				assert.Equal(t, 1, lastKnown)
				assert.Equal(t, float64(now.Add(-10*time.Second).UnixMilli()), fix["timestamp"])
			} else {
				assert.Equal(t, 0, lastKnown)
				assert.Equal(t, float64(now.UnixMilli()), fix["timestamp"])
			}
		})
	}
}

func TestGetLocationErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GPSDisabled = true
	b := New(cfg)

	_, err := invoke(t, b, "getLocation", []any{0, false})
	var chErr *platform.ChannelError
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, "2", chErr.Code)
	assert.Equal(t, "GPS is disabled on this device.", chErr.Message)

	_, err = invoke(t, b, "getLocation", []any{"soon"})
	assert.ErrorIs(t, err, platform.ErrInvalidArguments)

	_, err = invoke(t, b, "watchPosition", nil)
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, "99", chErr.Code)
	assert.Equal(t, map[string]any{"channel": Channel, "method": "watchPosition"}, chErr.Details)

	_, err = b.InvokeMethod("Camera", "getPermission", nil)
	assert.ErrorIs(t, err, platform.ErrChannelNotFound)
}

func TestCoordinatorOverSimulatedPlugin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Delay = 20 * time.Millisecond
	b := New(cfg)
	platform.SetupTestBridge(t.Cleanup, b)
	coord := geolocation.New(geolocation.NewPluginNative())

	first, err := coord.CurrentPosition(context.Background(), &geolocation.PositionOptions{
		Timeout: geolocation.Duration(time.Second),
	})
	require.NoError(t, err)
	assert.Equal(t, cfg.Latitude, first.Coords.Latitude)

	// Served from the coordinator cache without a plugin call.
	second, err := coord.CurrentPosition(context.Background(), &geolocation.PositionOptions{
		MaximumAge: geolocation.Duration(time.Minute),
	})
	require.NoError(t, err)
	assert.True(t, second.Timestamp.Equal(first.Timestamp))
	fresh, lastKnown := b.Stats()
	assert.Equal(t, 1, fresh)
	assert.Equal(t, 0, lastKnown)

	// The plugin itself answers with its last known fix when asked to.
	_, err = coord.CurrentPosition(context.Background(), &geolocation.PositionOptions{
		UseLastLocation: geolocation.Bool(true),
	})
	require.NoError(t, err)
	_, lastKnown = b.Stats()
	assert.Equal(t, 1, lastKnown)
}
