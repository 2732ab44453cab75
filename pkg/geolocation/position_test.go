package geolocation

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/gpslocation/pkg/platform"
)

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestParsePosition(t *testing.T) {
	pos, err := parsePosition(RawPosition{
		"latitude":  51.5,
		"longitude": -0.12,
		"altitude":  nil,
		"accuracy":  int64(8),
		"heading":   "north",
		"velocity":  0.0,
		"timestamp": float64(testNow.Add(-time.Minute).UnixMilli()),
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, 51.5, pos.Coords.Latitude)
	assert.Equal(t, -0.12, pos.Coords.Longitude)
	assert.Nil(t, pos.Coords.Altitude)
	require.NotNil(t, pos.Coords.Accuracy)
	assert.Equal(t, 8.0, *pos.Coords.Accuracy)
	assert.Nil(t, pos.Coords.Heading, "non-numeric readings are dropped")
	require.NotNil(t, pos.Coords.Velocity)
	assert.Equal(t, time.Minute, pos.Age(testNow))
}

func TestParsePositionNil(t *testing.T) {
	_, err := parsePosition(nil, testNow)
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  time.Time
	}{
		{"missing", nil, testNow},
		{"millis", float64(1700000000000), time.UnixMilli(1700000000000)},
		{"millis string", "1700000000000", time.UnixMilli(1700000000000)},
		{"rfc3339", "2023-11-14T22:13:20Z", time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)},
		{"time", testNow.Add(-time.Hour), testNow.Add(-time.Hour)},
		{"garbage", "yesterday", testNow},
		{"infinite", math.Inf(1), testNow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(tt.value, testNow)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestNewPositionCopiesReadings(t *testing.T) {
	alt := 100.0
	pos := NewPosition(Coordinates{Latitude: 1, Longitude: 2, Altitude: &alt}, testNow)
	alt = 200
	require.NotNil(t, pos.Coords.Altitude)
	assert.Equal(t, 100.0, *pos.Coords.Altitude)
}

func TestPositionErrorIs(t *testing.T) {
	err := error(NewPositionError(PermissionDenied, "Illegal Access"))
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, "geolocation: PERMISSION_DENIED: Illegal Access", err.Error())
}

func TestMemoryCacheReplacesOnWrite(t *testing.T) {
	var c MemoryCache
	_, ok := c.Load()
	assert.False(t, ok)

	c.Store(NewPosition(Coordinates{Latitude: 1}, testNow))
	c.Store(NewPosition(Coordinates{Latitude: 2}, testNow))
	pos, ok := c.Load()
	require.True(t, ok)
	assert.Equal(t, 2.0, pos.Coords.Latitude)
}

func TestRawErrorFrom(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want RawError
	}{
		{"numeric code", platform.NewChannelError("2", "GPS is disabled on this device."),
			RawError{Code: 2, Message: "GPS is disabled on this device."}},
		{"details", platform.NewChannelErrorWithDetails("LOCATION_ERROR", "", map[string]any{"code": 3.0, "message": "slow"}),
			RawError{Code: 3, Message: "slow"}},
		{"symbolic code", platform.NewChannelError("ILLEGAL_ACCESS_EXCEPTION", ""),
			RawError{Message: "native error ILLEGAL_ACCESS_EXCEPTION"}},
		{"transport", platform.ErrPlatformUnavailable,
			RawError{Message: platform.ErrPlatformUnavailable.Error()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rawErrorFrom(tt.err))
		})
	}
}

func TestToIntAndTruthy(t *testing.T) {
	n, ok := toInt("42")
	assert.True(t, ok)
	assert.Equal(t, 42, n)
	_, ok = toInt(math.Inf(1))
	assert.False(t, ok)

	assert.True(t, truthy("yes"))
	assert.False(t, truthy("0"))
	assert.False(t, truthy(0.0))
	assert.False(t, truthy(nil))
	assert.True(t, truthy(map[string]any{}))
}
